// SPDX-License-Identifier: MIT

// Package store implements the client state core: three state slices
// (session, catalog, playback) composed into one container with
// reducer-style dispatch, an observer list, and a persistence bridge
// written as a side effect of specific transitions.
package store

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursekit/coursekit/internal/course"
	"github.com/coursekit/coursekit/internal/log"
	"github.com/coursekit/coursekit/internal/metrics"
	"github.com/coursekit/coursekit/internal/persistence"
)

// DefaultRecoverDelay is how long the auto-recovery task waits before
// replacing the catalog with a payment-flag-reset copy.
const DefaultRecoverDelay = 700 * time.Millisecond

// effect is a persistence write produced by a reducer, executed after the
// state transition commits. Bridge failures are logged inside the bridge
// and never fail the transition.
type effect func(b *persistence.Bridge)

// Options configures a Container.
type Options struct {
	// Bridge persists state across restarts. Nil falls back to an
	// in-memory store, so nothing survives the process.
	Bridge *persistence.Bridge
	// Source is the catalog origin, required for FetchCatalog.
	Source course.Source
	// Payments is the payment gateway, required for Purchase.
	Payments course.PaymentGateway
	// RecoverDelay overrides DefaultRecoverDelay when positive.
	RecoverDelay time.Duration
}

// Container owns the composed state tree. All mutations go through
// Dispatch, which applies exactly one reducer, executes the transition's
// persistence effects, and then notifies subscribers. Dispatches are
// serialized; a mutation always runs to completion before the next one.
type Container struct {
	mu    sync.Mutex
	state Snapshot

	bridge       *persistence.Bridge
	source       course.Source
	payments     course.PaymentGateway
	recoverDelay time.Duration

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger zerolog.Logger
}

// New builds a container and hydrates the session and purchased-id slices
// from the persistence bridge, so state survives a process restart.
func New(opts Options) *Container {
	bridge := opts.Bridge
	if bridge == nil {
		bridge = persistence.NewBridge(persistence.NewMemoryStore())
	}
	delay := opts.RecoverDelay
	if delay <= 0 {
		delay = DefaultRecoverDelay
	}

	c := &Container{
		bridge:       bridge,
		source:       opts.Source,
		payments:     opts.Payments,
		recoverDelay: delay,
		subs:         make(map[int]func(Snapshot)),
		closed:       make(chan struct{}),
		logger:       log.WithComponent("store"),
	}
	c.hydrate()
	return c
}

// hydrate reads the startup records: the signed-in user and the
// purchased-id set. Offsets are read lazily at open time.
func (c *Container) hydrate() {
	if email, ok, err := c.bridge.LoadUser(); err == nil && ok {
		c.state.Session.User = &User{Email: email}
	}
	if ids, err := c.bridge.LoadPurchased(); err == nil && len(ids) > 0 {
		c.state.Catalog.PurchasedIDs = ids
	}
	c.logger.Debug().
		Str(log.FieldEvent, "store.hydrated").
		Bool("signed_in", c.state.Session.User != nil).
		Int("purchased", len(c.state.Catalog.PurchasedIDs)).
		Msg("state hydrated from persistence")
}

// Dispatch routes an intent to its owning reducer, commits the new
// snapshot, executes persistence effects, and notifies subscribers.
// An error transition on the catalog slice auto-starts the recovery task.
func (c *Container) Dispatch(in Intent) {
	metrics.IncIntent(in.Name())

	c.mu.Lock()
	old := c.state
	next, effects := c.reduce(c.state, in)
	c.state = next
	// Effects run under the dispatch lock so persisted records are
	// written in commit order.
	for _, eff := range effects {
		eff(c.bridge)
	}
	snap := next.clone()
	trigger := old.Catalog.Error == "" && next.Catalog.Error != ""
	var recoverItems []course.Course
	if trigger {
		recoverItems = course.CloneAll(next.Catalog.Items)
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str(log.FieldIntent, in.Name()).
		Msg("intent applied")
	metrics.SetPurchasedCourses(len(snap.Catalog.PurchasedIDs))

	c.notify(snap)
	if trigger {
		c.startRecover(recoverItems)
	}
}

func (c *Container) reduce(s Snapshot, in Intent) (Snapshot, []effect) {
	if next, effects, ok := reduceSession(s.Session, in); ok {
		s.Session = next
		return s, effects
	}
	if next, effects, ok := reduceCatalog(s.Catalog, in); ok {
		s.Catalog = next
		return s, effects
	}
	if next, effects, ok := reducePlayback(s.Playback, in, c.bridge); ok {
		s.Playback = next
		return s, effects
	}
	c.logger.Warn().
		Str(log.FieldIntent, in.Name()).
		Msg("intent not handled by any slice")
	return s, nil
}

// State returns an immutable snapshot of the full state tree.
func (c *Container) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to be called with a snapshot after every
// committed change. The returned cancel func removes the subscription.
func (c *Container) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	n := len(c.subs)
	c.subMu.Unlock()
	metrics.SetSubscribers(n)

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		n := len(c.subs)
		c.subMu.Unlock()
		metrics.SetSubscribers(n)
	}
}

func (c *Container) notify(snap Snapshot) {
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// Close stops the recovery timers and waits for in-flight tasks to
// resolve. The container must not be dispatched to afterwards.
func (c *Container) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
	c.wg.Wait()
}
