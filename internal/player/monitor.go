// SPDX-License-Identifier: MIT

package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/coursekit/coursekit/internal/log"
	"github.com/coursekit/coursekit/internal/store"
)

// Dispatcher is the slice of the state container the monitor needs.
type Dispatcher interface {
	Dispatch(store.Intent)
	State() store.Snapshot
}

// Defaults for the open-video timers.
const (
	DefaultCaptureInterval = time.Second
	DefaultFallbackDelay   = time.Second
)

// Options configures a Monitor.
type Options struct {
	// CaptureInterval is how often a playing surface's position is
	// recorded into state.
	CaptureInterval time.Duration
	// FallbackDelay is how long after open the resume seek fires even if
	// the surface never signals readiness.
	FallbackDelay time.Duration
	// ScrubRate caps how often scrub notifications are recorded.
	ScrubRate rate.Limit
	// ScrubBurst is the scrub limiter burst size.
	ScrubBurst int
}

// Monitor owns the "video open" lifetime. Opening dispatches the open
// intent, then runs one goroutine that races the two resume triggers and
// captures the playing position periodically. Closing cancels every timer
// before the close intent is dispatched; a monitor is never left ticking
// after closure.
type Monitor struct {
	d      Dispatcher
	opts   Options
	scrub  *rate.Limiter
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor builds a monitor over the given dispatcher.
func NewMonitor(d Dispatcher, opts Options) *Monitor {
	if opts.CaptureInterval <= 0 {
		opts.CaptureInterval = DefaultCaptureInterval
	}
	if opts.FallbackDelay <= 0 {
		opts.FallbackDelay = DefaultFallbackDelay
	}
	if opts.ScrubRate <= 0 {
		opts.ScrubRate = rate.Every(250 * time.Millisecond)
	}
	if opts.ScrubBurst <= 0 {
		opts.ScrubBurst = 1
	}
	return &Monitor{
		d:      d,
		opts:   opts,
		scrub:  rate.NewLimiter(opts.ScrubRate, opts.ScrubBurst),
		logger: log.WithComponent("player"),
	}
}

// Open starts playback of courseID on the given surface. Any previous
// open session is closed first.
func (m *Monitor) Open(s Surface, courseID string) {
	m.Close()

	m.d.Dispatch(store.OpenVideo{CourseID: courseID})
	target := m.d.State().Playback.PlaybackPosition

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.logger.Debug().
		Str(log.FieldEvent, "playback.open").
		Str(log.FieldCourseID, courseID).
		Float64(log.FieldPosition, target).
		Msg("video opened")

	go m.run(ctx, s, target, done)
}

// run is the open-video loop: two resume triggers racing toward one seek,
// and the periodic position capture. All timers die with ctx.
func (m *Monitor) run(ctx context.Context, s Surface, target float64, done chan struct{}) {
	defer close(done)

	seeked := false
	trySeek := func() {
		if seeked {
			return
		}
		seeked = true
		// No-op when the surface already reports a matching or further
		// position.
		if target > 0 && s.Position() < target {
			s.Seek(target)
			m.logger.Debug().
				Str(log.FieldEvent, "playback.resume_seek").
				Float64(log.FieldPosition, target).
				Msg("seeked surface to saved position")
		}
	}

	fallback := time.NewTimer(m.opts.FallbackDelay)
	defer fallback.Stop()
	ticker := time.NewTicker(m.opts.CaptureInterval)
	defer ticker.Stop()

	ready := s.Ready()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ready:
			trySeek()
			ready = nil
		case <-fallback.C:
			trySeek()
		case <-ticker.C:
			if !s.Playing() {
				continue
			}
			if pos := s.Position(); pos > 0 {
				m.d.Dispatch(store.RecordPosition{Seconds: pos})
			}
		}
	}
}

// NotifyScrub records an explicit seek from the surface, throttled so
// rapid scrubbing does not flood the container.
func (m *Monitor) NotifyScrub(seconds float64) {
	if !m.scrub.Allow() {
		return
	}
	m.d.Dispatch(store.RecordPosition{Seconds: seconds})
}

// Close tears down the open session: timers are cancelled on every exit
// path before the close intent persists the offset. Safe to call when
// nothing is open, and safe to call twice.
func (m *Monitor) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	<-done
	m.d.Dispatch(store.CloseVideo{})
	m.logger.Debug().
		Str(log.FieldEvent, "playback.close").
		Msg("video closed")
}
