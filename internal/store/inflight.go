// SPDX-License-Identifier: MIT

package store

import "sync"

// InFlight tracks course ids with an outstanding purchase. The container
// deliberately carries no such guard, so concurrent purchases for one id
// are possible; callers that want one-purchase-per-course semantics wrap
// Purchase calls with this tracker.
type InFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[string]struct{})}
}

// TryBegin marks id as in flight. It returns false when a purchase for id
// is already outstanding.
func (f *InFlight) TryBegin(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; ok {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// End clears the in-flight mark for id. Safe to call for ids never begun.
func (f *InFlight) End(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

// Active reports the number of in-flight ids.
func (f *InFlight) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}
