// SPDX-License-Identifier: MIT

package main

import (
	"sync"
	"time"
)

// simSurface is a wall-clock video surface: once opened it "plays" at 1x
// and signals metadata readiness after a fixed warmup.
type simSurface struct {
	mu    sync.Mutex
	base  float64
	start time.Time
	ready chan struct{}
}

func newSimSurface(warmup time.Duration) *simSurface {
	s := &simSurface{start: time.Now(), ready: make(chan struct{})}
	time.AfterFunc(warmup, func() { close(s.ready) })
	return s
}

func (s *simSurface) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base + time.Since(s.start).Seconds()
}

func (s *simSurface) Playing() bool { return true }

func (s *simSurface) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = seconds
	s.start = time.Now()
}

func (s *simSurface) Ready() <-chan struct{} { return s.ready }
