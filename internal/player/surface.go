// SPDX-License-Identifier: MIT

// Package player drives playback state from an external video surface:
// resume-on-open seeking, periodic offset capture, and scrub handling.
package player

// Surface is the external video element the monitor observes and controls.
// Implementations are expected to be safe for concurrent use.
type Surface interface {
	// Position reports the current playback position in seconds.
	Position() float64
	// Playing reports whether the surface is actively playing.
	Playing() bool
	// Seek moves the surface to the given position.
	Seek(seconds float64)
	// Ready returns a channel that is closed once the surface's media
	// metadata is loaded and seeking is possible.
	Ready() <-chan struct{}
}
