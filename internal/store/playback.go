// SPDX-License-Identifier: MIT

package store

import "github.com/coursekit/coursekit/internal/persistence"

// reducePlayback handles playback intents. It reads the persisted offset
// on open; the only write is the offset capture on close.
func reducePlayback(p PlaybackState, in Intent, b *persistence.Bridge) (PlaybackState, []effect, bool) {
	switch v := in.(type) {
	case OpenVideo:
		p.CurrentCourseID = v.CourseID
		p.IsOpen = true
		if sec, ok, err := b.LoadPosition(v.CourseID); err == nil && ok && sec > 0 {
			p.PlaybackPosition = sec
		}
		// With no persisted offset the prior in-memory position is kept,
		// even if it belongs to a previously closed, different course.
		// Matches shipped behavior; pending product clarification.
		return p, nil, true

	case CloseVideo:
		var effects []effect
		if p.CurrentCourseID != "" && p.PlaybackPosition > 0 {
			id, sec := p.CurrentCourseID, p.PlaybackPosition
			effects = append(effects, func(b *persistence.Bridge) {
				_ = b.SavePosition(id, sec)
			})
		}
		p.IsOpen = false
		p.CurrentCourseID = ""
		// The position itself is not reset.
		return p, effects, true

	case RecordPosition:
		if v.Seconds < 0 {
			return p, nil, true
		}
		p.PlaybackPosition = v.Seconds
		return p, nil, true
	}
	return p, nil, false
}
