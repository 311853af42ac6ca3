// SPDX-License-Identifier: MIT

package course

import (
	"context"
	"time"
)

// Source is the catalog origin.
type Source interface {
	// Fetch returns the full catalog in stable catalog order.
	Fetch(ctx context.Context) ([]Course, error)
}

// Seed returns the built-in demo catalog.
func Seed() []Course {
	return []Course{
		{
			ID:          "1",
			Title:       "React Basics",
			Description: "Learn the fundamentals of React.",
			VideoURL:    "https://www.w3schools.com/html/mov_bbb.mp4",
			Price:       19.99,
		},
		{
			ID:          "2",
			Title:       "Advanced TypeScript",
			Description: "Types, generics, and advanced patterns.",
			VideoURL:    "https://interactive-examples.mdn.mozilla.net/media/cc0-videos/flower.mp4",
			Price:       29.99,
		},
	}
}

// SimSource serves a fixed catalog after a simulated network delay. Err,
// when set, makes every fetch fail after the same delay.
type SimSource struct {
	Courses []Course
	Delay   time.Duration
	Err     error
}

// NewSimSource returns a source serving the seed catalog.
func NewSimSource(delay time.Duration) *SimSource {
	return &SimSource{Courses: Seed(), Delay: delay}
}

func (s *SimSource) Fetch(ctx context.Context) ([]Course, error) {
	if err := sleep(ctx, s.Delay); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return CloneAll(s.Courses), nil
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Source = (*SimSource)(nil)
