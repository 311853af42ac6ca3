// SPDX-License-Identifier: MIT

package store

import "github.com/coursekit/coursekit/internal/course"

// User is the signed-in identity. The email string is the identity; no
// password is ever retained.
type User struct {
	Email string `json:"email"`
}

// SessionState holds the signed-in user, nil when signed out.
type SessionState struct {
	User *User
}

// CatalogState holds the course list and purchase bookkeeping.
// Loading is true only while a fetch task is outstanding. Error is
// non-empty only after the most recent fetch or purchase task failed and
// has not yet been cleared by a later successful task.
type CatalogState struct {
	Items        []course.Course
	PurchasedIDs []string
	Loading      bool
	Error        string
}

// PlaybackState holds which course's video is open and the last known
// playback offset in seconds.
type PlaybackState struct {
	CurrentCourseID  string
	IsOpen           bool
	PlaybackPosition float64
}

// Snapshot is the full immutable state tree at one instant.
type Snapshot struct {
	Session  SessionState
	Catalog  CatalogState
	Playback PlaybackState
}

// clone deep-copies the snapshot so readers can never alias container
// internals.
func (s Snapshot) clone() Snapshot {
	if s.Session.User != nil {
		u := *s.Session.User
		s.Session.User = &u
	}
	s.Catalog.Items = course.CloneAll(s.Catalog.Items)
	if s.Catalog.PurchasedIDs != nil {
		ids := make([]string, len(s.Catalog.PurchasedIDs))
		copy(ids, s.Catalog.PurchasedIDs)
		s.Catalog.PurchasedIDs = ids
	}
	return s
}

// SignedIn reports whether a user is signed in.
func (s Snapshot) SignedIn() bool { return s.Session.User != nil }

// Course looks up a catalog entry by id.
func (s Snapshot) Course(id string) (course.Course, bool) {
	for _, c := range s.Catalog.Items {
		if c.ID == id {
			return c, true
		}
	}
	return course.Course{}, false
}

// IsPurchased reports whether the course id is in the purchased set.
func (s Snapshot) IsPurchased(id string) bool {
	for _, p := range s.Catalog.PurchasedIDs {
		if p == id {
			return true
		}
	}
	return false
}
