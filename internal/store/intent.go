// SPDX-License-Identifier: MIT

package store

import "github.com/coursekit/coursekit/internal/course"

// Intent is a named request to change state. Each intent is processed by
// exactly one state slice; dispatching is the only way to mutate state.
type Intent interface {
	Name() string
}

// Session intents.

// Login signs the user in. No credential verification happens here;
// validation is the caller's responsibility before dispatch.
type Login struct {
	Email string
}

// Logout signs the user out.
type Logout struct{}

func (Login) Name() string  { return "session.login" }
func (Logout) Name() string { return "session.logout" }

// Playback intents.

// OpenVideo opens playback for one course and restores any persisted offset.
type OpenVideo struct {
	CourseID string
}

// CloseVideo closes playback, persisting the current offset when positive.
type CloseVideo struct{}

// RecordPosition overwrites the playback position. Negative values are
// ignored.
type RecordPosition struct {
	Seconds float64
}

func (OpenVideo) Name() string      { return "playback.open" }
func (CloseVideo) Name() string     { return "playback.close" }
func (RecordPosition) Name() string { return "playback.record_position" }

// Catalog task resolutions. These are dispatched internally by the task
// runners; the start transition and its resolution are two independently
// ordered dispatches.

type fetchStarted struct {
	task TaskHandle
}

type fetchSucceeded struct {
	task  TaskHandle
	items []course.Course
}

type fetchFailed struct {
	task   TaskHandle
	reason string
}

type purchaseStarted struct {
	task TaskHandle
}

type purchaseSucceeded struct {
	task TaskHandle
}

type purchaseFailed struct {
	task   TaskHandle
	reason string
}

type recoverStarted struct {
	task TaskHandle
}

type recoverFinished struct {
	task  TaskHandle
	items []course.Course
}

func (fetchStarted) Name() string      { return "catalog.fetch_started" }
func (fetchSucceeded) Name() string    { return "catalog.fetch_succeeded" }
func (fetchFailed) Name() string       { return "catalog.fetch_failed" }
func (purchaseStarted) Name() string   { return "catalog.purchase_started" }
func (purchaseSucceeded) Name() string { return "catalog.purchase_succeeded" }
func (purchaseFailed) Name() string    { return "catalog.purchase_failed" }
func (recoverStarted) Name() string    { return "catalog.recover_started" }
func (recoverFinished) Name() string   { return "catalog.recover_finished" }
