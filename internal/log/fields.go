// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldTaskID   = "task_id"
	FieldCourseID = "course_id"
	FieldEmail    = "email"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldIntent    = "intent"
	FieldTask      = "task"
	FieldReason    = "reason"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldPosition = "position"

	// Persistence fields
	FieldKey     = "key"
	FieldBackend = "backend"
	FieldOp      = "op"
)
