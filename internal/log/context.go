// SPDX-License-Identifier: MIT

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const taskIDKey ctxKey = "task_id"

// ContextWithTaskID stores the provided task ID in the context.
func ContextWithTaskID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, taskIDKey, id)
}

// TaskIDFromContext extracts the task ID from context if present.
func TaskIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(taskIDKey).(string); ok {
		return v
	}
	return ""
}

// FromContext returns a logger annotated with identifiers carried in the context.
func FromContext(ctx context.Context) zerolog.Logger {
	l := logger()
	if id := TaskIDFromContext(ctx); id != "" {
		l = l.With().Str(FieldTaskID, id).Logger()
	}
	return l
}
