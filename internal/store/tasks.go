// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coursekit/coursekit/internal/course"
	"github.com/coursekit/coursekit/internal/log"
	"github.com/coursekit/coursekit/internal/metrics"
)

// Task names.
const (
	TaskFetch    = "catalog.fetch"
	TaskPurchase = "catalog.purchase"
	TaskRecover  = "catalog.recover"
)

// TaskHandle identifies one asynchronous task from its start transition to
// its single resolution, carrying the task's origin arguments. A started
// task always resolves and applies its effect, even if the state has moved
// on; resolution reducers treat a missing target as a silent no-op.
type TaskHandle struct {
	ID       string
	Task     string
	CourseID string // origin argument; purchase tasks only
}

func newHandle(task, courseID string) TaskHandle {
	return TaskHandle{ID: uuid.NewString(), Task: task, CourseID: courseID}
}

// FetchCatalog starts the asynchronous catalog fetch: loading is set
// immediately, and the task resolves with either the fetched list or a
// failure reason. On failure the stale item list is retained.
func (c *Container) FetchCatalog(ctx context.Context) TaskHandle {
	h := newHandle(TaskFetch, "")
	logger := c.taskLogger(h)
	logger.Info().Str(log.FieldEvent, "catalog.fetch_start").Msg("fetching catalog")
	c.Dispatch(fetchStarted{task: h})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		items, err := c.source.Fetch(log.ContextWithTaskID(ctx, h.ID))
		metrics.ObserveTaskDuration(TaskFetch, time.Since(start).Seconds())
		if err != nil {
			metrics.RecordTaskOutcome(TaskFetch, metrics.OutcomeFailure)
			logger.Warn().
				Str(log.FieldEvent, "catalog.fetch_fail").
				Str(log.FieldReason, err.Error()).
				Msg("catalog fetch failed")
			c.Dispatch(fetchFailed{task: h, reason: err.Error()})
			return
		}
		metrics.RecordTaskOutcome(TaskFetch, metrics.OutcomeSuccess)
		logger.Info().
			Str(log.FieldEvent, "catalog.fetch_ok").
			Int("items", len(items)).
			Msg("catalog fetched")
		c.Dispatch(fetchSucceeded{task: h, items: items})
	}()
	return h
}

// Purchase starts an asynchronous purchase for one course. Nothing in the
// container prevents two purchases for the same id from running
// concurrently; callers wanting that guard use InFlight explicitly.
func (c *Container) Purchase(ctx context.Context, courseID string) TaskHandle {
	h := newHandle(TaskPurchase, courseID)
	logger := c.taskLogger(h)
	logger.Info().Str(log.FieldEvent, "catalog.purchase_start").Msg("purchase started")
	c.Dispatch(purchaseStarted{task: h})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		err := c.payments.Charge(log.ContextWithTaskID(ctx, h.ID), courseID)
		metrics.ObserveTaskDuration(TaskPurchase, time.Since(start).Seconds())
		if err != nil {
			metrics.RecordTaskOutcome(TaskPurchase, metrics.OutcomeFailure)
			logger.Warn().
				Str(log.FieldEvent, "catalog.purchase_fail").
				Str(log.FieldReason, err.Error()).
				Msg("purchase failed")
			c.Dispatch(purchaseFailed{task: h, reason: err.Error()})
			return
		}
		metrics.RecordTaskOutcome(TaskPurchase, metrics.OutcomeSuccess)
		logger.Info().Str(log.FieldEvent, "catalog.purchase_ok").Msg("purchase succeeded")
		c.Dispatch(purchaseSucceeded{task: h})
	}()
	return h
}

// startRecover runs the delayed reconciliation pass that follows any error
// transition: after the recovery delay it replaces the catalog with a
// payment-flag-reset copy of the list captured at trigger time and clears
// the error. There is no cancellation; closing the container is the only
// way to stop a pending recovery.
func (c *Container) startRecover(items []course.Course) {
	h := newHandle(TaskRecover, "")
	logger := c.taskLogger(h)
	logger.Info().
		Str(log.FieldEvent, "catalog.recover_start").
		Int("items", len(items)).
		Msg("scheduling catalog recovery")
	c.Dispatch(recoverStarted{task: h})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t := time.NewTimer(c.recoverDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-c.closed:
			return
		}
		metrics.RecordTaskOutcome(TaskRecover, metrics.OutcomeSuccess)
		logger.Info().Str(log.FieldEvent, "catalog.recover_done").Msg("catalog recovered")
		c.Dispatch(recoverFinished{task: h, items: course.ResetPaymentFlags(items)})
	}()
}

func (c *Container) taskLogger(h TaskHandle) zerolog.Logger {
	ctx := c.logger.With().
		Str(log.FieldTask, h.Task).
		Str(log.FieldTaskID, h.ID)
	if h.CourseID != "" {
		ctx = ctx.Str(log.FieldCourseID, h.CourseID)
	}
	return ctx.Logger()
}
