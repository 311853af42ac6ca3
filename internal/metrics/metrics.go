// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the state core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursekit_intents_total",
		Help: "Total number of intents dispatched to the state container",
	}, []string{"intent"})

	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursekit_tasks_total",
		Help: "Asynchronous task resolutions by task and outcome",
	}, []string{"task", "outcome"}) // outcome=success|failure

	taskDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursekit_task_duration_seconds",
		Help:    "Time from task start to resolution",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	persistenceOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursekit_persistence_ops_total",
		Help: "Persistence bridge operations by op and outcome",
	}, []string{"op", "outcome"}) // op=get|set|remove

	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursekit_subscribers",
		Help: "Number of active state-change subscribers",
	})

	purchasedCoursesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursekit_purchased_courses",
		Help: "Number of purchased courses in the current state",
	})
)

func IncIntent(intent string) { intentsTotal.WithLabelValues(intent).Inc() }

func RecordTaskOutcome(task, outcome string) { tasksTotal.WithLabelValues(task, outcome).Inc() }

func ObserveTaskDuration(task string, seconds float64) {
	taskDurationSeconds.WithLabelValues(task).Observe(seconds)
}

func IncPersistenceOp(op, outcome string) {
	persistenceOpsTotal.WithLabelValues(op, outcome).Inc()
}

func SetSubscribers(n int) { subscribersGauge.Set(float64(n)) }

func SetPurchasedCourses(n int) { purchasedCoursesGauge.Set(float64(n)) }
