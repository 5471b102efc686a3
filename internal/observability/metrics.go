// Package observability holds the Prometheus collectors for workout activity.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "workouts",
		Name:      "created_total",
		Help:      "Workouts created, by source (manual or ai).",
	}, []string{"source"})
	transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "workouts",
		Name:      "transitions_total",
		Help:      "Status transitions applied, by action.",
	}, []string{"action"})
	setUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "sets",
		Name:      "updates_total",
		Help:      "Set updates, by resulting completed flag.",
	}, []string{"completed"})
	generatorFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "generator",
		Name:      "fallbacks_total",
		Help:      "Generated workouts that used the fixed fallback exercise list.",
	})
	completedDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "liftlog",
		Subsystem: "workouts",
		Name:      "completed_duration_minutes",
		Help:      "Duration of completed workouts in minutes.",
		Buckets:   []float64{5, 10, 20, 30, 45, 60, 90, 120, 180},
	})
)

func init() {
	prometheus.MustRegister(workoutsCreated, transitions, setUpdates, generatorFallbacks, completedDuration)
}

// RecordWorkoutCreated counts a new workout.
func RecordWorkoutCreated(source string) {
	workoutsCreated.WithLabelValues(source).Inc()
}

// RecordTransition counts a start or complete.
func RecordTransition(action string) {
	transitions.WithLabelValues(action).Inc()
}

// RecordSetUpdate counts a set write.
func RecordSetUpdate(completed bool) {
	setUpdates.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

// RecordGeneratorFallback counts a fallback plan.
func RecordGeneratorFallback() {
	generatorFallbacks.Inc()
}

// RecordCompletedDuration observes the stored duration of a completed workout.
func RecordCompletedDuration(minutes *int) {
	if minutes == nil {
		return
	}
	completedDuration.Observe(float64(*minutes))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
