package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TutorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_requests_total",
		Help: "Tutor requests by outcome (ok, degraded, error)",
	}, []string{"outcome"})

	TutorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tutor_request_duration_seconds",
		Help:    "Tutor round-trip latency",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 13.0, 30.0},
	})

	SessionTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_turns_total",
		Help: "Transcript turns committed by role",
	}, []string{"role"})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_completed_total",
		Help: "Practice sessions ended",
	})

	StaleResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_stale_results_total",
		Help: "Tutor results discarded because their session had already ended",
	})

	WordsLearned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vocabulary_words_learned_total",
		Help: "Vocabulary words marked as learned",
	})
)

const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)
