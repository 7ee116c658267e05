package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CourseCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "course_completions_total",
		Help:      "First-time course completions credited to a user.",
	})

	QuizAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "quiz_attempts_total",
		Help:      "Quiz answers recorded, by result.",
	}, []string{"result"})

	BadgesGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "badges_granted_total",
		Help:      "Badges granted, by badge id.",
	}, []string{"badge"})

	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "store_operations_total",
		Help:      "Persistence gateway calls, by kind, operation and result.",
	}, []string{"kind", "op", "result"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "cache_lookups_total",
		Help:      "Document cache lookups, by outcome.",
	}, []string{"outcome"})

	PlayerSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mahsa",
		Name:      "player_sessions_started_total",
		Help:      "Course player sessions opened since start.",
	})
)

func QuizResult(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
