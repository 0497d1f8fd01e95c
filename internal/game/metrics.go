package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	participantsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trivia_participants",
		Help: "Number of participants currently registered in the session.",
	})

	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_sessions_started_total",
		Help: "Sessions that transitioned from idle to active.",
	})

	sessionsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_sessions_completed_total",
		Help: "Sessions that ran through the full question sequence.",
	})

	sessionsAbortedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_sessions_aborted_total",
		Help: "Active sessions reset because every participant left.",
	})

	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_answers_total",
		Help: "Accepted answers by result.",
	}, []string{"result"})
)
