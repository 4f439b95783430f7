package matchmaking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeematch_rounds_total",
			Help: "Total number of pairing rounds executed",
		},
		[]string{"mode"},
	)

	matchesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeematch_matches_created_total",
			Help: "Total number of matches created",
		},
		[]string{"kind"},
	)

	matchDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeematch_match_decisions_total",
			Help: "Total number of accept/reject decisions",
		},
		[]string{"decision"},
	)

	matchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeematch_match_outcomes_total",
			Help: "Total number of recorded meeting outcomes",
		},
		[]string{"result"},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coffeematch_match_scores",
			Help:    "Distribution of compatibility scores on created matches",
			Buckets: prometheus.LinearBuckets(0, 15, 11),
		},
	)
)

func recordRound(mode Mode) {
	roundsTotal.WithLabelValues(string(mode)).Inc()
}

func recordMatchCreated(forced bool, score int) {
	kind := "scored"
	if forced {
		kind = "forced"
	}
	matchesCreatedTotal.WithLabelValues(kind).Inc()
	matchScores.Observe(float64(score))
}

func recordDecision(decision string) {
	matchDecisionsTotal.WithLabelValues(decision).Inc()
}

func recordOutcome(succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	matchOutcomesTotal.WithLabelValues(result).Inc()
}
