package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FlagsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustengine_flags_submitted_total",
		Help: "Flags accepted by the ledger, by reason.",
	}, []string{"reason"})

	FlagsRetracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trustengine_flags_retracted_total",
		Help: "Pending flags retracted by their reporter.",
	})

	AutoHideTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustengine_autohide_transitions_total",
		Help: "Visibility flips performed by the auto-hide policy.",
	}, []string{"direction"})

	PenaltiesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustengine_penalties_issued_total",
		Help: "Penalties issued, by type.",
	}, []string{"type"})

	AppealsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustengine_appeals_reviewed_total",
		Help: "Appeals resolved, by outcome.",
	}, []string{"outcome"})

	WatchlistMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trustengine_watchlist_matches_total",
		Help: "Watchlist entry hits observed by the matcher.",
	})
)
