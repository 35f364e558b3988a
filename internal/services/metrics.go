package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applicationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "application_transitions_total",
		Help:      "Application status changes by transition and resulting status.",
	}, []string{"transition", "status"})

	applicationSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "application_saves_total",
		Help:      "Application upserts by outcome.",
	}, []string{"result"})

	snapshotsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "application_snapshots_total",
		Help:      "Snapshots written.",
	})

	sessionResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "session_resolutions_total",
		Help:      "Session resolution outcomes.",
	}, []string{"result"})
)
