// Package metrics exposes Prometheus instruments for the coalescing loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Apply outcomes.
const (
	StatusOK         = "ok"
	StatusSpawnError = "spawn_error"
	StatusExitError  = "exit_error"
)

var (
	// ObservationsTotal counts observations by what they did to the table.
	ObservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "river_swww_observations_total",
			Help: "Observations folded into the pending table by upsert result",
		},
		[]string{"result"},
	)

	// AppliesTotal counts flushed wallpapers by outcome, once each:
	// spawn_error when swww cannot start, otherwise ok or exit_error when
	// it exits.
	AppliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "river_swww_applies_total",
			Help: "Wallpapers handed to swww by outcome",
		},
		[]string{"status"},
	)

	// PendingUpdates is the current size of the pending table.
	PendingUpdates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "river_swww_pending_updates",
			Help: "Outputs with a wallpaper waiting out the debounce window",
		},
	)

	// FlushLateness is how long past its deadline an update was flushed.
	FlushLateness = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "river_swww_flush_lateness_seconds",
			Help:    "Delay between a pending update becoming due and being applied",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)
