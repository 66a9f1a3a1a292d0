// Package metrics exposes the process's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "memelord",
		Name:      "rooms_active",
		Help:      "Number of rooms currently held in memory.",
	})

	PlayersRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "memelord",
		Name:      "players_registered",
		Help:      "Number of players currently registered across all rooms.",
	})

	RoundsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "memelord",
		Name:      "rounds_started_total",
		Help:      "Total caption rounds started since process start.",
	})

	GamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "memelord",
		Name:      "games_completed_total",
		Help:      "Total games that ran to the ended phase.",
	})

	RoomsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "memelord",
		Name:      "rooms_swept_total",
		Help:      "Total idle rooms removed by the background sweep.",
	})
)
