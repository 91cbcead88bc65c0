// Package metrics holds the prometheus collectors of the room service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "watchparty"

var (
	RoomsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms_live",
		Help:      "Rooms currently held in memory.",
	})
	ConnectionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_live",
		Help:      "Open signal connections.",
	})
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Inbound commands processed, by kind.",
	}, []string{"kind"})
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_errors_total",
		Help:      "Error events sent to clients, by code.",
	}, []string{"code"})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_dropped_total",
		Help:      "Outbound frames dropped because a connection queue was full.",
	})
	SignalsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signals_dropped_total",
		Help:      "Signaling messages dropped because the target was gone.",
	})
	RoomsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_swept_total",
		Help:      "Empty rooms removed by the age-based sweep.",
	})
)
