// Package metrics declares the relay's prometheus instruments.
// All collectors register on the default registry and are served by the
// /metrics endpoint of the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_messages_stored_total",
		Help: "Messages durably appended to the history store.",
	})

	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_delivered_total",
		Help: "Events handed to connection sinks, by event name.",
	}, []string{"event"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_events_dropped_total",
		Help: "Events dropped because a connection's outbound buffer was full.",
	})

	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_live_connections",
		Help: "Currently registered websocket sessions.",
	})

	RoomsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_rooms_purged_total",
		Help: "Trashed rooms permanently removed by the reaper.",
	})

	ProcessCPUPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_process_cpu_percent",
		Help: "CPU usage of the relay process.",
	})

	ProcessResidentBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_process_resident_bytes",
		Help: "Resident memory of the relay process.",
	})
)
