package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "directory_live_search_connections",
		Help: "Open live-search WebSocket connections",
	})

	droppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "directory_live_search_dropped_messages_total",
		Help: "Messages dropped because a client's send buffer was full",
	})

	remoteApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "directory_remote_catalog_changes_total",
		Help: "Catalog changes received from other instances, by outcome",
	}, []string{"op", "outcome"})
)
