package syncqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timely_client",
			Name:      "sync_submissions_total",
			Help:      "Write jobs accepted into the sync executor.",
		},
		[]string{"shard"},
	)

	terminalFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timely_client",
			Name:      "sync_terminal_failures_total",
			Help:      "Write jobs that exhausted retries or failed fast.",
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "timely_client",
			Name:      "sync_queue_depth",
			Help:      "Jobs waiting per shard.",
		},
		[]string{"shard"},
	)
)

func labelFor(shard int) string { return strconv.Itoa(shard) }
