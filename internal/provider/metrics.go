package provider

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linkRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timely_client",
			Name:      "link_requests_total",
			Help:      "Meeting-link creation attempts per provider.",
		},
		[]string{"provider"},
	)

	linkFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "timely_client",
			Name:      "link_failures_total",
			Help:      "Meeting-link creation attempts that returned an error.",
		},
		[]string{"provider"},
	)
)
