package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	records   prometheus.Counter
	decoded   *prometheus.CounterVec
	ignored   prometheus.Counter
	invalid   *prometheus.CounterVec
	published *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		records: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "poller",
			Name:      "records_total",
			Help:      "Total number of records read from the commands topic.",
		}),
		decoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "poller",
			Name:      "decoded_total",
			Help:      "Total number of commands decoded and queued, by kind.",
		}, []string{"kind"}),
		ignored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "poller",
			Name:      "ignored_total",
			Help:      "Total number of records without a known request_type.",
		}),
		invalid: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "poller",
			Name:      "invalid_total",
			Help:      "Total number of records rejected by validation, by kind.",
		}, []string{"kind"}),
		published: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "publisher",
			Name:      "responses_total",
			Help:      "Total number of responses published, by result.",
		}, []string{"result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
