package dispatch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	enqueueTotal *prometheus.CounterVec
	attemptTotal *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec

	attemptLatency *prometheus.HistogramVec

	depth prometheus.Gauge
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		enqueueTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "dispatch",
			Name:      "enqueue_total",
			Help:      "Total number of units pushed onto the dispatch queue.",
		}, []string{"unit"}),
		attemptTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "dispatch",
			Name:      "attempt_total",
			Help:      "Total number of unit execution attempts.",
		}, []string{"unit", "result"}),
		droppedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "dispatch",
			Name:      "dropped_total",
			Help:      "Total number of units dropped after exhausting all attempts.",
		}, []string{"unit"}),
		attemptLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tgbridge",
			Subsystem: "dispatch",
			Name:      "attempt_latency_seconds",
			Help:      "Latency distribution for unit execution attempts.",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30, 60,
			},
		}, []string{"unit", "result"}),
		depth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "tgbridge",
			Subsystem: "dispatch",
			Name:      "depth",
			Help:      "Current number of units waiting in the dispatch queue.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
