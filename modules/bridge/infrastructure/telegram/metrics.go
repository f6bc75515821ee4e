package telegram

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	outcomes *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	paced    prometheus.Counter

	streamBytes  prometheus.Counter
	streamChunks prometheus.Counter
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "executor",
			Name:      "commands_total",
			Help:      "Total number of executed commands by kind and outcome.",
		}, []string{"kind", "outcome"}),
		latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tgbridge",
			Subsystem: "executor",
			Name:      "command_latency_seconds",
			Help:      "Latency of Telegram calls made for a command.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
		paced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "executor",
			Name:      "paced_total",
			Help:      "Number of times a command waited for the rate limiter.",
		}),
		streamBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total number of media bytes streamed over HTTP.",
		}),
		streamChunks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tgbridge",
			Subsystem: "stream",
			Name:      "chunks_total",
			Help:      "Total number of media chunks fetched for streaming.",
		}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
