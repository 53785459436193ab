// Package metrics holds the Prometheus collectors for chunking and synthesis.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tts"

var (
	// chunksPerText is a histogram of how many chunks one input text produced.
	chunksPerText = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_text",
			Help:      "Number of chunks produced per chunked text",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// providerRequestDuration is a histogram of synthesis provider call duration.
	providerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of synthesis provider calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// providerRequestsTotal is a counter of provider calls.
	providerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of synthesis provider calls",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	// combinedBytesTotal counts bytes returned by combine operations.
	combinedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combined_bytes_total",
			Help:      "Total bytes of combined audio returned",
		},
	)

	registerOnce sync.Once
)

// Register adds the collectors to reg. Safe to call more than once.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(chunksPerText, providerRequestDuration, providerRequestsTotal, combinedBytesTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveChunks(n int) {
	chunksPerText.Observe(float64(n))
}

// ObserveProviderCall records one provider call started at start.
func ObserveProviderCall(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	providerRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	providerRequestsTotal.WithLabelValues(operation, status).Inc()
}

func AddCombinedBytes(n int) {
	combinedBytesTotal.Add(float64(n))
}
