package epicmix

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors updated by a [Client].
// A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	auth     *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "epicmix_requests_total",
				Help: "Total number of EpicMix API requests (by endpoint and status).",
			},
			[]string{"endpoint", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "epicmix_request_duration_seconds",
				Help:    "Duration of EpicMix API requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms → ~5s
			},
			[]string{"endpoint"},
		),
		auth: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "epicmix_token_refreshes_total",
				Help: "Number of authentication handshakes (by mode and result).",
			},
			[]string{"mode", "result"},
		),
	}
}

// observeRequest records one request. A zero status means no response was received.
func (m *Metrics) observeRequest(endpoint string, status int, start time.Time) {
	if m == nil {
		return
	}

	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}

	m.requests.WithLabelValues(endpoint, label).Inc()
	m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeAuth(mode, result string) {
	if m == nil {
		return
	}

	m.auth.WithLabelValues(mode, result).Inc()
}
