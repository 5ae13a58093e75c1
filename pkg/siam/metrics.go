package siam

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	resultCodes *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authgate",
			Subsystem: "siam",
			Name:      "requests_total",
			Help:      "IdP requests by protocol request and outcome.",
		}, []string{"request", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "authgate",
			Subsystem: "siam",
			Name:      "request_duration_seconds",
			Help:      "IdP round trip latency.",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2, 4},
		}, []string{"request"}),
		resultCodes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authgate",
			Subsystem: "siam",
			Name:      "result_codes_total",
			Help:      "result_code values returned by the IdP.",
		}, []string{"request", "result_code"}),
	}
}

func (m *Metrics) observeRequest(request string, kind error, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(request, outcome(kind)).Inc()
	m.duration.WithLabelValues(request).Observe(d.Seconds())
}

func (m *Metrics) observeResult(request, code string) {
	if m == nil {
		return
	}
	m.resultCodes.WithLabelValues(request, code).Inc()
}
