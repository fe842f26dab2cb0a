// Package metrics exposes Prometheus collectors for the USSD gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lovtiti-ussd/internal/domain"
)

const namespace = "lovtiti_ussd"

// Metrics owns a registry with the gateway's collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	submissions     *prometheus.CounterVec
}

// New creates collectors on a fresh registry, including Go runtime metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of USSD requests by menu branch and response kind",
			},
			[]string{"branch", "kind"}, // kind: CON, END
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent computing the next USSD screen",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"branch"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "kyc_submissions_total",
				Help:      "Total number of completed KYC flows handed to the sink",
			},
			[]string{"role", "status"}, // status: success, error
		),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// TrackSessions exposes a live session count sampled on scrape.
func (m *Metrics) TrackSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of USSD sessions currently held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

func (m *Metrics) ObserveRequest(branch, kind string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(branch, kind).Inc()
	m.requestDuration.WithLabelValues(branch).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSubmission(role domain.Role, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.submissions.WithLabelValues(role.String(), status).Inc()
}
