// Package metrics exposes Prometheus counters of the Auth API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Verification results.
const (
	ResultSuccess          = "success"
	ResultInvalidChallenge = "invalid_challenge"
	ResultInvalidSignature = "invalid_signature"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	ChallengesIssued    prometheus.Counter
	ChallengesThrottled prometheus.Counter
	Verifications       *prometheus.CounterVec
	CampaignsSubmitted  prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ChallengesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didkeeper",
			Name:      "challenges_issued_total",
			Help:      "Login challenges handed out.",
		}),
		ChallengesThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didkeeper",
			Name:      "challenges_throttled_total",
			Help:      "Challenge requests rejected by the per-DID rate limit.",
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "didkeeper",
			Name:      "verifications_total",
			Help:      "Login verifications by result.",
		}, []string{"result"}),
		CampaignsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "didkeeper",
			Name:      "campaigns_submitted_total",
			Help:      "Campaigns accepted.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "didkeeper",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ChallengesIssued,
		m.ChallengesThrottled,
		m.Verifications,
		m.CampaignsSubmitted,
		m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
