// Package metrics provides Prometheus collection for the provider client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics is what the provider client records. The transport and the
// handshake depend on this interface so tests and minimal setups can run
// without a registry.
type ClientMetrics interface {
	// RecordRequest counts one provider round-trip by endpoint family and
	// outcome, and observes its duration. Outcomes: ok, challenge,
	// provider_error, network_error, decode_error.
	RecordRequest(endpoint, outcome string, duration time.Duration)

	// RecordLogin counts one full handshake with its outcome. Outcomes:
	// ok, challenge_unresolved, unavailable, cache_error, invalid_input.
	RecordLogin(outcome string)

	// RecordChallengePrompt counts a question forwarded to the operator.
	RecordChallengePrompt()

	// RecordChallengeRejection counts a cached answer the provider refused.
	RecordChallengeRejection()

	// RecordEmptyResponse counts a fetch that answered without a payload.
	RecordEmptyResponse(operation string)
}

// Collector implements ClientMetrics on a Prometheus registry.
type Collector struct {
	requests            *prometheus.CounterVec
	requestDuration     prometheus.Histogram
	logins              *prometheus.CounterVec
	challengePrompts    prometheus.Counter
	challengeRejections prometheus.Counter
	emptyResponses      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoledirecte_provider_requests_total",
			Help: "Provider round-trips by endpoint family and outcome.",
		}, []string{"endpoint", "outcome"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ecoledirecte_provider_request_duration_seconds",
			Help:    "Provider round-trip duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoledirecte_logins_total",
			Help: "Authentication handshakes by outcome.",
		}, []string{"outcome"}),
		challengePrompts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoledirecte_challenge_prompts_total",
			Help: "Security questions forwarded to the operator.",
		}),
		challengeRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecoledirecte_challenge_rejections_total",
			Help: "Cached challenge answers the provider refused.",
		}),
		emptyResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecoledirecte_empty_responses_total",
			Help: "Fetch operations that answered without a payload.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.requests,
		c.requestDuration,
		c.logins,
		c.challengePrompts,
		c.challengeRejections,
		c.emptyResponses,
	)

	return c
}

// RecordRequest implements ClientMetrics.
func (c *Collector) RecordRequest(endpoint, outcome string, duration time.Duration) {
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RecordLogin implements ClientMetrics.
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordChallengePrompt implements ClientMetrics.
func (c *Collector) RecordChallengePrompt() {
	c.challengePrompts.Inc()
}

// RecordChallengeRejection implements ClientMetrics.
func (c *Collector) RecordChallengeRejection() {
	c.challengeRejections.Inc()
}

// RecordEmptyResponse implements ClientMetrics.
func (c *Collector) RecordEmptyResponse(operation string) {
	c.emptyResponses.WithLabelValues(operation).Inc()
}

// Nop discards every record. Useful when no registry is wired.
type Nop struct{}

// NewNop returns a ClientMetrics that records nothing.
func NewNop() Nop { return Nop{} }

func (Nop) RecordRequest(string, string, time.Duration) {}
func (Nop) RecordLogin(string)                          {}
func (Nop) RecordChallengePrompt()                      {}
func (Nop) RecordChallengeRejection()                   {}
func (Nop) RecordEmptyResponse(string)                  {}

// Handler returns the HTTP handler exposing the gathered metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
