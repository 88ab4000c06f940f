// Package metrics owns the Prometheus collectors of the API and worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Payment transition outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRecorded  = "recorded"
	OutcomeNoop      = "noop"
)

type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	PaymentTransitions *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	EventsConsumed     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PaymentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payment_transitions_total",
			Help: "Order payment transitions by channel and outcome.",
		}, []string{"channel", "outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_published_total",
			Help: "Order events published, by routing key and result.",
		}, []string{"type", "result"}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_consumed_total",
			Help: "Order events handled by the analytics worker, by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.PaymentTransitions, m.EventsPublished, m.EventsConsumed)
	}
	return m
}

func (m *Metrics) PaymentTransition(channel, outcome string) {
	if m == nil {
		return
	}
	m.PaymentTransitions.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) EventConsumed(result string) {
	if m == nil {
		return
	}
	m.EventsConsumed.WithLabelValues(result).Inc()
}
