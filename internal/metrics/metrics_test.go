package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PaymentTransition("webhook", OutcomeSucceeded)
	m.PaymentTransition("webhook", OutcomeSucceeded)
	m.PaymentTransition("mock", OutcomeFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PaymentTransitions.WithLabelValues("webhook", OutcomeSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentTransitions.WithLabelValues("mock", OutcomeFailed)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "storefront_payment_transitions_total")
}

func TestEventPublishedResult(t *testing.T) {
	m := New(nil)
	m.EventPublished("order.created", nil)
	m.EventPublished("order.created", errors.New("closed"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.created", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.created", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PaymentTransition("confirm", OutcomeNoop)
		m.EventPublished("x", nil)
		m.EventConsumed("ok")
	})
}
