package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyProcessorStatus(t *testing.T) {
	pending := PaymentState{Status: OrderStatusPending, Payment: PaymentStatusPending}
	paid := PaymentState{Status: OrderStatusConfirmed, Payment: PaymentStatusSucceeded}
	failed := PaymentState{Status: OrderStatusCancelled, Payment: PaymentStatusFailed}

	tests := []struct {
		name     string
		cur      PaymentState
		reported PaymentStatus
		want     PaymentState
	}{
		{"succeeded confirms", pending, PaymentStatusSucceeded, paid},
		{"failed cancels", pending, PaymentStatusFailed, failed},
		{"intermediate keeps order status", pending, "requires_action",
			PaymentState{Status: OrderStatusPending, Payment: "requires_action"}},
		{"succeeded is final", paid, PaymentStatusFailed, paid},
		{"succeeded twice is a no-op", paid, PaymentStatusSucceeded, paid},
		{"retry after failure succeeds", failed, PaymentStatusSucceeded, paid},
		{"empty status ignored", pending, "", pending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyProcessorStatus(tt.cur, tt.reported))
		})
	}
}

func TestApplyMockResult(t *testing.T) {
	pending := PaymentState{Status: OrderStatusPending, Payment: PaymentStatusPending}

	assert.Equal(t,
		PaymentState{Status: OrderStatusConfirmed, Payment: PaymentStatusSucceeded},
		ApplyMockResult(pending, true))
	assert.Equal(t,
		PaymentState{Status: OrderStatusPending, Payment: PaymentStatusFailed},
		ApplyMockResult(pending, false))

	paid := PaymentState{Status: OrderStatusConfirmed, Payment: PaymentStatusSucceeded}
	assert.Equal(t, paid, ApplyMockResult(paid, false))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(19999), MinorUnits(decimal.RequireFromString("199.99")))
	assert.Equal(t, int64(100), MinorUnits(decimal.NewFromInt(1)))
	assert.Equal(t, int64(1234), MinorUnits(decimal.RequireFromString("12.349")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
}

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusSucceeded, NormalizePaymentStatus(" Succeeded "))
}
