package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus holds pending, succeeded or failed. Intermediate processor
// statuses (requires_action, processing, ...) are recorded as reported.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentState is the (order status, payment status) pair guarded by
// conditional updates.
type PaymentState struct {
	Status  OrderStatus
	Payment PaymentStatus
}

func (s PaymentState) Paid() bool { return s.Payment == PaymentStatusSucceeded }

// ApplyProcessorStatus maps a processor-reported status onto the current state.
//
//	succeeded -> payment succeeded, order confirmed
//	failed    -> payment failed, order cancelled
//	other     -> payment status recorded, order status untouched
//
// A succeeded payment is final: later reports leave the state as it is.
func ApplyProcessorStatus(cur PaymentState, reported PaymentStatus) PaymentState {
	if cur.Paid() || reported == "" {
		return cur
	}
	switch reported {
	case PaymentStatusSucceeded:
		return PaymentState{Status: OrderStatusConfirmed, Payment: PaymentStatusSucceeded}
	case PaymentStatusFailed:
		return PaymentState{Status: OrderStatusCancelled, Payment: PaymentStatusFailed}
	default:
		return PaymentState{Status: cur.Status, Payment: reported}
	}
}

// ApplyMockResult is the mock channel's transition. A declined card only
// marks the payment failed; the order stays open for another attempt.
func ApplyMockResult(cur PaymentState, approved bool) PaymentState {
	if cur.Paid() {
		return cur
	}
	if approved {
		return PaymentState{Status: OrderStatusConfirmed, Payment: PaymentStatusSucceeded}
	}
	return PaymentState{Status: cur.Status, Payment: PaymentStatusFailed}
}

var hundred = decimal.NewFromInt(100)

// MinorUnits converts an amount to integer minor units (cents), truncating
// any fraction below one cent.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Truncate(0).IntPart()
}

// NormalizePaymentStatus lowercases and trims a status reported by a processor.
func NormalizePaymentStatus(s string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
}
