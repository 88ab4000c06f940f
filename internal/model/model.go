package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID                int64
	Email             string
	Name              string
	PasswordHash      string
	PaymentCustomerID string
	CreatedAt         time.Time
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CartItem is one (user, product) line. Product is populated by listing queries only.
type CartItem struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int
	Product   *Product
	CreatedAt time.Time
}

type Order struct {
	ID                int64
	UserID            int64
	TotalAmount       decimal.Decimal
	ShippingAddress   string
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	PaymentIntentID   string
	PaymentCustomerID string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem keeps the unit price the caller supplied when the order was placed.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	Product   *Product
}

// State returns the pair of statuses the payment lifecycle operates on.
func (o *Order) State() PaymentState {
	return PaymentState{Status: o.Status, Payment: o.PaymentStatus}
}

type EventType string

const (
	EventOrderCreated          EventType = "order.created"
	EventOrderPaymentSucceeded EventType = "order.payment_succeeded"
	EventOrderPaymentFailed    EventType = "order.payment_failed"
)

// OrderEvent is the message published to the order events exchange.
type OrderEvent struct {
	ID          uuid.UUID        `json:"id"`
	Type        EventType        `json:"type"`
	OrderID     int64            `json:"order_id"`
	UserID      int64            `json:"user_id"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Channel     string           `json:"channel,omitempty"`
	Items       []OrderEventItem `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderEvent(t EventType, order *Order, channel string) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderEvent{
		ID:          uuid.New(),
		Type:        t,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Channel:     channel,
		Items:       items,
		OccurredAt:  time.Now().UTC(),
	}
}
