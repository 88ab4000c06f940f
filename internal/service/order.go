package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/events"
	"github.com/flicky/storefront-api/internal/logging"
	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderService struct {
	store     repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

func NewOrderService(store repository.Store, publisher events.Publisher, m *metrics.Metrics) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{store: store, publisher: publisher, metrics: m}
}

// Create places an order from the supplied lines. Line prices are stored as
// given and the cart is left alone; it is cleared when payment succeeds.
func (s *OrderService) Create(ctx context.Context, userID int64, req dto.CreateOrderRequest) (*model.Order, error) {
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: amount(it.Price)})
	}
	order := &model.Order{
		UserID:          userID,
		TotalAmount:     amount(req.TotalAmount),
		ShippingAddress: req.ShippingAddress,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Items:           items,
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownProduct) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	publish(ctx, s.publisher, s.metrics, model.NewOrderEvent(model.EventOrderCreated, order, ""))

	created, err := s.store.Orders().GetForUser(ctx, order.ID, userID)
	if err != nil || created == nil {
		logging.FromContext(ctx).Warn("reload created order", "order_id", order.ID, "error", err)
		return order, nil
	}
	return created, nil
}

func (s *OrderService) GetByID(ctx context.Context, orderID, userID int64) (*model.Order, error) {
	order, err := s.store.Orders().GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// publish sends ev after the owning transaction committed. Delivery is best
// effort: a broker failure is logged and counted, never returned.
func publish(ctx context.Context, p events.Publisher, m *metrics.Metrics, ev model.OrderEvent) {
	err := p.Publish(ctx, ev)
	m.EventPublished(string(ev.Type), err)
	if err != nil {
		logging.FromContext(ctx).Error("publish order event",
			"event_type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

// amount dereferences a bound money field; binding guarantees presence.
func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
