package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/events"
	"github.com/flicky/storefront-api/internal/logging"
	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/payment"
	"github.com/flicky/storefront-api/internal/repository"
)

var (
	ErrStripeDisabled          = errors.New("stripe is disabled. Set PAYMENT_MODE=stripe to enable")
	ErrOrderIDRequired         = errors.New("order id is required")
	ErrPaymentIntentIDRequired = errors.New("payment intent id is required")
	ErrOrderAlreadyPaid        = errors.New("order is already paid")
)

// Payment channels, as reported in logs, metrics and events.
const (
	ChannelConfirm = "confirm"
	ChannelWebhook = "webhook"
	ChannelMock    = "mock"
)

const (
	maxTransitionAttempts = 3
	webhookMarkerTTL      = 24 * time.Hour

	mockApprovedMessage    = "Payment processed successfully"
	mockDeclinedMessage    = "Payment failed. Use a card number starting with 4."
	mockAlreadyPaidMessage = "Order is already paid"
)

// PaymentService drives the order/payment state machine from the three
// channels: confirmation polls, processor webhooks and mock payments. Each
// channel reads the order, computes the next state and writes it with a
// conditional update in one transaction, clearing the owner's cart when the
// order becomes paid.
type PaymentService struct {
	store       repository.Store
	processor   payment.Processor
	redisClient *redis.Client
	publisher   events.Publisher
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	currency    string
	now         func() time.Time
}

// NewPaymentService wires the payment lifecycle. A nil processor means the
// processor-backed endpoints are disabled and only mock payments work.
func NewPaymentService(
	store repository.Store,
	processor payment.Processor,
	redisClient *redis.Client,
	publisher events.Publisher,
	m *metrics.Metrics,
	tracer trace.Tracer,
	currency string,
) *PaymentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if tracer == nil {
		tracer = otel.Tracer("storefront/payment")
	}
	return &PaymentService{
		store:       store,
		processor:   processor,
		redisClient: redisClient,
		publisher:   publisher,
		metrics:     m,
		tracer:      tracer,
		currency:    currency,
		now:         time.Now,
	}
}

func (s *PaymentService) StripeEnabled() bool { return s.processor != nil }

// CreateIntent opens a processor payment intent for one of the caller's
// orders, creating the caller's processor customer on first use.
func (s *PaymentService) CreateIntent(ctx context.Context, user *model.User, req dto.CreatePaymentIntentRequest) (_ *dto.PaymentIntentResponse, err error) {
	if s.processor == nil {
		return nil, ErrStripeDisabled
	}
	if req.OrderID == 0 {
		return nil, ErrOrderIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "payment.create_intent",
		trace.WithAttributes(attribute.Int64("order.id", req.OrderID)))
	defer func() { endSpan(span, err) }()

	order, err := s.store.Orders().GetForUser(ctx, req.OrderID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.State().Paid() {
		return nil, ErrOrderAlreadyPaid
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	intent, err := s.processor.CreatePaymentIntent(ctx, payment.IntentRequest{
		Amount:     model.MinorUnits(order.TotalAmount),
		Currency:   s.currency,
		CustomerID: customerID,
		Metadata: map[string]string{
			"order_id": strconv.FormatInt(order.ID, 10),
			"user_id":  strconv.FormatInt(user.ID, 10),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Orders().AttachPaymentIntent(ctx, order.ID, intent.ID, customerID); err != nil {
		return nil, fmt.Errorf("attach payment intent: %w", err)
	}
	logging.FromContext(ctx).Info("payment intent created",
		"order_id", order.ID, "payment_intent_id", intent.ID)

	return &dto.PaymentIntentResponse{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

func (s *PaymentService) ensureCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.PaymentCustomerID != "" {
		return user.PaymentCustomerID, nil
	}
	created, err := s.processor.CreateCustomer(ctx, payment.Customer{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return "", err
	}
	// A concurrent request may have stored a customer first; use that one.
	stored, err := s.store.Users().SetPaymentCustomerID(ctx, user.ID, created)
	if err != nil {
		return "", fmt.Errorf("store payment customer: %w", err)
	}
	user.PaymentCustomerID = stored
	return stored, nil
}

// Confirm polls the processor for the intent's status and applies it to the
// caller's order that carries the intent.
func (s *PaymentService) Confirm(ctx context.Context, userID int64, req dto.ConfirmPaymentRequest) (_ *dto.ConfirmPaymentResponse, err error) {
	if s.processor == nil {
		return nil, ErrStripeDisabled
	}
	if req.PaymentIntentID == "" {
		return nil, ErrPaymentIntentIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "payment.confirm",
		trace.WithAttributes(attribute.String("payment.intent_id", req.PaymentIntentID)))
	defer func() { endSpan(span, err) }()

	intent, err := s.processor.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	reported := model.NormalizePaymentStatus(intent.Status)

	order, err := s.transition(ctx, ChannelConfirm,
		func(ctx context.Context, tx repository.Store) (*model.Order, error) {
			return tx.Orders().GetByPaymentIntentForUser(ctx, req.PaymentIntentID, userID)
		},
		func(cur model.PaymentState) model.PaymentState {
			return model.ApplyProcessorStatus(cur, reported)
		}, "")
	if err != nil {
		return nil, err
	}
	return &dto.ConfirmPaymentResponse{
		OrderID:       order.ID,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.Status,
	}, nil
}

// HandleWebhook verifies and applies a processor notification. Events that
// are not about a payment outcome, or that name an unknown intent, are
// acknowledged without changes.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	if s.processor == nil {
		return ErrStripeDisabled
	}
	ev, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	log := logging.FromContext(ctx).With("event_id", ev.ID, "event_type", ev.Type)

	var reported model.PaymentStatus
	switch ev.Type {
	case payment.EventPaymentSucceeded:
		reported = model.PaymentStatusSucceeded
	case payment.EventPaymentFailed:
		reported = model.PaymentStatusFailed
	default:
		log.Debug("webhook event ignored")
		return nil
	}
	if ev.IntentID == "" {
		log.Warn("webhook event without payment intent")
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "payment.webhook", trace.WithAttributes(
		attribute.String("webhook.event_id", ev.ID),
		attribute.String("payment.intent_id", ev.IntentID),
	))
	defer func() { endSpan(span, err) }()

	marker := "webhook_event:" + ev.ID
	if s.seen(ctx, marker) {
		log.Info("duplicate webhook delivery skipped")
		return nil
	}

	_, err = s.transition(ctx, ChannelWebhook,
		func(ctx context.Context, tx repository.Store) (*model.Order, error) {
			return tx.Orders().GetByPaymentIntent(ctx, ev.IntentID)
		},
		func(cur model.PaymentState) model.PaymentState {
			return model.ApplyProcessorStatus(cur, reported)
		}, "")
	if errors.Is(err, ErrOrderNotFound) {
		log.Warn("webhook for unknown payment intent", "payment_intent_id", ev.IntentID)
		return nil
	}
	if err != nil {
		return err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, marker, "1", webhookMarkerTTL).Err(); err != nil {
			log.Warn("set webhook marker", "error", err)
		}
	}
	return nil
}

func (s *PaymentService) seen(ctx context.Context, marker string) bool {
	if s.redisClient == nil {
		return false
	}
	n, err := s.redisClient.Exists(ctx, marker).Result()
	if err != nil {
		logging.FromContext(ctx).Warn("check webhook marker", "error", err)
		return false
	}
	return n > 0
}

// MockPay settles one of the caller's orders without a processor. Cards whose
// number starts with 4 are approved. A declined card marks only the payment
// as failed so the order can be paid again; on a paid order it changes
// nothing and the response reports the order as paid.
func (s *PaymentService) MockPay(ctx context.Context, userID int64, req dto.MockPaymentRequest) (_ *dto.MockPaymentResponse, err error) {
	if req.OrderID == 0 {
		return nil, ErrOrderIDRequired
	}
	ctx, span := s.tracer.Start(ctx, "payment.mock",
		trace.WithAttributes(attribute.Int64("order.id", req.OrderID)))
	defer func() { endSpan(span, err) }()

	approved := payment.MockAuthorize(req.CardNumber)
	intentID := ""
	if approved {
		intentID = payment.MockIntentID(req.OrderID, s.now())
	}

	order, err := s.transition(ctx, ChannelMock,
		func(ctx context.Context, tx repository.Store) (*model.Order, error) {
			return tx.Orders().GetForUser(ctx, req.OrderID, userID)
		},
		func(cur model.PaymentState) model.PaymentState {
			return model.ApplyMockResult(cur, approved)
		}, intentID)
	if err != nil {
		return nil, err
	}

	// The response reflects the stored order, which a decline cannot reopen.
	if !order.State().Paid() {
		return &dto.MockPaymentResponse{Status: order.PaymentStatus, Message: mockDeclinedMessage}, nil
	}
	msg := mockApprovedMessage
	if !approved {
		msg = mockAlreadyPaidMessage
	}
	return &dto.MockPaymentResponse{
		Status:  model.PaymentStatusSucceeded,
		OrderID: order.ID,
		Message: msg,
	}, nil
}

type orderLocator func(ctx context.Context, tx repository.Store) (*model.Order, error)

// transition applies next to the located order inside one transaction. The
// write is conditional on the state that was read; if another request moved
// the order in between, the whole unit is retried against fresh state.
// intentID, when set, is stored along with a state change.
func (s *PaymentService) transition(
	ctx context.Context,
	channel string,
	locate orderLocator,
	next func(model.PaymentState) model.PaymentState,
	intentID string,
) (*model.Order, error) {
	log := logging.FromContext(ctx).With("channel", channel)

	var (
		order   *model.Order
		from    model.PaymentState
		changed bool
	)
	for attempt := 1; ; attempt++ {
		changed = false
		err := s.store.InTx(ctx, func(tx repository.Store) error {
			o, err := locate(ctx, tx)
			if err != nil {
				return err
			}
			if o == nil {
				return ErrOrderNotFound
			}
			order, from = o, o.State()

			to := next(from)
			if to == from {
				return nil
			}
			if err := tx.Orders().UpdatePaymentState(ctx, o.ID, from, to, intentID); err != nil {
				return err
			}
			if to.Paid() {
				if _, err := tx.Cart().ClearForUser(ctx, o.UserID); err != nil {
					return err
				}
			}
			o.Status, o.PaymentStatus = to.Status, to.Payment
			if intentID != "" {
				o.PaymentIntentID = intentID
			}
			changed = true
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		if errors.Is(err, repository.ErrStaleOrder) && attempt < maxTransitionAttempts {
			log.Debug("order changed concurrently, retrying", "attempt", attempt)
			continue
		}
		return nil, fmt.Errorf("apply payment transition: %w", err)
	}

	outcome := metrics.OutcomeNoop
	switch {
	case !changed:
	case order.PaymentStatus == model.PaymentStatusSucceeded:
		outcome = metrics.OutcomeSucceeded
		publish(ctx, s.publisher, s.metrics, model.NewOrderEvent(model.EventOrderPaymentSucceeded, order, channel))
	case order.PaymentStatus == model.PaymentStatusFailed:
		outcome = metrics.OutcomeFailed
		publish(ctx, s.publisher, s.metrics, model.NewOrderEvent(model.EventOrderPaymentFailed, order, channel))
	default:
		outcome = metrics.OutcomeRecorded
	}
	s.metrics.PaymentTransition(channel, outcome)

	log.Info("payment transition",
		"order_id", order.ID,
		"from_status", from.Status, "from_payment", from.Payment,
		"status", order.Status, "payment_status", order.PaymentStatus,
		"outcome", outcome)
	return order, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
