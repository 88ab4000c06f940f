package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProcessor talks to Stripe through its own API client, so several
// processors with different keys can coexist in one process.
type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProcessor(secretKey, webhookSecret string) *StripeProcessor {
	return &StripeProcessor{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, c Customer) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(c.Email),
		Name:  stripe.String(c.Name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(c.UserID, 10))

	cust, err := p.api.Customers.New(params)
	if err != nil {
		return "", upstream("create customer", err)
	}
	return cust.ID, nil
}

func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, upstream("create payment intent", err)
	}
	return toIntent(pi), nil
}

func (p *StripeProcessor) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, upstream("retrieve payment intent", err)
	}
	return toIntent(pi), nil
}

func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return parseStripeWebhook(payload, signature, p.webhookSecret)
}

func parseStripeWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidWebhook)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: EventType(event.Type)}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}
	var obj struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: invalid payload: %v", ErrInvalidWebhook, err)
	}
	if obj.Object == "payment_intent" {
		out.IntentID = obj.ID
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	in := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
	if pi.Customer != nil {
		in.CustomerID = pi.Customer.ID
	}
	return in
}

func upstream(op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		return fmt.Errorf("%w: failed to %s: %s", ErrProcessor, op, serr.Msg)
	}
	return fmt.Errorf("%w: failed to %s: %v", ErrProcessor, op, err)
}
