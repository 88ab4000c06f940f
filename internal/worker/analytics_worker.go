package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/storefront-api/internal/events"
	"github.com/flicky/storefront-api/internal/metrics"
	"github.com/flicky/storefront-api/internal/model"
)

const (
	dlxExchange  = "orders.analytics.dlx"
	dlqQueueName = "orders.analytics.dlq"
)

// Consumed event results, as counted by metrics.EventsConsumed.
const (
	ResultRecorded = "recorded"
	ResultSkipped  = "skipped"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the
// delivery channel before ctx is done.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Recorder folds one order event into the sales aggregates. It reports
// whether the event was counted.
type Recorder interface {
	Record(ctx context.Context, ev model.OrderEvent) (bool, error)
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type AnalyticsWorker struct {
	channel  consumer
	queue    string
	recorder Recorder
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewAnalyticsWorker(ch *amqp.Channel, queue string, recorder Recorder, m *metrics.Metrics, log *slog.Logger) *AnalyticsWorker {
	return newAnalyticsWorker(ch, queue, recorder, m, log)
}

func newAnalyticsWorker(ch consumer, queue string, recorder Recorder, m *metrics.Metrics, log *slog.Logger) *AnalyticsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &AnalyticsWorker{channel: ch, queue: queue, recorder: recorder, metrics: m, log: log}
}

// SetupRabbitMQ declares the events exchange, the analytics queue with its
// DLX/DLQ, and binds the queue to paid-order events.
func SetupRabbitMQ(ch *amqp.Channel, queue string, prefetch int) error {
	if err := events.DeclareExchange(ch); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(dlxExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, queue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, string(model.EventOrderPaymentSucceeded), events.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", queue, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

// Run consumes until ctx is done or the broker closes the channel.
func (w *AnalyticsWorker) Run(ctx context.Context) error {
	msgs, err := w.channel.Consume(w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	w.log.Info("analytics worker started", "queue", w.queue)

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			w.processMessage(ctx, msg)
		case <-ctx.Done():
			w.log.Info("analytics worker stopped")
			return nil
		}
	}
}

func (w *AnalyticsWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var ev model.OrderEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		w.log.Error("unmarshal order event", "error", err, "message_id", msg.MessageId)
		w.metrics.EventConsumed(ResultInvalid)
		_ = msg.Nack(false, false) // → DLQ
		return
	}

	log := w.log.With("event_id", ev.ID, "event_type", ev.Type, "order_id", ev.OrderID)

	recorded, err := w.recorder.Record(ctx, ev)
	if err != nil {
		log.Error("record order event", "error", err)
		w.metrics.EventConsumed(ResultError)
		// Dead-lettered; replaying from the DLQ is the retry path.
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)

	if !recorded {
		log.Debug("order event skipped")
		w.metrics.EventConsumed(ResultSkipped)
		return
	}
	w.metrics.EventConsumed(ResultRecorded)
	log.Info("order event recorded")
}
