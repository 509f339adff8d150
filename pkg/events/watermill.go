// Package events is the Postgres-backed pub/sub bus that carries shell
// install requests from the api process to the worker.
//
// Subscribers sharing a ConsumerGroup split the messages between them, so
// each install request is handled by one worker. Handlers must tolerate
// redelivery: a failing handler is retried with backoff and then Nacked.
//
// Trace context travels in message metadata, so a worker span continues the
// api span that published the message.
//
// A bus built with NewEventBusWithForwarder writes every message to a durable
// outbox topic first; the forwarder started by StartForwarder moves it to the
// real topic. Publish returning nil then means the message is in Postgres,
// even if the process dies before the worker sees it.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	errBuffer       = 100
	outboxTopic     = "unitprice_outbox"
)

// Handler processes one delivered message.
type Handler func(context.Context, *message.Message) error

// EventBus publishes and consumes messages through watermill's SQL transport.
type EventBus struct {
	publisher  message.Publisher // wrapped in an outbox envelope in forwarder mode
	subscriber message.Subscriber
	db         *sql.DB
	log        logger.Logger
	wg         sync.WaitGroup

	// outbox opens the forwarder's own subscriber and target publisher. It
	// is nil unless the bus was built in forwarder mode.
	outbox func() (message.Subscriber, message.Publisher, error)
	fwd    *forwarder.Forwarder
}

// NewEventBus opens cfg.DatabaseURL and builds the publisher and subscriber.
// Watermill creates its topic and offset tables on first use. Publish goes
// straight to the target topic; the worker uses this form since it only
// consumes.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, false)
}

// NewEventBusWithForwarder is NewEventBus with outbox delivery. Call
// StartForwarder before relying on published messages reaching subscribers.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(cfg, log, true)
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	wlog := &slogAdapter{log: log}

	pub, err := watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	sub, err := watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    cfg.ServiceName + "-consumer",
		},
		wlog,
	)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	bus := newBus(pub, sub, db, log)
	if useForwarder {
		bus.withOutbox(func() (message.Subscriber, message.Publisher, error) {
			return newSQLOutbox(db, cfg.ServiceName, wlog)
		})
	}
	return bus, nil
}

func newBus(pub message.Publisher, sub message.Subscriber, db *sql.DB, log logger.Logger) *EventBus {
	return &EventBus{publisher: pub, subscriber: sub, db: db, log: log}
}

// withOutbox switches the bus to forwarder mode. open supplies the pair the
// forwarder drains the outbox topic with.
func (q *EventBus) withOutbox(open func() (message.Subscriber, message.Publisher, error)) {
	q.publisher = forwarder.NewPublisher(q.publisher, forwarder.PublisherConfig{
		ForwarderTopic: outboxTopic,
	})
	q.outbox = open
}

// newSQLOutbox returns a subscriber on the outbox topic, in a consumer group
// of its own so api instances share the forwarding work, and a plain
// publisher for final delivery.
func newSQLOutbox(db *sql.DB, service string, wlog watermill.LoggerAdapter) (message.Subscriber, message.Publisher, error) {
	sub, err := watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    service + "-forwarder",
		},
		wlog,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("events: new outbox subscriber: %w", err)
	}
	pub, err := watermillsql.NewPublisher(
		db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("events: new outbox publisher: %w", err)
	}
	return sub, pub, nil
}

// StartForwarder runs the outbox forwarder until ctx is done or the bus is
// closed. It returns once the forwarder is consuming. It may be called once,
// and only on a bus built with NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if q.outbox == nil {
		return fmt.Errorf("events: StartForwarder called on a bus without an outbox")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	sub, pub, err := q.outbox()
	if err != nil {
		return err
	}
	fwd, err := forwarder.NewForwarder(sub, pub, &slogAdapter{log: q.log}, forwarder.Config{
		ForwarderTopic: outboxTopic,
	})
	if err != nil {
		_ = sub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started", "outbox_topic", outboxTopic)
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// NewJSONMessage encodes v as the payload of a new message.
func NewJSONMessage(v any) (*message.Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("events: encode payload: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// DecodeJSON decodes the payload of msg into v.
func DecodeJSON(msg *message.Message, v any) error {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("events: decode message %s: %w", msg.UUID, err)
	}
	return nil
}

// Publish sends msgs to topic with the trace context of ctx attached.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// PublishJSON encodes v and publishes it to topic.
func (q *EventBus) PublishJSON(ctx context.Context, topic string, v any) error {
	msg, err := NewJSONMessage(v)
	if err != nil {
		return err
	}
	return q.Publish(ctx, topic, msg)
}

// Subscribe runs handler for every message on topic until ctx is done.
//
// A message is Acked when handler returns nil. Failures are retried
// maxRetries times with doubling delay, then the message is Nacked and the
// error is sent on the returned channel. Callers must drain that channel;
// errors are dropped and logged when it is full.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBuffer)
	propagator := otel.GetTextMapPropagator()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			carrier := propagation.MapCarrier{}
			for k, v := range msg.Metadata {
				carrier[k] = v
			}
			msgCtx := propagator.Extract(ctx, carrier)

			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
				continue
			}
			msg.Ack()
		}
	}()

	return errCh, nil
}

func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"message_id", msg.UUID,
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", maxRetries, err)
}

// Ping checks the bus database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if q.db == nil {
		return nil
	}
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and the forwarder, waits up to shutdownTimeout
// for in-flight handlers and then closes the publisher and the database.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	if q.db == nil {
		return nil
	}
	return q.db.Close()
}

// slogAdapter lets watermill log through logger.Logger.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
