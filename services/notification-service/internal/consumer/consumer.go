package consumer

import (
	"context"
	"time"

	"github.com/carelane/hms/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Reader is the part of *kafka.Reader the consumer drives.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Inbox interface {
	Record(ctx context.Context, eventID string, eventType string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Consumer struct {
	reader  Reader
	logger  *zap.Logger
	inbox   Inbox
	handler Handler
	backoff time.Duration
}

type Config struct {
	Brokers []string
	GroupID string
	Topics  []string
}

func New(logger *zap.Logger, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	return NewWithReader(logger, inboxRepo, kafkax.NewReader(cfg.Brokers, cfg.GroupID, cfg.Topics), handler)
}

func NewWithReader(logger *zap.Logger, inboxRepo Inbox, reader Reader, handler Handler) *Consumer {
	return &Consumer{
		reader:  reader,
		logger:  logger.Named("consumer"),
		inbox:   inboxRepo,
		handler: handler,
		backoff: time.Second,
	}
}

// Run consumes until ctx is done. The offset is committed once the inbox
// claim and the handler both succeed, or when the event is a duplicate.
// A failing message is retried in place: committing a later offset would
// commit the failed one too.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", zap.Error(err))
			c.sleep(ctx)
			continue
		}
		for !c.handle(ctx, msg) {
			c.sleep(ctx)
			if ctx.Err() != nil {
				return
			}
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("kafka commit failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	log := c.logger.With(zap.String("event_id", meta.EventID), zap.String("event_type", meta.EventType))

	ok, err := c.inbox.Record(ctxSpan, meta.EventID, meta.EventType)
	if err != nil {
		log.Error("inbox record failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "inbox")
		return false
	}
	if !ok {
		log.Info("duplicate event ignored")
		return true
	}

	if err := c.handler(ctxSpan, msg); err != nil {
		log.Error("handler error", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler")
		if ferr := c.inbox.Forget(ctxSpan, meta.EventID); ferr != nil {
			log.Error("inbox release failed", zap.Error(ferr))
		}
		return false
	}
	return true
}

func (c *Consumer) sleep(ctx context.Context) {
	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
