// Package messaging runs the Kafka consumer group feeding the reconciler.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/config"
	"github.com/vndex/engine-reconciler/internal/engine"
	"github.com/vndex/engine-reconciler/internal/models"
)

// Dispatcher is the consumer's view of the reconciliation core. The returned
// error is the event's terminal outcome for the audit trail; the dispatcher
// has already logged it.
type Dispatcher interface {
	Dispatch(ctx context.Context, topic string, raw []byte) error
}

// Consumer owns one kafka-go reader per engine topic, all in the same
// consumer group. Delivery is at-least-once and possibly out of order across
// partitions; the handlers are idempotent, so a message is never retried
// here — redelivery is the retry.
type Consumer struct {
	cfg        config.KafkaConfig
	db         *gorm.DB
	dispatcher Dispatcher
	log        *zap.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
	wg      sync.WaitGroup
}

// NewConsumer builds the consumer; Start actually connects.
func NewConsumer(cfg config.KafkaConfig, db *gorm.DB, dispatcher Dispatcher, log *zap.Logger) *Consumer {
	return &Consumer{cfg: cfg, db: db, dispatcher: dispatcher, log: log}
}

// Start spawns one read loop per topic. The loops stop when ctx is
// cancelled; Wait blocks until they have drained.
func (c *Consumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range engine.AllTopics() {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			GroupID:  c.cfg.GroupID,
			Topic:    string(topic),
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				c.log.Error(fmt.Sprintf(msg, args...), zap.String("topic", string(topic)))
			}),
		})
		c.readers = append(c.readers, reader)
		c.wg.Add(1)
		go c.run(ctx, reader, topic)
	}
	c.log.Info("kafka consumer started",
		zap.Strings("brokers", c.cfg.Brokers),
		zap.String("group_id", c.cfg.GroupID),
		zap.Int("topics", len(c.readers)))
}

func (c *Consumer) run(ctx context.Context, reader *kafka.Reader, topic engine.Topic) {
	defer c.wg.Done()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			c.log.Error("kafka read failed", zap.String("topic", string(topic)), zap.Error(err))
			continue
		}
		c.process(ctx, topic, msg)
	}
}

// process records the inbound audit row, dispatches, and stamps the outcome.
// Audit bookkeeping failures are logged but never block consumption.
func (c *Consumer) process(ctx context.Context, topic engine.Topic, msg kafka.Message) {
	eventID := correlationID(topic, msg)
	if err := audit.RecordInbound(c.db, eventID, topic, msg.Value); err != nil {
		c.log.Warn("failed to record inbound event",
			zap.String("topic", string(topic)),
			zap.String("event_id", eventID),
			zap.Error(err))
	}

	status := models.KafkaEventStatusProcessed
	if err := c.dispatcher.Dispatch(ctx, string(topic), msg.Value); err != nil {
		status = models.KafkaEventStatusFailed
	}

	if err := audit.MarkStatus(c.db, eventID, topic, status); err != nil {
		c.log.Warn("failed to mark event status",
			zap.String("topic", string(topic)),
			zap.String("event_id", eventID),
			zap.String("status", status),
			zap.Error(err))
	}
}

// correlationID picks the audit id for a message: the payload's own event id
// when it carries one, then the Kafka key, then the partition/offset address.
func correlationID(topic engine.Topic, msg kafka.Message) string {
	var head struct {
		InputEventID string `json:"inputEventId"`
		EventID      string `json:"eventId"`
		MessageID    string `json:"messageId"`
	}
	if err := json.Unmarshal(msg.Value, &head); err == nil {
		for _, id := range []string{head.InputEventID, head.EventID, head.MessageID} {
			if id != "" {
				return id
			}
		}
	}
	if len(msg.Key) > 0 {
		return string(msg.Key)
	}
	return fmt.Sprintf("%s-%d-%d", topic, msg.Partition, msg.Offset)
}

// Close shuts the readers down and waits for the loops to exit.
func (c *Consumer) Close() error {
	c.mu.Lock()
	var lastErr error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil {
			lastErr = err
			c.log.Error("failed to close reader", zap.Error(err))
		}
	}
	c.mu.Unlock()
	c.wg.Wait()
	return lastErr
}
