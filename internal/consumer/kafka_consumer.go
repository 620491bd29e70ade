package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/weiawesome/chatty/internal/config"
	"github.com/weiawesome/chatty/internal/domain"
	"github.com/weiawesome/chatty/internal/persist"
	"github.com/weiawesome/chatty/pkg/log"
)

// Consumer reads chat messages produced by the broadcast server and
// persists them.
type Consumer struct {
	consumer *kafka.Consumer
	topic    string
	groupID  string
	saver    persist.Saver
}

func NewConsumer(cfg config.KafkaConfig, saver persist.Saver) (*Consumer, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":       cfg.Brokers,
		"group.id":                cfg.GroupID,
		"auto.offset.reset":       cfg.AutoOffsetReset,
		"enable.auto.commit":      true,
		"auto.commit.interval.ms": 5000,
		"max.poll.interval.ms":    cfg.MaxPollIntervalMs,
		"session.timeout.ms":      cfg.SessionTimeoutMs,
		"heartbeat.interval.ms":   cfg.HeartbeatIntervalMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	return &Consumer{
		consumer: c,
		topic:    cfg.Topic,
		groupID:  cfg.GroupID,
		saver:    saver,
	}, nil
}

// Run polls until ctx is cancelled or a fatal Kafka error occurs.
func (c *Consumer) Run(ctx context.Context) error {
	l := log.Ctx(ctx)

	if err := c.consumer.Subscribe(c.topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", c.topic, err)
	}
	l.Info().Str("topic", c.topic).Str("group", c.groupID).Msg("kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("kafka consumer stopping")
			return nil
		default:
		}

		ev := c.consumer.Poll(500)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			if err := c.handleMessage(ctx, e.Value); err != nil {
				l.Error().Err(err).
					Int32("partition", e.TopicPartition.Partition).
					Str("offset", e.TopicPartition.Offset.String()).
					Msg("failed to handle message")
			}
		case kafka.Error:
			l.Error().Err(e).Int("code", int(e.Code())).Bool("fatal", e.IsFatal()).Msg("kafka error")
			if e.IsFatal() {
				return fmt.Errorf("fatal kafka error: %w", e)
			}
		default:
			// rebalances and commit acknowledgements
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var msg domain.ChatMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.ID == "" || msg.RoomID == "" {
		return fmt.Errorf("message missing id or room id")
	}

	if err := c.saver.Save(ctx, &msg); err != nil {
		return fmt.Errorf("failed to persist message: %w", err)
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldRoomID, msg.RoomID).Str(log.FieldMessageID, msg.ID).Msg("persisted message")
	return nil
}

func (c *Consumer) Close() error {
	l := log.L()
	l.Info().Msg("closing kafka consumer")
	return c.consumer.Close()
}
