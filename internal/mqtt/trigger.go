package mqtt

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Trigger starts a synchronization run unless one is already in progress
type Trigger interface {
	TryRun(ctx context.Context) bool
}

// TriggerConsumer forces a synchronization run whenever a message arrives on
// the configured topic. Payload content is ignored; the message itself is
// the trigger.
type TriggerConsumer struct {
	client *Client
	runner Trigger
	topic  string
	logger *zap.Logger
}

func NewTriggerConsumer(client *Client, runner Trigger, topic string, logger *zap.Logger) *TriggerConsumer {
	return &TriggerConsumer{
		client: client,
		runner: runner,
		topic:  topic,
		logger: logger,
	}
}

// Start subscribes and blocks until the context is cancelled
func (c *TriggerConsumer) Start(ctx context.Context) error {
	if c.topic == "" {
		return fmt.Errorf("MQTT trigger topic not configured")
	}

	handler := func(topic string, payload []byte) error {
		c.logger.Info("Synchronization triggered via MQTT", zap.String("topic", topic))
		c.runner.TryRun(ctx)
		return nil
	}
	if err := c.client.Subscribe(c.topic, 1, handler); err != nil {
		return fmt.Errorf("failed to subscribe to trigger topic: %w", err)
	}

	c.logger.Info("MQTT trigger consumer started", zap.String("topic", c.topic))
	<-ctx.Done()
	return nil
}

// Stop unsubscribes from the trigger topic
func (c *TriggerConsumer) Stop() {
	if c.topic != "" {
		if err := c.client.Unsubscribe(c.topic); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}
	c.logger.Info("MQTT trigger consumer stopped")
}
