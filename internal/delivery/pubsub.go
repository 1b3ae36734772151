package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
)

const ChannelPubSub = "pubsub"

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// PubSubChannel relays the payload to the notification topic for other
// consumers. With message ordering enabled on the publisher, messages for one
// recipient keep their order.
type PubSubChannel struct {
	pub     publisher
	ordered bool
}

func NewPubSubChannel(pub *gcppubsub.Publisher) (*PubSubChannel, error) {
	if pub == nil {
		return nil, fmt.Errorf("notification publisher required")
	}
	return &PubSubChannel{pub: &gcpPublisher{Publisher: pub}, ordered: pub.EnableMessageOrdering}, nil
}

func (c *PubSubChannel) Name() string { return ChannelPubSub }

func (c *PubSubChannel) Send(ctx context.Context, payload mutationevent.NotificationPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type":   string(payload.Type),
			"recipient_id": payload.RecipientID.String(),
		},
	}
	if c.ordered {
		msg.OrderingKey = payload.RecipientID.String()
	}
	result := c.pub.Publish(ctx, msg)
	if result == nil {
		return fmt.Errorf("publisher unavailable")
	}
	if _, err := result.Get(ctx); err != nil {
		// A failed ordered publish pauses the key until resumed.
		if msg.OrderingKey != "" {
			c.pub.ResumePublish(msg.OrderingKey)
		}
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}
