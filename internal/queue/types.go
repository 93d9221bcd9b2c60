package queue

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is an in-flight message passed through the consume pipeline
type Message struct {
	ID      string
	Body    []byte
	Headers amqp.Table

	// Delivery is set by the consumer adapter when the message was delivered by the broker.
	// Messages synthesized inside the pipeline carry no delivery context.
	Delivery *DeliveryContext
}

// DeliveryContext correlates a message with the channel it was delivered on.
// Tag is only meaningful relative to Channel.
type DeliveryContext struct {
	Tag         uint64
	Redelivered bool
	Channel     *ChannelHandle
}

// ChannelHandle is a borrowed reference to the broker channel a delivery arrived on.
// The consumer owns the channel; stages must never close it.
type ChannelHandle struct {
	ID    string
	Acker amqp.Acknowledger
}

func (h *ChannelHandle) String() string {
	if h == nil {
		return "<nil>"
	}

	return h.ID
}

// Stage is one step of the consume pipeline
type Stage interface {
	Process(ctx context.Context, msg *Message) (*Message, error)
}

// StageFunc adapts a function to a Stage
type StageFunc func(ctx context.Context, msg *Message) (*Message, error)

func (f StageFunc) Process(ctx context.Context, msg *Message) (*Message, error) {
	return f(ctx, msg)
}

// AckStats provides statistics about manual acknowledgments
type AckStats struct {
	Acked           int64  `json:"acked"`
	Skipped         int64  `json:"skipped"`
	Failed          int64  `json:"failed"`
	LastDeliveryTag uint64 `json:"last_delivery_tag"`
	LastChannel     string `json:"last_channel"`
}
