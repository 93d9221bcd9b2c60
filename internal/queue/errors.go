package queue

import (
	"errors"
	"fmt"
)

// Common queue errors
var (
	ErrMissingChannel  = errors.New("no channel attached to delivery")
	ErrAckFailed       = errors.New("failed to ack message")
	ErrClientNotReady  = errors.New("RabbitMQ client is not healthy")
	ErrConsumerStarted = errors.New("consumer already started")
	ErrConsumerStopped = errors.New("consumer stopped")
	ErrNoLiveWorkers   = errors.New("consumer has no live workers")
)

// MissingChannelError reports a delivery tag without the channel it was issued on.
type MissingChannelError struct {
	Action      string
	DeliveryTag uint64
}

func (e *MissingChannelError) Error() string {
	return fmt.Sprintf("cannot %s message w/deliveryTag: %d: %v", e.Action, e.DeliveryTag, ErrMissingChannel)
}

func (e *MissingChannelError) Is(target error) bool {
	return target == ErrMissingChannel
}

// AckError wraps a failed broker acknowledgment.
type AckError struct {
	DeliveryTag uint64
	Channel     string
	Err         error
}

func (e *AckError) Error() string {
	return fmt.Sprintf("failed to ack message w/deliveryTag: %d on channel: %s: %v", e.DeliveryTag, e.Channel, e.Err)
}

func (e *AckError) Unwrap() error {
	return e.Err
}

func (e *AckError) Is(target error) bool {
	return target == ErrAckFailed
}
