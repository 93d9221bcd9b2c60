package queue

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const ackAction = "ack"

// AckObserver is notified about every acknowledgment outcome
type AckObserver interface {
	Acked(deliveryTag uint64, channel string)
	Skipped(action string)
	Failed(deliveryTag uint64, err error)
}

// Acknowledger manually acks the message in flight, allowing fine control of message throttling.
// Messages without a delivery tag are passed through with a warning. A delivery tag without
// a channel is an error.
//
// Acknowledger does not serialize access to a channel. Callers must make sure a channel is
// used by one goroutine at a time, which Consumer does by owning one channel per worker.
type Acknowledger struct {
	multiple bool
	logger   zerolog.Logger
	observer AckObserver
}

type AcknowledgerOption func(*Acknowledger)

// WithMultiple makes each ack also cover every earlier unacknowledged delivery on the channel.
func WithMultiple(multiple bool) AcknowledgerOption {
	return func(a *Acknowledger) {
		a.multiple = multiple
	}
}

func WithLogger(logger zerolog.Logger) AcknowledgerOption {
	return func(a *Acknowledger) {
		a.logger = logger
	}
}

func WithObserver(observer AckObserver) AcknowledgerOption {
	return func(a *Acknowledger) {
		a.observer = observer
	}
}

// NewAcknowledger creates a new Acknowledger, single delivery acks unless WithMultiple is given
func NewAcknowledger(opts ...AcknowledgerOption) *Acknowledger {
	a := &Acknowledger{
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Multiple reports whether acks issued by Process cover prior deliveries.
func (a *Acknowledger) Multiple() bool {
	return a.multiple
}

// Process acks msg using the configured multiple flag and returns msg unchanged.
func (a *Acknowledger) Process(_ context.Context, msg *Message) (*Message, error) {
	if _, err := a.Ack(msg, a.multiple); err != nil {
		return nil, err
	}

	return msg, nil
}

// Ack acks msg on the channel it was delivered on. The returned Resolution tells
// whether a broker call was made (ResolutionOK) or skipped (ResolutionSkip).
func (a *Acknowledger) Ack(msg *Message, multiple bool) (Resolution, error) {
	res := Resolve(msg, ackAction)

	switch res.Kind {
	case ResolutionSkip:
		a.logger.Warn().
			Str("action", ackAction).
			Msg("Missing delivery tag, skipping manual channel action")
		if a.observer != nil {
			a.observer.Skipped(ackAction)
		}
		return res, nil
	case ResolutionFail:
		if a.observer != nil {
			a.observer.Failed(res.DeliveryTag, res.Err)
		}
		return res, res.Err
	}

	if err := res.Channel.Acker.Ack(res.DeliveryTag, multiple); err != nil {
		ackErr := &AckError{
			DeliveryTag: res.DeliveryTag,
			Channel:     res.Channel.String(),
			Err:         err,
		}
		if a.observer != nil {
			a.observer.Failed(res.DeliveryTag, ackErr)
		}
		return res, ackErr
	}

	a.logger.Debug().
		Uint64("delivery_tag", res.DeliveryTag).
		Str("channel", res.Channel.String()).
		Bool("multiple", multiple).
		Msg("Manually acknowledged message")

	if a.observer != nil {
		a.observer.Acked(res.DeliveryTag, res.Channel.String())
	}

	return res, nil
}
