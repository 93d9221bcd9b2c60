package queue

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func countLevel(buf *bytes.Buffer, level string) int {
	return strings.Count(buf.String(), `"level":"`+level+`"`)
}

func TestAcknowledger_Process_Acks(t *testing.T) {
	// M1: deliveryId=42, channel=C1, multiple=false
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(42), false).Return(nil).Once()

	var buf bytes.Buffer
	a := NewAcknowledger(WithLogger(newTestLogger(&buf)))
	msg := &Message{
		ID:       "M1",
		Body:     []byte(`{"hello":"world"}`),
		Delivery: &DeliveryContext{Tag: 42, Channel: &ChannelHandle{ID: "C1", Acker: acker}},
	}

	out, err := a.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Same(t, msg, out)
	assert.Equal(t, []byte(`{"hello":"world"}`), out.Body)
	acker.AssertExpectations(t)
	acker.AssertNumberOfCalls(t, "Ack", 1)

	assert.Equal(t, 1, countLevel(&buf, "debug"))
	assert.Contains(t, buf.String(), `"delivery_tag":42`)
	assert.Contains(t, buf.String(), `"channel":"C1"`)
}

func TestAcknowledger_Process_Multiple(t *testing.T) {
	// M4: multiple=true, deliveryId=99, channel=C2
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(99), true).Return(nil).Once()

	a := NewAcknowledger(WithMultiple(true), WithLogger(zerolog.Nop()))
	assert.True(t, a.Multiple())

	msg := &Message{ID: "M4", Delivery: &DeliveryContext{Tag: 99, Channel: &ChannelHandle{ID: "C2", Acker: acker}}}

	out, err := a.Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Same(t, msg, out)
	acker.AssertExpectations(t)
}

func TestAcknowledger_Process_MultipleIsPerInstance(t *testing.T) {
	for _, multiple := range []bool{false, true} {
		acker := &MockAcknowledger{}
		acker.On("Ack", mock.Anything, multiple).Return(nil)

		a := NewAcknowledger(WithMultiple(multiple), WithLogger(zerolog.Nop()))
		channel := &ChannelHandle{ID: "C1", Acker: acker}

		for tag := uint64(1); tag <= 3; tag++ {
			// per message content never changes the flag
			msg := &Message{
				Headers:  amqp.Table{"multiple": !multiple},
				Delivery: &DeliveryContext{Tag: tag, Channel: channel},
			}
			_, err := a.Process(context.Background(), msg)
			require.NoError(t, err)
		}

		acker.AssertNumberOfCalls(t, "Ack", 3)
		acker.AssertNotCalled(t, "Ack", mock.Anything, !multiple)
	}
}

func TestAcknowledger_Process_SkipsWithoutDeliveryTag(t *testing.T) {
	// M2: no deliveryId
	acker := &MockAcknowledger{}

	var buf bytes.Buffer
	a := NewAcknowledger(WithLogger(newTestLogger(&buf)))
	msg := &Message{ID: "M2", Body: []byte("synthesized")}

	out, err := a.Process(context.Background(), msg)
	require.NoError(t, err)

	assert.Same(t, msg, out)
	acker.AssertNotCalled(t, "Ack", mock.Anything, mock.Anything)
	assert.Equal(t, 1, countLevel(&buf, "warn"))
	assert.Contains(t, buf.String(), `"action":"ack"`)
}

func TestAcknowledger_Process_FailsWithoutChannel(t *testing.T) {
	// M3: deliveryId=7, no channel
	var buf bytes.Buffer
	a := NewAcknowledger(WithLogger(newTestLogger(&buf)))
	msg := &Message{ID: "M3", Delivery: &DeliveryContext{Tag: 7}}

	out, err := a.Process(context.Background(), msg)
	require.Error(t, err)
	assert.Nil(t, out)

	assert.True(t, errors.Is(err, ErrMissingChannel))
	var missing *MissingChannelError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ack", missing.Action)
	assert.Equal(t, uint64(7), missing.DeliveryTag)
	assert.Empty(t, buf.String())
}

func TestAcknowledger_Process_WrapsBrokerError(t *testing.T) {
	cause := amqp.ErrClosed
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(13), false).Return(cause).Once()

	var buf bytes.Buffer
	a := NewAcknowledger(WithLogger(newTestLogger(&buf)))
	msg := &Message{ID: "M5", Delivery: &DeliveryContext{Tag: 13, Channel: &ChannelHandle{ID: "C3", Acker: acker}}}

	out, err := a.Process(context.Background(), msg)
	require.Error(t, err)
	assert.Nil(t, out)

	var ackErr *AckError
	require.ErrorAs(t, err, &ackErr)
	assert.Equal(t, uint64(13), ackErr.DeliveryTag)
	assert.Equal(t, "C3", ackErr.Channel)
	assert.True(t, errors.Is(err, ErrAckFailed))
	assert.True(t, errors.Is(err, amqp.ErrClosed))
	assert.Contains(t, err.Error(), "deliveryTag: 13 on channel: C3")

	// exactly one attempt, nothing logged on failure
	acker.AssertNumberOfCalls(t, "Ack", 1)
	assert.Empty(t, buf.String())
}

func TestAcknowledger_Ack_ExplicitMultiple(t *testing.T) {
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(5), true).Return(nil).Once()

	a := NewAcknowledger(WithLogger(zerolog.Nop()))
	msg := &Message{Delivery: &DeliveryContext{Tag: 5, Channel: &ChannelHandle{ID: "C1", Acker: acker}}}

	res, err := a.Ack(msg, true)
	require.NoError(t, err)
	assert.Equal(t, ResolutionOK, res.Kind)
	acker.AssertExpectations(t)

	res, err = a.Ack(&Message{}, true)
	require.NoError(t, err)
	assert.Equal(t, ResolutionSkip, res.Kind)
}

func TestAcknowledger_Observer(t *testing.T) {
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(1), false).Return(nil).Once()
	acker.On("Ack", uint64(2), false).Return(errors.New("channel/connection is not open")).Once()

	monitor := NewAckMonitor(nil)
	a := NewAcknowledger(WithLogger(zerolog.Nop()), WithObserver(monitor))
	channel := &ChannelHandle{ID: "C1", Acker: acker}

	_, err := a.Process(context.Background(), &Message{Delivery: &DeliveryContext{Tag: 1, Channel: channel}})
	require.NoError(t, err)
	_, err = a.Process(context.Background(), &Message{Delivery: &DeliveryContext{Tag: 2, Channel: channel}})
	require.Error(t, err)
	_, err = a.Process(context.Background(), &Message{})
	require.NoError(t, err)
	_, err = a.Process(context.Background(), &Message{Delivery: &DeliveryContext{Tag: 3}})
	require.Error(t, err)

	stats := monitor.GetStats()
	assert.Equal(t, int64(1), stats.Acked)
	assert.Equal(t, int64(1), stats.Skipped)
	assert.Equal(t, int64(2), stats.Failed)
	assert.Equal(t, uint64(1), stats.LastDeliveryTag)
	assert.Equal(t, "C1", stats.LastChannel)
}
