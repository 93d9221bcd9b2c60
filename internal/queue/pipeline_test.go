package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPipeline_RunPassesMessageThrough(t *testing.T) {
	acker := &MockAcknowledger{}
	acker.On("Ack", uint64(42), false).Return(nil).Once()

	var seen []string
	record := func(name string) Stage {
		return StageFunc(func(_ context.Context, msg *Message) (*Message, error) {
			seen = append(seen, name)
			return msg, nil
		})
	}

	p := NewPipeline(record("before"), NewAcknowledger(WithLogger(zerolog.Nop())), record("after"))
	msg := &Message{ID: "M1", Delivery: &DeliveryContext{Tag: 42, Channel: &ChannelHandle{ID: "C1", Acker: acker}}}

	out, err := p.Run(context.Background(), msg)
	require.NoError(t, err)

	assert.Same(t, msg, out)
	assert.Equal(t, []string{"before", "after"}, seen)
	acker.AssertExpectations(t)
}

func TestPipeline_RunStopsOnError(t *testing.T) {
	acker := &MockAcknowledger{}
	failing := StageFunc(func(_ context.Context, _ *Message) (*Message, error) {
		return nil, errors.New("decode failed")
	})

	p := NewPipeline(failing, NewAcknowledger(WithLogger(zerolog.Nop())))
	msg := &Message{Delivery: &DeliveryContext{Tag: 1, Channel: &ChannelHandle{ID: "C1", Acker: acker}}}

	out, err := p.Run(context.Background(), msg)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "pipeline stage 0")
	acker.AssertNotCalled(t, "Ack", mock.Anything, mock.Anything)
}

func TestPipeline_RunStopsWhenConsumed(t *testing.T) {
	called := false
	drop := StageFunc(func(_ context.Context, _ *Message) (*Message, error) {
		return nil, nil
	})
	next := StageFunc(func(_ context.Context, msg *Message) (*Message, error) {
		called = true
		return msg, nil
	})

	out, err := NewPipeline(drop, next).Run(context.Background(), &Message{})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, called)
}
