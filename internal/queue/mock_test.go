package queue

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

// MockAcknowledger for testing
type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	args := m.Called(tag, multiple)
	return args.Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	args := m.Called(tag, multiple, requeue)
	return args.Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	args := m.Called(tag, requeue)
	return args.Error(0)
}

// fakeChannel is a consumer channel fed from a test owned delivery channel
type fakeChannel struct {
	*MockAcknowledger

	deliveries chan amqp.Delivery
	consumeErr error

	mu       sync.Mutex
	consumer string
	closed   bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		MockAcknowledger: &MockAcknowledger{},
		deliveries:       make(chan amqp.Delivery, 8),
	}
}

func (f *fakeChannel) Consume(_ string, consumer string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	f.consumer = consumer
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func (f *fakeChannel) consumerTag() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.consumer
}

type fakeOpener struct {
	channels []*fakeChannel
	next     int
	err      error
}

func (o *fakeOpener) OpenChannel(_ int) (ConsumerChannel, error) {
	if o.err != nil {
		return nil, o.err
	}
	ch := o.channels[o.next]
	o.next++
	return ch, nil
}
