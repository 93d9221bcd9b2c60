package queue

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// HealthChecker is implemented by RabbitMQClient
type HealthChecker interface {
	IsHealthy() bool
	Ping() error
}

// WorkerCounter is implemented by Consumer
type WorkerCounter interface {
	LiveWorkers() int
}

// AckMonitor counts acknowledgment outcomes. It implements AckObserver.
type AckMonitor struct {
	client   HealthChecker
	consumer WorkerCounter

	acked   atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64

	mutex           sync.RWMutex
	lastDeliveryTag uint64
	lastChannel     string
}

// NewAckMonitor creates a new monitor; client may be nil when no broker is used.
func NewAckMonitor(client HealthChecker) *AckMonitor {
	return &AckMonitor{client: client}
}

// WatchConsumer makes HealthCheck fail once consumer has no live workers left.
func (m *AckMonitor) WatchConsumer(consumer WorkerCounter) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.consumer = consumer
}

func (m *AckMonitor) Acked(deliveryTag uint64, channel string) {
	m.acked.Add(1)

	m.mutex.Lock()
	m.lastDeliveryTag = deliveryTag
	m.lastChannel = channel
	m.mutex.Unlock()
}

func (m *AckMonitor) Skipped(_ string) {
	m.skipped.Add(1)
}

// Failed only counts; the error itself is reported by whoever receives it.
func (m *AckMonitor) Failed(_ uint64, _ error) {
	m.failed.Add(1)
}

// GetStats returns a snapshot of the counters
func (m *AckMonitor) GetStats() AckStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return AckStats{
		Acked:           m.acked.Load(),
		Skipped:         m.skipped.Load(),
		Failed:          m.failed.Load(),
		LastDeliveryTag: m.lastDeliveryTag,
		LastChannel:     m.lastChannel,
	}
}

// ExportMetrics returns the stats as JSON
func (m *AckMonitor) ExportMetrics() ([]byte, error) {
	return json.Marshal(m.GetStats())
}

// HealthCheck verifies the broker connection and, if watched, that the consumer still has workers
func (m *AckMonitor) HealthCheck(_ context.Context) error {
	if m.client == nil || !m.client.IsHealthy() {
		return ErrClientNotReady
	}

	if err := m.client.Ping(); err != nil {
		return err
	}

	m.mutex.RLock()
	consumer := m.consumer
	m.mutex.RUnlock()

	if consumer != nil && consumer.LiveWorkers() == 0 {
		return ErrNoLiveWorkers
	}

	return nil
}
