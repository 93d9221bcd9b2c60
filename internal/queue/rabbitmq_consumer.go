package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// ConsumerChannel is the part of *amqp.Channel a consumer worker uses
type ConsumerChannel interface {
	amqp.Acknowledger
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// ChannelOpener opens channels owned by the caller
type ChannelOpener interface {
	OpenChannel(prefetch int) (ConsumerChannel, error)
}

// Consumer consumes a queue with manual acknowledgment and runs every delivery through a pipeline.
//
// Each worker opens its own channel and processes the deliveries of that channel sequentially,
// so every stage, the Acknowledger included, only ever touches a channel from its owning worker.
type Consumer struct {
	opener   ChannelOpener
	cfg      config.ConsumerConfig
	pipeline *Pipeline
	pool     *ants.Pool

	started atomic.Bool
	stopped atomic.Bool
	live    atomic.Int32
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewConsumer creates a new consumer with one pooled worker per configured channel
func NewConsumer(opener ChannelOpener, cfg config.ConsumerConfig, pipeline *Pipeline) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid consumer config: %w", err)
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithPreAlloc(true), ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Consumer{
		opener:   opener,
		cfg:      cfg,
		pipeline: pipeline,
		pool:     pool,
	}, nil
}

// Start opens the channels and starts consuming. It returns once every worker is running.
func (c *Consumer) Start(ctx context.Context) error {
	if c.stopped.Load() {
		return ErrConsumerStopped
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrConsumerStarted
	}

	ctx, c.cancel = context.WithCancel(ctx)

	for i := 0; i < c.cfg.Workers; i++ {
		if err := c.startWorker(ctx, i); err != nil {
			c.cancel()
			c.wg.Wait()
			return err
		}
	}

	log.Info().
		Str("queue", c.cfg.Queue).
		Int("workers", c.cfg.Workers).
		Int("prefetch", c.cfg.Prefetch).
		Msg("Consumer started")

	return nil
}

func (c *Consumer) startWorker(ctx context.Context, workerID int) error {
	ch, err := c.opener.OpenChannel(c.cfg.Prefetch)
	if err != nil {
		return fmt.Errorf("worker %d: %w", workerID, err)
	}

	tag := fmt.Sprintf("%s-%d-%s", c.cfg.TagPrefix, workerID, uuid.NewString()[:8])

	deliveries, err := ch.Consume(
		c.cfg.Queue, // queue
		tag,         // consumer
		false,       // auto-ack = false (manual ACK)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to consume from queue %s: %w", c.cfg.Queue, err)
	}

	c.wg.Add(1)
	c.live.Add(1)
	err = c.pool.Submit(func() {
		defer c.wg.Done()
		defer c.live.Add(-1)
		defer ch.Close()

		c.serve(ctx, tag, deliveries)
	})
	if err != nil {
		c.live.Add(-1)
		c.wg.Done()
		ch.Close()
		return fmt.Errorf("failed to submit worker %d: %w", workerID, err)
	}

	return nil
}

// serve processes deliveries of one channel until ctx is done or the channel closes
func (c *Consumer) serve(ctx context.Context, channelID string, deliveries <-chan amqp.Delivery) {
	log.Debug().Str("channel", channelID).Msg("Consumer worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("channel", channelID).Msg("Consumer worker stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				// a failed ack closes the channel; the worker is not restarted
				log.Warn().
					Str("channel", channelID).
					Int32("live_workers", c.live.Load()-1).
					Msg("Delivery channel closed, worker exiting")
				return
			}
			c.handleDelivery(ctx, channelID, d)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, channelID string, d amqp.Delivery) {
	msg := NewMessage(d, channelID)

	if _, err := c.pipeline.Run(ctx, msg); err != nil {
		// left unacknowledged. If the channel stays open the delivery keeps counting
		// against the prefetch limit until the channel closes and the broker redelivers.
		log.Error().Err(err).
			Str("message_id", msg.ID).
			Uint64("delivery_tag", d.DeliveryTag).
			Str("channel", channelID).
			Msg("Failed to process message")
	}
}

// LiveWorkers returns the number of workers still consuming a channel
func (c *Consumer) LiveWorkers() int {
	return int(c.live.Load())
}

// Stop cancels all workers and waits for them until ctx is done. A stopped consumer
// cannot be started again.
func (c *Consumer) Stop(ctx context.Context) error {
	if !c.started.CompareAndSwap(true, false) {
		return nil
	}
	c.stopped.Store(true)
	defer c.pool.Release()

	log.Info().Msg("Stopping consumer")
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Consumer stopped gracefully")
	case <-ctx.Done():
		log.Warn().Msg("Consumer shutdown timeout")
		return ctx.Err()
	}

	return nil
}

// NewMessage builds a pipeline message from a broker delivery. The delivery tag and the
// channel are taken from the same delivery.
func NewMessage(d amqp.Delivery, channelID string) *Message {
	id := d.MessageId
	if id == "" {
		id = uuid.NewString()
	}

	dc := &DeliveryContext{
		Tag:         d.DeliveryTag,
		Redelivered: d.Redelivered,
	}
	if d.Acknowledger != nil {
		dc.Channel = &ChannelHandle{ID: channelID, Acker: d.Acknowledger}
	}

	return &Message{
		ID:       id,
		Body:     d.Body,
		Headers:  d.Headers,
		Delivery: dc,
	}
}
