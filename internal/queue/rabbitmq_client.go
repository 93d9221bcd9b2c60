package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/hzbay/amqp-acker/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// RabbitMQClient owns the broker connection consumers open their channels on
type RabbitMQClient struct {
	config     config.RabbitMQConfig
	connection *amqp.Connection
	channel    *amqp.Channel // management channel for declare/inspect
	mutex      sync.RWMutex

	healthy bool
	closed  chan *amqp.Error
	wg      sync.WaitGroup
}

// NewRabbitMQClient creates a new RabbitMQ client
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid RabbitMQ config: %w", err)
	}

	client := &RabbitMQClient{
		config: cfg,
	}

	if err := client.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return client, nil
}

// connect establishes connection to RabbitMQ
func (c *RabbitMQClient) connect() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var err error
	c.connection, err = amqp.DialConfig(c.config.GetConnectionURL(), amqp.Config{
		Heartbeat: c.config.Heartbeat,
		Locale:    "en_US",
	})
	if err != nil {
		c.healthy = false
		return fmt.Errorf("failed to dial: %w", err)
	}

	c.channel, err = c.connection.Channel()
	if err != nil {
		c.connection.Close()
		c.healthy = false
		return fmt.Errorf("failed to create channel: %w", err)
	}

	c.closed = c.connection.NotifyClose(make(chan *amqp.Error, 1))
	c.wg.Add(1)
	go c.watchConnection(c.closed)

	c.healthy = true

	log.Info().
		Str("host", c.config.Host).
		Int("port", c.config.Port).
		Msg("Connected to RabbitMQ")

	return nil
}

// watchConnection marks the client unhealthy once the broker closes the connection
func (c *RabbitMQClient) watchConnection(closed <-chan *amqp.Error) {
	defer c.wg.Done()

	amqpErr, ok := <-closed
	if ok && amqpErr != nil {
		log.Warn().
			Int("code", amqpErr.Code).
			Str("reason", amqpErr.Reason).
			Msg("RabbitMQ connection closed by broker")
	}

	c.mutex.Lock()
	c.healthy = false
	c.mutex.Unlock()
}

// OpenChannel opens a new consumer channel with the given prefetch count.
// The caller owns the returned channel and must close it.
func (c *RabbitMQClient) OpenChannel(prefetch int) (ConsumerChannel, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.healthy {
		return nil, ErrClientNotReady
	}

	ch, err := c.connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Qos(
		prefetch, // prefetch count
		0,        // prefetch size
		false,    // global
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return ch, nil
}

// DeclareQueue declares a queue with appropriate settings
func (c *RabbitMQClient) DeclareQueue(queueName string) (amqp.Queue, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.healthy {
		return amqp.Queue{}, ErrClientNotReady
	}

	queue, err := c.channel.QueueDeclare(
		queueName,              // name
		c.config.DurableQueues, // durable
		false,                  // delete when unused
		false,                  // exclusive
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	log.Debug().
		Str("queue", queueName).
		Bool("durable", c.config.DurableQueues).
		Msg("Queue declared")

	return queue, nil
}

// GetQueueInfo returns the number of ready messages in a queue
func (c *RabbitMQClient) GetQueueInfo(queueName string) (int, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.healthy {
		return 0, ErrClientNotReady
	}

	queue, err := c.channel.QueueDeclarePassive(
		queueName,              // name
		c.config.DurableQueues, // durable
		false,                  // delete when unused
		false,                  // exclusive
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		// a failed passive declare closes the management channel
		c.reopenChannel()
		return 0, fmt.Errorf("failed to inspect queue %s: %w", queueName, err)
	}

	return queue.Messages, nil
}

// reopenChannel replaces a management channel closed by a channel exception. Callers hold the mutex.
func (c *RabbitMQClient) reopenChannel() {
	if c.channel != nil && !c.channel.IsClosed() {
		return
	}

	ch, err := c.connection.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to reopen management channel")
		return
	}
	c.channel = ch
}

// IsHealthy checks if the RabbitMQ connection is healthy
func (c *RabbitMQClient) IsHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.healthy && c.connection != nil && !c.connection.IsClosed()
}

// Ping tests the connection to RabbitMQ
func (c *RabbitMQClient) Ping() error {
	if !c.IsHealthy() {
		return ErrClientNotReady
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	tempQueueName := fmt.Sprintf("%s.ping.%d", c.config.QueuePrefix, time.Now().UnixNano())
	_, err := c.channel.QueueDeclare(
		tempQueueName, // name
		false,         // durable
		true,          // delete when unused
		true,          // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		c.reopenChannel()
		return fmt.Errorf("ping failed: %w", err)
	}

	if _, err = c.channel.QueueDelete(tempQueueName, false, false, false); err != nil {
		log.Warn().Err(err).Str("queue", tempQueueName).Msg("Failed to delete ping queue")
	}

	return nil
}

// Close closes the RabbitMQ connection
func (c *RabbitMQClient) Close() error {
	log.Info().Msg("Closing RabbitMQ client")

	c.mutex.Lock()
	if c.connection == nil {
		c.mutex.Unlock()
		log.Debug().Msg("RabbitMQ client already closed")
		return nil
	}

	var err error
	if c.channel != nil && !c.channel.IsClosed() {
		c.channel.Close()
	}
	if !c.connection.IsClosed() {
		err = c.connection.Close()
	}
	c.connection = nil
	c.channel = nil
	c.healthy = false
	c.mutex.Unlock()

	// NotifyClose channel is closed by the library on shutdown
	c.wg.Wait()

	log.Info().Msg("RabbitMQ client closed")
	return err
}
