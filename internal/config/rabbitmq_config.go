package config

import (
	"fmt"
	"time"

	"github.com/hzbay/amqp-acker/internal/util"
)

// RabbitMQConfig contains configuration for the RabbitMQ connection
type RabbitMQConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"` // sensitive field
	VHost    string `json:"vhost"`

	// Connection settings
	Heartbeat time.Duration `json:"heartbeat"`

	// Queue settings
	QueuePrefix   string `json:"queue_prefix"`
	DurableQueues bool   `json:"durable_queues"`
}

// ConsumerConfig controls how deliveries are consumed and acknowledged
type ConsumerConfig struct {
	Queue     string `json:"queue"`
	Workers   int    `json:"workers"`  // one channel per worker
	Prefetch  int    `json:"prefetch"` // basic.qos prefetch count per channel
	TagPrefix string `json:"tag_prefix"`

	// AckMultiple makes every ack cover all earlier unacknowledged deliveries on the channel
	AckMultiple bool `json:"ack_multiple"`
}

// LoadRabbitMQConfig loads RabbitMQ configuration from environment variables
func LoadRabbitMQConfig() RabbitMQConfig {
	return RabbitMQConfig{
		Host:          util.GetEnv("RABBITMQ_HOST", "localhost"),
		Port:          util.GetEnvAsInt("RABBITMQ_PORT", 5672),
		Username:      util.GetEnv("RABBITMQ_USERNAME", "guest"),
		Password:      util.GetEnv("RABBITMQ_PASSWORD", "guest"),
		VHost:         util.GetEnv("RABBITMQ_VHOST", "/"),
		Heartbeat:     util.GetEnvAsDuration("RABBITMQ_HEARTBEAT", 10*time.Second),
		QueuePrefix:   util.GetEnv("RABBITMQ_QUEUE_PREFIX", "amqp-acker"),
		DurableQueues: util.GetEnvAsBool("RABBITMQ_DURABLE_QUEUES", true),
	}
}

// LoadConsumerConfig loads consumer configuration from environment variables.
// The queue defaults to "inbound" under the RabbitMQ queue prefix.
func LoadConsumerConfig(rabbitMQ RabbitMQConfig) ConsumerConfig {
	return ConsumerConfig{
		Queue:       util.GetEnv("RABBITMQ_CONSUMER_QUEUE", rabbitMQ.GetQueueName("inbound")),
		Workers:     util.GetEnvAsInt("RABBITMQ_CONSUMER_WORKERS", 1),
		Prefetch:    util.GetEnvAsInt("RABBITMQ_CONSUMER_PREFETCH", 10),
		TagPrefix:   util.GetEnv("RABBITMQ_CONSUMER_TAG_PREFIX", "acker"),
		AckMultiple: util.GetEnvAsBool("RABBITMQ_ACK_MULTIPLE", false), // Default: ack single delivery
	}
}

// GetConnectionURL returns the RabbitMQ connection URL
func (r RabbitMQConfig) GetConnectionURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		r.Username, r.Password, r.Host, r.Port, r.VHost)
}

// GetQueueName generates a queue name under the configured prefix
func (r RabbitMQConfig) GetQueueName(name string) string {
	return fmt.Sprintf("%s.%s", r.QueuePrefix, name)
}

// Validate checks if RabbitMQ configuration is usable
func (r RabbitMQConfig) Validate() error {
	if r.Host == "" {
		return fmt.Errorf("RabbitMQ host is required")
	}

	if r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("RabbitMQ port must be between 1 and 65535")
	}

	return nil
}

// Validate checks if consumer configuration is usable
func (c ConsumerConfig) Validate() error {
	if c.Queue == "" {
		return fmt.Errorf("consumer queue is required")
	}

	if c.Workers <= 0 {
		return fmt.Errorf("consumer workers must be positive")
	}

	if c.Prefetch < 0 {
		return fmt.Errorf("consumer prefetch must not be negative")
	}

	return nil
}
