package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dropbox/godropbox/time2"
	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/hzbay/amqp-acker/internal/queue"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Router struct {
	Routes     []*echo.Route
	Root       *echo.Group
	Management *echo.Group
}

type Server struct {
	Config         config.Server
	Echo           *echo.Echo
	Router         *Router
	Clock          time2.Clock
	RabbitMQClient *queue.RabbitMQClient
	Consumer       *queue.Consumer
	AckMonitor     *queue.AckMonitor
}

func NewServer(config config.Server) *Server {
	s := &Server{
		Config: config,
	}

	return s
}

func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.Clock != nil &&
		s.RabbitMQClient != nil &&
		s.Consumer != nil &&
		s.AckMonitor != nil
}

// InitRabbitMQ connects to the broker and wires the ack pipeline onto a consumer.
func (s *Server) InitRabbitMQ() error {
	client, err := queue.NewRabbitMQClient(s.Config.RabbitMQ)
	if err != nil {
		return err
	}
	s.RabbitMQClient = client

	if _, err := client.DeclareQueue(s.Config.Consumer.Queue); err != nil {
		return err
	}

	s.AckMonitor = queue.NewAckMonitor(client)

	acknowledger := queue.NewAcknowledger(
		queue.WithMultiple(s.Config.Consumer.AckMultiple),
		queue.WithObserver(s.AckMonitor),
	)

	consumer, err := queue.NewConsumer(client, s.Config.Consumer, queue.NewPipeline(
		queue.StageFunc(traceMessage),
		acknowledger,
	))
	if err != nil {
		return err
	}
	s.Consumer = consumer
	s.AckMonitor.WatchConsumer(consumer)

	log.Info().
		Str("queue", s.Config.Consumer.Queue).
		Bool("ack_multiple", acknowledger.Multiple()).
		Msg("Ack pipeline initialized")

	return nil
}

func (s *Server) InitClock() error {
	s.Clock = time2.DefaultClock
	return nil
}

// traceMessage logs every inbound message before it is acknowledged
func traceMessage(_ context.Context, msg *queue.Message) (*queue.Message, error) {
	e := log.Debug().Str("message_id", msg.ID).Int("size", len(msg.Body))
	if msg.Delivery != nil {
		e = e.Uint64("delivery_tag", msg.Delivery.Tag).Bool("redelivered", msg.Delivery.Redelivered)
	}
	e.Msg("Received message")

	return msg, nil
}

// Start starts the consumer and, if enabled, blocks serving the management endpoints.
func (s *Server) Start(ctx context.Context) error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Consumer.Start(ctx); err != nil {
		return err
	}

	if !s.Config.Echo.Enabled {
		<-ctx.Done()
		return nil
	}

	return s.Echo.Start(s.Config.Echo.ListenAddress)
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.Consumer != nil {
		if err := s.Consumer.Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to stop consumer")
			errs = append(errs, err)
		}
	}

	if s.RabbitMQClient != nil {
		log.Debug().Msg("Closing RabbitMQ client")
		if err := s.RabbitMQClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close RabbitMQ client")
			errs = append(errs, err)
		}
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	return errs
}
