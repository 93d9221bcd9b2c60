package consume

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hzbay/amqp-acker/internal/api"
	"github.com/hzbay/amqp-acker/internal/api/router"
	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	var multiple bool

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consumes the configured queue and manually acks every delivery",
		Long: `Consumes the configured queue with manual acknowledgment.

Every delivery is acknowledged on the channel it arrived on once the pipeline
has processed it. With --multiple each ack also covers all earlier
unacknowledged deliveries on that channel.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			if cmd.Flags().Changed("multiple") {
				cfg.Consumer.AckMultiple = multiple
			}
			runConsume(cfg)
		},
	}

	cmd.Flags().BoolVar(&multiple, "multiple", false, "ack all prior unacknowledged deliveries on the channel with each ack")

	return cmd
}

func runConsume(cfg config.Server) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Logger.Level)
	if cfg.Logger.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = "15:04:05"
		}))
	}

	s := api.NewServer(cfg)

	if err := s.InitClock(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize clock")
	}

	if err := s.InitRabbitMQ(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ")
	}

	router.Init(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := s.Start(ctx); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info().Msg("Server closed")
			} else {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}
	}()

	log.Info().
		Str("queue", cfg.Consumer.Queue).
		Bool("ack_multiple", cfg.Consumer.AckMultiple).
		Msg("Consuming")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
		log.Fatal().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
	}

	log.Info().Msg("Server shut down")
}
