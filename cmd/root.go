package cmd

import (
	"fmt"
	"os"

	"github.com/hzbay/amqp-acker/cmd/consume"
	"github.com/hzbay/amqp-acker/cmd/env"
	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/hzbay/amqp-acker/internal/queue"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A RabbitMQ consumer that manually acknowledges every delivery.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		consume.New(),
		env.New(),
		newRabbitMQCmd(),
	)
}

// newRabbitMQCmd creates rabbitmq management command
func newRabbitMQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rabbitmq",
		Short: "RabbitMQ queue management",
		Long:  "Inspect RabbitMQ connections and queues",
	}

	cmd.AddCommand(
		newRabbitMQStatusCmd(),
	)

	return cmd
}

func newRabbitMQStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [queue...]",
		Short: "Check RabbitMQ connection and queue status",
		RunE: func(_ *cobra.Command, args []string) error {
			fmt.Println("🔍 Checking RabbitMQ status...")

			cfg := config.DefaultServiceConfigFromEnv()
			client, err := queue.NewRabbitMQClient(cfg.RabbitMQ)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer client.Close()

			if err := client.Ping(); err != nil {
				fmt.Printf("❌ RabbitMQ connection is unhealthy: %v\n", err)
			} else {
				fmt.Println("✅ RabbitMQ connection is healthy")
			}

			queues := args
			if len(queues) == 0 {
				queues = []string{cfg.Consumer.Queue}
			}

			fmt.Println("\n📋 Queue Status:")
			for _, queueName := range queues {
				count, err := client.GetQueueInfo(queueName)
				if err != nil {
					fmt.Printf("❌ %s (ERROR: %v)\n", queueName, err)
				} else {
					fmt.Printf("✅ %s (%d messages)\n", queueName, count)
				}
			}

			return nil
		},
	}
}
