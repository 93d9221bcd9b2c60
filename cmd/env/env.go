package env

import (
	"encoding/json"
	"fmt"

	"github.com/hzbay/amqp-acker/internal/config"
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the env",
		Long: `Prints the currently applied env

Sensitive values like the RabbitMQ password are omitted.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()
			b, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			fmt.Println(string(b))
			return nil
		},
	}
}
