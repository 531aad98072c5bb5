package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dixit-research/dixit/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Long: `Query the backend health endpoint and print its response.

The health endpoint defaults to /api/health on the configured origin and
can be changed with: dixit config set health_endpoint <url>`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		return runHealth(cmd.Context(), deps, cfg)
	},
}

func runHealth(ctx context.Context, d *Dependencies, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := d.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	log := newLogger(d.Stderr, cfg.Verbose)
	log.Printf("Health endpoint: %s", client.HealthEndpoint())

	start := time.Now()
	body, err := client.Health(ctx)
	if err != nil {
		return err
	}
	log.Printf("Health check took %s", time.Since(start).Round(time.Millisecond))

	fmt.Fprintln(d.Stdout, colorizeJSON(d, []byte(body)))
	return nil
}
