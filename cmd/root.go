// Package cmd defines and implements the CLI commands for the harvester
// executable.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openharvest/harvester/internal/ckan"
	"github.com/openharvest/harvester/internal/fetch"
	"github.com/openharvest/harvester/internal/logging"
	"github.com/openharvest/harvester/pkg/config"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Ingests dataset metadata from catalogue APIs and crawled pages.",
		Long: `harvester builds a single, densely-numbered dataset collection from two
sources: paginated CKAN package_search endpoints and data-looking pages
discovered through a site's sitemap. Both sources are normalized into one
canonical record schema and merged into a single JSON artifact.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Initialize Viper configuration.
	cobra.OnInitialize(func() { config.InitConfig(cfgFile) })

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.harvester/config.yaml)")

	cmd.AddCommand(newConvertCmd(), newSitemapCmd(), newHarvestCmd())
	return cmd
}

// Execute is the main entry point. Unrecognized catalogue input exits
// with code 2; any other fatal error exits non-zero with a diagnostic.
func Execute() {
	logging.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var validationErr *ckan.ValidationError
		if errors.As(err, &validationErr) {
			logging.L.Error("Unrecognized input", zap.Error(err))
			_ = logging.L.Sync() //nolint:errcheck // best-effort flush
			os.Exit(2)
		}
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

// newCatalogueClient builds the catalogue client from viper settings.
func newCatalogueClient() *ckan.Client {
	fetcher := fetch.NewClient(
		viper.GetString("catalogue.user_agent"),
		catalogueTimeout(),
	)
	return ckan.NewClient(fetcher, logging.L)
}

func catalogueTimeout() time.Duration {
	if t := viper.GetDuration("catalogue.request_timeout"); t > 0 {
		return t
	}
	return 15 * time.Second
}
