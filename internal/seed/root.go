// Package seed holds the seed CLI: fake data generation and import of a
// browser local-storage dump.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/petcare-booking/internal/app"
	"github.com/hackgods/petcare-booking/internal/config"
	"github.com/hackgods/petcare-booking/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for the seed CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a pet-care store with data",
		Long: `Fill the configured record store (STORE_BACKEND and friends) with
fake data, or import a JSON dump of the browser's local storage.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewFakeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

// openApp connects to the store the environment points at.
func openApp(ctx context.Context, opts *RootOptions) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level, cfg.LogFormat, "seed")

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return app.Open(openCtx, cfg, log)
}
