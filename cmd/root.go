package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Dosada05/swiss-tournament/config"
)

type rootOptions struct {
	driver  string
	dsn     string
	format  string
	verbose bool
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "swiss",
		Short:        "Swiss-system tournament server and operator tools",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.format, validFormats)
		},
	}

	// Флаги перекрывают DATABASE_DRIVER и DATABASE_URL
	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver (postgres|sqlite3)")
	cmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database connection string")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newPairCommand(opts))
	cmd.AddCommand(newStandingsCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newResetMatchesCommand(opts))
	cmd.AddCommand(newHashPasswordCommand())

	return cmd
}

// loadConfig reads the environment and applies the global flags on top.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.DatabaseDriver = o.driver
	}
	if o.dsn != "" {
		cfg.DatabaseURL = o.dsn
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database is not configured: set DATABASE_URL or --dsn")
	}
	return cfg, nil
}

func (o *rootOptions) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
