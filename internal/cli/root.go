package cli

import (
	"fmt"
	"log/slog"

	"github.com/artpar/crumbs/internal/config"
	"github.com/artpar/crumbs/internal/cookies/csvstore"
	"github.com/artpar/crumbs/internal/logging"
	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by every command.
type RootOptions struct {
	ConfigPath string
	File       string
	LogLevel   string
}

// session is the per-invocation state opened from RootOptions.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *csvstore.Handler
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "crumbs",
		Short:         "crumbs - a file-backed HTTP cookie store",
		Long:          "crumbs keeps HTTP cookies in a CSV file and lets you inspect, edit and collect them from the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "Config file")
	cmd.PersistentFlags().StringVarP(&opts.File, "file", "f", "", "Cookie CSV file (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewFetchCommand(opts))

	return cmd
}

// open loads configuration, applies flag overrides and opens the cookie store.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Merge(&config.Config{File: o.File, LogLevel: o.LogLevel})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logger = logger.With("command", cmd.Name())

	store, err := csvstore.New(cfg.File, csvstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie store: %w", err)
	}

	logger.Debug("cookie store opened", "file", cfg.File)
	return &session{cfg: cfg, logger: logger, store: store}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
