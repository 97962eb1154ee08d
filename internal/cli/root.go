// Package cli implements the kitlend command-line client.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/me/kitlend/internal/config"
	"github.com/me/kitlend/internal/identity"
	"github.com/me/kitlend/internal/logging"
	"github.com/me/kitlend/internal/session"
	"github.com/me/kitlend/pkg/api"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagStore     string

	cfg    config.ClientConfig
	logger *slog.Logger
	store  session.Store
	client *api.Client
	sess   *identity.Session
)

// NewRootCmd creates the root cobra command for the kitlend CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kitlend",
		Short: "kitlend - campus equipment lending client",
		Long:  "kitlend signs in to the campus lending backend and shows who you are to it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if store == nil {
				return nil
			}
			err := store.Close()
			store = nil
			return err
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", "", "Lending backend URL (or KITLEND_SERVER env)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.kitlend/config.yaml)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagStore, "store", "", "Credential store (file, sqlite, memory)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newStatusCmd(),
	)

	return root
}

// setup resolves configuration and builds the shared client objects.
// Flags override the config file and environment.
func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		loaded.Server = flagServer
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = flagLogFormat
	}
	if flags.Changed("store") {
		loaded.Store.Kind = flagStore
	}
	if flagDebug {
		loaded.LogLevel = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	// PersistentPostRunE is skipped when a command fails.
	if store != nil {
		store.Close()
		store = nil
	}
	st, err := session.Open(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	store = st

	apiCfg := api.DefaultConfig().WithBaseURL(cfg.Server).WithTimeout(cfg.Timeout)
	client = api.NewClient(apiCfg, store, logger)
	sess = identity.NewSession(client, logger)
	logger.Debug("client ready", "server", client.BaseURL(), "store", cfg.Store.Kind)
	return nil
}
