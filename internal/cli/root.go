package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
	out    *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	d := DefaultConfig()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "gemtofu",
		Short: "Gemini server with trust-on-first-use client identities",
		Long: `gemtofu serves a Gemini capsule over TLS. Clients are identified by the
SHA-256 fingerprint of the certificate they present, trusted on first use,
and can play tic-tac-toe against each other.

Configuration is read from flags, GEMTOFU_* environment variables and an
optional YAML file, in that order of precedence.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv(EnvPrefix + "_CONFIG")
			}
			loaded, err := LoadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg = loaded
			client = NewClient(cfg.AdminURL())
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (env: GEMTOFU_CONFIG)")
	rootCmd.PersistentFlags().String("admin-addr", d.AdminAddr, "Admin API address, empty to disable (env: GEMTOFU_ADMIN_ADDR)")
	rootCmd.PersistentFlags().String("log-level", d.LogLevel, "Log level: debug, info, warn, error (env: GEMTOFU_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringP("output", "o", d.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newIdentitiesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
