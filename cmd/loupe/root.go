package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/loupe/pkg/cli"
	"mercator-hq/loupe/pkg/config"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "loupe",
	Short: "Loupe - a logging reverse proxy",
	Long: `Loupe sits in front of a single upstream, forwards every HTTP request
unmodified and logs each request and response with its headers, query
parameters and body.

Configuration is read from defaults, an optional YAML file (--config),
environment variables (HOST_ADDRESS, DESTINATION_URL, PRINT_STYLE,
LOG_LEVEL, PRETTY_FIELDS and LOUPE_*) and command flags, in that order.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
}

// loadConfig builds the configuration from the config file, the
// environment and override, then validates it.
func loadConfig(override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}

	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}

	if override != nil {
		override(cfg)
	}

	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}

	return cfg, nil
}
