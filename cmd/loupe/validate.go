package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mercator-hq/loupe/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Resolve the configuration from defaults, the config file and the
environment, validate it and print a summary. Exits non-zero when the
configuration is invalid, exactly as "loupe run" would at startup.

Examples:
  # Validate the environment only
  HOST_ADDRESS=:8080 DESTINATION_URL=http://localhost:9000 loupe validate

  # Validate a config file
  loupe validate --config loupe.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	printSummary(cmd, cfg)
	return nil
}

func printSummary(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Listen:       %s\n", cfg.Proxy.HostAddress)
	fmt.Fprintf(out, "  Destination:  %s\n", cfg.Proxy.DestinationURL)
	fmt.Fprintf(out, "  Print style:  %s\n", cfg.Logging.PrintStyle)
	fmt.Fprintf(out, "  Log level:    %s\n", cfg.Logging.Level)
	if cfg.Logging.MaxBodyBytes > 0 {
		fmt.Fprintf(out, "  Body limit:   %s\n", humanize.IBytes(uint64(cfg.Logging.MaxBodyBytes)))
	}
	if cfg.Telemetry.AdminAddress != "" {
		fmt.Fprintf(out, "  Admin:        %s\n", cfg.Telemetry.AdminAddress)
	}
	if cfg.Journal.Enabled {
		fmt.Fprintf(out, "  Journal:      %s (retention %d days, schedule %q)\n",
			cfg.Journal.Backend, cfg.Journal.Retention.Days, cfg.Journal.Retention.PruneSchedule)
	}
}
