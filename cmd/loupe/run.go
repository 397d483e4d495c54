package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/loupe/pkg/cli"
	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal/recorder"
	"mercator-hq/loupe/pkg/journal/retention"
	"mercator-hq/loupe/pkg/journal/storage"
	"mercator-hq/loupe/pkg/proxy"
	"mercator-hq/loupe/pkg/server"
	"mercator-hq/loupe/pkg/telemetry/health"
	"mercator-hq/loupe/pkg/telemetry/logging"
	"mercator-hq/loupe/pkg/telemetry/metrics"
	"mercator-hq/loupe/pkg/telemetry/tracing"
)

var runFlags struct {
	hostAddress    string
	destinationURL string
	printStyle     string
	logLevel       string
	adminAddress   string
	proxyProtocol  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the logging proxy",
	Long: `Start the logging proxy with the resolved configuration.

Every request received on the host address is forwarded to the destination
URL. A request event and a response event are logged for each exchange.

Examples:
  # Configure through the environment
  HOST_ADDRESS=0.0.0.0:8080 DESTINATION_URL=http://localhost:9000 loupe run

  # Use a config file and switch to single-line JSON events
  loupe run --config loupe.yaml --print-style json

  # Expose health and metrics on a separate port
  loupe run --admin-address 127.0.0.1:9090`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.hostAddress, "host-address", "", "override listen address (HOST_ADDRESS)")
	runCmd.Flags().StringVar(&runFlags.destinationURL, "destination-url", "", "override destination URL (DESTINATION_URL)")
	runCmd.Flags().StringVar(&runFlags.printStyle, "print-style", "", "override print style: pretty, plain, json (PRINT_STYLE)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level: critical, normal, debug, off (LOG_LEVEL)")
	runCmd.Flags().StringVar(&runFlags.adminAddress, "admin-address", "", "serve health and metrics on this address")
	runCmd.Flags().BoolVar(&runFlags.proxyProtocol, "proxy-protocol", false, "accept PROXY protocol headers")
}

// applyRunFlags copies flags the user set explicitly onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host-address") {
		cfg.Proxy.HostAddress = runFlags.hostAddress
	}
	if flags.Changed("destination-url") {
		cfg.Proxy.DestinationURL = runFlags.destinationURL
	}
	if flags.Changed("print-style") {
		cfg.Logging.PrintStyle = runFlags.printStyle
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = runFlags.logLevel
	}
	if flags.Changed("admin-address") {
		cfg.Telemetry.AdminAddress = runFlags.adminAddress
	}
	if flags.Changed("proxy-protocol") {
		cfg.Proxy.ProxyProtocol = runFlags.proxyProtocol
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(cfg *config.Config) { applyRunFlags(cmd, cfg) })
	if err != nil {
		return err
	}

	logCfg := cfg.Logging.LoggerConfig()
	logCfg.Writer = os.Stdout
	logger, err := logging.New(logCfg)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Slog())

	opts, err := cfg.Logging.FormatOptions()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	destination, err := cfg.Proxy.Destination()
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("destination", health.DestinationCheck(destination))

	handlerOpts := []proxy.Option{
		proxy.WithMetrics(collector),
		proxy.WithTracer(tracer),
	}
	var serverOpts []server.Option

	if cfg.Journal.Enabled {
		store, err := storage.Open(ctx, cfg.Journal)
		if err != nil {
			_ = tracer.Shutdown(context.Background())
			return cli.NewCommandError("run", fmt.Errorf("failed to open journal: %w", err))
		}
		checker.RegisterCheck("journal", store.Ping)

		rec := recorder.New(store, cfg.Journal, logger, collector)
		handlerOpts = append(handlerOpts, proxy.WithJournal(rec))

		pruner := retention.NewPruner(store, cfg.Journal.Retention, logger, collector)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start journal retention", "error", err)
		} else if next := pruner.NextPruning(); next != nil {
			logger.Debug("journal retention scheduled", "next_pruning", next)
		}

		serverOpts = append(serverOpts,
			server.OnShutdown("journal retention", func(context.Context) error {
				pruner.Stop()
				return nil
			}),
			server.OnShutdown("journal recorder", func(context.Context) error {
				return rec.Close()
			}),
			server.OnShutdown("journal storage", func(context.Context) error {
				return store.Close()
			}),
		)

		logger.Info("journal enabled", "backend", cfg.Journal.Backend)
	}

	if cfg.Logging.Watch && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, logger)
		if err != nil {
			logger.Warn("configuration watching disabled", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx, config.LevelReloader(cfgFile, os.LookupEnv, logger)); err != nil {
					logger.Error("configuration watcher stopped", "error", err)
				}
			}()
			serverOpts = append(serverOpts, server.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			}))
		}
	}

	serverOpts = append(serverOpts,
		server.OnShutdown("tracer", tracer.Shutdown),
		server.WithHealth(checker),
		server.WithAdminHandler(server.NewAdminMux(cfg.Telemetry, checker, collector, server.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		})),
	)

	forwarder := proxy.NewForwarder(destination, proxy.NewTransport(cfg.Proxy))
	handler := proxy.NewHandler(forwarder, opts, logger, handlerOpts...)

	srv := server.New(cfg, handler, logger, serverOpts...)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
