package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"guardrail-hq/meridian/pkg/cli"
	"guardrail-hq/meridian/pkg/config"
	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/evidence/recorder"
	"guardrail-hq/meridian/pkg/evidence/retention"
	"guardrail-hq/meridian/pkg/evidence/storage"
	"guardrail-hq/meridian/pkg/policy/manager"
	"guardrail-hq/meridian/pkg/policy/source"
	"guardrail-hq/meridian/pkg/server"
	"guardrail-hq/meridian/pkg/telemetry/logging"
	"guardrail-hq/meridian/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	policyPath    string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian tool server",
	Long: `Start the Meridian tool server with the specified configuration.

The server listens on the configured address and serves the policy
evaluation tools, recording every decision in the evidence store.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8080

  # Serve a custom policy file
  meridian run --policy policies/enterprise.yaml

  # Validate config without starting server
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVarP(&runFlags.policyPath, "policy", "p", "", "override policy file or directory")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.policyPath != "" {
		cfg.Policy.Path = runFlags.policyPath
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Meridian v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	}
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Policy manager over the configured source
	var policySource source.Source
	if cfg.Policy.Path != "" {
		policySource = source.NewFileSource(cfg.Policy.Path, logger)
	} else {
		policySource = source.NewDefaultSource()
	}

	mgr, err := manager.New(policySource, cfg.Policy.PolicyID, logger)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load policy: %w", err))
	}
	defer mgr.Close()

	if cfg.Policy.Watch && cfg.Policy.Path != "" {
		if err := mgr.WatchFiles(ctx, cfg.Policy.Path); err != nil {
			slog.Warn("failed to start policy file watcher", "error", err)
		}
	}
	fmt.Printf("✓ Policy loaded: %s (%d rules)\n", mgr.Policy().ID, len(mgr.Policy().Rules))

	// Evidence recording
	var evidenceRecorder *recorder.Recorder
	if cfg.Evidence.Enabled {
		store, err := openEvidenceStorage(cfg, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer store.Close()

		evidenceRecorder = recorder.NewRecorder(store, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Evidence.AsyncBuffer,
			WriteTimeout: recorder.DefaultConfig().WriteTimeout,
		}, logger)
		defer evidenceRecorder.Close()

		if cfg.Evidence.Retention.Schedule != "" && cfg.Evidence.Retention.Days > 0 {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays:       cfg.Evidence.Retention.Days,
				PruneSchedule:       cfg.Evidence.Retention.Schedule,
				ArchiveBeforeDelete: cfg.Evidence.Retention.ArchiveBeforeDelete,
				ArchivePath:         cfg.Evidence.Retention.ArchivePath,
			}, logger)
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
			}
		}

		fmt.Println("✓ Evidence store initialized")
	}

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
	}

	srv := server.NewServer(cfg, mgr, server.Options{
		Recorder:  evidenceRecorder,
		Collector: collector,
		Logger:    logger,
	})

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// openEvidenceStorage builds the storage backend named by the config.
func openEvidenceStorage(cfg *config.Config, logger *slog.Logger) (evidence.Storage, error) {
	switch cfg.Evidence.Backend {
	case "sqlite":
		sqliteConfig := storage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Evidence.SQLite.Path
		store, err := storage.NewSQLiteStorage(sqliteConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported evidence backend: %s", cfg.Evidence.Backend)
	}
}
