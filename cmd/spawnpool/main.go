package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/spawnpool/internal/sim"
	"github.com/ajitpratap0/spawnpool/pkg/config"
	"github.com/ajitpratap0/spawnpool/pkg/logger"
	"github.com/ajitpratap0/spawnpool/pkg/observability"
	"github.com/ajitpratap0/spawnpool/pkg/performance"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "spawnpool",
		Short: "Spawnpool - pooled spawn/despawn runtime",
		Long: `Spawnpool is a pooled spawn/despawn runtime for game servers and
frame-stepped simulations. It recycles instantiated objects through
per-template pools with reference-counted retention instead of repeatedly
creating and destroying them.`,
	}

	root.AddCommand(versionCmd(), demoCmd(), defaultsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("spawnpool %s\n", version)
		},
	}
}

func defaultsCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig("spawnpool")
			if err := config.Save(out, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote default config to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "spawnpool.yaml", "output file path")
	return cmd
}

func demoCmd() *cobra.Command {
	var (
		configPath string
		frames     int
		templates  int
		journal    string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic spawn/despawn workload",
		Long: `Runs a frame-stepped simulation that spawns instances from a set of
templates, lets them live out scheduled lifetimes, and recycles them through
their pools. Reports instantiation, reuse, and throughput at the end.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig("spawnpool-demo")
			if configPath != "" {
				if err := config.Load(configPath, cfg); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := logger.Init(logger.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
				Encoding:    cfg.Logging.Encoding,
				OutputPaths: cfg.Logging.OutputPaths,
			}); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Observability.EnableTracing {
				tc := observability.DefaultTracingConfig(cfg.Observability.ServiceName)
				tc.ServiceVersion = cfg.Observability.ServiceVersion
				tc.Environment = cfg.Observability.Environment
				tc.SamplingRate = cfg.Observability.SamplingRate
				tc.ExporterType = cfg.Observability.ExporterType
				if err := observability.Init(tc); err != nil {
					return err
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = observability.Shutdown(ctx)
				}()
			}

			var watcher *performance.MemoryWatcher
			if cfg.Memory.EnableWatcher {
				watcher = performance.NewMemoryWatcher(
					cfg.Memory.UsedPercentThreshold,
					cfg.Memory.RSSThresholdBytes,
					cfg.Memory.CheckInterval,
				)
				watcher.Start()
				defer watcher.Stop()
			}

			simCfg := sim.DefaultConfig()
			if frames > 0 {
				simCfg.Frames = frames
			}
			if templates > 0 {
				simCfg.Templates = templates
			}
			simCfg.JournalPath = journal

			run, err := sim.New(simCfg, cfg.Pooling, watcher)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := run.Run(ctx)
			if err != nil {
				return err
			}

			logger.Info("demo complete",
				zap.Int("frames", report.Frames),
				zap.Int("spawns", report.Spawns),
				zap.Int("failed_spawns", report.FailedSpawns),
				zap.Int("instantiated", report.Instantiated),
				zap.Int("destroyed", report.Destroyed),
				zap.Int("live_objects", report.LiveObjects),
				zap.Float64("reuse_rate", report.ReuseRate),
				zap.Float64("spawns_per_second", report.SpawnsPerSecond),
				zap.Duration("elapsed", report.Elapsed))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().IntVar(&frames, "frames", 0, "number of frames to simulate (0 = default)")
	cmd.Flags().IntVar(&templates, "templates", 0, "number of distinct templates (0 = default)")
	cmd.Flags().StringVar(&journal, "journal", "", "write a persistence journal to this path")
	return cmd
}
