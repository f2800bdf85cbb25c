package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	watchdog "github.com/sakky016/ApplicationWatchdog"
	"github.com/sakky016/ApplicationWatchdog/internal/heartbeat"
	"github.com/sakky016/ApplicationWatchdog/internal/kvutil"
	"github.com/sakky016/ApplicationWatchdog/internal/logging"
	"github.com/sakky016/ApplicationWatchdog/internal/metrics"
	"github.com/sakky016/ApplicationWatchdog/internal/workload"
	"github.com/sakky016/ApplicationWatchdog/types"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulated application under supervision",
	Long: `Start the supervisor, then the simulated application. Each application iteration
takes a random time below --max-iteration-duration and crashes when it exceeds
--crash-ratio of it; the supervisor notices the silence and restarts it.

Runs until interrupted.`,
	RunE: runWatchdog,
}

func init() {
	rootCmd.AddCommand(runCmd)

	fs := runCmd.Flags()
	fs.Duration("poll-interval", 0, "interval between pulse checks (default 5s)")
	fs.Duration("max-iteration-duration", 0, "upper bound of one simulated iteration (default 10s)")
	fs.Int("max-warnings", 0, "silent polls tolerated before restart (default 5)")
	fs.Duration("restart-cooldown", 0, "pause before respawning a dead worker (default 1s)")
	fs.Duration("settle-delay", 0, "pause between supervisor and first worker start (default 100ms)")
	fs.Float64("crash-ratio", 0, "fraction of max-iteration-duration above which an iteration crashes (default 0.8)")
	fs.Bool("cancel-abandoned", false, "cancel the previous worker on restart")
	fs.Bool("metrics", false, "serve Prometheus metrics")
	fs.String("metrics-addr", "", "metrics listen address (default :9090)")
	fs.Bool("status", false, "mirror supervisor status to NATS KV")
	fs.Duration("status-ttl", 0, "status entry TTL (default 30s)")

	bindFlags(fs)
}

func runWatchdog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewSlogWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []watchdog.Option{watchdog.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		collector := startMetrics(ctx, cfg, logger)
		opts = append(opts, watchdog.WithMetrics(collector))
	}

	if cfg.Status.Enabled {
		publisher, cleanup, err := startStatusMirror(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		opts = append(opts, watchdog.WithStatusReporter(publisher))
	}

	factory := workload.Factory(cfg.MaxIterationDuration, cfg.CrashRatio, logger)

	launcher, err := watchdog.NewLauncher(&cfg, factory, opts...)
	if err != nil {
		return err
	}

	return launcher.Run(ctx)
}

// startMetrics serves a dedicated registry until ctx is cancelled.
func startMetrics(ctx context.Context, cfg watchdog.Config, logger types.Logger) *metrics.PrometheusCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := metrics.NewServer(cfg.Metrics.Addr, reg, logger)
	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	return metrics.NewPrometheus(reg, "watchdog")
}

// startStatusMirror connects to NATS and starts a status publisher.
func startStatusMirror(
	ctx context.Context,
	cfg watchdog.Config,
	logger types.Logger,
) (*heartbeat.Publisher, func(), error) {
	nc, err := nats.Connect(cfg.Status.NATSURL, nats.Name("watchdog-"+cfg.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Status.NATSURL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js,
		kvutil.StatusBucketConfig(cfg.Status.Bucket, cfg.Status.TTL), 3)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	publisher := heartbeat.New(kv, cfg.Status.Prefix, cfg.Status.TTL/3)
	publisher.SetName(cfg.Name)
	publisher.SetLogger(logger)

	if err := publisher.Start(ctx); err != nil {
		nc.Close()
		return nil, nil, err
	}

	logger.Info("mirroring status to NATS KV",
		"bucket", cfg.Status.Bucket,
		"key", heartbeat.KeyFor(cfg.Status.Prefix, cfg.Name),
	)

	cleanup := func() {
		if err := publisher.Stop(); err != nil {
			logger.Warn("failed to stop status publisher", "error", err)
		}
		nc.Close()
	}

	return publisher, cleanup, nil
}
