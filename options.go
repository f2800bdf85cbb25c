package watchdog

// Option configures a Launcher with optional dependencies.
type Option func(*launcherOptions)

// launcherOptions holds optional Launcher configuration.
type launcherOptions struct {
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	reporter StatusReporter
}

// WithHooks sets supervision event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewLauncher
//
// Example:
//
//	hooks := &watchdog.Hooks{
//	    OnRestart: func(ctx context.Context, generation uint64) error {
//	        return pager.Notify(ctx, "worker restarted")
//	    },
//	}
//	launcher, err := watchdog.NewLauncher(&cfg, factory, watchdog.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *launcherOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewLauncher
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "watchdog")
//	launcher, err := watchdog.NewLauncher(&cfg, factory, watchdog.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *launcherOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for NewLauncher
func WithLogger(logger Logger) Option {
	return func(o *launcherOptions) {
		o.logger = logger
	}
}

// WithStatusReporter sets the sink that receives a Status after every poll.
//
// Parameters:
//   - reporter: StatusReporter implementation, e.g. a NATS KV publisher
//
// Returns:
//   - Option: Functional option for NewLauncher
func WithStatusReporter(reporter StatusReporter) Option {
	return func(o *launcherOptions) {
		o.reporter = reporter
	}
}
