package watchdog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakky016/ApplicationWatchdog/internal/liveness"
	"github.com/sakky016/ApplicationWatchdog/internal/logging"
	"github.com/sakky016/ApplicationWatchdog/internal/metrics"
	"github.com/sakky016/ApplicationWatchdog/internal/supervisor"
	"github.com/sakky016/ApplicationWatchdog/internal/worker"
	"github.com/sakky016/ApplicationWatchdog/types"
)

// Launcher wires a liveness signal, a supervisor and worker generations together.
type Launcher struct {
	cfg     Config
	factory TaskFactory
	logger  Logger
	metrics MetricsCollector

	signal     *liveness.Signal
	supervisor *supervisor.Supervisor
	generation atomic.Uint64

	mu      sync.Mutex
	running bool
	runCtx  context.Context //nolint:containedctx // parent of every worker spawned by the supervisor
}

// NewLauncher creates a launcher with validated configuration.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults
//   - factory: Creates the task for each worker generation
//   - opts: Optional dependencies (logger, metrics, hooks, status reporter)
//
// Returns:
//   - *Launcher: Launcher ready to Run
//   - error: ErrTaskFactoryRequired or a validation error wrapping ErrInvalidConfig
//
// Example:
//
//	cfg := watchdog.DefaultConfig()
//	launcher, err := watchdog.NewLauncher(&cfg, factory,
//	    watchdog.WithLogger(logger),
//	    watchdog.WithMetrics(collector),
//	)
func NewLauncher(cfg *Config, factory TaskFactory, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if factory == nil {
		return nil, ErrTaskFactoryRequired
	}

	options := &launcherOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	c := *cfg
	SetDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.ValidateWithWarnings(options.logger)

	l := &Launcher{
		cfg:     c,
		factory: factory,
		logger:  options.logger,
		metrics: options.metrics,
		signal:  liveness.New(),
		runCtx:  context.Background(),
	}

	sup, err := supervisor.New(&supervisor.Config{
		Signal:                 l.signal,
		Spawner:                types.SpawnerFunc(l.spawn),
		Name:                   c.Name,
		PollInterval:           c.PollInterval,
		MaxWarnings:            c.MaxWarnings,
		RestartCooldown:        c.RestartCooldown,
		CancelAbandonedWorkers: c.CancelAbandonedWorkers,
		Logger:                 options.logger,
		Metrics:                options.metrics,
		Hooks:                  options.hooks,
		Reporter:               options.reporter,
	})
	if err != nil {
		return nil, err
	}
	l.supervisor = sup

	return l, nil
}

// Run starts supervision and the first worker, then blocks.
//
// The supervisor starts first; after SettleDelay the first worker generation
// is spawned. Run returns only when ctx is cancelled, and then returns nil.
//
// Parameters:
//   - ctx: Lifetime of the watchdog and parent of every worker context
//
// Returns:
//   - error: ErrAlreadyRunning if Run is already active, nil otherwise
func (l *Launcher) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}
	l.running = true
	l.runCtx = ctx
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	l.logger.Info("watchdog starting",
		"name", l.cfg.Name,
		"poll_interval", l.cfg.PollInterval,
		"max_warnings", l.cfg.MaxWarnings,
		"settle_delay", l.cfg.SettleDelay,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.supervisor.Run(ctx)
	}()

	timer := time.NewTimer(l.cfg.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return <-errCh
	case <-timer.C:
	}

	handle := l.supervisor.StartWorker()
	l.logger.Info("application started",
		"name", l.cfg.Name,
		"generation", handle.Generation(),
		"worker_id", handle.ID(),
	)

	return <-errCh
}

// spawn starts the next worker generation; it backs the supervisor's Spawner.
func (l *Launcher) spawn() types.WorkerHandle {
	generation := l.generation.Add(1)

	l.mu.Lock()
	ctx := l.runCtx
	l.mu.Unlock()

	w := worker.New(generation, l.signal, l.factory(generation), l.logger, l.metrics)

	return w.Spawn(ctx)
}

// Config returns the effective configuration after defaults.
func (l *Launcher) Config() Config {
	return l.cfg
}

// State returns the current supervisor state.
func (l *Launcher) State() SupervisorState {
	return l.supervisor.State()
}

// Status returns a snapshot of the supervision loop.
func (l *Launcher) Status() Status {
	return l.supervisor.Status()
}

// Subscribe returns a channel of supervisor state changes and an unsubscribe func.
func (l *Launcher) Subscribe() (<-chan SupervisorState, func()) {
	return l.supervisor.Subscribe()
}
