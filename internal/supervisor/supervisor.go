package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// reportTimeout bounds a single StatusReporter call.
const reportTimeout = 2 * time.Second

// Supervisor polls a liveness signal and restarts the worker when it goes silent.
type Supervisor struct {
	name            string
	signal          Checker
	spawner         types.Spawner
	pollInterval    time.Duration
	maxWarnings     int
	restartCooldown time.Duration
	cancelAbandoned bool

	logger   types.Logger
	metrics  types.MetricsCollector
	hooks    types.Hooks
	reporter types.StatusReporter

	// sleep waits out the restart cooldown; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) bool

	// consecutiveMisses is written only by Tick.
	consecutiveMisses atomic.Int64
	state             atomic.Int32
	restarts          atomic.Uint64
	lastPulse         atomic.Bool

	mu      sync.Mutex
	current types.WorkerHandle
	running bool

	subscribers      *xsync.Map[uint64, *stateSubscriber]
	nextSubscriberID atomic.Uint64
}

// New creates a supervisor with validated configuration.
//
// Parameters:
//   - cfg: Supervisor configuration (required fields must be set)
//
// Returns:
//   - *Supervisor: New supervisor in the Healthy state
//   - error: Validation error if required fields are missing or invalid
//
// Example:
//
//	sup, err := supervisor.New(&supervisor.Config{
//	    Signal:          signal,
//	    Spawner:         spawner,
//	    PollInterval:    5 * time.Second,
//	    MaxWarnings:     5,
//	    RestartCooldown: time.Second,
//	    Logger:          logger,
//	})
func New(cfg *Config) (*Supervisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid supervisor config: %w", err)
	}
	cfg.SetDefaults()

	s := &Supervisor{
		name:            cfg.Name,
		signal:          cfg.Signal,
		spawner:         cfg.Spawner,
		pollInterval:    cfg.PollInterval,
		maxWarnings:     cfg.MaxWarnings,
		restartCooldown: cfg.RestartCooldown,
		cancelAbandoned: cfg.CancelAbandonedWorkers,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		hooks:           *cfg.Hooks,
		reporter:        cfg.Reporter,
		sleep:           sleepContext,
		subscribers:     xsync.NewMap[uint64, *stateSubscriber](),
	}
	s.state.Store(int32(types.StateHealthy))

	return s, nil
}

// Run polls the signal every PollInterval until ctx is cancelled.
//
// The first poll happens one interval after Run is called. On cancellation
// the supervisor enters the Stopped state and Run returns nil; supervision
// itself never returns an error.
//
// Parameters:
//   - ctx: Supervision lifetime
//
// Returns:
//   - error: ErrSupervisorAlreadyRunning if Run is already active, nil otherwise
func (s *Supervisor) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return types.ErrSupervisorAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("supervisor started",
		"name", s.name,
		"poll_interval", s.pollInterval,
		"max_warnings", s.maxWarnings,
		"restart_cooldown", s.restartCooldown,
	)
	s.setState(ctx, types.StateHealthy)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.setState(ctx, types.StateStopped)
			s.logger.Info("supervisor stopped", "name", s.name, "restarts", s.restarts.Load())

			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one poll and returns the resulting state.
//
// Tick must not be called concurrently with itself or with Run.
//
// Parameters:
//   - ctx: Context for the cooldown wait, hooks and status reporting
//
// Returns:
//   - types.SupervisorState: State after the poll
func (s *Supervisor) Tick(ctx context.Context) types.SupervisorState {
	pulse := s.signal.CheckAndClear()
	s.lastPulse.Store(pulse)
	s.metrics.RecordPoll(pulse)

	if pulse {
		s.consecutiveMisses.Store(0)
		s.setState(ctx, types.StateHealthy)
	} else {
		misses := int(s.consecutiveMisses.Add(1))
		if misses <= s.maxWarnings {
			s.warn(ctx, misses)
		} else {
			s.restart(ctx, misses)
		}
	}

	s.metrics.SetConsecutiveMisses(s.ConsecutiveMisses())
	s.report(ctx)

	return s.State()
}

// warn handles a silent poll that is still within the warning budget.
func (s *Supervisor) warn(ctx context.Context, misses int) {
	s.logger.Warn("worker pulse not received",
		"name", s.name,
		"misses", misses,
		"max_warnings", s.maxWarnings,
	)
	s.metrics.RecordWarning()
	s.setState(ctx, types.StateDegraded)

	go func() {
		if err := s.hooks.OnWarning(ctx, misses); err != nil {
			s.logger.Error("warning hook error", "misses", misses, "error", err)
		}
	}()
}

// restart declares the current worker dead and spawns the next generation.
func (s *Supervisor) restart(ctx context.Context, misses int) {
	s.setState(ctx, types.StateRestarting)
	s.logger.Error("worker has terminated",
		"name", s.name,
		"misses", misses,
		"generation", s.currentGeneration(),
	)

	if !s.sleep(ctx, s.restartCooldown) {
		s.logger.Info("restart abandoned: supervisor stopping", "name", s.name)
		return
	}

	s.logger.Info("restarting worker", "name", s.name)

	handle := s.StartWorker()
	restarts := s.restarts.Add(1)
	s.metrics.RecordRestart(handle.Generation())

	s.consecutiveMisses.Store(0)
	s.setState(ctx, types.StateHealthy)

	s.logger.Info("worker restarted",
		"name", s.name,
		"generation", handle.Generation(),
		"worker_id", handle.ID(),
		"restarts", restarts,
	)

	go func() {
		if err := s.hooks.OnRestart(ctx, handle.Generation()); err != nil {
			s.logger.Error("restart hook error", "generation", handle.Generation(), "error", err)
		}
	}()
}

// StartWorker spawns a new worker generation and makes it current.
//
// The previous handle, if any, is abandoned. It is cancelled only when
// CancelAbandonedWorkers is set.
//
// Returns:
//   - types.WorkerHandle: Handle of the new current worker
func (s *Supervisor) StartWorker() types.WorkerHandle {
	handle := s.spawner.Spawn()

	s.mu.Lock()
	prev := s.current
	s.current = handle
	s.mu.Unlock()

	if prev != nil && s.cancelAbandoned {
		s.logger.Debug("cancelling abandoned worker",
			"generation", prev.Generation(),
			"worker_id", prev.ID(),
		)
		prev.Cancel()
	}

	return handle
}

// setState records a transition and notifies metrics, hooks and subscribers.
func (s *Supervisor) setState(ctx context.Context, to types.SupervisorState) {
	from := types.SupervisorState(s.state.Swap(int32(to)))
	if from == to {
		return
	}

	s.logger.Debug("state transition", "name", s.name, "from", from.String(), "to", to.String())
	s.metrics.RecordStateTransition(from, to)

	go func() {
		if err := s.hooks.OnStateChanged(ctx, from, to); err != nil {
			s.logger.Error("state change hook error", "from", from, "to", to, "error", err)
		}
	}()

	s.subscribers.Range(func(_ uint64, sub *stateSubscriber) bool {
		sub.trySend(to)
		return true
	})
}

// report hands the current status to the reporter, if any.
func (s *Supervisor) report(ctx context.Context) {
	if s.reporter == nil {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	if err := s.reporter.Report(rctx, s.Status()); err != nil {
		s.metrics.RecordStatusReport(false)
		s.logger.Warn("failed to report status", "name", s.name, "error", err)

		return
	}

	s.metrics.RecordStatusReport(true)
}

// Subscribe returns a channel that receives state changes.
//
// The current state is sent immediately. The channel is buffered; if the
// subscriber falls behind, intermediate states are dropped.
//
// Returns:
//   - <-chan types.SupervisorState: Channel of state changes
//   - func(): Unsubscribe function that closes the channel
//
// Example:
//
//	ch, unsubscribe := sup.Subscribe()
//	defer unsubscribe()
//	for state := range ch {
//	    fmt.Println("supervisor is now", state)
//	}
func (s *Supervisor) Subscribe() (<-chan types.SupervisorState, func()) {
	id := s.nextSubscriberID.Add(1)

	// Room for a full Degraded -> Restarting -> Healthy cycle plus the initial state.
	sub := &stateSubscriber{ch: make(chan types.SupervisorState, 4)}
	s.subscribers.Store(id, sub)

	sub.trySend(s.State())

	unsubscribe := func() {
		if sub, ok := s.subscribers.LoadAndDelete(id); ok {
			sub.close()
		}
	}

	return sub.ch, unsubscribe
}

// State returns the current supervisor state.
func (s *Supervisor) State() types.SupervisorState {
	return types.SupervisorState(s.state.Load())
}

// ConsecutiveMisses returns the number of silent polls in a row.
func (s *Supervisor) ConsecutiveMisses() int {
	return int(s.consecutiveMisses.Load())
}

// Restarts returns the number of restarts performed.
func (s *Supervisor) Restarts() uint64 {
	return s.restarts.Load()
}

// Current returns the handle of the current worker, or nil before the first spawn.
func (s *Supervisor) Current() types.WorkerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Status returns a snapshot of the supervision loop.
func (s *Supervisor) Status() types.Status {
	state := s.State()
	st := types.Status{
		Name:              s.name,
		State:             state,
		StateName:         state.String(),
		PulseObserved:     s.lastPulse.Load(),
		ConsecutiveMisses: s.ConsecutiveMisses(),
		MaxWarnings:       s.maxWarnings,
		Restarts:          s.restarts.Load(),
		ObservedAt:        time.Now(),
	}

	if h := s.Current(); h != nil {
		st.Generation = h.Generation()
		st.WorkerID = h.ID()
	}

	return st
}

func (s *Supervisor) currentGeneration() uint64 {
	if h := s.Current(); h != nil {
		return h.Generation()
	}

	return 0
}

// sleepContext sleeps for d and reports false if ctx ended first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
