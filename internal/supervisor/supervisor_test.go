package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakky016/ApplicationWatchdog/internal/liveness"
	"github.com/sakky016/ApplicationWatchdog/internal/metrics"
	"github.com/sakky016/ApplicationWatchdog/internal/worker"
	wdtest "github.com/sakky016/ApplicationWatchdog/testing"
	"github.com/sakky016/ApplicationWatchdog/types"
)

type fakeHandle struct {
	generation uint64
	done       chan struct{}
	cancelled  atomic.Bool
}

func (h *fakeHandle) ID() string            { return fmt.Sprintf("worker-%d", h.generation) }
func (h *fakeHandle) Generation() uint64    { return h.generation }
func (h *fakeHandle) Done() <-chan struct{} { return h.done }
func (h *fakeHandle) Cancel()               { h.cancelled.Store(true) }

type fakeSpawner struct {
	mu      sync.Mutex
	handles []*fakeHandle
}

func (s *fakeSpawner) Spawn() types.WorkerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &fakeHandle{generation: uint64(len(s.handles) + 1), done: make(chan struct{})}
	s.handles = append(s.handles, h)

	return h
}

func (s *fakeSpawner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.handles)
}

type recordingMetrics struct {
	metrics.NopMetrics

	warnings atomic.Int64
	restarts atomic.Int64
	polls    atomic.Int64
	reports  atomic.Int64
	failures atomic.Int64
}

func (m *recordingMetrics) RecordPoll(bool)      { m.polls.Add(1) }
func (m *recordingMetrics) RecordWarning()       { m.warnings.Add(1) }
func (m *recordingMetrics) RecordRestart(uint64) { m.restarts.Add(1) }

func (m *recordingMetrics) RecordStatusReport(ok bool) {
	if ok {
		m.reports.Add(1)
		return
	}
	m.failures.Add(1)
}

type recordingReporter struct {
	mu       sync.Mutex
	statuses []types.Status
	err      error
}

func (r *recordingReporter) Report(_ context.Context, status types.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses = append(r.statuses, status)

	return r.err
}

func (r *recordingReporter) last() types.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.statuses[len(r.statuses)-1]
}

type testEnv struct {
	sup      *Supervisor
	signal   *liveness.Signal
	spawner  *fakeSpawner
	metrics  *recordingMetrics
	cooldown *[]time.Duration
}

func newTestEnv(t *testing.T, mutate func(cfg *Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		signal:  liveness.New(),
		spawner: &fakeSpawner{},
		metrics: &recordingMetrics{},
	}

	cfg := &Config{
		Signal:          env.signal,
		Spawner:         env.spawner,
		PollInterval:    5 * time.Second,
		MaxWarnings:     5,
		RestartCooldown: time.Second,
		Logger:          wdtest.NewTestLogger(t),
		Metrics:         env.metrics,
	}
	if mutate != nil {
		mutate(cfg)
	}

	sup, err := New(cfg)
	require.NoError(t, err)

	var slept []time.Duration
	sup.sleep = func(ctx context.Context, d time.Duration) bool {
		slept = append(slept, d)
		return ctx.Err() == nil
	}

	env.sup = sup
	env.cooldown = &slept

	return env
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Signal:       liveness.New(),
			Spawner:      &fakeSpawner{},
			PollInterval: time.Second,
			MaxWarnings:  5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"zero warnings allowed", func(c *Config) { c.MaxWarnings = 0 }, nil},
		{"missing signal", func(c *Config) { c.Signal = nil }, types.ErrSignalRequired},
		{"missing spawner", func(c *Config) { c.Spawner = nil }, types.ErrSpawnerRequired},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, types.ErrInvalidConfig},
		{"negative warnings", func(c *Config) { c.MaxWarnings = -1 }, types.ErrInvalidConfig},
		{"negative cooldown", func(c *Config) { c.RestartCooldown = -time.Second }, types.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			_, err := New(cfg)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	require.Equal(t, DefaultName, cfg.Name)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Metrics)
	require.NotNil(t, cfg.Hooks)
	require.NotNil(t, cfg.Hooks.OnStateChanged)
	require.NotNil(t, cfg.Hooks.OnWarning)
	require.NotNil(t, cfg.Hooks.OnRestart)
}

func TestSupervisor_Tick(t *testing.T) {
	t.Run("pulse keeps misses at zero", func(t *testing.T) {
		env := newTestEnv(t, nil)

		for range 10 {
			env.signal.Signal()
			require.Equal(t, types.StateHealthy, env.sup.Tick(t.Context()))
			require.Zero(t, env.sup.ConsecutiveMisses())
		}

		require.Zero(t, env.spawner.count())
		require.Zero(t, env.metrics.warnings.Load())
	})

	t.Run("pulse after warnings resets to healthy", func(t *testing.T) {
		env := newTestEnv(t, nil)

		env.sup.Tick(t.Context())
		env.sup.Tick(t.Context())
		require.Equal(t, 2, env.sup.ConsecutiveMisses())
		require.Equal(t, types.StateDegraded, env.sup.State())

		env.signal.Signal()
		require.Equal(t, types.StateHealthy, env.sup.Tick(t.Context()))
		require.Zero(t, env.sup.ConsecutiveMisses())
	})

	t.Run("restart happens on exactly poll maxWarnings+1", func(t *testing.T) {
		for _, maxWarnings := range []int{0, 1, 3, 5} {
			env := newTestEnv(t, func(cfg *Config) { cfg.MaxWarnings = maxWarnings })

			for i := 1; i <= maxWarnings; i++ {
				require.Equal(t, types.StateDegraded, env.sup.Tick(t.Context()), "poll %d", i)
				require.Equal(t, i, env.sup.ConsecutiveMisses())
				require.Zero(t, env.spawner.count())
			}

			require.Equal(t, types.StateHealthy, env.sup.Tick(t.Context()))
			require.Equal(t, 1, env.spawner.count())
			require.Zero(t, env.sup.ConsecutiveMisses())
			require.Equal(t, uint64(1), env.sup.Restarts())
		}
	})

	t.Run("default scenario warns five times then restarts after cooldown", func(t *testing.T) {
		env := newTestEnv(t, nil)
		ctx := t.Context()

		for range 5 {
			env.sup.Tick(ctx)
		}
		require.Equal(t, int64(5), env.metrics.warnings.Load())
		require.Empty(t, *env.cooldown)
		require.Zero(t, env.spawner.count())

		env.sup.Tick(ctx)
		require.Equal(t, []time.Duration{time.Second}, *env.cooldown)
		require.Equal(t, 1, env.spawner.count())
		require.Equal(t, int64(1), env.metrics.restarts.Load())
		require.Equal(t, int64(5), env.metrics.warnings.Load())
		require.Equal(t, int64(6), env.metrics.polls.Load())
	})

	t.Run("after restart the next silence warns again", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) { cfg.MaxWarnings = 2 })
		ctx := t.Context()

		for range 3 {
			env.sup.Tick(ctx)
		}
		require.Equal(t, 1, env.spawner.count())

		env.signal.Signal()
		require.Equal(t, types.StateHealthy, env.sup.Tick(ctx))

		require.Equal(t, types.StateDegraded, env.sup.Tick(ctx))
		require.Equal(t, 1, env.sup.ConsecutiveMisses())
	})

	t.Run("cancelled cooldown skips the spawn", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) { cfg.MaxWarnings = 0 })

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		require.Equal(t, types.StateRestarting, env.sup.Tick(ctx))
		require.Zero(t, env.spawner.count())
	})
}

func TestSupervisor_AbandonedWorkers(t *testing.T) {
	t.Run("previous generation is abandoned by default", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) { cfg.MaxWarnings = 0 })

		env.sup.StartWorker()
		env.sup.Tick(t.Context())

		require.Equal(t, 2, env.spawner.count())
		require.False(t, env.spawner.handles[0].cancelled.Load())
		require.Equal(t, uint64(2), env.sup.Current().Generation())
	})

	t.Run("previous generation is cancelled when configured", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) {
			cfg.MaxWarnings = 0
			cfg.CancelAbandonedWorkers = true
		})

		env.sup.StartWorker()
		env.sup.Tick(t.Context())

		require.True(t, env.spawner.handles[0].cancelled.Load())
		require.False(t, env.spawner.handles[1].cancelled.Load())
	})
}

func TestSupervisor_Hooks(t *testing.T) {
	var (
		warnings    atomic.Int64
		restarted   atomic.Uint64
		transitions atomic.Int64
	)

	env := newTestEnv(t, func(cfg *Config) {
		cfg.MaxWarnings = 1
		cfg.Hooks = &types.Hooks{
			OnWarning: func(_ context.Context, _ int) error {
				warnings.Add(1)
				return nil
			},
			OnRestart: func(_ context.Context, generation uint64) error {
				restarted.Store(generation)
				return errors.New("hook failure is only logged")
			},
			OnStateChanged: func(_ context.Context, _, _ types.SupervisorState) error {
				transitions.Add(1)
				return nil
			},
		}
	})

	env.sup.Tick(t.Context())
	env.sup.Tick(t.Context())

	// Healthy -> Degraded -> Restarting -> Healthy
	require.Eventually(t, func() bool {
		return warnings.Load() == 1 && restarted.Load() == 1 && transitions.Load() == 3
	}, time.Second, 5*time.Millisecond)
}

func TestSupervisor_Subscribe(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) { cfg.MaxWarnings = 1 })

	ch, unsubscribe := env.sup.Subscribe()
	require.Equal(t, types.StateHealthy, <-ch)

	env.sup.Tick(t.Context())
	require.Equal(t, types.StateDegraded, <-ch)

	env.sup.Tick(t.Context())
	require.Equal(t, types.StateRestarting, <-ch)
	require.Equal(t, types.StateHealthy, <-ch)

	unsubscribe()
	_, ok := <-ch
	require.False(t, ok)

	// Unsubscribing twice is harmless.
	unsubscribe()
}

func TestSupervisor_Status(t *testing.T) {
	t.Run("reports a snapshot after every tick", func(t *testing.T) {
		reporter := &recordingReporter{}
		env := newTestEnv(t, func(cfg *Config) {
			cfg.Name = "billing"
			cfg.MaxWarnings = 1
			cfg.Reporter = reporter
		})

		env.sup.StartWorker()

		env.sup.Tick(t.Context())
		st := reporter.last()
		require.Equal(t, "billing", st.Name)
		require.Equal(t, types.StateDegraded, st.State)
		require.Equal(t, "Degraded", st.StateName)
		require.False(t, st.PulseObserved)
		require.Equal(t, 1, st.ConsecutiveMisses)
		require.Equal(t, 1, st.MaxWarnings)
		require.Equal(t, uint64(1), st.Generation)

		env.sup.Tick(t.Context())
		st = reporter.last()
		require.Equal(t, types.StateHealthy, st.State)
		require.Equal(t, uint64(2), st.Generation)
		require.Equal(t, uint64(1), st.Restarts)
		require.Zero(t, st.ConsecutiveMisses)

		env.signal.Signal()
		env.sup.Tick(t.Context())
		require.True(t, reporter.last().PulseObserved)
		require.Equal(t, int64(3), env.metrics.reports.Load())
	})

	t.Run("reporter failure does not affect supervision", func(t *testing.T) {
		reporter := &recordingReporter{err: errors.New("kv unavailable")}
		env := newTestEnv(t, func(cfg *Config) {
			cfg.MaxWarnings = 0
			cfg.Reporter = reporter
		})

		require.Equal(t, types.StateHealthy, env.sup.Tick(t.Context()))
		require.Equal(t, 1, env.spawner.count())
		require.Equal(t, int64(1), env.metrics.failures.Load())
	})
}

func TestSupervisor_Run(t *testing.T) {
	t.Run("restarts a silent worker and stops on cancel", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) {
			cfg.PollInterval = 5 * time.Millisecond
			cfg.MaxWarnings = 2
		})

		ctx, cancel := context.WithCancel(t.Context())
		errCh := make(chan error, 1)
		go func() { errCh <- env.sup.Run(ctx) }()

		require.Eventually(t, func() bool {
			return env.sup.Restarts() >= 2
		}, 2*time.Second, 5*time.Millisecond)

		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}

		require.Equal(t, types.StateStopped, env.sup.State())
	})

	t.Run("rejects concurrent Run", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *Config) { cfg.PollInterval = time.Hour })

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = env.sup.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			env.sup.mu.Lock()
			defer env.sup.mu.Unlock()

			return env.sup.running
		}, time.Second, 5*time.Millisecond)

		require.ErrorIs(t, env.sup.Run(ctx), types.ErrSupervisorAlreadyRunning)

		cancel()
		<-done
	})

	t.Run("worker pulsing faster than the poll interval is never restarted", func(t *testing.T) {
		signal := liveness.New()
		logger := wdtest.NewTestLogger(t)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		var generation atomic.Uint64
		spawner := types.SpawnerFunc(func() types.WorkerHandle {
			task := types.TaskFunc(func(ctx context.Context) types.StepResult {
				select {
				case <-ctx.Done():
					return types.StepStop
				case <-time.After(2 * time.Millisecond):
					return types.StepContinue
				}
			})
			w := worker.New(generation.Add(1), signal, task, logger, metrics.NewNop())

			return w.Spawn(ctx)
		})

		sup, err := New(&Config{
			Signal:       signal,
			Spawner:      spawner,
			PollInterval: 25 * time.Millisecond,
			MaxWarnings:  0,
			Logger:       logger,
		})
		require.NoError(t, err)

		sup.StartWorker()

		for range 8 {
			time.Sleep(25 * time.Millisecond)
			require.Equal(t, types.StateHealthy, sup.Tick(ctx))
		}

		require.Zero(t, sup.Restarts())
		require.Equal(t, uint64(1), generation.Load())
	})
}
