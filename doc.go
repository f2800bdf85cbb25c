// Package watchdog supervises a worker through a liveness pulse and restarts
// it when the pulse goes silent.
//
// A worker emits a pulse before every step of its task. A supervisor polls the
// pulse on a fixed interval, counts consecutive silent polls, logs a warning
// while the count is within MaxWarnings and, once it is exceeded, waits a
// short cooldown and spawns a fresh worker generation.
//
// # Quick Start
//
//	cfg := watchdog.DefaultConfig()
//
//	factory := func(generation uint64) watchdog.Task {
//	    return watchdog.TaskFunc(func(ctx context.Context) watchdog.StepResult {
//	        if err := doWork(ctx); err != nil {
//	            return watchdog.StepStop // supervisor will notice the silence
//	        }
//	        return watchdog.StepContinue
//	    })
//	}
//
//	launcher, err := watchdog.NewLauncher(&cfg, factory)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Blocks until ctx is cancelled.
//	_ = launcher.Run(ctx)
//
// # Supervision Timeline
//
// With the defaults (PollInterval 5s, MaxWarnings 5, RestartCooldown 1s) a
// worker that stops right after a poll is handled like this:
//
//	T+5s..T+25s  polls 1-5 find no pulse, one warning each (Degraded)
//	T+30s        poll 6 finds no pulse, worker declared dead (Restarting)
//	T+31s        cooldown over, generation N+1 spawned, misses reset (Healthy)
//
// # Abandoned Workers
//
// The supervisor cannot tell a crashed worker from a hung one. On restart the
// old generation is abandoned; it is not joined and, unless
// CancelAbandonedWorkers is set, not cancelled either.
//
// # Observability
//
// Structured logs go through the Logger interface (log/slog in the CLI).
// Prometheus metrics are available through internal/metrics, and the
// supervisor status can be mirrored to NATS KV with WithStatusReporter.
//
// See cmd/watchdog for the complete binary.
package watchdog
