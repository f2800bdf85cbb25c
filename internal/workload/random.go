// Package workload provides the simulated application driven by the watchdog binary.
package workload

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// DefaultCrashRatio is the fraction of the maximum iteration duration above which
// an iteration is treated as a crash.
const DefaultCrashRatio = 0.8

// Random simulates an application with unpredictable iteration times.
//
// Each step draws a duration uniformly from [0, maxDuration). If the draw
// exceeds crashRatio*maxDuration the step reports StepStop without sleeping,
// simulating a crash. Otherwise it sleeps for the drawn duration and continues.
type Random struct {
	generation  uint64
	maxDuration time.Duration
	crashRatio  float64
	logger      types.Logger
	sleep       func(ctx context.Context, d time.Duration) bool

	mu  sync.Mutex
	rng *rand.Rand
}

// Compile-time assertion that Random implements Task.
var _ types.Task = (*Random)(nil)

// NewRandom creates a random workload for one worker generation.
//
// Parameters:
//   - generation: Worker generation, used in log fields
//   - maxDuration: Exclusive upper bound of an iteration (must be > 0)
//   - crashRatio: Crash threshold as a fraction of maxDuration, in (0, 1]
//   - rng: Random source; nil uses a randomly seeded PCG source
//   - logger: Logger for iteration events
//
// Returns:
//   - *Random: A new workload
func NewRandom(
	generation uint64,
	maxDuration time.Duration,
	crashRatio float64,
	rng *rand.Rand,
	logger types.Logger,
) *Random {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // simulation only
	}

	return &Random{
		generation:  generation,
		maxDuration: maxDuration,
		crashRatio:  crashRatio,
		logger:      logger,
		sleep:       sleepContext,
		rng:         rng,
	}
}

// Factory returns a TaskFactory creating an independently seeded Random
// workload per generation.
//
// Parameters:
//   - maxDuration: Exclusive upper bound of an iteration
//   - crashRatio: Crash threshold as a fraction of maxDuration
//   - logger: Logger for iteration events
//
// Returns:
//   - types.TaskFactory: Factory suitable for watchdog.NewLauncher
func Factory(maxDuration time.Duration, crashRatio float64, logger types.Logger) types.TaskFactory {
	return func(generation uint64) types.Task {
		return NewRandom(generation, maxDuration, crashRatio, nil, logger)
	}
}

// Step runs one simulated iteration.
func (r *Random) Step(ctx context.Context) types.StepResult {
	d := r.draw()

	r.logger.Info("iteration duration",
		"generation", r.generation,
		"duration_ms", d.Milliseconds(),
	)

	if r.crashes(d) {
		return types.StepStop
	}

	if !r.sleep(ctx, d) {
		return types.StepStop
	}

	return types.StepContinue
}

func (r *Random) draw() time.Duration {
	if r.maxDuration <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return time.Duration(r.rng.Int64N(int64(r.maxDuration)))
}

// crashes reports whether d lies strictly above the crash threshold.
func (r *Random) crashes(d time.Duration) bool {
	return float64(d) > r.crashRatio*float64(r.maxDuration)
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
