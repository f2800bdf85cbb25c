package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// Stop reasons reported to metrics and logs when a worker loop exits.
const (
	StopReasonTask      = "task_stop"
	StopReasonPanic     = "panic"
	StopReasonCancelled = "cancelled"
)

// Pulser is the write side of a liveness signal.
type Pulser interface {
	Signal()
}

// Worker drives a task and pulses the liveness signal before every step.
type Worker struct {
	id         string
	generation uint64
	pulser     Pulser
	task       types.Task
	logger     types.Logger
	metrics    types.WorkerMetrics
}

// New creates a worker for one generation.
//
// Parameters:
//   - generation: 1-based generation number
//   - pulser: Liveness signal shared with the supervisor
//   - task: Task to drive
//   - logger: Logger for worker events
//   - metrics: Metrics collector for worker events
//
// Returns:
//   - *Worker: A worker ready to Run or Spawn
func New(
	generation uint64,
	pulser Pulser,
	task types.Task,
	logger types.Logger,
	metrics types.WorkerMetrics,
) *Worker {
	return &Worker{
		id:         uuid.NewString(),
		generation: generation,
		pulser:     pulser,
		task:       task,
		logger:     logger,
		metrics:    metrics,
	}
}

// ID returns the unique identifier of this worker run.
func (w *Worker) ID() string {
	return w.id
}

// Generation returns the generation number of this worker.
func (w *Worker) Generation() uint64 {
	return w.generation
}

// Run executes the worker loop in the calling goroutine.
//
// Run returns when the task answers StepStop, when the task panics, or when
// ctx is cancelled.
//
// Parameters:
//   - ctx: Worker context
//
// Returns:
//   - string: Stop reason (StopReasonTask, StopReasonPanic or StopReasonCancelled)
func (w *Worker) Run(ctx context.Context) string {
	w.logger.Info("worker started", "worker_id", w.id, "generation", w.generation)
	w.metrics.RecordWorkerStarted(w.generation)

	reason := w.loop(ctx)

	w.logger.Info("worker terminated",
		"worker_id", w.id,
		"generation", w.generation,
		"reason", reason,
	)
	w.metrics.RecordWorkerStopped(reason)

	return reason
}

func (w *Worker) loop(ctx context.Context) string {
	for {
		if ctx.Err() != nil {
			return StopReasonCancelled
		}

		w.pulser.Signal()

		start := time.Now()
		result, err := w.step(ctx)
		elapsed := time.Since(start)

		if err != nil {
			w.logger.Error("worker task panicked",
				"worker_id", w.id,
				"generation", w.generation,
				"error", err,
			)

			return StopReasonPanic
		}

		w.metrics.RecordIteration(elapsed.Seconds())
		w.logger.Debug("worker iteration completed",
			"worker_id", w.id,
			"generation", w.generation,
			"elapsed", elapsed,
			"result", result.String(),
		)

		if result == types.StepStop {
			if ctx.Err() != nil {
				return StopReasonCancelled
			}

			return StopReasonTask
		}
	}
}

// step runs one task step, converting a panic into an error.
func (w *Worker) step(ctx context.Context) (result types.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()

	return w.task.Step(ctx), nil
}

// Spawn starts Run on a new goroutine and returns a handle for it.
//
// The worker context is derived from ctx; cancelling ctx or calling
// Handle.Cancel stops tasks that honor their context.
//
// Parameters:
//   - ctx: Parent context for the worker
//
// Returns:
//   - *Handle: Handle for the spawned generation
func (w *Worker) Spawn(ctx context.Context) *Handle {
	wctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:         w.id,
		generation: w.generation,
		done:       make(chan struct{}),
		cancel:     cancel,
	}

	go func() {
		defer close(h.done)
		defer cancel()

		reason := w.Run(wctx)
		h.setReason(reason)
	}()

	return h
}

// Handle references a spawned worker generation.
type Handle struct {
	id         string
	generation uint64
	done       chan struct{}
	cancel     context.CancelFunc

	mu     sync.Mutex
	reason string
}

// Compile-time assertion that Handle implements WorkerHandle.
var _ types.WorkerHandle = (*Handle)(nil)

// ID returns the unique identifier of the worker run.
func (h *Handle) ID() string {
	return h.id
}

// Generation returns the generation number of the worker.
func (h *Handle) Generation() uint64 {
	return h.generation
}

// Done returns a channel closed after the worker loop returns.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Cancel cancels the worker context.
func (h *Handle) Cancel() {
	h.cancel()
}

// StopReason returns the reason the worker stopped, or "" while it is running.
func (h *Handle) StopReason() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.reason
}

func (h *Handle) setReason(reason string) {
	h.mu.Lock()
	h.reason = reason
	h.mu.Unlock()
}
