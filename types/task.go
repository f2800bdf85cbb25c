package types

import "context"

// StepResult tells a worker whether to keep running after one step of its task.
type StepResult int

const (
	// StepContinue asks the worker to pulse and run another step.
	StepContinue StepResult = iota

	// StepStop ends the worker loop. The supervisor is not told; it notices the
	// missing pulses on its own.
	StepStop
)

// String returns the string representation of the step result.
func (r StepResult) String() string {
	switch r {
	case StepContinue:
		return "continue"
	case StepStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Task is the supervised application logic.
//
// A worker calls Step repeatedly, emitting a pulse before every call. A Step may
// take any amount of time; the supervisor only notices when no pulse arrives
// for several poll intervals in a row.
//
// Implementations should return promptly with StepStop when ctx is cancelled.
type Task interface {
	// Step performs one unit of work.
	//
	// Parameters:
	//   - ctx: Worker context, cancelled only when the worker itself is cancelled
	//
	// Returns:
	//   - StepResult: StepContinue to run again, StepStop to terminate the worker
	Step(ctx context.Context) StepResult
}

// TaskFunc adapts an ordinary function to the Task interface.
type TaskFunc func(ctx context.Context) StepResult

// Step calls f(ctx).
func (f TaskFunc) Step(ctx context.Context) StepResult {
	return f(ctx)
}

// TaskFactory creates the task for a new worker generation.
//
// Generation numbers start at 1 for the first worker and increase by one on
// every restart.
type TaskFactory func(generation uint64) Task
