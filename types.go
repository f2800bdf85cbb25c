package watchdog

import "github.com/sakky016/ApplicationWatchdog/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package, which
// avoids import cycles while still letting users write watchdog.Task,
// watchdog.Logger and so on.
type (
	SupervisorState = types.SupervisorState
	StepResult      = types.StepResult
	Status          = types.Status
	TaskFunc        = types.TaskFunc
	TaskFactory     = types.TaskFactory
)

// Re-export interfaces from the types package for convenience.
type (
	Task             = types.Task
	WorkerHandle     = types.WorkerHandle
	StatusReporter   = types.StatusReporter
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export constants from the types package.
const (
	StateHealthy    = types.StateHealthy
	StateDegraded   = types.StateDegraded
	StateRestarting = types.StateRestarting
	StateStopped    = types.StateStopped

	StepContinue = types.StepContinue
	StepStop     = types.StepStop
)
