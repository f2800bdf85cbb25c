package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, component-focused interfaces.
type MetricsCollector interface {
	SupervisorMetrics
	WorkerMetrics
	StatusMetrics
}

// SupervisorMetrics defines metrics for the polling loop.
type SupervisorMetrics interface {
	// RecordPoll records the outcome of one poll.
	//
	// Parameters:
	//   - pulse: true if a pulse was observed, false on a miss
	RecordPoll(pulse bool)

	// SetConsecutiveMisses sets the current consecutive miss count (gauge metric).
	SetConsecutiveMisses(count int)

	// RecordWarning records a missed-pulse warning.
	RecordWarning()

	// RecordRestart records a supervisor-initiated restart.
	//
	// Parameters:
	//   - generation: Generation number of the newly spawned worker
	RecordRestart(generation uint64)

	// RecordStateTransition records a supervisor state transition.
	RecordStateTransition(from, to SupervisorState)
}

// WorkerMetrics defines metrics for worker generations.
type WorkerMetrics interface {
	// RecordWorkerStarted records the start of a worker generation.
	RecordWorkerStarted(generation uint64)

	// RecordWorkerStopped records a worker loop exit.
	//
	// Parameters:
	//   - reason: Exit reason ("task_stop", "panic", "cancelled")
	RecordWorkerStopped(reason string)

	// RecordIteration records one completed task step.
	//
	// Parameters:
	//   - duration: Step duration in seconds
	RecordIteration(duration float64)
}

// StatusMetrics defines metrics for status mirroring.
type StatusMetrics interface {
	// RecordStatusReport records a status publication attempt.
	RecordStatusReport(success bool)
}
