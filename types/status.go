package types

import (
	"context"
	"time"
)

// Status is a point-in-time snapshot of the supervision loop.
//
// A Status is produced after every poll and handed to the configured
// StatusReporter, which may mirror it to an external store.
type Status struct {
	// Name identifies the supervised application.
	Name string `json:"name"`

	// State is the supervisor state after the poll.
	State SupervisorState `json:"-"`

	// StateName is State rendered as a string, kept for JSON consumers.
	StateName string `json:"state"`

	// PulseObserved reports whether the poll found a pulse.
	PulseObserved bool `json:"pulse_observed"`

	// ConsecutiveMisses is the number of silent polls in a row.
	ConsecutiveMisses int `json:"consecutive_misses"`

	// MaxWarnings is the configured warning threshold.
	MaxWarnings int `json:"max_warnings"`

	// Generation is the generation number of the current worker.
	Generation uint64 `json:"generation"`

	// WorkerID is the ID of the current worker run.
	WorkerID string `json:"worker_id"`

	// Restarts is the total number of restarts performed since startup.
	Restarts uint64 `json:"restarts"`

	// ObservedAt is the time the poll completed.
	ObservedAt time.Time `json:"observed_at"`
}

// StatusReporter receives a Status after every poll.
//
// Implementations must be safe for use from the supervisor goroutine and should
// return quickly; errors are logged by the supervisor and never stop supervision.
type StatusReporter interface {
	// Report publishes the status snapshot.
	//
	// Parameters:
	//   - ctx: Context bounding the report operation
	//   - status: Snapshot to publish
	//
	// Returns:
	//   - error: Publication failure, logged by the caller
	Report(ctx context.Context, status Status) error
}
