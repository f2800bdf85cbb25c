package types

import "context"

// Hooks defines callbacks for supervision events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the polling loop. Hooks receive the supervisor's lifecycle
// context which will be cancelled when supervision stops.
//
// Hook execution behavior:
//   - Hooks run concurrently and may complete out of order
//   - Hook errors are logged but never affect supervision
//
// Example:
//
//	hooks := &watchdog.Hooks{
//	    OnRestart: func(ctx context.Context, generation uint64) error {
//	        alerts.Send(fmt.Sprintf("worker restarted, generation %d", generation))
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called when the supervisor state changes.
	OnStateChanged func(ctx context.Context, from, to SupervisorState) error

	// OnWarning is called on every silent poll that does not yet trigger a restart.
	// misses is the current consecutive miss count (1..maxWarnings).
	OnWarning func(ctx context.Context, misses int) error

	// OnRestart is called after a new worker generation has been spawned.
	OnRestart func(ctx context.Context, generation uint64) error
}
