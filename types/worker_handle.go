package types

// WorkerHandle is an opaque reference to one running worker generation.
//
// The supervisor keeps only the handle of the latest generation. Older handles
// are dropped without being joined, so an abandoned worker may keep running.
type WorkerHandle interface {
	// ID returns the unique identifier of this worker run.
	ID() string

	// Generation returns the 1-based generation number of this worker.
	Generation() uint64

	// Done returns a channel closed when the worker loop has returned.
	Done() <-chan struct{}

	// Cancel cancels the worker's context. Tasks that honor ctx will stop.
	Cancel()
}

// Spawner starts new worker generations on behalf of the supervisor.
type Spawner interface {
	// Spawn starts a new worker in the background and returns its handle.
	//
	// Spawn must not block on the worker's execution.
	Spawn() WorkerHandle
}

// SpawnerFunc adapts an ordinary function to the Spawner interface.
type SpawnerFunc func() WorkerHandle

// Spawn calls f().
func (f SpawnerFunc) Spawn() WorkerHandle {
	return f()
}
