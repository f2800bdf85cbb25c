// Package types provides core type definitions and interfaces for the watchdog.
//
// This package contains shared types that are used across multiple packages in the
// module. By keeping these types in a separate package, the root watchdog package and
// its internal implementations (supervisor, worker, heartbeat) can share them without
// import cycles.
//
// Key types:
//   - SupervisorState: Supervision state machine state (Healthy, Degraded, Restarting)
//   - Task: One unit of supervised work, driven step by step by a worker
//   - WorkerHandle: Reference to one worker generation
//   - Status: Snapshot published after every poll
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
