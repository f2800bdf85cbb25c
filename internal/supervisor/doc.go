// Package supervisor implements the polling state machine that watches a
// worker's liveness signal and restarts the worker when it goes silent.
//
// # State Machine
//
//	Healthy ──miss──▶ Degraded(n) ──miss, n > maxWarnings──▶ Restarting ──spawn──▶ Healthy
//	   ▲                  │
//	   └──────pulse───────┘
//
// Every poll calls CheckAndClear on the signal:
//
//   - Pulse observed: consecutive misses reset to 0, state Healthy
//   - No pulse and misses <= maxWarnings: warning logged, state Degraded
//   - No pulse and misses > maxWarnings: the worker is declared dead, the
//     supervisor waits the restart cooldown, spawns a new generation, resets
//     misses to 0 and returns to Healthy
//
// A worker is therefore declared dead after exactly maxWarnings+1 consecutive
// silent polls. The supervisor has no other channel to the worker: a worker
// that stops and a worker that hangs look the same.
//
// # Abandoned Workers
//
// The previous generation's handle is dropped on restart. By default it is not
// cancelled, so a hung worker keeps its goroutine. Set CancelAbandonedWorkers
// to cancel its context instead; this only helps tasks that honor ctx.
//
// # Driving the Loop
//
// Run polls on a ticker until its context is cancelled and then enters the
// Stopped state. Tick performs exactly one poll and is exported so tests and
// embedders can drive the state machine deterministically.
package supervisor
