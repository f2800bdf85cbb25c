// Package metrics provides types.MetricsCollector implementations and the
// HTTP endpoint that exposes them.
package metrics

import "github.com/sakky016/ApplicationWatchdog/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when metrics are disabled.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	launcher, err := watchdog.NewLauncher(&cfg, factory, watchdog.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SupervisorMetrics implementation

// RecordPoll discards the poll outcome.
func (n *NopMetrics) RecordPoll(_ /* pulse */ bool) {}

// SetConsecutiveMisses discards the miss gauge.
func (n *NopMetrics) SetConsecutiveMisses(_ /* count */ int) {}

// RecordWarning discards the warning counter.
func (n *NopMetrics) RecordWarning() {}

// RecordRestart discards the restart counter.
func (n *NopMetrics) RecordRestart(_ /* generation */ uint64) {}

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.SupervisorState) {}

// WorkerMetrics implementation

// RecordWorkerStarted discards the worker start metric.
func (n *NopMetrics) RecordWorkerStarted(_ /* generation */ uint64) {}

// RecordWorkerStopped discards the worker stop metric.
func (n *NopMetrics) RecordWorkerStopped(_ /* reason */ string) {}

// RecordIteration discards the iteration duration.
func (n *NopMetrics) RecordIteration(_ /* duration */ float64) {}

// StatusMetrics implementation

// RecordStatusReport discards the status report outcome.
func (n *NopMetrics) RecordStatusReport(_ /* success */ bool) {}
