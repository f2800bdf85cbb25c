package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/sakky016/ApplicationWatchdog/types"
)

func TestPrometheusCollector_Defaults(t *testing.T) {
	p := NewPrometheus(nil, "")

	require.Equal(t, prometheus.DefaultRegisterer, p.reg)
	require.Equal(t, "watchdog", p.namespace)
}

func TestPrometheusCollector_RecordsSupervisorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordPoll(true)
	p.RecordPoll(false)
	p.RecordPoll(false)
	p.SetConsecutiveMisses(2)
	p.RecordWarning()
	p.RecordWarning()
	p.RecordRestart(2)
	p.RecordStateTransition(types.StateHealthy, types.StateDegraded)

	require.InDelta(t, 1, testutil.ToFloat64(p.polls.WithLabelValues("pulse")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.polls.WithLabelValues("miss")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.consecutiveMisses), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.warnings), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.restarts), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.stateTransitions.WithLabelValues("Healthy", "Degraded")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.currentState.WithLabelValues("Degraded")), 0)
	require.InDelta(t, 0, testutil.ToFloat64(p.currentState.WithLabelValues("Healthy")), 0)
}

func TestPrometheusCollector_RecordsWorkerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordWorkerStarted(1)
	p.RecordWorkerStarted(2)
	p.RecordWorkerStopped("task_stop")
	p.RecordIteration(0.5)
	p.RecordStatusReport(true)
	p.RecordStatusReport(false)

	require.InDelta(t, 2, testutil.ToFloat64(p.workerStarts), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.generation), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.workerStops.WithLabelValues("task_stop")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.statusReports.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.statusReports.WithLabelValues("failure")), 0)

	count, err := testutil.GatherAndCount(reg, "test_worker_iteration_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
