package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that
// constructing a PrometheusCollector never panics on duplicate registration
// unless it is actually exercised.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	polls             *prometheus.CounterVec
	consecutiveMisses prometheus.Gauge
	warnings          prometheus.Counter
	restarts          prometheus.Counter
	generation        prometheus.Gauge
	stateTransitions  *prometheus.CounterVec
	currentState      *prometheus.GaugeVec
	workerStarts      prometheus.Counter
	workerStops       *prometheus.CounterVec
	iterationDuration prometheus.Histogram
	statusReports     *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "watchdog" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "watchdog"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.polls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "polls_total",
			Help:      "Total supervisor polls by result (pulse, miss).",
		}, []string{"result"})

		p.consecutiveMisses = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "consecutive_misses",
			Help:      "Current number of consecutive polls without a pulse.",
		})

		p.warnings = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "warnings_total",
			Help:      "Total missed-pulse warnings emitted below the restart threshold.",
		})

		p.restarts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "restarts_total",
			Help:      "Total worker restarts triggered by the supervisor.",
		})

		p.generation = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "generation",
			Help:      "Generation number of the most recently started worker.",
		})

		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "state_transitions_total",
			Help:      "Total supervisor state transitions by source and target state.",
		}, []string{"from", "to"})

		p.currentState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "supervisor",
			Name:      "state",
			Help:      "Current supervisor state (1 for the active state, 0 otherwise).",
		}, []string{"state"})

		p.workerStarts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "starts_total",
			Help:      "Total worker generations started.",
		})

		p.workerStops = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "stops_total",
			Help:      "Total worker loop exits by reason (task_stop, panic, cancelled).",
		}, []string{"reason"})

		p.iterationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "iteration_duration_seconds",
			Help:      "Duration of worker task steps in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms .. ~20s
		})

		p.statusReports = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "status",
			Name:      "reports_total",
			Help:      "Total status mirror publications by result (success, failure).",
		}, []string{"result"})

		p.reg.MustRegister(p.polls)
		p.reg.MustRegister(p.consecutiveMisses)
		p.reg.MustRegister(p.warnings)
		p.reg.MustRegister(p.restarts)
		p.reg.MustRegister(p.generation)
		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.currentState)
		p.reg.MustRegister(p.workerStarts)
		p.reg.MustRegister(p.workerStops)
		p.reg.MustRegister(p.iterationDuration)
		p.reg.MustRegister(p.statusReports)
	})
}

// RecordPoll increments the poll counter for the given outcome.
func (p *PrometheusCollector) RecordPoll(pulse bool) {
	p.ensureRegistered()
	p.polls.WithLabelValues(resultLabel(pulse, "pulse", "miss")).Inc()
}

// SetConsecutiveMisses sets the consecutive miss gauge.
func (p *PrometheusCollector) SetConsecutiveMisses(count int) {
	p.ensureRegistered()
	p.consecutiveMisses.Set(float64(count))
}

// RecordWarning increments the warning counter.
func (p *PrometheusCollector) RecordWarning() {
	p.ensureRegistered()
	p.warnings.Inc()
}

// RecordRestart increments the restart counter.
func (p *PrometheusCollector) RecordRestart(_ uint64) {
	p.ensureRegistered()
	p.restarts.Inc()
}

// RecordStateTransition counts the transition and moves the current-state gauge.
func (p *PrometheusCollector) RecordStateTransition(from, to types.SupervisorState) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.currentState.WithLabelValues(from.String()).Set(0)
	p.currentState.WithLabelValues(to.String()).Set(1)
}

// RecordWorkerStarted increments worker starts and updates the generation gauge.
func (p *PrometheusCollector) RecordWorkerStarted(generation uint64) {
	p.ensureRegistered()
	p.workerStarts.Inc()
	p.generation.Set(float64(generation))
}

// RecordWorkerStopped increments worker stops for the given reason.
func (p *PrometheusCollector) RecordWorkerStopped(reason string) {
	p.ensureRegistered()
	p.workerStops.WithLabelValues(reason).Inc()
}

// RecordIteration observes a task step duration in seconds.
func (p *PrometheusCollector) RecordIteration(duration float64) {
	p.ensureRegistered()
	p.iterationDuration.Observe(duration)
}

// RecordStatusReport increments the status report counter.
func (p *PrometheusCollector) RecordStatusReport(success bool) {
	p.ensureRegistered()
	p.statusReports.WithLabelValues(resultLabel(success, "success", "failure")).Inc()
}

func resultLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}

	return no
}
