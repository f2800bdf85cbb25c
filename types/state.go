package types

// SupervisorState represents the state of the supervision state machine.
//
// States follow this progression, evaluated once per poll:
//
//	Healthy → Degraded(1) → ... → Degraded(maxWarnings) → Restarting → Healthy
//
// Any observed pulse returns the machine to Healthy. Stopped is only entered
// when the supervision loop is cancelled.
type SupervisorState int

const (
	// StateHealthy indicates a pulse was observed on the last poll (consecutive misses = 0).
	StateHealthy SupervisorState = iota

	// StateDegraded indicates 1..maxWarnings consecutive polls without a pulse.
	StateDegraded

	// StateRestarting indicates the miss threshold was exceeded and a new worker is being spawned.
	StateRestarting

	// StateStopped indicates the supervision loop has exited.
	StateStopped
)

// String returns the string representation of the state.
func (s SupervisorState) String() string {
	switch s {
	case StateHealthy:
		return "Healthy"
	case StateDegraded:
		return "Degraded"
	case StateRestarting:
		return "Restarting"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// ParseSupervisorState converts a state name produced by String back into a state.
//
// Returns:
//   - SupervisorState: Parsed state
//   - bool: false if name is not a known state
func ParseSupervisorState(name string) (SupervisorState, bool) {
	for _, s := range []SupervisorState{StateHealthy, StateDegraded, StateRestarting, StateStopped} {
		if s.String() == name {
			return s, true
		}
	}

	return StateHealthy, false
}
