package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupervisorStateString(t *testing.T) {
	tests := []struct {
		state SupervisorState
		want  string
	}{
		{StateHealthy, "Healthy"},
		{StateDegraded, "Degraded"},
		{StateRestarting, "Restarting"},
		{StateStopped, "Stopped"},
		{SupervisorState(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestSupervisorState_ZeroValueIsHealthy(t *testing.T) {
	var s SupervisorState
	require.Equal(t, StateHealthy, s)
}

func TestParseSupervisorState(t *testing.T) {
	for _, s := range []SupervisorState{StateHealthy, StateDegraded, StateRestarting, StateStopped} {
		got, ok := ParseSupervisorState(s.String())
		require.True(t, ok)
		require.Equal(t, s, got)
	}

	_, ok := ParseSupervisorState("Rebalancing")
	require.False(t, ok)
}
