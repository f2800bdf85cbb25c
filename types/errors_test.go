package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("wrapped errors keep identity", func(t *testing.T) {
		wrapped := fmt.Errorf("building launcher: %w", ErrTaskFactoryRequired)
		require.ErrorIs(t, wrapped, ErrTaskFactoryRequired)
		require.NotErrorIs(t, wrapped, ErrInvalidConfig)
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrInvalidConfig,
			ErrTaskFactoryRequired,
			ErrSpawnerRequired,
			ErrSignalRequired,
			ErrSupervisorAlreadyRunning,
			ErrPublisherAlreadyStarted,
			ErrPublisherNotStarted,
			ErrStatusNotFound,
			ErrNoKeysFound,
			ErrConnectivity,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}

func TestIsNoKeysFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrNoKeysFound, true},
		{"wrapped sentinel", fmt.Errorf("listing: %w", ErrNoKeysFound), true},
		{"nats message", errors.New("nats: no keys found"), true},
		{"wrapped nats message", fmt.Errorf("failed to list: %w", errors.New("nats: no keys found")), true},
		{"other error", errors.New("nats: timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsNoKeysFoundError(tt.err))
		})
	}
}
