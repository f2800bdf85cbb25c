package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the watchdog.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// External errors are wrapped with context using fmt.Errorf("%s: %w", msg, err).

// Launcher errors - Public API errors returned when wiring the watchdog.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTaskFactoryRequired is returned when no task factory is provided.
	ErrTaskFactoryRequired = errors.New("task factory is required")

	// ErrSpawnerRequired is returned when a supervisor is built without a spawner.
	ErrSpawnerRequired = errors.New("spawner is required")

	// ErrSignalRequired is returned when a component is built without a liveness signal.
	ErrSignalRequired = errors.New("liveness signal is required")
)

// Supervisor errors - Internal polling loop errors.
var (
	// ErrSupervisorAlreadyRunning is returned when Run is called on a running supervisor.
	ErrSupervisorAlreadyRunning = errors.New("supervisor already running")
)

// Status publisher errors - NATS KV status mirror errors.
var (
	// ErrPublisherAlreadyStarted is returned when Start is called on a running publisher.
	ErrPublisherAlreadyStarted = errors.New("status publisher already started")

	// ErrPublisherNotStarted is returned when Report or Stop is called before Start.
	ErrPublisherNotStarted = errors.New("status publisher not started")

	// ErrStatusNotFound is returned when no status has been mirrored under a key.
	ErrStatusNotFound = errors.New("status not found")

	// ErrConnectivity is returned when the status mirror cannot reach NATS.
	ErrConnectivity = errors.New("status mirror connectivity error")
)

// Common errors - Shared errors used across multiple components.
var (
	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// NATS reports the condition as "nats: no keys found", possibly wrapped, so the
// message is matched in addition to the sentinel.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found, false otherwise
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
