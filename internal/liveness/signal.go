// Package liveness provides the shared pulse flag between a worker and its supervisor.
//
// A Signal holds a single "pulse received since last check" bit. The worker
// sets it with Signal on every iteration; the supervisor reads and clears it
// with CheckAndClear once per poll. Both operations take the same mutex, so a
// pulse that races a check is either observed by that check or left for the
// next one, never lost and never counted twice.
package liveness

import "sync"

// Signal is a mutex-guarded pulse flag.
//
// The zero value is ready to use and reports no pulse. A Signal must not be
// copied after first use; share it by pointer.
type Signal struct {
	mu            sync.Mutex
	pulseReceived bool
}

// New creates a Signal with no pulse recorded.
func New() *Signal {
	return &Signal{}
}

// Signal records a pulse.
//
// Repeated calls before the next CheckAndClear coalesce into one pulse.
func (s *Signal) Signal() {
	s.mu.Lock()
	s.pulseReceived = true
	s.mu.Unlock()
}

// CheckAndClear reports whether a pulse was recorded since the previous call
// and resets the flag.
//
// Returns:
//   - bool: true if at least one Signal call happened since the last check
func (s *Signal) CheckAndClear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	received := s.pulseReceived
	s.pulseReceived = false

	return received
}
