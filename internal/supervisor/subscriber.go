package supervisor

import (
	"sync"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// stateSubscriber receives state changes without ever blocking the poll loop.
type stateSubscriber struct {
	ch     chan types.SupervisorState
	mu     sync.Mutex
	closed bool
}

// trySend delivers state if the buffer has room; slow subscribers miss it.
func (s *stateSubscriber) trySend(state types.SupervisorState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- state:
	default:
	}
}

func (s *stateSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
