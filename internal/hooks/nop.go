// Package hooks provides default implementations of supervision hooks.
package hooks

import (
	"context"

	"github.com/sakky016/ApplicationWatchdog/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.SupervisorState, types.SupervisorState) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, int) error                                          = (*NopHooks)(nil).OnWarning
	_ func(context.Context, uint64) error                                       = (*NopHooks)(nil).OnRestart
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged: h.OnStateChanged,
		OnWarning:      h.OnWarning,
		OnRestart:      h.OnRestart,
	}
}

// Fill returns a copy of h with every nil callback replaced by a no-op.
//
// Parameters:
//   - h: User-supplied hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks with all callbacks set
func Fill(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}

	if h.OnStateChanged != nil {
		out.OnStateChanged = h.OnStateChanged
	}
	if h.OnWarning != nil {
		out.OnWarning = h.OnWarning
	}
	if h.OnRestart != nil {
		out.OnRestart = h.OnRestart
	}

	return out
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.SupervisorState) error {
	return nil
}

// OnWarning is a no-op implementation.
func (h *NopHooks) OnWarning(_ context.Context, _ int) error {
	return nil
}

// OnRestart is a no-op implementation.
func (h *NopHooks) OnRestart(_ context.Context, _ uint64) error {
	return nil
}
