package supervisor

import (
	"fmt"
	"time"

	"github.com/sakky016/ApplicationWatchdog/internal/hooks"
	"github.com/sakky016/ApplicationWatchdog/internal/logging"
	"github.com/sakky016/ApplicationWatchdog/internal/metrics"
	"github.com/sakky016/ApplicationWatchdog/types"
)

// DefaultName is used when Config.Name is empty.
const DefaultName = "watchdog"

// Checker is the read side of a liveness signal.
type Checker interface {
	CheckAndClear() bool
}

// Config holds supervisor configuration.
//
// Required fields must be set before calling New. Optional fields are set to
// defaults if zero-valued.
type Config struct {
	// Required dependencies
	Signal  Checker
	Spawner types.Spawner

	// Required configuration
	PollInterval time.Duration // Interval between polls
	MaxWarnings  int           // Silent polls tolerated before restart (0 restarts on first miss)

	// Optional configuration
	Name                   string        // Application name in logs and status (default: "watchdog")
	RestartCooldown        time.Duration // Pause between death detection and respawn (0 for none)
	CancelAbandonedWorkers bool          // Cancel the previous generation on restart

	// Optional dependencies
	Logger   types.Logger           // Logger (default: no-op)
	Metrics  types.MetricsCollector // Metrics collector (default: no-op)
	Hooks    *types.Hooks           // Lifecycle hooks (default: none)
	Reporter types.StatusReporter   // Status sink (default: none)
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Signal == nil {
		return types.ErrSignalRequired
	}
	if c.Spawner == nil {
		return types.ErrSpawnerRequired
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: PollInterval must be positive, got %v", types.ErrInvalidConfig, c.PollInterval)
	}
	if c.MaxWarnings < 0 {
		return fmt.Errorf("%w: MaxWarnings must be >= 0, got %d", types.ErrInvalidConfig, c.MaxWarnings)
	}
	if c.RestartCooldown < 0 {
		return fmt.Errorf("%w: RestartCooldown must be >= 0, got %v", types.ErrInvalidConfig, c.RestartCooldown)
	}

	return nil
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
	filled := hooks.Fill(c.Hooks)
	c.Hooks = &filled
}
