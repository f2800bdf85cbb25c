package watchdog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sakky016/ApplicationWatchdog/internal/logging"
)

// LoggingConfig controls the structured logger built by the CLI.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled starts an HTTP server exposing /metrics and /health.
	Enabled bool `yaml:"enabled"`

	// Addr is the listen address of the metrics server.
	Addr string `yaml:"addr"`
}

// StatusConfig controls mirroring of the supervisor status into NATS KV.
type StatusConfig struct {
	// Enabled turns on the status mirror.
	Enabled bool `yaml:"enabled"`

	// NATSURL is the NATS server URL.
	NATSURL string `yaml:"natsUrl"`

	// Bucket is the KV bucket holding status entries.
	Bucket string `yaml:"bucket"`

	// Prefix is the key prefix; entries are stored under "<Prefix>.<Name>".
	Prefix string `yaml:"prefix"`

	// TTL is how long an entry survives without being rewritten.
	// Must be longer than PollInterval; the publisher refreshes at TTL/3.
	TTL time.Duration `yaml:"ttl"`
}

// Config is the configuration for the Launcher.
//
// All duration fields accept standard Go duration strings like "5s", "100ms".
type Config struct {
	// Name identifies the supervised application in logs and status entries.
	Name string `yaml:"name"`

	// PollInterval is how often the supervisor checks for a pulse.
	PollInterval time.Duration `yaml:"pollInterval"`

	// MaxIterationDuration bounds one iteration of the simulated workload.
	// It does not affect supervision.
	MaxIterationDuration time.Duration `yaml:"maxIterationDuration"`

	// MaxWarnings is the number of consecutive silent polls tolerated before the
	// worker is declared dead. The restart happens on poll MaxWarnings+1;
	// 0 restarts on the first silent poll.
	MaxWarnings int `yaml:"maxWarnings"`

	// RestartCooldown is the pause between declaring the worker dead and
	// spawning its replacement.
	RestartCooldown time.Duration `yaml:"restartCooldown"`

	// SettleDelay is the pause between starting the supervisor and spawning the
	// first worker.
	SettleDelay time.Duration `yaml:"settleDelay"`

	// CrashRatio is the fraction of MaxIterationDuration above which the
	// simulated workload crashes. Must be in (0, 1].
	CrashRatio float64 `yaml:"crashRatio"`

	// CancelAbandonedWorkers cancels the previous worker's context on restart
	// instead of leaving it running.
	CancelAbandonedWorkers bool `yaml:"cancelAbandonedWorkers"`

	// Logging configures the CLI logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Status configures the NATS KV status mirror.
	Status StatusConfig `yaml:"status"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Name:                 "watchdog",
		PollInterval:         5 * time.Second,
		MaxIterationDuration: 10 * time.Second,
		MaxWarnings:          5,
		RestartCooldown:      1 * time.Second,
		SettleDelay:          100 * time.Millisecond,
		CrashRatio:           0.8,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Status: StatusConfig{
			NATSURL: "nats://127.0.0.1:4222",
			Bucket:  "watchdog-status",
			Prefix:  "status",
			TTL:     30 * time.Second,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// MaxWarnings, RestartCooldown and SettleDelay are left alone because zero is
// a meaningful value for each.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.MaxIterationDuration == 0 {
		cfg.MaxIterationDuration = defaults.MaxIterationDuration
	}
	if cfg.CrashRatio == 0 {
		cfg.CrashRatio = defaults.CrashRatio
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaults.Metrics.Addr
	}
	if cfg.Status.NATSURL == "" {
		cfg.Status.NATSURL = defaults.Status.NATSURL
	}
	if cfg.Status.Bucket == "" {
		cfg.Status.Bucket = defaults.Status.Bucket
	}
	if cfg.Status.Prefix == "" {
		cfg.Status.Prefix = defaults.Status.Prefix
	}
	if cfg.Status.TTL == 0 {
		cfg.Status.TTL = defaults.Status.TTL
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - PollInterval > 0
//   - MaxIterationDuration > 0
//   - MaxWarnings >= 0
//   - RestartCooldown >= 0 and SettleDelay >= 0
//   - 0 < CrashRatio <= 1
//   - Logging.Level is a known level, Logging.Format is "text" or "json"
//   - Metrics.Addr is set when metrics are enabled
//   - Status.NATSURL, Status.Bucket and Status.Prefix are set, and
//     Status.TTL > PollInterval, when the status mirror is enabled
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.PollInterval <= 0 {
		return invalidf("PollInterval must be > 0, got %v", cfg.PollInterval)
	}

	if cfg.MaxIterationDuration <= 0 {
		return invalidf("MaxIterationDuration must be > 0, got %v", cfg.MaxIterationDuration)
	}

	if cfg.MaxWarnings < 0 {
		return invalidf("MaxWarnings must be >= 0, got %d", cfg.MaxWarnings)
	}

	if cfg.RestartCooldown < 0 {
		return invalidf("RestartCooldown must be >= 0, got %v", cfg.RestartCooldown)
	}

	if cfg.SettleDelay < 0 {
		return invalidf("SettleDelay must be >= 0, got %v", cfg.SettleDelay)
	}

	if cfg.CrashRatio <= 0 || cfg.CrashRatio > 1 {
		return invalidf("CrashRatio must be in (0, 1], got %v", cfg.CrashRatio)
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return invalidf("Logging.Level: %v", err)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return invalidf("Logging.Format must be \"text\" or \"json\", got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return invalidf("Metrics.Addr is required when metrics are enabled")
	}

	if cfg.Status.Enabled {
		if cfg.Status.NATSURL == "" {
			return invalidf("Status.NATSURL is required when the status mirror is enabled")
		}
		if cfg.Status.Bucket == "" {
			return invalidf("Status.Bucket is required when the status mirror is enabled")
		}
		if cfg.Status.Prefix == "" {
			return invalidf("Status.Prefix is required when the status mirror is enabled")
		}
		if cfg.Status.TTL <= cfg.PollInterval {
			return invalidf(
				"Status.TTL (%v) must be > PollInterval (%v) so entries outlive one poll",
				cfg.Status.TTL, cfg.PollInterval,
			)
		}
	}

	return nil
}

// ValidateWithWarnings logs warnings for legal but questionable values.
//
// This is called after Validate() in NewLauncher() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// A healthy iteration longer than the detection window is indistinguishable
	// from a dead worker.
	window := cfg.PollInterval * time.Duration(cfg.MaxWarnings+1)
	if cfg.MaxIterationDuration >= window {
		logger.Warn(
			"MaxIterationDuration reaches the detection window, slow iterations will trigger restarts",
			"maxIterationDuration", cfg.MaxIterationDuration,
			"detectionWindow", window,
		)
	}

	if cfg.CrashRatio == 1 {
		logger.Warn("CrashRatio is 1, the simulated workload never crashes")
	}

	if cfg.RestartCooldown >= cfg.PollInterval {
		logger.Warn(
			"RestartCooldown is not shorter than PollInterval, polls will be skipped during restarts",
			"restartCooldown", cfg.RestartCooldown,
			"pollInterval", cfg.PollInterval,
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := watchdog.TestConfig()
//	cfg.MaxWarnings = 1
//	launcher, err := watchdog.NewLauncher(&cfg, factory)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.PollInterval = 50 * time.Millisecond        // 100x faster
	cfg.MaxIterationDuration = 20 * time.Millisecond // 500x faster
	cfg.MaxWarnings = 2
	cfg.RestartCooldown = 10 * time.Millisecond // 100x faster
	cfg.SettleDelay = 5 * time.Millisecond      // 20x faster
	cfg.Status.TTL = 5 * time.Second

	return cfg
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
//
// Fields missing from the file keep their default values.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Loaded configuration (not yet validated)
//   - error: Read or decode error
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
