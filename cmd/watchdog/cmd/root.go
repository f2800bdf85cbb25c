// Package cmd implements the watchdog command line.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	watchdog "github.com/sakky016/ApplicationWatchdog"
)

var (
	cfgFile      string
	outputFormat string

	// v holds flag and WATCHDOG_* environment overrides.
	v = viper.New()

	envReplacer = strings.NewReplacer("-", "_")
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "watchdog",
	Short: "Heartbeat supervisor for a long-running application",
	Long: `watchdog runs an application worker and a supervisor side by side. The worker
emits a pulse on every iteration; the supervisor polls for it, warns while the
pulse is missing and restarts the worker once too many polls in a row were silent.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format for status: table or json")

	rootCmd.PersistentFlags().String("name", "", "application name used in logs and status entries")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().String("nats-url", "", "NATS server URL for the status mirror")
	rootCmd.PersistentFlags().String("status-bucket", "", "NATS KV bucket holding status entries")
	rootCmd.PersistentFlags().String("status-prefix", "", "key prefix of status entries")

	bindFlags(rootCmd.PersistentFlags())
}

// initConfig reads ENV variables with the WATCHDOG_ prefix.
func initConfig() {
	v.SetEnvPrefix("WATCHDOG")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
}

// bindFlags exposes every flag in fs to viper under its own name.
func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "output" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then environment variables and flags.
func loadConfig() (watchdog.Config, error) {
	cfg := watchdog.DefaultConfig()

	if cfgFile != "" {
		loaded, err := watchdog.LoadConfig(cfgFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if err := applyOverrides(&cfg, v); err != nil {
		return cfg, err
	}

	watchdog.SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyOverrides copies every key set through flags or environment into cfg.
func applyOverrides(cfg *watchdog.Config, v *viper.Viper) error {
	if v.IsSet("name") {
		cfg.Name = v.GetString("name")
	}
	if v.IsSet("log-level") {
		cfg.Logging.Level = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.Logging.Format = v.GetString("log-format")
	}
	if v.IsSet("nats-url") {
		cfg.Status.NATSURL = v.GetString("nats-url")
	}
	if v.IsSet("status-bucket") {
		cfg.Status.Bucket = v.GetString("status-bucket")
	}
	if v.IsSet("status-prefix") {
		cfg.Status.Prefix = v.GetString("status-prefix")
	}
	if v.IsSet("status-ttl") {
		cfg.Status.TTL = v.GetDuration("status-ttl")
	}
	if v.IsSet("status") {
		cfg.Status.Enabled = v.GetBool("status")
	}
	if v.IsSet("poll-interval") {
		cfg.PollInterval = v.GetDuration("poll-interval")
	}
	if v.IsSet("max-iteration-duration") {
		cfg.MaxIterationDuration = v.GetDuration("max-iteration-duration")
	}
	if v.IsSet("max-warnings") {
		cfg.MaxWarnings = v.GetInt("max-warnings")
	}
	if v.IsSet("restart-cooldown") {
		cfg.RestartCooldown = v.GetDuration("restart-cooldown")
	}
	if v.IsSet("settle-delay") {
		cfg.SettleDelay = v.GetDuration("settle-delay")
	}
	if v.IsSet("crash-ratio") {
		cfg.CrashRatio = v.GetFloat64("crash-ratio")
	}
	if v.IsSet("cancel-abandoned") {
		cfg.CancelAbandonedWorkers = v.GetBool("cancel-abandoned")
	}
	if v.IsSet("metrics") {
		cfg.Metrics.Enabled = v.GetBool("metrics")
	}
	if v.IsSet("metrics-addr") {
		cfg.Metrics.Addr = v.GetString("metrics-addr")
	}

	switch outputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("unknown output format %q: use table or json", outputFormat)
	}

	return nil
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
