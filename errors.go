package watchdog

import "github.com/sakky016/ApplicationWatchdog/types"

// Sentinel errors returned by the Launcher and its components.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrTaskFactoryRequired is returned when NewLauncher gets a nil task factory.
	ErrTaskFactoryRequired = types.ErrTaskFactoryRequired

	// ErrAlreadyRunning is returned when Run is called on a running launcher.
	ErrAlreadyRunning = types.ErrSupervisorAlreadyRunning

	// ErrStatusNotFound is returned when no status has been mirrored for a name.
	ErrStatusNotFound = types.ErrStatusNotFound

	// ErrConnectivity is returned when the status mirror cannot reach NATS.
	ErrConnectivity = types.ErrConnectivity
)
