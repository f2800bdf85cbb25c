// Command watchdog supervises a simulated application through a liveness pulse.
package main

import (
	"os"

	"github.com/sakky016/ApplicationWatchdog/cmd/watchdog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
