//go:build !windows

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

func activationSignals() []os.Signal {
	return []os.Signal{unix.SIGUSR1}
}

// SignalActivation asks the instance running as pid to activate
func SignalActivation(pid int) error {
	return unix.Kill(pid, unix.SIGUSR1)
}
