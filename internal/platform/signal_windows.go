//go:build windows

package platform

import (
	"errors"
	"os"
)

func activationSignals() []os.Signal {
	return nil
}

// SignalActivation is not available on windows
func SignalActivation(pid int) error {
	return errors.New("activation signals are not supported on windows")
}
