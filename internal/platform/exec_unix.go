//go:build !windows

package platform

import (
	"os/exec"
	"runtime"
	"syscall"
)

func openURLCommand(url string) *exec.Cmd {
	if runtime.GOOS == "darwin" {
		return exec.Command("open", url)
	}
	return exec.Command("xdg-open", url)
}

// detach starts the child in a new session so it survives the launcher and
// never receives the terminal's signals.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
