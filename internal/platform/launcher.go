// Package platform launches URLs and detached commands and delivers
// OS activation signals.
package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

// ErrEmptyCommand is returned when a command line holds no words
var ErrEmptyCommand = errors.New("empty command")

// LauncherOptions configures a Launcher
type LauncherOptions struct {
	// Opener replaces the platform URL opener. It receives the URL as its only argument.
	Opener string
	// Shell opts in to running commands as `Shell -c command`. Without it
	// the command line is split into words and executed directly.
	Shell  string
	Logger *zap.Logger
}

// Launcher starts processes that outlive qlaunch. Each child runs in its own
// session and is reaped by a background goroutine.
type Launcher struct {
	opener string
	shell  string
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewLauncher creates a launcher for the current platform
func NewLauncher(opts LauncherOptions) *Launcher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Launcher{
		opener: opts.Opener,
		shell:  opts.Shell,
		logger: opts.Logger,
	}
}

// OpenURL opens url with the desktop's default handler
func (l *Launcher) OpenURL(url string) error {
	var cmd *exec.Cmd
	if l.opener != "" {
		cmd = exec.Command(l.opener, url)
	} else {
		cmd = openURLCommand(url)
	}
	return l.start(cmd)
}

// SpawnDetached runs command without waiting for it. The line is split with
// shell quoting rules but no shell sees it, so metacharacters in an argument
// stay literal words.
func (l *Launcher) SpawnDetached(command string) error {
	if l.shell != "" {
		return l.start(exec.Command(l.shell, "-c", command))
	}

	args, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("failed to split command %q: %w", command, err)
	}
	if len(args) == 0 {
		return ErrEmptyCommand
	}
	return l.start(exec.Command(args[0], args[1:]...))
}

// wait blocks until every launched process has exited and been reaped
func (l *Launcher) wait() {
	l.wg.Wait()
}

func (l *Launcher) start(cmd *exec.Cmd) error {
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	pid := cmd.Process.Pid
	l.logger.Debug("Started detached process", zap.Int("pid", pid), zap.Strings("args", cmd.Args))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		// Wait releases the process handle
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("Detached process exited", zap.Int("pid", pid), zap.Error(err))
			return
		}
		l.logger.Debug("Detached process exited", zap.Int("pid", pid))
	}()
	return nil
}
