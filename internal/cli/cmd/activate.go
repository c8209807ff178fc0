package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/ipc"
	"github.com/berrythewa/quicklaunch/internal/platform"
	"github.com/berrythewa/quicklaunch/internal/types"
)

func newActivateCmd() *cobra.Command {
	var pid int

	cmd := &cobra.Command{
		Use:   "activate [target]",
		Short: "Bring a running launcher forward",
		Long: `Send an activation to the running launcher without starting a new one.

Fails when no launcher is running. Useful for window manager key bindings.
With --signal the launcher running as the given pid is sent SIGUSR1 instead,
which restores the last used target.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("signal") {
				if len(args) > 0 {
					return fmt.Errorf("--signal cannot carry a target")
				}
				if pid <= 0 {
					return fmt.Errorf("invalid pid %d", pid)
				}
				if err := platform.SignalActivation(pid); err != nil {
					return fmt.Errorf("failed to signal launcher %d: %w", pid, err)
				}
				GetZapLogger().Debug("Sent activation signal", zap.Int("pid", pid))
				return nil
			}

			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			msg := types.ActivationMessage{Target: strings.Join(args, " ")}
			if err := ipc.Send(cmd.Context(), cfg.SocketPath(), msg, cfg.IPC.DialTimeout); err != nil {
				return fmt.Errorf("no running launcher: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pid, "signal", 0, "Signal the launcher running as this pid instead of using the socket")
	return cmd
}
