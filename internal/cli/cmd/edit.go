package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/config"
)

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit targets and settings in your preferred editor",
		Long: `Open the configuration file in $VISUAL or $EDITOR.

A running launcher picks up target changes as soon as the file is saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			configPath := cfg.SystemPaths.ActiveConfig

			// If config doesn't exist, create with defaults
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.DefaultConfig().Save(configPath); err != nil {
					return fmt.Errorf("failed to create default config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Created new configuration file with defaults")
			}

			editor := editorCommand()
			editorCmd := exec.Command(editor[0], append(editor[1:], configPath)...)
			editorCmd.Stdin = os.Stdin
			editorCmd.Stdout = os.Stdout
			editorCmd.Stderr = os.Stderr

			GetZapLogger().Debug("Opening editor",
				zap.Strings("editor", editor),
				zap.String("config_path", configPath))

			if err := editorCmd.Run(); err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}

			if err := validateConfig(configPath); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: Configuration validation failed: %v\n", err)
				fmt.Fprintln(cmd.OutOrStdout(), "The file has been saved, but may contain errors.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated and validated successfully")
			return nil
		},
	}
}

// editorCommand splits $VISUAL or $EDITOR so values like "code -w" work
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	if runtime.GOOS == "windows" {
		return []string{"notepad"}
	}
	return []string{"vi"}
}

func validateConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := config.Parse(data)
	if err != nil {
		return err
	}
	return cfg.Validate()
}
