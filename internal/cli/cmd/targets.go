package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/berrythewa/quicklaunch/internal/types"
)

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List configured launch targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTargets(cfg.Targets))
			return nil
		},
	}
}

func renderTargets(targets []types.Target) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "COMMAND", "QUERY", "FORMAT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, target := range targets {
		format := string(target.Format)
		if target.Query == "" {
			format = "-"
		} else if format == "" {
			format = string(types.FormatAuto)
		}
		t.Row(target.Name, target.Command, target.Query, format)
	}
	return t.Render()
}
