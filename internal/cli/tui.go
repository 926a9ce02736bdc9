package cli

import (
	"github.com/spf13/cobra"
)

// newTUICommand creates the tui command for launching the interactive TUI.
// It is the same as running tasktree without arguments.
func newTUICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Long:  `Launch the interactive tree view for browsing tasks and moving them through their lifecycle.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), e)
		},
	}
}
