package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/usecase"
)

// newLogsCommand creates the logs command.
func newLogsCommand(e *env) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "Show the activity log",
		Long: `Show the global activity log, or a single task's log.

A task's log is kept after the task is deleted.

Examples:
  tasktree logs
  tasktree logs 0199a1 -n 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var taskID string
			if len(args) == 1 {
				id, err := e.resolveID(cmd.Context(), args[0])
				switch {
				case errors.Is(err, domain.ErrTaskNotFound):
					// A deleted task's log has no record to resolve against.
					taskID = strings.TrimPrefix(args[0], "#")
				case err != nil:
					return err
				default:
					taskID = id
				}
			}

			out, err := e.c.ShowLogsUseCase().Execute(cmd.Context(), usecase.ShowLogsInput{
				TaskID: taskID,
				Lines:  lines,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to show from the end (0 = all)")

	return cmd
}
