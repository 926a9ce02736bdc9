package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a tasktree data directory",
		Long: `Initialize a tasktree data directory (default: ./.tasktree).

This command creates:
- the task store (tasks.json or tasks.db, per [tasks] store)
- logs/: directory for the global and per-task logs

Running init again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := e.c.InitRepoUseCase().Execute(cmd.Context(), usecase.InitRepoInput{
				DataDir: e.c.Config.DataDir,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "Already initialized in %s\n", out.DataDir)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Initialized tasktree in %s\n", out.DataDir)
			if out.GitignoreNeedsAdd {
				_, _ = fmt.Fprintln(w, "Hint: add the data directory to .gitignore if it should stay local")
			}
			return nil
		},
	}
}
