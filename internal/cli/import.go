package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/usecase"
)

// newImportCommand creates the import command for creating tasks from a file.
func newImportCommand(e *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Create tasks from a file",
		Long: `Create one or more tasks from a Markdown file with frontmatter.
Use "-" to read from standard input. Every task is owned by --owner.

Tasks are created in file order. If one fails, the tasks before it
are kept and the rest are not created.

File format:
  ---
  title: Release 1.0
  deadline: 2026-03-01
  priority: high
  ---
  Description here.

  ---
  title: Write changelog
  deadline: 2026-02-20
  parent: 1          # Relative: refers to the 1st task in this file
  ---

  ---
  title: Update docs
  deadline: 2026-02-25
  parent: "#0199a1c2-..."   # Absolute: an existing task ID
  ---

Examples:
  tasktree import plan.md
  tasktree import plan.md --dry-run
  cat plan.md | tasktree import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := e.requireOwner()
			if err != nil {
				return err
			}

			var content []byte
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			out, err := e.c.ImportTasksUseCase().Execute(cmd.Context(), usecase.ImportTasksInput{
				Content: string(content),
				OwnerID: owner,
				DryRun:  dryRun,
			})
			if out != nil {
				printImported(cmd.OutOrStdout(), out.Tasks, dryRun)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without creating tasks")

	return cmd
}

// printImported prints the tasks an import created or would create.
func printImported(w io.Writer, tasks []usecase.ImportedTask, dryRun bool) {
	for i, task := range tasks {
		if dryRun {
			_, _ = fmt.Fprintf(w, "Task %d:\n", i+1)
		} else {
			_, _ = fmt.Fprintf(w, "Created task %s:\n", task.ID)
		}
		_, _ = fmt.Fprintf(w, "  Title: %s\n", task.Title)
		_, _ = fmt.Fprintf(w, "  Deadline: %s\n", task.Deadline.Format(time.RFC3339))
		_, _ = fmt.Fprintf(w, "  Priority: %s\n", task.Priority)
		if task.ParentID != "" {
			_, _ = fmt.Fprintf(w, "  Parent: %s\n", task.ParentID)
		}
	}

	if dryRun {
		_, _ = fmt.Fprintf(w, "\n%d task(s) would be created\n", len(tasks))
	} else {
		_, _ = fmt.Fprintf(w, "\nCreated %d task(s)\n", len(tasks))
	}
}
