package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/workload"
)

// newWorkloadCommand creates the workload command.
func newWorkloadCommand(e *env) *cobra.Command {
	var opts struct {
		Detailed bool
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:   "workload [user]",
		Short: "Show a user's workload",
		Long: `Show how many tasks a user owns in each status.

The user defaults to --owner. With --detailed, root tasks and subtasks
are listed separately together with counts by priority.

Examples:
  tasktree workload
  tasktree workload bob --detailed
  tasktree workload bob --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var user string
			if len(args) == 1 {
				user = args[0]
			} else {
				owner, err := e.requireOwner()
				if err != nil {
					return err
				}
				user = owner
			}

			agg := e.c.Workload()
			w := cmd.OutOrStdout()

			if opts.Detailed {
				detail, err := agg.Detailed(ctx, user)
				if err != nil {
					return err
				}
				if opts.JSON {
					return writeJSON(w, detail)
				}
				printDetailedWorkload(w, detail)
				return nil
			}

			hist, err := agg.StatusHistogram(ctx, user)
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(w, hist)
			}
			_, _ = fmt.Fprintf(w, "Workload for %s\n\n", user)
			printStatusCounts(w, hist)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "List tasks and priority counts")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStatusCounts prints one row per status in lifecycle order.
func printStatusCounts(w io.Writer, counts map[domain.Status]int) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	for _, s := range domain.AllStatuses() {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", s.Display(), counts[s])
	}
}

func printDetailedWorkload(w io.Writer, d *workload.Detail) {
	_, _ = fmt.Fprintf(w, "Workload for %s: %d tasks (%d root, %d subtasks)\n\n",
		d.OwnerID, d.Summary.Total, d.Summary.TotalRootTasks, d.Summary.TotalSubtasks)

	_, _ = fmt.Fprintln(w, "[By status]")
	printStatusCounts(w, d.StatusCount)

	_, _ = fmt.Fprintln(w, "\n[By priority]")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, p := range domain.AllPriorities() {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", p, d.PriorityCount[p])
	}
	_ = tw.Flush()

	if len(d.RootTasks) > 0 {
		_, _ = fmt.Fprintln(w, "\n[Root tasks]")
		printTaskList(w, d.RootTasks)
	}
	if len(d.Subtasks) > 0 {
		_, _ = fmt.Fprintln(w, "\n[Subtasks]")
		printTaskList(w, d.Subtasks)
	}
}
