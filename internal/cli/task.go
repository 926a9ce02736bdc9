package cli

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/hierarchy"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(e *env) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Deadline    string
		Parent      string
		Priority    string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task owned by the acting user (--owner).

The task starts in status 'pending' with priority 'medium' unless
--priority is given. With --parent it is created as a subtask.

Deadlines are RFC3339 timestamps or dates (YYYY-MM-DD, end of day UTC).

Examples:
  # Create a root task
  tasktree new --title "Release 1.0" --deadline 2026-03-01

  # Create a subtask (IDs may be abbreviated to a unique prefix)
  tasktree new --parent 0199a1 --title "Write changelog" --deadline 2026-02-20

  # Create a task with body using HEREDOC
  tasktree new --title "Plan" --deadline 2026-03-01 --body "$(cat <<'EOF'
## Steps
- Step 1
EOF
)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			owner, err := e.requireOwner()
			if err != nil {
				return err
			}
			deadline, err := domain.ParseDeadline(opts.Deadline)
			if err != nil {
				return err
			}
			var priority domain.Priority
			if opts.Priority != "" {
				if priority, err = domain.ParsePriority(opts.Priority); err != nil {
					return fmt.Errorf("%w: %q", err, opts.Priority)
				}
			}

			in := hierarchy.CreateTaskInput{
				Deadline:    deadline,
				Title:       opts.Title,
				Description: opts.Description,
				OwnerID:     owner,
			}

			engine := e.c.Engine()
			var task *domain.Task
			if opts.Parent != "" {
				parentID, resolveErr := e.resolveID(ctx, opts.Parent)
				if errors.Is(resolveErr, domain.ErrTaskNotFound) {
					return fmt.Errorf("%w: %s", domain.ErrParentNotFound, opts.Parent)
				}
				if resolveErr != nil {
					return resolveErr
				}
				task, err = engine.CreateSubtask(ctx, hierarchy.CreateSubtaskInput{
					ParentID:        parentID,
					CreateTaskInput: in,
				})
			} else {
				task, err = engine.CreateTask(ctx, in)
			}
			if err != nil {
				return err
			}

			if priority != "" && priority != task.Priority {
				if err := engine.SetPriority(ctx, task.ID, priority); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&opts.Description, "body", "", "Task description")
	cmd.Flags().StringVar(&opts.Deadline, "deadline", "", "Due date, RFC3339 or YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "Parent task ID (creates a subtask)")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "Initial priority (low, medium, high, critical)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("deadline")

	return cmd
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(e *env) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

Output includes title, description, status, priority, owner,
deadline, parent and direct subtasks.

Examples:
  # Show task by ID prefix
  tasktree show 0199a1

  # Output in JSON format
  tasktree show 0199a1 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := e.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			engine := e.c.Engine()
			task, err := engine.GetTask(ctx, id)
			if err != nil {
				return err
			}
			children, err := engine.Children(ctx, id)
			if err != nil {
				return err
			}
			sortTasks(children)

			if opts.JSON {
				type jsonTask struct {
					*domain.Task
					Children []*domain.Task `json:"children"`
				}
				if children == nil {
					children = []*domain.Task{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(jsonTask{Task: task, Children: children})
			}

			printTaskDetails(cmd.OutOrStdout(), task, children)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// printTaskDetails prints a task in a human readable form.
func printTaskDetails(w io.Writer, task *domain.Task, children []*domain.Task) {
	_, _ = fmt.Fprintf(w, "# %s\n\n", task.Title)

	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", task.Description)
	}

	_, _ = fmt.Fprintf(w, "ID: %s\n", task.ID)
	_, _ = fmt.Fprintf(w, "Status: %s\n", task.Status.Display())
	_, _ = fmt.Fprintf(w, "Priority: %s\n", task.Priority)
	_, _ = fmt.Fprintf(w, "Owner: %s\n", task.OwnerID)
	_, _ = fmt.Fprintf(w, "Deadline: %s\n", task.Deadline.Format(time.RFC3339))
	if task.ParentID != nil {
		_, _ = fmt.Fprintf(w, "Parent: %s\n", *task.ParentID)
	}
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.Created.Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "Updated: %s\n", task.Updated.Format(time.RFC3339))

	if len(children) > 0 {
		_, _ = fmt.Fprintln(w, "\nSubtasks:")
		for _, child := range children {
			_, _ = fmt.Fprintf(w, "  %s [%s] %s\n", child.ID, child.Status, child.Title)
		}
	}
}

// newListCommand creates the list command for listing tasks.
func newListCommand(e *env) *cobra.Command {
	var opts struct {
		Owner  string
		Status string
		Parent string
		All    bool
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Display a list of tasks, oldest first.

By default, completed and cancelled tasks are hidden.
Use --all to show them too.

Output columns:
  ID, PARENT, STATUS, PRIORITY, OWNER, DEADLINE, TITLE

Examples:
  # List open tasks of every owner
  tasktree list

  # List alice's blocked tasks
  tasktree list --for alice --status blocked

  # List the subtasks of a task
  tasktree list --parent 0199a1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine := e.c.Engine()

			var status domain.Status
			if opts.Status != "" {
				s, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return fmt.Errorf("%w: %q", err, opts.Status)
				}
				status = s
			}

			var (
				tasks []*domain.Task
				err   error
			)
			switch {
			case opts.Parent != "":
				parentID, resolveErr := e.resolveID(ctx, opts.Parent)
				if resolveErr != nil {
					return resolveErr
				}
				tasks, err = engine.Children(ctx, parentID)
			case opts.Owner != "":
				tasks, err = engine.ListByOwner(ctx, opts.Owner)
			default:
				tasks, err = engine.List(ctx)
			}
			if err != nil {
				return err
			}

			tasks = slices.DeleteFunc(tasks, func(t *domain.Task) bool {
				if opts.Owner != "" && t.OwnerID != opts.Owner {
					return true
				}
				if status != "" {
					return t.Status != status
				}
				return !opts.All && t.Status.IsTerminal()
			})
			sortTasks(tasks)

			printTaskList(cmd.OutOrStdout(), tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "for", "", "Show only tasks owned by this user")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Show only tasks in this status")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "Show only children of this task")
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Show all tasks including completed and cancelled")

	return cmd
}

// printTaskList prints tasks as an aligned table.
func printTaskList(w io.Writer, tasks []*domain.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tPARENT\tSTATUS\tPRIORITY\tOWNER\tDEADLINE\tTITLE")

	for _, task := range tasks {
		parentStr := "-"
		if task.ParentID != nil {
			parentStr = *task.ParentID
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			parentStr,
			task.Status,
			task.Priority,
			task.OwnerID,
			task.Deadline.Format(time.DateOnly),
			task.Title,
		)
	}
}

// sortTasks orders tasks by creation time, then ID.
func sortTasks(tasks []*domain.Task) {
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// newTreeCommand creates the tree command for displaying the hierarchy.
func newTreeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [id]",
		Short: "Display the task hierarchy",
		Long: `Display tasks as a tree.

Without an ID every root task is shown with its subtasks.
With an ID only that task's subtree is shown.

Examples:
  tasktree tree
  tasktree tree 0199a1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tasks, err := e.c.Engine().List(ctx)
			if err != nil {
				return err
			}

			byID := make(map[string]*domain.Task, len(tasks))
			for _, t := range tasks {
				byID[t.ID] = t
			}

			var roots []*domain.Task
			if len(args) == 1 {
				id, err := e.resolveID(ctx, args[0])
				if err != nil {
					return err
				}
				root, ok := byID[id]
				if !ok {
					return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
				}
				roots = []*domain.Task{root}
			} else {
				for _, t := range tasks {
					if t.ParentID == nil || byID[*t.ParentID] == nil {
						roots = append(roots, t)
					}
				}
				sortTasks(roots)
			}

			w := cmd.OutOrStdout()
			seen := make(map[string]bool, len(tasks))
			for _, root := range roots {
				seen[root.ID] = true
				_, _ = fmt.Fprintln(w, treeLine(root))
				printSubtree(w, root, byID, seen, "")
			}
			return nil
		},
	}

	return cmd
}

// printSubtree prints the children of t below it, using box drawing
// prefixes. A task already printed is marked and not descended into, so
// a damaged store with a child cycle still terminates.
func printSubtree(w io.Writer, t *domain.Task, byID map[string]*domain.Task, seen map[string]bool, prefix string) {
	children := make([]*domain.Task, 0, len(t.ChildIDs))
	for _, id := range t.ChildIDs {
		if child, ok := byID[id]; ok {
			children = append(children, child)
		}
	}
	sortTasks(children)

	for i, child := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		if seen[child.ID] {
			_, _ = fmt.Fprintf(w, "%s%s%s (already listed)\n", prefix, branch, treeLine(child))
			continue
		}
		seen[child.ID] = true
		_, _ = fmt.Fprintf(w, "%s%s%s\n", prefix, branch, treeLine(child))
		printSubtree(w, child, byID, seen, prefix+indent)
	}
}

func treeLine(t *domain.Task) string {
	return fmt.Sprintf("%s [%s] %s (%s, due %s)",
		t.ID, t.Status, t.Title, t.OwnerID, t.Deadline.Format(time.DateOnly))
}

// newEditCommand creates the edit command for updating tasks.
func newEditCommand(e *env) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Deadline    string
		Status      string
	}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task information",
		Long: `Edit an existing task's title, description, deadline or status.

Only the given flags change; everything else keeps its value.
Status must follow the lifecycle:
  pending -> in_progress -> in_review -> completed
  blocked and cancelled are reachable from any open status.

Examples:
  tasktree edit 0199a1 --title "New title"
  tasktree edit 0199a1 --status in_progress
  tasktree edit 0199a1 --deadline 2026-04-01 --body ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			if !flags.Changed("title") && !flags.Changed("body") &&
				!flags.Changed("deadline") && !flags.Changed("status") {
				return fmt.Errorf("%w: at least one of --title, --body, --deadline or --status must be specified", domain.ErrValidation)
			}

			id, err := e.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			engine := e.c.Engine()
			task, err := engine.GetTask(ctx, id)
			if err != nil {
				return err
			}

			in := hierarchy.UpdateTaskInput{
				Deadline:    task.Deadline,
				TaskID:      task.ID,
				Title:       task.Title,
				Description: task.Description,
				Status:      task.Status,
			}
			if flags.Changed("title") {
				in.Title = opts.Title
			}
			if flags.Changed("body") {
				in.Description = opts.Description
			}
			if flags.Changed("deadline") {
				if in.Deadline, err = domain.ParseDeadline(opts.Deadline); err != nil {
					return err
				}
			}
			if flags.Changed("status") {
				if in.Status, err = domain.ParseStatus(opts.Status); err != nil {
					return fmt.Errorf("%w: %q", err, opts.Status)
				}
			}

			if err := engine.UpdateTask(ctx, in); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "New task title")
	cmd.Flags().StringVar(&opts.Description, "body", "", "New task description")
	cmd.Flags().StringVar(&opts.Deadline, "deadline", "", "New due date")
	cmd.Flags().StringVar(&opts.Status, "status", "", "New status")

	return cmd
}

// newPriorityCommand creates the priority command.
func newPriorityCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <level>",
		Short: "Set task priority",
		Long: `Set the priority of a task.

Levels: low, medium, high, critical.

Example:
  tasktree priority 0199a1 high`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := e.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			priority, err := domain.ParsePriority(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[1])
			}
			if err := e.c.Engine().SetPriority(ctx, id, priority); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set priority of %s to %s\n", id, priority)
			return nil
		},
	}
}

// newMoveCommand creates the mv command for reparenting tasks.
func newMoveCommand(e *env) *cobra.Command {
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "mv <id> [parent]",
		Short: "Move a task under another parent",
		Long: `Move a task (with its subtree) under a new parent, or make it a
root task with --root.

A task cannot be moved under itself or any of its descendants.

Examples:
  tasktree mv 0199b2 0199a1
  tasktree mv 0199b2 --root`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if toRoot == (len(args) == 2) {
				return fmt.Errorf("%w: give either a new parent or --root", domain.ErrValidation)
			}

			id, err := e.resolveID(ctx, args[0])
			if err != nil {
				return err
			}

			var newParent *string
			if len(args) == 2 {
				parentID, err := e.resolveID(ctx, args[1])
				if errors.Is(err, domain.ErrTaskNotFound) {
					return fmt.Errorf("%w: %s", domain.ErrParentNotFound, args[1])
				}
				if err != nil {
					return err
				}
				newParent = &parentID
			}

			if err := e.c.Engine().MoveTask(ctx, id, newParent); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if newParent == nil {
				_, _ = fmt.Fprintf(w, "Moved %s to root\n", id)
			} else {
				_, _ = fmt.Fprintf(w, "Moved %s under %s\n", id, *newParent)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toRoot, "root", false, "Make the task a root task")

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete tasks",
		Long: `Delete one or more tasks.

What happens to subtasks depends on [tasks] delete_policy:
  orphan   subtasks become root tasks (default)
  cascade  subtasks are deleted too

Examples:
  tasktree rm 0199a1
  tasktree rm 0199a1 0199b2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine := e.c.Engine()

			for _, arg := range args {
				id, err := e.resolveID(ctx, arg)
				if err != nil {
					return err
				}
				if err := engine.DeleteTask(ctx, id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s (%s)\n", id, engine.Policy())
			}
			return nil
		},
	}
}
