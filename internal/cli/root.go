// Package cli provides the command-line interface for tasktree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/tasktree/internal/app"
	"github.com/runoshun/tasktree/internal/domain"
	"github.com/runoshun/tasktree/internal/tui"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupTask  = "task"
	groupView  = "view"
)

// Opener builds the container for a data directory.
type Opener func(dataDir string, opts app.Options) (*app.Container, error)

// env is what subcommands run against. The root command fills it in
// once its persistent flags are parsed.
type env struct {
	c     *app.Container
	owner string
}

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for tasktree.
// open builds the container once --dir is known; version is shown by --version.
func NewRootCommand(open Opener, version string) *cobra.Command {
	return newRootCommand(&env{}, open, version)
}

// newRootCommand creates the root command around e.
// If e already holds a container, open is not called.
func newRootCommand(e *env, open Opener, version string) *cobra.Command {
	var dataDir string
	opened := false

	root := &cobra.Command{
		Use:   "tasktree",
		Short: "Hierarchical task management CLI",
		Long: `tasktree keeps tasks in a tree: every task may have subtasks,
and any task can be moved under another as long as no cycle forms.

Tasks have an owner, a deadline, a priority and a status that moves
along pending -> in_progress -> in_review -> completed, with blocked
and cancelled reachable from any open status.

Running tasktree without a command opens the interactive tree view.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.c != nil || open == nil {
				return nil
			}

			c, err := open(dataDir, app.Options{
				Create: createsDataDir(cmd),
				Stderr: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			e.c = c
			opened = true

			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if !opened {
				return nil
			}
			return e.c.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), e)
		},
	}

	ownerDefault := e.owner
	if ownerDefault == "" {
		ownerDefault = defaultOwner()
	}
	root.PersistentFlags().StringVar(&dataDir, "dir", domain.DataDirName, "Data directory")
	root.PersistentFlags().StringVar(&e.owner, "owner", ownerDefault, "Acting user (default $TASKTREE_USER or $USER)")

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupView, Title: "Views:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}

	add(groupSetup,
		newInitCommand(e),
		newConfigCommand(e),
	)
	add(groupTask,
		newNewCommand(e),
		newImportCommand(e),
		newEditCommand(e),
		newPriorityCommand(e),
		newMoveCommand(e),
		newRmCommand(e),
	)
	add(groupView,
		newShowCommand(e),
		newListCommand(e),
		newTreeCommand(e),
		newWorkloadCommand(e),
		newLogsCommand(e),
		newTUICommand(e),
	)

	return root
}

// createsDataDir reports whether cmd may run before 'tasktree init'.
func createsDataDir(cmd *cobra.Command) bool {
	if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Parent() == nil {
		return true
	}
	for p := cmd; p != nil; p = p.Parent() {
		if p.Name() == "config" {
			return true
		}
	}
	return false
}

// defaultOwner returns the acting user from the environment.
func defaultOwner() string {
	if u := os.Getenv("TASKTREE_USER"); u != "" {
		return u
	}
	return os.Getenv("USER")
}

// requireOwner returns the acting owner or a validation error.
func (e *env) requireOwner() (string, error) {
	owner := strings.TrimSpace(e.owner)
	if owner == "" {
		return "", fmt.Errorf("%w: no owner (use --owner or set TASKTREE_USER)", domain.ErrValidation)
	}
	return owner, nil
}

// resolveID expands ref to a task ID. ref may be a full ID or a unique
// prefix of one, optionally starting with "#".
func (e *env) resolveID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return "", fmt.Errorf("%w: empty task id", domain.ErrValidation)
	}

	if _, err := e.c.Tasks.Find(ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	tasks, err := e.c.Engine().List(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", domain.ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d tasks", domain.ErrValidation, ref, len(matches))
	}
}

// launchTUI runs the interactive tree view until the user quits.
func launchTUI(ctx context.Context, e *env) error {
	return tui.Run(ctx, e.c.Engine(), e.owner)
}
