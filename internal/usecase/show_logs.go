package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/tasktree/internal/domain"
)

// ShowLogsInput contains the parameters for showing logs.
type ShowLogsInput struct {
	TaskID string // Task to show the log of (empty = global log)
	Lines  int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing logs.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing the global or a task's log.
type ShowLogs struct {
	tasks   domain.TaskStore
	dataDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(tasks domain.TaskStore, dataDir string) *ShowLogs {
	return &ShowLogs{
		tasks:   tasks,
		dataDir: dataDir,
	}
}

// Execute reads and returns the log content.
// A task log can outlive its task, so a deleted task's log is still shown.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.dataDir)
	if in.TaskID != "" {
		if strings.ContainsAny(in.TaskID, `/\`) || strings.Contains(in.TaskID, "..") {
			return nil, fmt.Errorf("%w: invalid task id %q", domain.ErrValidation, in.TaskID)
		}
		logPath = domain.TaskLogPath(uc.dataDir, in.TaskID)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		if in.TaskID == "" {
			return &ShowLogsOutput{LogPath: logPath}, nil
		}
		// No log yet: distinguish a quiet task from an unknown one
		if _, findErr := uc.tasks.Find(in.TaskID); findErr != nil {
			if errors.Is(findErr, domain.ErrTaskNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, in.TaskID)
			}
			return nil, findErr
		}
		return &ShowLogsOutput{LogPath: logPath}, nil
	}

	result := string(content)
	if in.Lines > 0 {
		lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n") + "\n"
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
