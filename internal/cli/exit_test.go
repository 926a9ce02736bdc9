package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runoshun/tasktree/internal/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "validation", err: domain.ErrEmptyTitle, want: ExitValidation},
		{name: "invalid status", err: fmt.Errorf("edit: %w", domain.ErrInvalidStatus), want: ExitValidation},
		{name: "task not found", err: domain.ErrTaskNotFound, want: ExitNotFound},
		{name: "user not found", err: domain.ErrUserNotFound, want: ExitNotFound},
		{name: "cycle", err: domain.ErrCycle, want: ExitCycle},
		{name: "self parent", err: domain.ErrSelfParent, want: ExitCycle},
		{name: "transition", err: domain.ErrInvalidTransition, want: ExitInvalidTransition},
		{name: "not initialized", err: domain.ErrNotInitialized, want: ExitFailure},
		{name: "other", err: errors.New("disk full"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
