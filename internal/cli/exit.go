package cli

import (
	"errors"

	"github.com/runoshun/tasktree/internal/domain"
)

// Process exit codes by error kind.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitValidation        = 2
	ExitNotFound          = 3
	ExitCycle             = 4
	ExitInvalidTransition = 5
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrValidation):
		return ExitValidation
	case errors.Is(err, domain.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, domain.ErrCycle):
		return ExitCycle
	case errors.Is(err, domain.ErrInvalidTransition):
		return ExitInvalidTransition
	default:
		return ExitFailure
	}
}
