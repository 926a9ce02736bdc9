// Package tui provides the interactive tree view for tasktree.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal  Mode = iota // Default navigation mode
	ModeConfirm             // Confirmation dialog mode
	ModeHelp                // Help overlay mode
	ModeDetail              // Task detail view mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeConfirm:
		return "confirm"
	case ModeHelp:
		return "help"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ConfirmAction represents the type of action requiring confirmation.
type ConfirmAction int

const (
	ConfirmNone   ConfirmAction = iota
	ConfirmDelete               // Delete task
	ConfirmCancel               // Cancel task
)

// String returns a human-readable description of the action.
func (a ConfirmAction) String() string {
	switch a {
	case ConfirmNone:
		return ""
	case ConfirmDelete:
		return "delete"
	case ConfirmCancel:
		return "cancel"
	}
	return ""
}
