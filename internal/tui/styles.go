package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/tasktree/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color
	TreeLine      lipgloss.Color

	// Status colors
	Pending    lipgloss.Color
	InProgress lipgloss.Color
	InReview   lipgloss.Color
	Completed  lipgloss.Color
	Blocked    lipgloss.Color
	Cancelled  lipgloss.Color

	// Priority colors
	Critical lipgloss.Color
	High     lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)
	TreeLine:      lipgloss.Color("#4B5559"), // Dark gray

	Pending:    lipgloss.Color("#74B9FF"), // Light blue
	InProgress: lipgloss.Color("#FDCB6E"), // Yellow
	InReview:   lipgloss.Color("#A29BFE"), // Lavender
	Completed:  lipgloss.Color("#00B894"), // Green
	Blocked:    lipgloss.Color("#E17055"), // Orange
	Cancelled:  lipgloss.Color("#636E72"), // Gray

	Critical: lipgloss.Color("#D63031"), // Red
	High:     lipgloss.Color("#E17055"), // Orange
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderMeta lipgloss.Style

	// Tree
	TreeLine          lipgloss.Style
	TaskTitle         lipgloss.Style
	TaskTitleSelected lipgloss.Style
	TaskMeta          lipgloss.Style
	Overdue           lipgloss.Style
	CursorNormal      lipgloss.Style
	CursorSelected    lipgloss.Style
	Empty             lipgloss.Style

	// Status badges
	StatusPending    lipgloss.Style
	StatusInProgress lipgloss.Style
	StatusInReview   lipgloss.Style
	StatusCompleted  lipgloss.Style
	StatusBlocked    lipgloss.Style
	StatusCancelled  lipgloss.Style

	// Priority badges
	PriorityCritical lipgloss.Style
	PriorityHigh     lipgloss.Style
	PriorityNormal   lipgloss.Style

	// Help
	Help lipgloss.Style

	// Footer
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Messages
	ErrorMsg lipgloss.Style
	NoteMsg  lipgloss.Style

	// Detail view
	Detail      lipgloss.Style
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
	DetailDesc  lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderMeta: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TreeLine: lipgloss.NewStyle().
			Foreground(Colors.TreeLine),

		TaskTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TaskTitleSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TaskMeta: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Overdue: lipgloss.NewStyle().
			Foreground(Colors.Error),

		CursorNormal: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		CursorSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		Empty: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Italic(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(Colors.Pending),

		StatusInProgress: lipgloss.NewStyle().
			Foreground(Colors.InProgress),

		StatusInReview: lipgloss.NewStyle().
			Foreground(Colors.InReview),

		StatusCompleted: lipgloss.NewStyle().
			Foreground(Colors.Completed),

		StatusBlocked: lipgloss.NewStyle().
			Foreground(Colors.Blocked),

		StatusCancelled: lipgloss.NewStyle().
			Foreground(Colors.Cancelled).
			Strikethrough(true),

		PriorityCritical: lipgloss.NewStyle().
			Foreground(Colors.Critical).
			Bold(true),

		PriorityHigh: lipgloss.NewStyle().
			Foreground(Colors.High),

		PriorityNormal: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Secondary).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Warning),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Warning),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),

		NoteMsg: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Detail: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Secondary),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.TitleSelected),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(10),

		DetailValue: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		DetailDesc: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal).
			MarginTop(1),
	}
}

// StatusStyle returns the badge style for a status.
func (s Styles) StatusStyle(status domain.Status) lipgloss.Style {
	switch status {
	case domain.StatusPending:
		return s.StatusPending
	case domain.StatusInProgress:
		return s.StatusInProgress
	case domain.StatusInReview:
		return s.StatusInReview
	case domain.StatusCompleted:
		return s.StatusCompleted
	case domain.StatusBlocked:
		return s.StatusBlocked
	case domain.StatusCancelled:
		return s.StatusCancelled
	default:
		return s.TaskMeta
	}
}

// PriorityStyle returns the badge style for a priority.
func (s Styles) PriorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityCritical:
		return s.PriorityCritical
	case domain.PriorityHigh:
		return s.PriorityHigh
	case domain.PriorityLow, domain.PriorityMedium:
		return s.PriorityNormal
	default:
		return s.PriorityNormal
	}
}

// StatusIcon returns a one-character marker for a status.
func StatusIcon(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return "○"
	case domain.StatusInProgress:
		return "◐"
	case domain.StatusInReview:
		return "◑"
	case domain.StatusCompleted:
		return "●"
	case domain.StatusBlocked:
		return "■"
	case domain.StatusCancelled:
		return "×"
	default:
		return "?"
	}
}
