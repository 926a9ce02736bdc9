package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// StatusLineInfo contains information for rendering the status line.
// Fields are ordered to minimize memory padding.
type StatusLineInfo struct {
	Position string // "3/12" when rows are visible
	Bindings []key.Binding
	Mode     Mode
}

// StatusLine renders the footer: key hints on the left, position and mode on the right.
type StatusLine struct {
	styles *Styles
	width  int
}

// NewStatusLine creates a StatusLine for the given terminal width.
func NewStatusLine(width int, styles *Styles) *StatusLine {
	return &StatusLine{width: width, styles: styles}
}

// Render renders the status line with the given info.
func (s *StatusLine) Render(info StatusLineInfo) string {
	hints := make([]string, 0, len(info.Bindings))
	for _, b := range info.Bindings {
		h := b.Help()
		hints = append(hints, s.styles.FooterKey.Render(h.Key)+" "+h.Desc)
	}
	left := strings.Join(hints, "  ")

	right := lipgloss.NewStyle().Foreground(Colors.Muted).Render(info.Mode.String())
	if info.Position != "" {
		right = info.Position + " · " + right
	}

	if s.width <= 0 {
		return s.styles.Footer.Render(left + "  " + right)
	}

	// Leave a free column at each edge.
	inner := s.width - 2
	room := inner - lipgloss.Width(right) - 1
	if lipgloss.Width(left) > room {
		left = lipgloss.NewStyle().MaxWidth(max(room-1, 0)).Render(left) + "…"
	}
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.Footer.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

// GetStatusInfo returns the status line info for the current mode.
func (m *Model) GetStatusInfo() StatusLineInfo {
	info := StatusLineInfo{Mode: m.mode}
	if len(m.rows) > 0 {
		info.Position = fmt.Sprintf("%d/%d", m.cursor+1, len(m.rows))
	}

	k := m.keys
	switch m.mode {
	case ModeNormal:
		info.Bindings = []key.Binding{k.Down, k.Advance, k.Block, k.Cancel, k.Detail, k.Help, k.Quit}
	case ModeDetail:
		info.Bindings = []key.Binding{k.Down, k.Detail, k.Escape}
	case ModeConfirm:
		info.Bindings = []key.Binding{k.Confirm, k.Decline}
	case ModeHelp:
		info.Bindings = []key.Binding{k.Help, k.Escape}
	}

	return info
}
