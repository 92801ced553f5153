// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the dossier
// dashboard.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the dashboard's current activity.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusThinking
	StatusUploading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusUploading:
		return "Uploading..."
	case StatusError:
		return "Error"
	default:
		return "Ready"
	}
}

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom bar: activity and agent connectivity on the
// left, contextual key hints on the right.
type StatusBar struct {
	Status    Status
	Connected bool
	Shortcuts []Shortcut
	Width     int

	theme *styles.Theme
}

// DefaultShortcuts are the hints shown outside any modal state.
var DefaultShortcuts = []Shortcut{
	{Key: "tab", Desc: "panel"},
	{Key: "/upload", Desc: "open pdf"},
	{Key: "enter", Desc: "send"},
	{Key: "ctrl+c", Desc: "quit"},
}

// NewStatusBar creates a status bar with the default shortcuts.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status:    StatusReady,
		Shortcuts: DefaultShortcuts,
		Width:     80,
		theme:     theme,
	}
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// SetStatus updates the displayed activity.
func (b *StatusBar) SetStatus(status Status) {
	b.Status = status
}

// SetConnected updates the agent connectivity indicator.
func (b *StatusBar) SetConnected(connected bool) {
	b.Connected = connected
}

// SetShortcuts replaces the key hints.
func (b *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	b.Shortcuts = shortcuts
}

// View renders the status bar.
func (b *StatusBar) View() string {
	var conn string
	if b.Connected {
		conn = b.theme.StatusConnected.Render(styles.StatusIndicators.Success + " agent")
	} else {
		conn = b.theme.StatusOffline.Render(styles.StatusIndicators.Error + " agent")
	}

	left := conn + "  " + b.Status.String()

	hints := make([]string, 0, len(b.Shortcuts))
	for _, s := range b.Shortcuts {
		hints = append(hints,
			b.theme.ShortcutKey.Render(s.Key)+b.theme.ShortcutDesc.Render(" "+s.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := b.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	bar := lipgloss.JoinHorizontal(lipgloss.Center, left, spacer, right)
	return b.theme.StatusBar.Width(b.Width).Render(bar)
}
