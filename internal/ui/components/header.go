// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the dossier
// dashboard.
package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: app name on the left, the document under
// investigation and its workflow status on the right.
type Header struct {
	Title    string
	FileName string
	Status   model.AnalysisStatus
	Width    int

	theme *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:  "dossier",
		Status: model.StatusIdle,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetDocument updates the displayed document name and workflow status.
func (h *Header) SetDocument(fileName string, status model.AnalysisStatus) {
	h.FileName = fileName
	h.Status = status
}

// View renders the header bar. The joined bar is sized to the style's
// content area so the padded, bordered box never re-wraps it.
func (h *Header) View() string {
	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()
	if inner < 20 {
		inner = 20
	}

	title := h.theme.HeaderTitle.Render(h.Title)

	subtitle := "no document"
	if h.FileName != "" {
		subtitle = util.TruncateWidth(h.FileName, inner/2) + "  " + h.statusLabel()
	}
	right := h.theme.HeaderSubtitle.Render(subtitle)

	gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	bar := lipgloss.JoinHorizontal(lipgloss.Center, title, spacer, right)
	box := h.theme.Header.Width(h.Width - h.theme.Header.GetHorizontalBorderSize())
	return box.Render(bar)
}

// statusLabel colors the workflow status by phase.
func (h *Header) statusLabel() string {
	var color lipgloss.AdaptiveColor
	switch h.Status {
	case model.StatusProposed:
		color = styles.Amber
	case model.StatusAnalyzing:
		color = styles.Cyan
	case model.StatusComplete:
		color = styles.Emerald
	default:
		color = styles.TextMuted
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render("[" + h.Status.DisplayName() + "]")
}
