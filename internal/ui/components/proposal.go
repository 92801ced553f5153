// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the dossier
// dashboard.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// PROPOSAL PROMPT
// =============================================================================

// ProposalPrompt is the modal approval dialog for a proposed analysis plan.
// The agent will not touch the document until the plan is approved here.
type ProposalPrompt struct {
	proposal *model.Proposal

	visible   bool
	responded bool
	selected  int
	width     int
	height    int

	theme *styles.Theme
}

// Button options.
const (
	ButtonApprove = 0
	ButtonDeny    = 1
	buttonCount   = 2
)

// ProposalResponseMsg carries the single approve/deny decision out of the
// prompt.
type ProposalResponseMsg struct {
	Proposal *model.Proposal
	Approved bool
}

// NewProposalPrompt creates a hidden proposal prompt.
func NewProposalPrompt(theme *styles.Theme) *ProposalPrompt {
	return &ProposalPrompt{
		theme:    theme,
		selected: ButtonApprove,
	}
}

// Show displays the prompt for a proposal.
func (p *ProposalPrompt) Show(proposal *model.Proposal) {
	p.proposal = proposal
	p.visible = true
	p.responded = false
	p.selected = ButtonApprove
}

// Hide hides the prompt.
func (p *ProposalPrompt) Hide() {
	p.visible = false
	p.proposal = nil
}

// IsVisible reports whether the prompt is on screen.
func (p *ProposalPrompt) IsVisible() bool {
	return p.visible
}

// SetSize updates the prompt dimensions.
func (p *ProposalPrompt) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// =============================================================================
// BUBBLE TEA METHODS
// =============================================================================

// Update handles key events while the prompt is visible. The boolean return
// reports whether the event was consumed.
func (p *ProposalPrompt) Update(msg tea.Msg) (tea.Cmd, bool) {
	if !p.visible {
		return nil, false
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "shift+tab":
			p.selected = (p.selected - 1 + buttonCount) % buttonCount
			return nil, true

		case "right", "l", "tab":
			p.selected = (p.selected + 1) % buttonCount
			return nil, true

		case "enter", " ":
			return p.respond(p.selected == ButtonApprove), true

		case "esc", "n":
			return p.respond(false), true

		case "y", "a":
			return p.respond(true), true
		}
		// Swallow every other key while modal
		return nil, true
	}

	return nil, false
}

// respond emits exactly one decision. A second enter, a key repeat, or an
// escape racing the enter all hit the responded guard and do nothing, so
// the agent can never receive two answers for one proposal.
func (p *ProposalPrompt) respond(approved bool) tea.Cmd {
	if p.responded {
		return nil
	}
	p.responded = true

	proposal := p.proposal
	p.Hide()

	return func() tea.Msg {
		return ProposalResponseMsg{
			Proposal: proposal,
			Approved: approved,
		}
	}
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the proposal dialog centered in the terminal.
func (p *ProposalPrompt) View() string {
	if !p.visible || p.proposal == nil {
		return ""
	}

	boxWidth := 64
	if p.width > 0 && p.width < 80 {
		boxWidth = p.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	var content strings.Builder

	content.WriteString(p.theme.ProposalTitle.Render("Proposed Analysis"))
	content.WriteString("\n\n")

	fileStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	content.WriteString(fileStyle.Render(util.TruncateWidth(p.proposal.FileName, boxWidth-8)))
	content.WriteString("\n\n")

	for i, step := range p.proposal.Steps {
		line := util.IntToString(i+1) + ". " + step
		content.WriteString(p.theme.ProposalStep.Render(util.TruncateWidth(line, boxWidth-8)))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	content.WriteString(p.renderButtons())

	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("y=Approve  n=Deny  Tab=Navigate  Enter=Select"))

	box := p.theme.ProposalBox.Width(boxWidth).Render(content.String())

	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(
			p.width, p.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return box
}

// renderButtons renders the Approve / Deny button row.
func (p *ProposalPrompt) renderButtons() string {
	var buttons []string

	if p.selected == ButtonApprove {
		buttons = append(buttons, p.theme.ProposalButtonActive.Render("Approve"))
	} else {
		buttons = append(buttons, p.theme.ProposalButton.Render("Approve"))
	}

	denyActive := p.theme.ProposalButtonActive.Background(styles.Rose)
	if p.selected == ButtonDeny {
		buttons = append(buttons, denyActive.Render("Deny"))
	} else {
		buttons = append(buttons, p.theme.ProposalButton.Render("Deny"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}
