// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the dashboard
// input line.
//
// Handlers return tea.Cmds that emit request messages; the dashboard model
// interprets them. Handlers never mutate investigation state directly.
package commands

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND MESSAGES
// =============================================================================

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct{}

// QuitMsg requests application exit after cleanup.
type QuitMsg struct{}

// UploadRequestMsg asks the dashboard to ingest the PDF at Path.
type UploadRequestMsg struct {
	Path string
}

// NewInvestigationMsg discards the current investigation.
type NewInvestigationMsg struct{}

// ProposalDecisionMsg answers a pending analysis proposal.
type ProposalDecisionMsg struct {
	Approved bool
}

// SaveSessionMsg persists the current investigation.
type SaveSessionMsg struct{}

// LoadSessionMsg loads the investigation with the given id.
type LoadSessionMsg struct {
	ID string
}

// ListSessionsMsg shows the saved investigations.
type ListSessionsMsg struct{}

// CopySummaryMsg copies the summary to the clipboard.
type CopySummaryMsg struct{}

// ExportRequestMsg exports the investigation. Format is "json" or "md".
type ExportRequestMsg struct {
	Format string
}

// ShowStatusMsg shows agent connectivity and investigation state.
type ShowStatusMsg struct{}

// CommandErrorMsg reports a command usage error back to the user.
type CommandErrorMsg struct {
	Err error
}

// =============================================================================
// HANDLERS
// =============================================================================

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func handleHelp(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ShowHelpMsg{})
}

func handleQuit(_ *Context, _ []string) tea.Cmd {
	return msgCmd(QuitMsg{})
}

func handleUpload(_ *Context, args []string) tea.Cmd {
	return msgCmd(UploadRequestMsg{Path: strings.Join(args, " ")})
}

func handleNew(_ *Context, _ []string) tea.Cmd {
	return msgCmd(NewInvestigationMsg{})
}

func handleApprove(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ProposalDecisionMsg{Approved: true})
}

func handleDeny(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ProposalDecisionMsg{Approved: false})
}

func handleSave(_ *Context, _ []string) tea.Cmd {
	return msgCmd(SaveSessionMsg{})
}

func handleLoad(_ *Context, args []string) tea.Cmd {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	return msgCmd(LoadSessionMsg{ID: id})
}

func handleSessions(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ListSessionsMsg{})
}

func handleCopy(_ *Context, _ []string) tea.Cmd {
	return msgCmd(CopySummaryMsg{})
}

func handleExport(_ *Context, args []string) tea.Cmd {
	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}
	return msgCmd(ExportRequestMsg{Format: format})
}

func handleStatus(_ *Context, _ []string) tea.Cmd {
	return msgCmd(ShowStatusMsg{})
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses and runs one line of input. The boolean reports whether
// the line was a command; plain chat input returns (nil, false).
func Execute(parser *Parser, ctx *Context, input string) (tea.Cmd, bool) {
	result := parser.Parse(input)
	if !result.IsCommand {
		return nil, false
	}

	if result.Command == nil {
		return msgCmd(CommandErrorMsg{Err: &ValidationError{
			Command: result.CommandName,
			Message: "unknown command",
		}}), true
	}

	if err := ValidateArgs(result.Command, result.Args); err != nil {
		return msgCmd(CommandErrorMsg{Err: err}), true
	}

	return result.Command.Handler(ctx, result.Args), true
}
