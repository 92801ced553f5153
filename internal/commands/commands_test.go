// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse_PlainTextIsNotCommand(t *testing.T) {
	parser := NewParser(NewRegistry())

	result := parser.Parse("what is on page three?")
	require.False(t, result.IsCommand)
	require.Nil(t, result.Command)
}

func TestParse_KnownCommand(t *testing.T) {
	parser := NewParser(NewRegistry())

	result := parser.Parse("/load abc123")
	require.True(t, result.IsCommand)
	require.NotNil(t, result.Command)
	require.Equal(t, "/load", result.Command.Name)
	require.Equal(t, []string{"abc123"}, result.Args)
	require.Equal(t, "abc123", result.RawArgs)
}

func TestParse_AliasResolves(t *testing.T) {
	parser := NewParser(NewRegistry())

	result := parser.Parse("/q")
	require.NotNil(t, result.Command)
	require.Equal(t, "/quit", result.Command.Name)
}

func TestParse_UnknownCommand(t *testing.T) {
	parser := NewParser(NewRegistry())

	result := parser.Parse("/teleport")
	require.True(t, result.IsCommand)
	require.Nil(t, result.Command)
	require.Equal(t, "/teleport", result.CommandName)
}

func TestParse_QuotedPathSurvives(t *testing.T) {
	parser := NewParser(NewRegistry())

	result := parser.Parse(`/upload "Annual Report (2024).pdf"`)
	require.Equal(t, []string{"Annual Report (2024).pdf"}, result.Args)
}

func TestSplitCommandLine_Escapes(t *testing.T) {
	tokens := splitCommandLine(`/upload "a \"quoted\" name.pdf"`)
	require.Equal(t, []string{"/upload", `a "quoted" name.pdf`}, tokens)
}

func TestValidateArgs_RequiredMissing(t *testing.T) {
	registry := NewRegistry()
	cmd := registry.Get("/load")
	require.NotNil(t, cmd)

	err := ValidateArgs(cmd, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required argument missing")
}

func TestValidateArgs_EnumRejectsUnknown(t *testing.T) {
	registry := NewRegistry()
	cmd := registry.Get("/export")
	require.NotNil(t, cmd)

	require.NoError(t, ValidateArgs(cmd, []string{"md"}))
	require.NoError(t, ValidateArgs(cmd, []string{"JSON"}))

	err := ValidateArgs(cmd, []string{"docx"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "docx")
}

func TestExtractCommandName(t *testing.T) {
	require.Equal(t, "/load", ExtractCommandName("/load abc"))
	require.Equal(t, "/help", ExtractCommandName("  /help  "))
	require.Equal(t, "", ExtractCommandName("hello"))
}

// =============================================================================
// EXECUTION TESTS
// =============================================================================

func TestExecute_EmitsMessages(t *testing.T) {
	parser := NewParser(NewRegistry())
	ctx := NewContext(nil, nil)

	cmd, isCommand := Execute(parser, ctx, "/approve")
	require.True(t, isCommand)
	require.NotNil(t, cmd)

	msg, ok := cmd().(ProposalDecisionMsg)
	require.True(t, ok)
	require.True(t, msg.Approved)
}

func TestExecute_UploadJoinsArgs(t *testing.T) {
	parser := NewParser(NewRegistry())

	cmd, _ := Execute(parser, NewContext(nil, nil), "/upload report final.pdf")
	msg := cmd().(UploadRequestMsg)
	require.Equal(t, "report final.pdf", msg.Path)
}

func TestExecute_UnknownCommandErrors(t *testing.T) {
	parser := NewParser(NewRegistry())

	cmd, isCommand := Execute(parser, NewContext(nil, nil), "/nope")
	require.True(t, isCommand)

	msg, ok := cmd().(CommandErrorMsg)
	require.True(t, ok)
	require.Contains(t, msg.Err.Error(), "unknown command")
}

func TestExecute_ChatInputPassesThrough(t *testing.T) {
	parser := NewParser(NewRegistry())

	cmd, isCommand := Execute(parser, NewContext(nil, nil), "summarize the findings")
	require.False(t, isCommand)
	require.Nil(t, cmd)
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestComplete_PrefixBeatsSubsequence(t *testing.T) {
	registry := NewRegistry()

	completions := registry.Complete("/s")
	require.NotEmpty(t, completions)
	require.Equal(t, "/save", completions[0].Value)
}

func TestComplete_ExactMatchFirst(t *testing.T) {
	registry := NewRegistry()

	completions := registry.Complete("/sessions")
	require.NotEmpty(t, completions)
	require.Equal(t, "/sessions", completions[0].Value)
	require.Equal(t, 100, completions[0].Score)
}

func TestComplete_AliasCompletesToPrimary(t *testing.T) {
	registry := NewRegistry()

	completions := registry.Complete("/resume")
	require.NotEmpty(t, completions)
	require.Equal(t, "/load", completions[0].Value)
}

func TestComplete_NoSlashNoSuggestions(t *testing.T) {
	registry := NewRegistry()
	require.Empty(t, registry.Complete("help"))
}
