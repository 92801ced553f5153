// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/ui/components"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// Reserved heights for the fixed chrome rows.
const (
	headerHeight    = 2
	statusBarHeight = 1
	inputHeight     = 3
	minChatWidth    = 40
)

// handleResize recomputes the layout for a new terminal size.
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height

	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.proposal.SetSize(width, height)

	chatWidth := width * 45 / 100
	if chatWidth < minChatWidth {
		chatWidth = minChatWidth
	}
	if chatWidth > width {
		chatWidth = width
	}
	panelAreaWidth := width - chatWidth

	bodyHeight := height - headerHeight - statusBarHeight
	if bodyHeight < 4 {
		bodyHeight = 4
	}

	// Chat column: viewport above the tool card strip and input line.
	toolStripHeight := 0
	if m.toolCards.Count() > 0 {
		toolStripHeight = m.toolCards.Count() + 1
	}
	chatHeight := bodyHeight - inputHeight - toolStripHeight
	if chatHeight < 3 {
		chatHeight = 3
	}
	m.chatVP.Width = chatWidth - 2
	m.chatVP.Height = chatHeight
	m.input.Width = chatWidth - 6
	m.toolCards.SetWidth(chatWidth - 2)
	m.tweetEditor.SetWidth(chatWidth - 4)
	m.tweetEditor.SetHeight(4)

	// Panel grid: two columns, two rows.
	panelWidth := panelAreaWidth / 2
	panelHeight := bodyHeight / 2
	m.findings.SetSize(panelWidth, panelHeight)
	m.redacted.SetSize(panelAreaWidth-panelWidth, panelHeight)
	m.tweets.SetSize(panelWidth, bodyHeight-panelHeight)
	m.summary.SetSize(panelAreaWidth-panelWidth, bodyHeight-panelHeight)

	m.renderChat()
	m.refreshPanels()
}

// =============================================================================
// RENDERING
// =============================================================================

func (m Model) render() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.proposal.IsVisible() {
		return m.proposal.View()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderChatColumn(),
		m.renderPanelGrid(),
	)

	sections := []string{
		m.header.View(),
		body,
	}

	if m.toasts.HasToasts() {
		sections = append(sections, components.RenderToastStack(m.toasts.Toasts(), m.width, 0))
	}
	sections = append(sections, m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderChatColumn stacks the transcript, active tool cards, and the
// input line (or the tweet editor while one is being edited).
func (m Model) renderChatColumn() string {
	parts := []string{m.chatVP.View()}

	if m.toolCards.Count() > 0 {
		parts = append(parts, m.toolCards.View(m.spinner.View()))
	}

	if m.editingTweetID != "" {
		parts = append(parts, m.renderTweetEditor())
	} else {
		parts = append(parts, m.renderInput())
	}

	width := m.chatVP.Width + 2
	return lipgloss.NewStyle().Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.
		Width(m.chatVP.Width).
		Render(m.input.View())
}

// renderTweetEditor shows the inline editor with a live character count.
func (m Model) renderTweetEditor() string {
	count := len([]rune(m.tweetEditor.Value()))
	limit := m.tweetEditor.CharLimit

	countStyle := m.theme.CharCount
	switch {
	case count >= limit:
		countStyle = m.theme.CharCountDanger
	case count >= limit-40:
		countStyle = m.theme.CharCountWarning
	}

	counter := countStyle.Render(
		"  " + util.IntToString(count) + "/" + util.IntToString(limit) + "  C-s save, Esc cancel")

	return m.theme.InputContainer.
		Width(m.chatVP.Width).
		Render(m.tweetEditor.View() + "\n" + counter)
}

func (m Model) renderPanelGrid() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.findings.View(), m.redacted.View())
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.tweets.View(), m.summary.View())
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderChat rebuilds the transcript content in the chat viewport.
func (m *Model) renderChat() {
	width := m.chatVP.Width
	if width <= 0 {
		width = 60
	}

	var sb strings.Builder
	for i, entry := range m.transcript {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch entry.Role {
		case "user":
			sb.WriteString(m.theme.UserBubble.Width(width - 4).Render(entry.Content))
		case "assistant":
			content := entry.Content
			if content == "" && entry.ID == m.streamMsgID {
				content = m.theme.ThinkingText.Render("thinking" + styles.DotsSpinner.Frames[0])
			}
			sb.WriteString(m.theme.AssistantBubble.Width(width - 4).Render(content))
		default:
			sb.WriteString(m.theme.EmptyState.Render(entry.Content))
		}
		sb.WriteString("\n")
	}

	if len(m.transcript) == 0 {
		sb.WriteString(m.theme.EmptyState.Render(
			"Drop a PDF in the inbox or /upload <path> to open an investigation."))
	}

	m.chatVP.SetContent(sb.String())
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	key := m.theme.ShortcutKey
	desc := m.theme.ShortcutDesc

	line := func(k, d string) string {
		return "  " + key.Render(padKey(k)) + " " + desc.Render(d)
	}

	body := strings.Join([]string{
		m.theme.HeaderTitle.Render("dossier keys"),
		"",
		line("Tab / S-Tab", "cycle focus across input, chat, and panels"),
		line("Enter", "send message or run slash command"),
		line("up/k down/j", "scroll the focused panel"),
		line("e", "edit the selected tweet"),
		line("p", "post the selected tweet"),
		line("c", "copy the selected tweet"),
		line("o", "expand an unrecognized tool card (chat focus)"),
		line("C-s / Esc", "save or cancel a tweet edit"),
		line("x", "dismiss the newest toast"),
		line("?", "toggle this help"),
		line("C-c", "quit"),
		"",
		m.theme.HeaderTitle.Render("slash commands"),
		"",
		line("/upload <path>", "ingest a PDF"),
		line("/approve /deny", "answer an analysis proposal"),
		line("/save /load /sessions", "persistence"),
		line("/export [md|json]", "write a report file"),
		line("/copy", "copy the summary"),
		line("/new /status /help /quit", "everything else"),
		"",
		desc.Render("  press any key to close"),
	}, "\n")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.Container.Render(body))
}

func padKey(k string) string {
	for len(k) < 22 {
		k += " "
	}
	return k
}
