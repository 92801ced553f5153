// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// The four investigation panels: findings, redacted speculation, tweets,
// and summary. Panels are projections of the investigator state; they are
// refreshed from the canonical state after every mutation and hold no
// domain data of their own beyond the rendered content and cursor.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// BASE PANEL
// =============================================================================

// Panel is the shared frame for the four dashboard panels: a titled,
// focusable border around a scrollable viewport.
type Panel struct {
	title   string
	vp      viewport.Model
	focused bool
	width   int
	height  int
	empty   string // shown when no content has been set
	hasData bool

	theme *styles.Theme
}

func newPanel(theme *styles.Theme, title, empty string) Panel {
	return Panel{
		title: title,
		empty: empty,
		vp:    viewport.New(0, 0),
		theme: theme,
	}
}

// SetSize sets the outer panel dimensions. The viewport gets the interior.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height

	inner := width - 4 // border + padding
	if inner < 1 {
		inner = 1
	}
	content := height - 3 // border + title row
	if content < 1 {
		content = 1
	}
	p.vp.Width = inner
	p.vp.Height = content
}

// SetFocused marks the panel as holding keyboard focus.
func (p *Panel) SetFocused(focused bool) {
	p.focused = focused
}

// Focused reports whether the panel holds keyboard focus.
func (p *Panel) Focused() bool {
	return p.focused
}

// ContentWidth returns the interior width available to panel content.
func (p *Panel) ContentWidth() int {
	return p.vp.Width
}

// setContent replaces the viewport content, keeping the scroll position
// when the panel already had data.
func (p *Panel) setContent(content string, hasData bool) {
	atBottom := p.vp.AtBottom()
	offset := p.vp.YOffset
	p.hasData = hasData
	p.vp.SetContent(content)
	if hasData && !atBottom {
		p.vp.SetYOffset(offset)
	}
}

// Update forwards scroll keys to the viewport when the panel is focused.
func (p *Panel) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// View renders the framed panel.
func (p *Panel) View() string {
	frame := p.theme.Panel
	if p.focused {
		frame = p.theme.PanelFocused
	}
	if p.width > 0 {
		frame = frame.Width(p.width - 2)
	}
	if p.height > 0 {
		frame = frame.Height(p.height - 2)
	}

	body := p.vp.View()
	if !p.hasData {
		body = p.theme.EmptyState.Render(p.empty)
	}

	title := p.theme.PanelTitle.Render(p.title)
	return frame.Render(title + "\n" + body)
}

// =============================================================================
// FINDINGS PANEL
// =============================================================================

// FindingsPanel lists the agent's key findings with severity badges, in
// arrival order.
type FindingsPanel struct {
	Panel
}

// NewFindingsPanel creates the findings panel.
func NewFindingsPanel(theme *styles.Theme) *FindingsPanel {
	return &FindingsPanel{
		Panel: newPanel(theme, "Findings",
			"No findings yet. The document is presumed innocent."),
	}
}

// Refresh re-renders the panel from the given findings.
func (p *FindingsPanel) Refresh(findings []model.Finding) {
	if len(findings) == 0 {
		p.setContent("", false)
		return
	}

	width := p.ContentWidth()
	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(width).
		PaddingLeft(2)
	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	var blocks []string
	for _, f := range findings {
		badge := p.theme.SeverityBadge(string(f.Severity)).Render(strings.ToUpper(string(f.Severity)))
		header := badge + " " + titleStyle.Render(util.TruncateWidth(f.Title, width-12))
		block := header
		if f.Description != "" {
			block += "\n" + descStyle.Render(f.Description)
		}
		blocks = append(blocks, block)
	}

	p.setContent(strings.Join(blocks, "\n\n"), true)
}

// =============================================================================
// REDACTED PANEL
// =============================================================================

// RedactedPanel lists detected redactions with the agent's speculation and
// a confidence meter. Confidence is displayed exactly as reported.
type RedactedPanel struct {
	Panel
}

// NewRedactedPanel creates the redacted speculation panel.
func NewRedactedPanel(theme *styles.Theme) *RedactedPanel {
	return &RedactedPanel{
		Panel: newPanel(theme, "Redacted Speculation",
			"Nothing redacted so far. Either transparency or better redactions."),
	}
}

// Refresh re-renders the panel from the given items.
func (p *RedactedPanel) Refresh(items []model.RedactedItem) {
	if len(items) == 0 {
		p.setContent("", false)
		return
	}

	width := p.ContentWidth()
	locStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)
	specStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Italic(true).
		Width(width).
		PaddingLeft(2)
	meterStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		PaddingLeft(2)

	barWidth := width - 12
	if barWidth > 24 {
		barWidth = 24
	}
	if barWidth < 4 {
		barWidth = 4
	}

	var blocks []string
	for _, item := range items {
		block := locStyle.Render(util.TruncateWidth(item.Location, width))
		if item.Speculation != "" {
			block += "\n" + specStyle.Render(item.Speculation)
		}
		bar := styles.RenderProgressBar(barWidth, float64(item.Confidence))
		block += "\n" + meterStyle.Render(bar+" "+util.IntToString(item.Confidence)+"%")
		blocks = append(blocks, block)
	}

	p.setContent(strings.Join(blocks, "\n\n"), true)
}

// =============================================================================
// TWEETS PANEL
// =============================================================================

// TweetsPanel lists the drafted tweets. One tweet can be selected for
// editing or posting; the selection survives refreshes as long as the
// tweet still exists.
type TweetsPanel struct {
	Panel
	tweets    []model.Tweet
	selected  int
	editingID string
}

// NewTweetsPanel creates the tweets panel.
func NewTweetsPanel(theme *styles.Theme) *TweetsPanel {
	return &TweetsPanel{
		Panel: newPanel(theme, "Tweets",
			"No drafts yet. The world is safe for now."),
	}
}

// SetEditingID marks the tweet currently open in the edit control, or ""
// for none.
func (p *TweetsPanel) SetEditingID(id string) {
	p.editingID = id
	p.render()
}

// MoveSelection moves the cursor by delta, clamped to the draft list.
func (p *TweetsPanel) MoveSelection(delta int) {
	if len(p.tweets) == 0 {
		return
	}
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= len(p.tweets) {
		p.selected = len(p.tweets) - 1
	}
	p.render()
}

// SelectedID returns the id of the tweet under the cursor, or "".
func (p *TweetsPanel) SelectedID() string {
	if p.selected < 0 || p.selected >= len(p.tweets) {
		return ""
	}
	return p.tweets[p.selected].ID
}

// Refresh re-renders the panel from the given tweets, preserving the
// cursor position where possible.
func (p *TweetsPanel) Refresh(tweets []model.Tweet) {
	prevID := p.SelectedID()
	p.tweets = append([]model.Tweet{}, tweets...)

	p.selected = 0
	for i, t := range p.tweets {
		if t.ID == prevID {
			p.selected = i
			break
		}
	}
	p.render()
}

func (p *TweetsPanel) render() {
	if len(p.tweets) == 0 {
		p.setContent("", false)
		return
	}

	width := p.ContentWidth()
	postedTag := lipgloss.NewStyle().
		Foreground(styles.Emerald).
		Bold(true).
		Render("POSTED")
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true)

	var blocks []string
	for i, t := range p.tweets {
		card := p.theme.TweetCard
		switch {
		case t.ID == p.editingID:
			card = p.theme.TweetEditing
		case t.Posted:
			card = p.theme.TweetPosted
		}

		body := lipgloss.NewStyle().Width(width - 6).Render(t.Content)
		if t.Posted {
			body += "\n" + postedTag
		}

		prefix := "  "
		if i == p.selected && p.focused {
			prefix = cursorStyle.Render("> ")
		}
		blocks = append(blocks, prefix+card.MaxWidth(width-2).Render(body))
	}

	p.setContent(strings.Join(blocks, "\n"), true)
}

// SetFocused re-renders so the cursor marker follows focus.
func (p *TweetsPanel) SetFocused(focused bool) {
	p.Panel.SetFocused(focused)
	p.render()
}

// =============================================================================
// SUMMARY PANEL
// =============================================================================

// SummaryPanel renders the agent's markdown summary through glamour.
type SummaryPanel struct {
	Panel
	markdown string
	renderer *glamour.TermRenderer
}

// NewSummaryPanel creates the summary panel.
func NewSummaryPanel(theme *styles.Theme) *SummaryPanel {
	return &SummaryPanel{
		Panel: newPanel(theme, "Summary",
			"No summary yet. Judgement is still being reserved."),
	}
}

// SetSize rebuilds the markdown renderer for the new wrap width.
func (p *SummaryPanel) SetSize(width, height int) {
	p.Panel.SetSize(width, height)
	p.renderer = nil // lazily rebuilt at the new width
	p.Refresh(p.markdown)
}

// Refresh re-renders the panel from the given markdown summary.
func (p *SummaryPanel) Refresh(markdown string) {
	p.markdown = markdown
	if strings.TrimSpace(markdown) == "" {
		p.setContent("", false)
		return
	}

	rendered := p.renderMarkdown(markdown)
	p.setContent(rendered, true)
}

// renderMarkdown runs glamour, falling back to the raw text when the
// renderer cannot be built or the document will not render.
func (p *SummaryPanel) renderMarkdown(markdown string) string {
	if p.renderer == nil {
		wrap := p.ContentWidth()
		if wrap < 20 {
			wrap = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return markdown
		}
		p.renderer = r
	}

	out, err := p.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
