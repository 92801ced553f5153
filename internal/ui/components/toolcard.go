// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the dossier
// dashboard.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// TOOL CARD
// =============================================================================

// ToolCard renders one agent tool call as an activity card in the chat
// column. Known tools get a specialized one-line card; unknown tools fall
// back to a generic card whose raw arguments can be expanded.
type ToolCard struct {
	call     *model.ToolCall
	expanded bool
	width    int

	theme *styles.Theme
}

// maxExpandedArgLines caps the expanded raw-args view.
const maxExpandedArgLines = 40

// NewToolCard creates a card for the given call.
func NewToolCard(theme *styles.Theme, call *model.ToolCall) *ToolCard {
	return &ToolCard{
		theme: theme,
		call:  call,
	}
}

// Call returns the tracked tool call.
func (c *ToolCard) Call() *model.ToolCall {
	return c.call
}

// SetWidth sets the render width.
func (c *ToolCard) SetWidth(width int) {
	c.width = width
}

// Toggle flips the expanded state. Only the generic fallback card has an
// expanded form; toggling a known card is a no-op.
func (c *ToolCard) Toggle() {
	if c.call.Kind == model.ToolUnknown {
		c.expanded = !c.expanded
	}
}

// IsExpanded reports whether the card shows its raw arguments.
func (c *ToolCard) IsExpanded() bool {
	return c.expanded
}

// =============================================================================
// CARD LABELS
// =============================================================================

// cardLabel returns the headline for a known tool kind while the call is
// still running.
func cardLabel(kind model.ToolKind) string {
	switch kind {
	case model.ToolUpdateFindings:
		return "Extracting findings"
	case model.ToolUpdateRedacted:
		return "Speculating about redactions"
	case model.ToolUpdateTweets:
		return "Drafting tweets"
	case model.ToolUpdateSummary:
		return "Writing summary"
	case model.ToolProposeAnalysis:
		return "Proposing analysis"
	default:
		return ""
	}
}

// cardDoneLabel returns the headline once the call has completed.
func cardDoneLabel(kind model.ToolKind) string {
	switch kind {
	case model.ToolUpdateFindings:
		return "Findings updated"
	case model.ToolUpdateRedacted:
		return "Redaction analysis updated"
	case model.ToolUpdateTweets:
		return "Tweets updated"
	case model.ToolUpdateSummary:
		return "Summary updated"
	case model.ToolProposeAnalysis:
		return "Analysis proposed"
	default:
		return ""
	}
}

// =============================================================================
// VIEW RENDERING
// =============================================================================

// View renders the card. Spinner is the current animation frame for
// in-progress calls; completed cards ignore it.
func (c *ToolCard) View(spinner string) string {
	if c.call == nil {
		return ""
	}
	if c.call.Kind == model.ToolUnknown {
		return c.renderGeneric(spinner)
	}
	return c.renderKnown(spinner)
}

// renderKnown renders the one-line specialized card.
func (c *ToolCard) renderKnown(spinner string) string {
	var builder strings.Builder

	done := c.call.Status.Terminal()
	if done {
		builder.WriteString(c.theme.ToolSuccess.Render(styles.StatusIndicators.Success))
		builder.WriteString(" ")
		builder.WriteString(c.theme.ToolCardLabel.Render(cardDoneLabel(c.call.Kind)))
	} else {
		builder.WriteString(c.theme.Spinner.Render(spinner))
		builder.WriteString(" ")
		builder.WriteString(c.theme.ToolCardLabel.Render(cardLabel(c.call.Kind)))
	}

	if detail := c.detail(); detail != "" {
		builder.WriteString(c.theme.ToolCardDetail.Render("  " + detail))
	}

	box := c.theme.ToolCard
	if done {
		box = c.theme.ToolCardDone
	}
	if c.width > 0 {
		box = box.MaxWidth(c.width)
	}
	return box.Render(builder.String())
}

// renderGeneric renders the fallback card for an unrecognized tool name.
func (c *ToolCard) renderGeneric(spinner string) string {
	var builder strings.Builder

	done := c.call.Status.Terminal()
	if done {
		builder.WriteString(c.theme.ToolSuccess.Render(styles.StatusIndicators.Success))
	} else {
		builder.WriteString(c.theme.Spinner.Render(spinner))
	}
	builder.WriteString(" ")
	builder.WriteString(c.theme.ToolCardLabel.Render(c.call.Name))

	if done && c.hasRaw() {
		indicator := " [+]"
		if c.expanded {
			indicator = " [-]"
		}
		builder.WriteString(c.theme.ToolCardDetail.Render(indicator))
	}

	if c.expanded {
		if c.call.Args() != "" {
			builder.WriteString("\n")
			builder.WriteString(c.renderArgs())
		}
		if c.call.Result != "" {
			builder.WriteString("\n")
			builder.WriteString(c.renderResult())
		}
	}

	box := c.theme.ToolCard
	if done {
		box = c.theme.ToolCardDone
	}
	if c.width > 0 {
		box = box.MaxWidth(c.width)
	}
	return box.Render(builder.String())
}

// renderArgs renders the pretty-printed, syntax-highlighted argument JSON.
func (c *ToolCard) renderArgs() string {
	pretty := c.call.PrettyArgs()
	lines := strings.Split(HighlightJSON(pretty), "\n")
	if len(lines) > maxExpandedArgLines {
		total := len(strings.Split(pretty, "\n"))
		lines = lines[:maxExpandedArgLines]
		lines = append(lines, c.theme.ToolCardDetail.Render(
			"... ("+util.IntToString(total-maxExpandedArgLines)+" more lines)"))
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(strings.Join(lines, "\n"))
}

// hasRaw reports whether the card has anything to show when expanded.
func (c *ToolCard) hasRaw() bool {
	return c.call.Args() != "" || c.call.Result != ""
}

// renderResult renders the raw tool result under the arguments.
func (c *ToolCard) renderResult() string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(
		c.theme.ToolCardDetail.Render("result: " + c.call.Result))
}

// detail returns the short parenthetical for a completed known call, e.g.
// how many items the payload carried.
func (c *ToolCard) detail() string {
	if !c.call.Status.Terminal() {
		return ""
	}
	switch c.call.Kind {
	case model.ToolUpdateFindings:
		if findings, err := c.call.ParseFindings(); err == nil {
			return countLabel(len(findings), "finding", "findings")
		}
	case model.ToolUpdateRedacted:
		if items, err := c.call.ParseRedacted(); err == nil {
			return countLabel(len(items), "redaction", "redactions")
		}
	case model.ToolUpdateTweets:
		if tweets, err := c.call.ParseTweets(); err == nil {
			return countLabel(len(tweets), "draft", "drafts")
		}
	case model.ToolUpdateSummary:
		if summary, err := c.call.ParseSummary(); err == nil {
			return countLabel(len(strings.Fields(summary)), "word", "words")
		}
	case model.ToolProposeAnalysis:
		if proposal, err := c.call.ParseProposal(); err == nil {
			return countLabel(len(proposal.Steps), "step", "steps")
		}
	}
	return ""
}

func countLabel(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return util.IntToString(n) + " " + plural
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// HighlightJSON applies terminal syntax highlighting to a JSON document.
// Any tokenizing or formatting failure falls back to the plain text.
func HighlightJSON(code string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return buf.String()
}

// =============================================================================
// TOOL CARD LIST
// =============================================================================

// ToolCardList tracks the cards for one agent run in arrival order.
type ToolCardList struct {
	cards []*ToolCard
	byID  map[string]*ToolCard
	theme *styles.Theme
	width int
}

// NewToolCardList creates an empty list.
func NewToolCardList(theme *styles.Theme) *ToolCardList {
	return &ToolCardList{
		cards: make([]*ToolCard, 0),
		byID:  make(map[string]*ToolCard),
		theme: theme,
	}
}

// Track adds a card for call, or returns the existing card when the id is
// already known. Duplicate TOOL_CALL_START events therefore never produce
// duplicate cards.
func (l *ToolCardList) Track(call *model.ToolCall) *ToolCard {
	if existing, ok := l.byID[call.ID]; ok {
		return existing
	}
	card := NewToolCard(l.theme, call)
	card.SetWidth(l.width)
	l.cards = append(l.cards, card)
	l.byID[call.ID] = card
	return card
}

// Get returns the card tracking the call with the given id, or nil.
func (l *ToolCardList) Get(id string) *ToolCard {
	return l.byID[id]
}

// ToggleLatestUnknown flips the expanded state of the most recent fallback
// card. Returns false when no fallback card is present.
func (l *ToolCardList) ToggleLatestUnknown() bool {
	for i := len(l.cards) - 1; i >= 0; i-- {
		if l.cards[i].call.Kind == model.ToolUnknown {
			l.cards[i].Toggle()
			return true
		}
	}
	return false
}

// SetWidth sets the render width on every card.
func (l *ToolCardList) SetWidth(width int) {
	l.width = width
	for _, card := range l.cards {
		card.SetWidth(width)
	}
}

// Clear drops every card. Called when a new run starts.
func (l *ToolCardList) Clear() {
	l.cards = make([]*ToolCard, 0)
	l.byID = make(map[string]*ToolCard)
}

// Count returns the number of tracked cards.
func (l *ToolCardList) Count() int {
	return len(l.cards)
}

// Active reports whether any tracked call is still running.
func (l *ToolCardList) Active() bool {
	for _, card := range l.cards {
		if !card.call.Status.Terminal() {
			return true
		}
	}
	return false
}

// View renders all cards in arrival order.
func (l *ToolCardList) View(spinner string) string {
	if len(l.cards) == 0 {
		return ""
	}

	views := make([]string, 0, len(l.cards))
	for _, card := range l.cards {
		views = append(views, card.View(spinner))
	}

	return strings.Join(views, "\n")
}
