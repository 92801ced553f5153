// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style

	// ==========================================================================
	// PANEL STYLES
	// ==========================================================================

	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	PanelTitle   lipgloss.Style
	EmptyState   lipgloss.Style

	// ==========================================================================
	// SEVERITY BADGE STYLES
	// ==========================================================================

	SeverityLow      lipgloss.Style
	SeverityMedium   lipgloss.Style
	SeverityHigh     lipgloss.Style
	SeverityCritical lipgloss.Style

	// ==========================================================================
	// TOOL CALL CARD STYLES
	// ==========================================================================

	ToolCard       lipgloss.Style
	ToolCardDone   lipgloss.Style
	ToolCardLabel  lipgloss.Style
	ToolCardDetail lipgloss.Style
	ToolSuccess    lipgloss.Style
	ToolError      lipgloss.Style

	// ==========================================================================
	// PROPOSAL PROMPT STYLES
	// ==========================================================================

	ProposalBox          lipgloss.Style
	ProposalTitle        lipgloss.Style
	ProposalStep         lipgloss.Style
	ProposalButton       lipgloss.Style
	ProposalButtonActive lipgloss.Style

	// ==========================================================================
	// TWEET PANEL STYLES
	// ==========================================================================

	TweetCard    lipgloss.Style
	TweetPosted  lipgloss.Style
	TweetEditing lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar       lipgloss.Style
	StatusConnected lipgloss.Style
	StatusOffline   lipgloss.Style
	ShortcutKey     lipgloss.Style
	ShortcutDesc    lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// TOAST STYLES
	// ==========================================================================

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 2).
		Align(lipgloss.Center)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	// Result panels
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Severity badges
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	t.SeverityLow = badge.Foreground(TextInverse).Background(SeverityLowColor)
	t.SeverityMedium = badge.Foreground(TextInverse).Background(SeverityMediumColor)
	t.SeverityHigh = badge.Foreground(TextInverse).Background(SeverityHighColor)
	t.SeverityCritical = badge.Foreground(TextInverse).Background(SeverityCriticalColor)

	// Tool call cards
	t.ToolCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		BorderLeft(true).
		PaddingLeft(2)

	t.ToolCardDone = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Emerald).
		BorderLeft(true).
		PaddingLeft(2)

	t.ToolCardLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ToolCardDetail = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ToolSuccess = lipgloss.NewStyle().
		Foreground(ToolSuccessFg).
		Background(ToolSuccessBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Emerald).
		BorderLeft(true).
		PaddingLeft(2)

	t.ToolError = lipgloss.NewStyle().
		Foreground(ToolErrorFg).
		Background(ToolErrorBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Rose).
		BorderLeft(true).
		PaddingLeft(2)

	// Proposal prompt
	t.ProposalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(1, 2)

	t.ProposalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.ProposalStep = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.ProposalButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2)

	t.ProposalButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 2)

	// Tweets
	t.TweetCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.TweetPosted = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.TweetEditing = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.CharCount = lipgloss.NewStyle().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	t.CharCountWarning = lipgloss.NewStyle().
		Foreground(Amber).
		Align(lipgloss.Right)

	t.CharCountDanger = lipgloss.NewStyle().
		Foreground(Rose).
		Align(lipgloss.Right)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusConnected = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusOffline = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastInfo = toast.BorderForeground(Cyan).Foreground(TextPrimary)
	t.ToastSuccess = toast.BorderForeground(Emerald).Foreground(TextPrimary)
	t.ToastWarning = toast.BorderForeground(Amber).Foreground(TextPrimary)
	t.ToastError = toast.BorderForeground(Rose).Foreground(TextPrimary)
}

// SetSize records the terminal dimensions for layout decisions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// SeverityBadge returns the badge style for a severity name.
func (t *Theme) SeverityBadge(severity string) lipgloss.Style {
	switch severity {
	case "critical":
		return t.SeverityCritical
	case "high":
		return t.SeverityHigh
	case "low":
		return t.SeverityLow
	default:
		return t.SeverityMedium
	}
}
