// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the investigation dashboard TUI: a chat
// column on the left, the four result panels on the right, and the modal
// proposal prompt over the top.
//
// The dashboard owns the canonical InvestigatorState. Agent events and
// local edits both funnel through Update, so every mutation happens on the
// Bubble Tea loop and the panels are always projections of one value.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/commands"
	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/storage"
	"github.com/jeranaias/dossier/internal/ui/components"
	"github.com/jeranaias/dossier/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which part of the dashboard receives keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusChat
	FocusFindings
	FocusRedacted
	FocusTweets
	FocusSummary
	focusCount
)

// =============================================================================
// CHAT TRANSCRIPT
// =============================================================================

// chatEntry is one rendered message in the chat column.
type chatEntry struct {
	ID      string
	Role    string
	Content string
}

// =============================================================================
// DASHBOARD MODEL
// =============================================================================

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	theme  *styles.Theme
	keyMap KeyMap

	width  int
	height int

	cfg    *config.Config
	client *agent.Client
	store  *storage.Store

	// Investigation identity and canonical state
	sessionID string
	inv       *model.InvestigatorState

	// Chat column
	chatVP      viewport.Model
	transcript  []chatEntry
	streamMsgID string
	input       textinput.Model

	// Active agent run
	running   bool
	runID     string
	runSeq    int
	runCancel context.CancelFunc
	runEvents <-chan agent.Event

	// Tool calls of the current run, keyed by toolCallId
	calls map[string]*model.ToolCall

	// Components
	header    *components.Header
	statusBar *components.StatusBar
	findings  *components.FindingsPanel
	redacted  *components.RedactedPanel
	tweets    *components.TweetsPanel
	summary   *components.SummaryPanel
	toolCards *components.ToolCardList
	proposal  *components.ProposalPrompt
	toasts    *components.ToastManager

	// Tweet edit control. The draft lives only here until saved, so a
	// remote snapshot can replace the tweet list without killing an edit
	// in progress.
	tweetEditor    textarea.Model
	editingTweetID string

	// Slash commands
	parser *commands.Parser
	cmdCtx *commands.Context

	// Inbox watcher, nil when disabled
	watcher *intake.InboxWatcher

	spinner   spinner.Model
	focus     Focus
	connected bool
	showHelp  bool
}

// pingInterval is how often agent reachability is probed.
const pingInterval = 15 * time.Second

// New creates the dashboard model.
func New(cfg *config.Config, client *agent.Client, store *storage.Store) Model {
	theme := styles.NewTheme()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the document, or /help..."
	ti.CharLimit = 4096
	ti.Focus()

	editor := textarea.New()
	editor.CharLimit = model.MaxTweetLen
	editor.Placeholder = "Edit tweet..."
	editor.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.BrailleSpinner.Frames,
		FPS:    styles.BrailleSpinner.Duration(),
	}

	registry := commands.NewRegistry()

	m := Model{
		theme:       theme,
		keyMap:      DefaultKeyMap(),
		cfg:         cfg,
		client:      client,
		store:       store,
		sessionID:   uuid.NewString(),
		inv:         model.NewInvestigatorState(),
		calls:       make(map[string]*model.ToolCall),
		chatVP:      viewport.New(60, 20),
		input:       ti,
		tweetEditor: editor,
		header:      components.NewHeader(theme),
		statusBar:   components.NewStatusBar(theme),
		findings:    components.NewFindingsPanel(theme),
		redacted:    components.NewRedactedPanel(theme),
		tweets:      components.NewTweetsPanel(theme),
		summary:     components.NewSummaryPanel(theme),
		toolCards:   components.NewToolCardList(theme),
		proposal:    components.NewProposalPrompt(theme),
		toasts:      components.NewToastManager(),
		parser:      commands.NewParser(registry),
		cmdCtx:      commands.NewContext(cfg, store),
		spinner:     sp,
		focus:       FocusInput,
	}

	if cfg != nil && cfg.Intake.InboxDir != "" {
		if w, err := intake.NewInboxWatcher(cfg.Intake.InboxDir, time.Second); err == nil {
			if err := w.Watch(); err == nil {
				m.watcher = w
			} else {
				w.Close()
			}
		}
	}

	return m
}

// SessionID returns the current investigation id.
func (m *Model) SessionID() string {
	return m.sessionID
}

// State returns the canonical investigator state. Exposed for tests.
func (m *Model) State() *model.InvestigatorState {
	return m.inv
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the background loops: cursor blink, connectivity probing,
// and the inbox watcher pump.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.pingCmd(),
		schedulePing(),
	}
	if m.watcher != nil {
		cmds = append(cmds, watchInboxCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// View renders the dashboard.
func (m Model) View() string {
	return m.render()
}

// =============================================================================
// STATE PROJECTION
// =============================================================================

// refreshPanels re-renders every projection of the investigator state.
func (m *Model) refreshPanels() {
	m.findings.Refresh(m.inv.Findings)
	m.redacted.Refresh(m.inv.RedactedContent)
	m.tweets.Refresh(m.inv.Tweets)
	m.summary.Refresh(m.inv.Summary)

	fileName := ""
	if m.inv.UploadedFile != nil {
		fileName = m.inv.UploadedFile.Name
	}
	m.header.SetDocument(fileName, m.inv.AnalysisStatus)
}

// appendChat adds an entry to the transcript and scrolls to it.
func (m *Model) appendChat(entry chatEntry) {
	m.transcript = append(m.transcript, entry)
	m.renderChat()
	m.chatVP.GotoBottom()
}

// resetChatEntry clears the content of an existing transcript entry and
// reports whether one with that id was found.
func (m *Model) resetChatEntry(id string) bool {
	for i := range m.transcript {
		if m.transcript[i].ID == id {
			m.transcript[i].Content = ""
			m.renderChat()
			return true
		}
	}
	return false
}

// appendSystemNote adds a local system line to the chat column. System
// notes are display-only; they are never sent to the agent.
func (m *Model) appendSystemNote(text string) {
	m.appendChat(chatEntry{ID: uuid.NewString(), Role: "system", Content: text})
}

// sessionSnapshot captures the current investigation for persistence or
// export.
func (m *Model) sessionSnapshot() *storage.Session {
	fileName := ""
	if m.inv.UploadedFile != nil {
		fileName = m.inv.UploadedFile.Name
	}
	return &storage.Session{
		ID:       m.sessionID,
		FileName: fileName,
		Status:   m.inv.AnalysisStatus,
		State:    m.inv.Clone(),
	}
}

// transcriptEntries converts the chat column for export, keeping system
// notes out of the report.
func (m *Model) transcriptEntries() []storage.TranscriptEntry {
	entries := make([]storage.TranscriptEntry, 0, len(m.transcript))
	for _, e := range m.transcript {
		if e.Role == "system" {
			continue
		}
		entries = append(entries, storage.TranscriptEntry{Role: e.Role, Content: e.Content})
	}
	return entries
}

// agentMessages converts the transcript for the wire, dropping local
// system notes.
func (m *Model) agentMessages() []agent.Message {
	msgs := make([]agent.Message, 0, len(m.transcript))
	for _, e := range m.transcript {
		if e.Role == "system" {
			continue
		}
		msgs = append(msgs, agent.Message{ID: e.ID, Role: e.Role, Content: e.Content})
	}
	return msgs
}
