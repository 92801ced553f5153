// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/commands"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.running && m.statusBar.Status != components.StatusUploading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AgentEventMsg:
		return m.handleAgentEvent(msg)

	case runClosedMsg:
		if msg.RunID == m.runID {
			m.stopRun()
			m.statusBar.SetStatus(components.StatusReady)
		}
		return m, nil

	case PingResultMsg:
		m.connected = msg.Connected
		m.statusBar.SetConnected(msg.Connected)
		return m, nil

	case pingTickMsg:
		return m, tea.Batch(m.pingCmd(), schedulePing())

	case UploadResultMsg:
		return m.handleUploadResult(msg)

	case InboxFileMsg:
		return m.handleInboxFile(msg)

	case components.ToastTickMsg:
		m.toasts.Tick()
		if m.toasts.HasToasts() {
			return m, components.ToastTickCmd()
		}
		return m, nil

	case components.ToastDismissMsg:
		m.toasts.Remove(msg.ID)
		return m, nil

	case components.ProposalResponseMsg:
		return m.decideProposal(msg.Approved)

	case commands.ShowHelpMsg:
		m.showHelp = true
		return m, nil

	case commands.QuitMsg:
		m.shutdown()
		return m, tea.Quit

	case commands.UploadRequestMsg:
		m.statusBar.SetStatus(components.StatusUploading)
		return m, tea.Batch(uploadFileCmd(msg.Path), m.spinner.Tick)

	case commands.NewInvestigationMsg:
		return m.resetInvestigation()

	case commands.ProposalDecisionMsg:
		if !m.proposal.IsVisible() {
			m.toasts.AddWarning("No analysis proposal is pending.")
			return m, nil
		}
		m.proposal.Hide()
		return m.decideProposal(msg.Approved)

	case commands.SaveSessionMsg:
		if m.store == nil {
			m.toasts.AddError("Session store unavailable.")
			return m, m.toastCmd()
		}
		return m, m.saveCmd()

	case commands.LoadSessionMsg:
		if m.store == nil {
			m.toasts.AddError("Session store unavailable.")
			return m, m.toastCmd()
		}
		return m, loadSessionCmd(m.store, msg.ID)

	case commands.ListSessionsMsg:
		if m.store == nil {
			m.toasts.AddError("Session store unavailable.")
			return m, m.toastCmd()
		}
		return m, listSessionsCmd(m.store)

	case commands.CopySummaryMsg:
		if m.inv.Summary == "" {
			m.toasts.AddWarning("Nothing to copy: no summary yet.")
			return m, m.toastCmd()
		}
		return m, copyTextCmd("Summary", m.inv.Summary)

	case commands.ExportRequestMsg:
		if !m.inv.HasResults() {
			m.toasts.AddWarning("Nothing to export yet.")
			return m, m.toastCmd()
		}
		return m, m.exportReportCmd(msg.Format)

	case commands.ShowStatusMsg:
		m.appendSystemNote(m.statusReport())
		return m, nil

	case commands.CommandErrorMsg:
		m.toasts.AddError(msg.Err.Error())
		return m, m.toastCmd()

	case SessionSavedMsg:
		if msg.Err != nil {
			m.toasts.AddError(fmt.Sprintf("Save failed: %v", msg.Err))
		} else {
			m.toasts.AddSuccess("Session saved: " + msg.ID)
		}
		return m, m.toastCmd()

	case SessionLoadedMsg:
		return m.handleSessionLoaded(msg)

	case SessionListMsg:
		return m.handleSessionList(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			m.toasts.AddError(fmt.Sprintf("Export failed: %v", msg.Err))
		} else {
			m.toasts.AddSuccess("Exported to " + msg.Path)
		}
		return m, m.toastCmd()

	case ClipboardDoneMsg:
		if msg.Err != nil {
			m.toasts.AddError(fmt.Sprintf("Clipboard failed: %v", msg.Err))
		} else {
			m.toasts.AddSuccess(msg.What + " copied to clipboard.")
		}
		return m, m.toastCmd()
	}

	return m, nil
}

// toastCmd keeps the toast expiry ticker alive while anything is showing.
func (m *Model) toastCmd() tea.Cmd {
	if m.toasts.HasToasts() {
		return components.ToastTickCmd()
	}
	return nil
}

// shutdown releases background resources before quit.
func (m *Model) shutdown() {
	m.stopRun()
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, whatever has focus.
	if keyMatches(msg, m.keyMap.Quit) {
		m.shutdown()
		return m, tea.Quit
	}

	// The proposal modal owns the keyboard while visible.
	if m.proposal.IsVisible() {
		cmd, handled := m.proposal.Update(msg)
		if handled {
			return m, cmd
		}
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.editingTweetID != "" {
		return m.handleTweetEditKey(msg)
	}

	switch {
	case keyMatches(msg, m.keyMap.FocusNext):
		m.cycleFocus(1)
		return m, nil
	case keyMatches(msg, m.keyMap.FocusPrev):
		m.cycleFocus(-1)
		return m, nil
	}

	if m.focus == FocusInput {
		return m.handleInputKey(msg)
	}
	return m.handlePanelKey(msg)
}

// handleInputKey routes keys to the chat input line.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePanelKey routes keys when a panel or the chat viewport has focus.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case keyMatches(msg, m.keyMap.Dismiss):
		if toasts := m.toasts.Toasts(); len(toasts) > 0 {
			m.toasts.Remove(toasts[0].ID)
		}
		return m, nil
	}

	if m.focus == FocusTweets {
		switch {
		case keyMatches(msg, m.keyMap.Up):
			m.tweets.MoveSelection(-1)
			return m, nil
		case keyMatches(msg, m.keyMap.Down):
			m.tweets.MoveSelection(1)
			return m, nil
		case keyMatches(msg, m.keyMap.EditTweet):
			m.beginTweetEdit()
			return m, nil
		case keyMatches(msg, m.keyMap.PostTweet):
			return m.postSelectedTweet()
		case keyMatches(msg, m.keyMap.CopyTweet):
			return m.copySelectedTweet()
		}
		return m, nil
	}

	if p := m.focusedPanel(); p != nil {
		return m, p.Update(msg)
	}
	if m.focus == FocusChat {
		if keyMatches(msg, m.keyMap.Expand) && m.toolCards.ToggleLatestUnknown() {
			return m, nil
		}
		var cmd tea.Cmd
		m.chatVP, cmd = m.chatVP.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submitInput sends the input line: slash commands dispatch through the
// registry, anything else goes to the agent as a chat message.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	if cmd, isCommand := commands.Execute(m.parser, m.cmdCtx, text); isCommand {
		return m, cmd
	}

	if m.inv.UploadedFile == nil {
		m.toasts.AddWarning("Upload a document first: /upload <path>")
		return m, m.toastCmd()
	}

	entry := chatEntry{ID: uuid.NewString(), Role: "user", Content: text}
	m.appendChat(entry)
	m.statusBar.SetStatus(components.StatusThinking)

	return m, tea.Batch(
		appendMessageCmd(m.store, m.sessionID, entry.Role, entry.Content),
		m.startRun(),
		m.spinner.Tick,
	)
}

// cycleFocus moves focus across input, chat, and the four panels.
func (m *Model) cycleFocus(delta int) {
	m.focus = Focus((int(m.focus) + delta + int(focusCount)) % int(focusCount))

	m.findings.SetFocused(m.focus == FocusFindings)
	m.redacted.SetFocused(m.focus == FocusRedacted)
	m.tweets.SetFocused(m.focus == FocusTweets)
	m.summary.SetFocused(m.focus == FocusSummary)

	if m.focus == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// focusedPanel returns the scrollable panel under focus, nil otherwise.
func (m *Model) focusedPanel() *components.Panel {
	switch m.focus {
	case FocusFindings:
		return &m.findings.Panel
	case FocusRedacted:
		return &m.redacted.Panel
	case FocusSummary:
		return &m.summary.Panel
	}
	return nil
}

// =============================================================================
// TWEET EDITING
// =============================================================================

// beginTweetEdit opens the inline editor on the selected tweet. Posted
// tweets are immutable.
func (m *Model) beginTweetEdit() {
	id := m.tweets.SelectedID()
	if id == "" {
		return
	}
	tweet := m.inv.TweetByID(id)
	if tweet == nil {
		return
	}
	if tweet.Posted {
		m.toasts.AddWarning("Posted tweets cannot be edited.")
		return
	}

	m.editingTweetID = id
	m.tweetEditor.SetValue(tweet.Content)
	m.tweetEditor.Focus()
	m.tweets.SetEditingID(id)
}

func (m Model) handleTweetEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keyMap.SaveEdit):
		content := strings.TrimSpace(m.tweetEditor.Value())
		if content == "" {
			m.toasts.AddWarning("Tweet cannot be empty.")
			return m, m.toastCmd()
		}
		m.inv.EditTweet(m.editingTweetID, content)
		m.endTweetEdit()
		m.refreshPanels()
		return m, nil

	case keyMatches(msg, m.keyMap.Cancel):
		m.endTweetEdit()
		m.refreshPanels()
		return m, nil
	}

	var cmd tea.Cmd
	m.tweetEditor, cmd = m.tweetEditor.Update(msg)
	return m, cmd
}

func (m *Model) endTweetEdit() {
	m.editingTweetID = ""
	m.tweetEditor.Reset()
	m.tweetEditor.Blur()
	m.tweets.SetEditingID("")
}

func (m Model) postSelectedTweet() (tea.Model, tea.Cmd) {
	id := m.tweets.SelectedID()
	if id == "" {
		return m, nil
	}
	tweet := m.inv.TweetByID(id)
	if tweet == nil {
		return m, nil
	}
	if tweet.Posted {
		m.toasts.AddWarning("Tweet is already posted.")
		return m, m.toastCmd()
	}

	m.inv.PostTweet(id)
	m.refreshPanels()
	m.toasts.AddSuccess("Tweet posted.")
	return m, m.toastCmd()
}

func (m Model) copySelectedTweet() (tea.Model, tea.Cmd) {
	tweet := m.inv.TweetByID(m.tweets.SelectedID())
	if tweet == nil {
		return m, nil
	}
	return m, copyTextCmd("Tweet", tweet.Content)
}

// =============================================================================
// AGENT EVENTS
// =============================================================================

// handleAgentEvent applies one streamed event to the canonical state.
// Events from a superseded run are dropped here, so a cancelled run can
// never overwrite newer state.
func (m Model) handleAgentEvent(msg AgentEventMsg) (tea.Model, tea.Cmd) {
	if msg.RunID != m.runID {
		return m, nil
	}

	ev := msg.Event
	listen := listenCmd(m.runID, m.runEvents)

	if ev.Error != nil {
		m.stopRun()
		m.statusBar.SetStatus(components.StatusError)
		m.toasts.AddError("Agent connection lost: " + ev.Error.Error())
		return m, m.toastCmd()
	}

	switch ev.Type {
	case agent.EventRunStarted:
		m.statusBar.SetStatus(components.StatusThinking)

	case agent.EventTextMessageStart:
		// A reconnected stream replays the run from the top; reuse the
		// existing entry so the partial text is rebuilt, not duplicated.
		m.streamMsgID = ev.MessageID
		if !m.resetChatEntry(ev.MessageID) {
			m.appendChat(chatEntry{ID: ev.MessageID, Role: "assistant"})
		}
		m.statusBar.SetStatus(components.StatusStreaming)

	case agent.EventTextMessageContent:
		m.appendDelta(ev.MessageID, ev.Delta)

	case agent.EventTextMessageEnd:
		if content := m.entryContent(m.streamMsgID); content != "" {
			m.streamMsgID = ""
			return m, tea.Batch(
				appendMessageCmd(m.store, m.sessionID, "assistant", content),
				listen,
			)
		}
		m.streamMsgID = ""

	case agent.EventToolCallStart:
		call := model.NewToolCall(ev.ToolCallID, ev.ToolCallName)
		m.calls[ev.ToolCallID] = call
		m.toolCards.Track(call)

	case agent.EventToolCallArgs:
		if call, ok := m.calls[ev.ToolCallID]; ok {
			call.AppendArgs(ev.Delta)
		}

	case agent.EventToolCallEnd:
		if call, ok := m.calls[ev.ToolCallID]; ok {
			call.Advance(model.ToolExecuting)
			m.applyToolPayload(call)
		}

	case agent.EventToolCallResult:
		if call, ok := m.calls[ev.ToolCallID]; ok {
			call.Result = ev.Content
			call.Advance(model.ToolComplete)
		}

	case agent.EventStateSnapshot:
		m.applySnapshot(ev.Snapshot)

	case agent.EventRunFinished:
		m.statusBar.SetStatus(components.StatusReady)
		return m, tea.Batch(m.saveCmd(), listen)

	case agent.EventRunError:
		m.statusBar.SetStatus(components.StatusError)
		m.toasts.AddError("Agent error: " + ev.ErrorMessage())
		return m, tea.Batch(m.toastCmd(), listen)
	}

	return m, listen
}

// applyToolPayload applies a finished tool call to the state without
// waiting for the closing snapshot, so panels fill as the agent works.
// The snapshot that follows remains authoritative.
func (m *Model) applyToolPayload(call *model.ToolCall) {
	switch call.Kind {
	case model.ToolUpdateFindings:
		if items, err := call.ParseFindings(); err == nil {
			m.inv.Findings = items
		}
	case model.ToolUpdateRedacted:
		if items, err := call.ParseRedacted(); err == nil {
			m.inv.RedactedContent = items
		}
	case model.ToolUpdateTweets:
		if items, err := call.ParseTweets(); err == nil {
			m.inv.Tweets = items
		}
	case model.ToolUpdateSummary:
		if summary, err := call.ParseSummary(); err == nil {
			m.inv.Summary = summary
		}
	case model.ToolProposeAnalysis:
		if proposal, err := call.ParseProposal(); err == nil {
			m.inv.AnalysisStatus = model.StatusProposed
			m.proposal.Show(proposal)
		}
	default:
		return
	}
	m.refreshPanels()
}

// applySnapshot replaces the canonical state with the agent's snapshot.
// A tweet edit in progress keeps its draft: the editor buffer is local
// until saved.
func (m *Model) applySnapshot(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var snap model.InvestigatorState
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.toasts.AddError("Malformed state snapshot from agent.")
		return
	}
	m.inv.ApplySnapshot(&snap)

	// The edited tweet may have vanished from the snapshot.
	if m.editingTweetID != "" && m.inv.TweetByID(m.editingTweetID) == nil {
		m.endTweetEdit()
		m.toasts.AddWarning("The tweet being edited was replaced by the agent.")
	}

	m.refreshPanels()
}

// decideProposal resolves the pending analysis proposal.
func (m Model) decideProposal(approved bool) (tea.Model, tea.Cmd) {
	if !approved {
		m.inv.AnalysisStatus = model.StatusIdle
		m.refreshPanels()
		m.appendSystemNote("Analysis declined.")
		return m, nil
	}

	m.inv.AnalysisStatus = model.StatusAnalyzing
	m.refreshPanels()

	// The agent only sees user/assistant messages, so approval goes on the
	// wire as a real user turn, not a local note.
	entry := chatEntry{
		ID:      uuid.NewString(),
		Role:    "user",
		Content: "Approved. " + intake.ChooseMessage(len(m.transcript)),
	}
	m.appendChat(entry)
	m.statusBar.SetStatus(components.StatusThinking)
	return m, tea.Batch(
		appendMessageCmd(m.store, m.sessionID, entry.Role, entry.Content),
		m.startRun(),
		m.spinner.Tick,
	)
}

// =============================================================================
// CHAT STREAM HELPERS
// =============================================================================

func (m *Model) appendDelta(messageID, delta string) {
	for i := range m.transcript {
		if m.transcript[i].ID == messageID {
			m.transcript[i].Content += delta
			m.renderChat()
			m.chatVP.GotoBottom()
			return
		}
	}
}

func (m *Model) entryContent(messageID string) string {
	for i := range m.transcript {
		if m.transcript[i].ID == messageID {
			return m.transcript[i].Content
		}
	}
	return ""
}

// =============================================================================
// UPLOADS
// =============================================================================

func (m Model) handleUploadResult(msg UploadResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusBar.SetStatus(components.StatusReady)
		m.toasts.AddError(fmt.Sprintf("Cannot ingest %s: %v", msg.Name, msg.Err))
		return m, m.toastCmd()
	}
	return m.acceptUpload(msg.Result)
}

func (m Model) handleInboxFile(msg InboxFileMsg) (tea.Model, tea.Cmd) {
	rewatch := watchInboxCmd(m.watcher)

	name := intake.SanitizeName(filepath.Base(msg.File.Path))
	result, err := intake.Prepare(name, intake.AcceptedMimeType, msg.File.Data)
	if err != nil {
		m.toasts.AddError(fmt.Sprintf("Inbox file %s rejected: %v", name, err))
		return m, tea.Batch(m.toastCmd(), rewatch)
	}

	next, cmd := m.acceptUpload(result)
	return next, tea.Batch(cmd, rewatch)
}

// acceptUpload installs a validated document and kicks off the first run,
// which ends with the agent proposing an analysis plan.
func (m Model) acceptUpload(result *intake.Result) (tea.Model, tea.Cmd) {
	m.stopRun()
	m.endTweetEdit()
	m.proposal.Hide()
	m.toolCards.Clear()
	m.calls = make(map[string]*model.ToolCall)

	m.inv.SetUploadedFile(result.File)
	m.refreshPanels()

	if result.Warning != "" {
		m.toasts.AddWarning(result.Warning)
	}

	m.appendSystemNote("Received " + result.File.Name + ". " + intake.ChooseMessage(len(m.transcript)))
	m.statusBar.SetStatus(components.StatusThinking)

	return m, tea.Batch(
		m.saveCmd(),
		m.startRun(),
		m.spinner.Tick,
		m.toastCmd(),
	)
}

// =============================================================================
// SESSIONS
// =============================================================================

// saveCmd snapshots the current investigation for persistence. A nil
// store makes auto-saves silent no-ops.
func (m *Model) saveCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	return saveSessionCmd(m.store, m.sessionSnapshot())
}

func (m Model) handleSessionLoaded(msg SessionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError(fmt.Sprintf("Load failed: %v", msg.Err))
		return m, m.toastCmd()
	}

	m.stopRun()
	m.endTweetEdit()
	m.proposal.Hide()
	m.toolCards.Clear()
	m.calls = make(map[string]*model.ToolCall)

	m.sessionID = msg.Session.ID
	m.inv = msg.Session.State
	if m.inv == nil {
		m.inv = model.NewInvestigatorState()
	}

	m.transcript = nil
	for _, entry := range msg.Transcript {
		m.transcript = append(m.transcript, chatEntry{
			ID:      uuid.NewString(),
			Role:    entry.Role,
			Content: entry.Content,
		})
	}
	m.renderChat()
	m.chatVP.GotoBottom()

	m.refreshPanels()
	m.toasts.AddSuccess("Resumed investigation " + m.sessionID)
	return m, m.toastCmd()
}

func (m Model) handleSessionList(msg SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError(fmt.Sprintf("Cannot list sessions: %v", msg.Err))
		return m, m.toastCmd()
	}
	if len(msg.Sessions) == 0 {
		m.appendSystemNote("No saved investigations.")
		return m, nil
	}

	var sb strings.Builder
	sb.WriteString("Saved investigations:\n")
	for _, s := range msg.Sessions {
		name := s.FileName
		if name == "" {
			name = "(no document)"
		}
		fmt.Fprintf(&sb, "  %s  %s  [%s]  %s\n",
			s.ID, name, s.Status.DisplayName(), s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("Use /load <session_id> to resume.")
	m.appendSystemNote(sb.String())
	return m, nil
}

// resetInvestigation starts a fresh session. The old one stays on disk.
func (m Model) resetInvestigation() (tea.Model, tea.Cmd) {
	m.stopRun()
	m.endTweetEdit()
	m.proposal.Hide()
	m.toolCards.Clear()
	m.calls = make(map[string]*model.ToolCall)

	m.sessionID = uuid.NewString()
	m.inv = model.NewInvestigatorState()
	m.transcript = nil
	m.streamMsgID = ""
	m.renderChat()

	m.refreshPanels()
	m.statusBar.SetStatus(components.StatusReady)
	m.toasts.AddStatus("New investigation started.")
	return m, m.toastCmd()
}

// statusReport summarizes the session for /status.
func (m *Model) statusReport() string {
	doc := "none"
	if m.inv.UploadedFile != nil {
		doc = m.inv.UploadedFile.Name
	}
	conn := "offline"
	if m.connected {
		conn = "connected"
	}
	return fmt.Sprintf(
		"Session %s\n  Document: %s\n  Status: %s\n  Agent: %s (%s)\n  Findings: %d  Redactions: %d  Tweets: %d",
		m.sessionID, doc, m.inv.AnalysisStatus.DisplayName(),
		m.client.BaseURL(), conn,
		len(m.inv.Findings), len(m.inv.RedactedContent), len(m.inv.Tweets),
	)
}
