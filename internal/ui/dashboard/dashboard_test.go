// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/model"
)

func testModel(t *testing.T) Model {
	t.Helper()
	cfg := &config.Config{}
	client := agent.NewClient("http://localhost:1").WithMaxRetries(0)
	m := New(cfg, client, nil)
	m.handleResize(120, 40)
	return m
}

func uploadedState(m *Model) {
	m.inv.SetUploadedFile(&model.UploadedFile{
		Name:     "dossier.pdf",
		Base64:   "JVBERi0=",
		MimeType: "application/pdf",
	})
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestAcceptUploadResetsDerivedState(t *testing.T) {
	m := testModel(t)

	uploadedState(&m)
	m.inv.Findings = []model.Finding{{ID: "f1", Title: "Old", Severity: model.SeverityHigh}}
	m.inv.Tweets = []model.Tweet{{ID: "t1", Content: "old tweet", Posted: true}}
	m.inv.Summary = "old summary"
	m.inv.AnalysisStatus = model.StatusComplete

	result, err := intake.Prepare("next.pdf", "application/pdf", []byte("%PDF-1.7 fresh"))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	next, _ := m.acceptUpload(result)
	m = next.(Model)

	if m.inv.UploadedFile == nil || m.inv.UploadedFile.Name != "next.pdf" {
		t.Fatalf("uploaded file not installed: %+v", m.inv.UploadedFile)
	}
	if len(m.inv.Findings) != 0 || len(m.inv.Tweets) != 0 || m.inv.Summary != "" {
		t.Error("derived results must be cleared by a new upload")
	}
	if m.inv.AnalysisStatus != model.StatusIdle {
		t.Errorf("status = %q, want idle", m.inv.AnalysisStatus)
	}
	if !m.running {
		t.Error("a new upload should start a run")
	}
}

func TestUploadErrorShowsToast(t *testing.T) {
	m := testModel(t)

	next, _ := m.handleUploadResult(UploadResultMsg{Name: "notes.txt", Err: intake.ErrNotPDF})
	m = next.(Model)

	if m.inv.UploadedFile != nil {
		t.Error("rejected upload must not install a file")
	}
	if !m.toasts.HasToasts() {
		t.Error("rejected upload should raise a toast")
	}
}

// =============================================================================
// RUN EVENT HANDLING
// =============================================================================

func snapshotEvent(t *testing.T, state *model.InvestigatorState) agent.Event {
	t.Helper()
	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return agent.Event{Type: agent.EventStateSnapshot, Snapshot: raw}
}

func TestStaleRunEventsAreDropped(t *testing.T) {
	m := testModel(t)
	m.runID = "current-run"

	stale := model.NewInvestigatorState()
	stale.Summary = "stale summary"

	next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "old-run", Event: snapshotEvent(t, stale)})
	m = next.(Model)

	if m.inv.Summary != "" {
		t.Errorf("stale snapshot applied: summary = %q", m.inv.Summary)
	}
}

func TestSnapshotReplacesState(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	snap := model.NewInvestigatorState()
	snap.Summary = "## Verdict\n\nSuspicious."
	snap.Findings = []model.Finding{{ID: "f1", Title: "Shell company", Severity: model.SeverityCritical}}

	next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: snapshotEvent(t, snap)})
	m = next.(Model)

	if m.inv.Summary != snap.Summary {
		t.Errorf("summary = %q", m.inv.Summary)
	}
	if len(m.inv.Findings) != 1 || m.inv.Findings[0].Title != "Shell company" {
		t.Errorf("findings = %+v", m.inv.Findings)
	}
}

func TestTextStreamAccumulatesDeltas(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	events := []agent.Event{
		{Type: agent.EventTextMessageStart, MessageID: "msg-1", Role: "assistant"},
		{Type: agent.EventTextMessageContent, MessageID: "msg-1", Delta: "The file "},
		{Type: agent.EventTextMessageContent, MessageID: "msg-1", Delta: "looks shady."},
	}
	for _, ev := range events {
		next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: ev})
		m = next.(Model)
	}

	if len(m.transcript) != 1 {
		t.Fatalf("transcript entries = %d, want 1", len(m.transcript))
	}
	if got := m.transcript[0].Content; got != "The file looks shady." {
		t.Errorf("content = %q", got)
	}
}

func TestToolPayloadAppliedOnCallEnd(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	payload := `{"findings_list":{"findings":[` +
		`{"title":"Offshore account","description":"Page 3","severity":"high"},` +
		`{"title":"Backdated signature","description":"Page 9","severity":"critical"}]}}`

	events := []agent.Event{
		{Type: agent.EventToolCallStart, ToolCallID: "tc-1", ToolCallName: model.NameUpdateFindings},
		{Type: agent.EventToolCallArgs, ToolCallID: "tc-1", Delta: payload},
		{Type: agent.EventToolCallEnd, ToolCallID: "tc-1"},
	}
	for _, ev := range events {
		next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: ev})
		m = next.(Model)
	}

	if len(m.inv.Findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(m.inv.Findings))
	}
	if m.inv.Findings[1].Severity != model.SeverityCritical {
		t.Errorf("severity = %q", m.inv.Findings[1].Severity)
	}
	if m.toolCards.Count() != 1 {
		t.Errorf("tool cards = %d, want 1", m.toolCards.Count())
	}
}

func TestUnknownToolResultStoredAndExpandable(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	events := []agent.Event{
		{Type: agent.EventToolCallStart, ToolCallID: "tc-9", ToolCallName: "cross_reference"},
		{Type: agent.EventToolCallArgs, ToolCallID: "tc-9", Delta: `{"query":"shell companies"}`},
		{Type: agent.EventToolCallEnd, ToolCallID: "tc-9"},
		{Type: agent.EventToolCallResult, ToolCallID: "tc-9", Content: "3 matches in public registries"},
	}
	for _, ev := range events {
		next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: ev})
		m = next.(Model)
	}

	if got := m.calls["tc-9"].Result; got != "3 matches in public registries" {
		t.Errorf("stored result = %q", got)
	}

	m.focus = FocusChat
	next, _ := m.handlePanelKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	m = next.(Model)

	card := m.toolCards.Get("tc-9")
	if card == nil || !card.IsExpanded() {
		t.Error("o with chat focus should expand the fallback card")
	}
}

func TestReplayedStreamDoesNotDuplicateMessage(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	events := []agent.Event{
		{Type: agent.EventTextMessageStart, MessageID: "msg-1", Role: "assistant"},
		{Type: agent.EventTextMessageContent, MessageID: "msg-1", Delta: "The file "},
		// A reconnected stream replays the run from the top.
		{Type: agent.EventTextMessageStart, MessageID: "msg-1", Role: "assistant"},
		{Type: agent.EventTextMessageContent, MessageID: "msg-1", Delta: "The file "},
		{Type: agent.EventTextMessageContent, MessageID: "msg-1", Delta: "looks shady."},
	}
	for _, ev := range events {
		next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: ev})
		m = next.(Model)
	}

	if len(m.transcript) != 1 {
		t.Fatalf("transcript entries = %d, want 1", len(m.transcript))
	}
	if got := m.transcript[0].Content; got != "The file looks shady." {
		t.Errorf("content = %q", got)
	}
}

func TestProposalToolShowsPrompt(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"

	payload := `{"file_name":"dossier.pdf","steps":["Extract findings","Draft tweets"]}`
	events := []agent.Event{
		{Type: agent.EventToolCallStart, ToolCallID: "tc-1", ToolCallName: model.NameProposeAnalysis},
		{Type: agent.EventToolCallArgs, ToolCallID: "tc-1", Delta: payload},
		{Type: agent.EventToolCallEnd, ToolCallID: "tc-1"},
	}
	for _, ev := range events {
		next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: ev})
		m = next.(Model)
	}

	if !m.proposal.IsVisible() {
		t.Error("proposal prompt should appear after propose_analysis")
	}
	if m.inv.AnalysisStatus != model.StatusProposed {
		t.Errorf("status = %q, want proposed", m.inv.AnalysisStatus)
	}
}

// =============================================================================
// PROPOSAL DECISIONS
// =============================================================================

func TestDeclineProposalReturnsToIdle(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	m.inv.AnalysisStatus = model.StatusProposed

	next, _ := m.decideProposal(false)
	m = next.(Model)

	if m.inv.AnalysisStatus != model.StatusIdle {
		t.Errorf("status = %q, want idle", m.inv.AnalysisStatus)
	}
	if m.running {
		t.Error("declining must not start a run")
	}
}

func TestApproveProposalStartsAnalysis(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	m.inv.AnalysisStatus = model.StatusProposed

	next, cmd := m.decideProposal(true)
	m = next.(Model)

	if m.inv.AnalysisStatus != model.StatusAnalyzing {
		t.Errorf("status = %q, want analyzing", m.inv.AnalysisStatus)
	}
	if !m.running || cmd == nil {
		t.Error("approval must start a run")
	}

	// The approval goes on the wire as a user turn, not a local note.
	msgs := m.agentMessages()
	if len(msgs) == 0 {
		t.Fatal("approval did not append a message for the agent")
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || !strings.HasPrefix(last.Content, "Approved.") {
		t.Errorf("last wire message = %+v", last)
	}
}

// =============================================================================
// TWEETS
// =============================================================================

func seedTweets(m *Model) {
	m.inv.Tweets = []model.Tweet{
		{ID: "t1", Content: "First draft"},
		{ID: "t2", Content: "Second draft"},
	}
	m.refreshPanels()
}

func TestPostSelectedTweet(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	seedTweets(&m)

	next, _ := m.postSelectedTweet()
	m = next.(Model)

	if !m.inv.Tweets[0].Posted {
		t.Error("selected tweet should be posted")
	}

	// Posting again is rejected, not re-applied.
	next, _ = m.postSelectedTweet()
	m = next.(Model)
	if !m.toasts.HasToasts() {
		t.Error("double post should warn")
	}
}

func TestCopyTweetKeyFromTweetsPanel(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	seedTweets(&m)
	m.focus = FocusTweets

	_, cmd := m.handlePanelKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if cmd == nil {
		t.Error("c on the tweets panel should issue a clipboard command")
	}
}

func TestClipboardToastNamesWhatWasCopied(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(ClipboardDoneMsg{What: "Tweet"})
	m = next.(Model)

	toasts := m.toasts.Toasts()
	if len(toasts) != 1 || !strings.Contains(toasts[0].Message, "Tweet copied") {
		t.Errorf("toasts = %+v, want tweet confirmation", toasts)
	}
}

func TestPostedTweetCannotBeEdited(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	seedTweets(&m)
	m.inv.Tweets[0].Posted = true
	m.refreshPanels()

	m.beginTweetEdit()
	if m.editingTweetID != "" {
		t.Error("posted tweet must not enter edit mode")
	}
}

func TestSnapshotKeepsEditDraftWhenTweetSurvives(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"
	uploadedState(&m)
	seedTweets(&m)

	m.beginTweetEdit()
	if m.editingTweetID != "t1" {
		t.Fatalf("editing = %q, want t1", m.editingTweetID)
	}
	m.tweetEditor.SetValue("my local draft")

	snap := m.inv.Clone()
	snap.Tweets = []model.Tweet{
		{ID: "t1", Content: "remote rewrite"},
		{ID: "t3", Content: "new remote tweet"},
	}

	next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: snapshotEvent(t, snap)})
	m = next.(Model)

	if m.editingTweetID != "t1" {
		t.Error("edit in progress should survive a snapshot that keeps the tweet")
	}
	if got := m.tweetEditor.Value(); got != "my local draft" {
		t.Errorf("draft = %q", got)
	}
}

func TestSnapshotEndsEditWhenTweetVanishes(t *testing.T) {
	m := testModel(t)
	m.runID = "run-1"
	uploadedState(&m)
	seedTweets(&m)

	m.beginTweetEdit()
	snap := m.inv.Clone()
	snap.Tweets = []model.Tweet{{ID: "t9", Content: "replacement"}}

	next, _ := m.handleAgentEvent(AgentEventMsg{RunID: "run-1", Event: snapshotEvent(t, snap)})
	m = next.(Model)

	if m.editingTweetID != "" {
		t.Error("edit must end when the tweet disappears from the snapshot")
	}
}

// =============================================================================
// INPUT
// =============================================================================

func TestChatRequiresDocument(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("what is this file")

	next, _ := m.submitInput()
	m = next.(Model)

	if len(m.transcript) != 0 {
		t.Error("chat without a document must not reach the transcript")
	}
	if !m.toasts.HasToasts() {
		t.Error("chat without a document should warn")
	}
	if m.running {
		t.Error("chat without a document must not start a run")
	}
}

func TestSystemNotesExcludedFromWire(t *testing.T) {
	m := testModel(t)
	m.appendChat(chatEntry{ID: "u1", Role: "user", Content: "hello"})
	m.appendSystemNote("Received dossier.pdf.")
	m.appendChat(chatEntry{ID: "a1", Role: "assistant", Content: "hi"})

	msgs := m.agentMessages()
	if len(msgs) != 2 {
		t.Fatalf("wire messages = %d, want 2", len(msgs))
	}
	for _, msg := range msgs {
		if msg.Role == "system" {
			t.Errorf("system note leaked to the wire: %+v", msg)
		}
	}
}

// =============================================================================
// EXPORT SNAPSHOT
// =============================================================================

func TestSessionSnapshotIsDetached(t *testing.T) {
	m := testModel(t)
	uploadedState(&m)
	m.inv.Summary = "before"

	sess := m.sessionSnapshot()
	m.inv.Summary = "after"

	if sess.State.Summary != "before" {
		t.Error("snapshot must not share state with the live model")
	}
	if sess.FileName != "dossier.pdf" {
		t.Errorf("fileName = %q", sess.FileName)
	}
}

func TestTranscriptEntriesSkipSystemNotes(t *testing.T) {
	m := testModel(t)
	m.appendChat(chatEntry{ID: "u1", Role: "user", Content: "hi"})
	m.appendSystemNote("a local note")

	entries := m.transcriptEntries()
	if len(entries) != 1 || entries[0].Role != "user" {
		t.Errorf("entries = %+v", entries)
	}
}
