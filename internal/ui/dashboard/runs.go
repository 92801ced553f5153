// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/commands"
	"github.com/jeranaias/dossier/internal/export"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/storage"
)

// storeTimeout bounds every SQLite call issued from a tea.Cmd.
const storeTimeout = 5 * time.Second

// =============================================================================
// AGENT RUNS
// =============================================================================

// startRun launches a new streaming run against the agent and returns the
// command that pumps its first event. Any run already in flight is
// cancelled first; its remaining events carry a stale run id and are
// dropped in Update.
func (m *Model) startRun() tea.Cmd {
	if m.runCancel != nil {
		m.runCancel()
	}

	m.runSeq++
	m.runID = uuid.NewString()
	m.running = true
	m.streamMsgID = ""

	state, err := json.Marshal(m.inv)
	if err != nil {
		m.running = false
		m.toasts.AddError(fmt.Sprintf("Failed to encode state: %v", err))
		return nil
	}

	input := agent.RunInput{
		ThreadID: m.sessionID,
		RunID:    m.runID,
		State:    state,
		Messages: m.agentMessages(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.runCancel = cancel
	m.runEvents = m.client.RunStreamChan(ctx, input)

	return listenCmd(m.runID, m.runEvents)
}

// listenCmd blocks on the run's event channel and delivers one event to
// Update, which re-issues the command until the channel closes. Tagging
// each message with the run id lets Update silently discard events from a
// run that was superseded while the message was in flight.
func listenCmd(runID string, events <-chan agent.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return runClosedMsg{RunID: runID}
		}
		return AgentEventMsg{RunID: runID, Event: ev}
	}
}

// stopRun cancels the in-flight run, if any.
func (m *Model) stopRun() {
	if m.runCancel != nil {
		m.runCancel()
		m.runCancel = nil
	}
	m.running = false
}

// =============================================================================
// CONNECTIVITY
// =============================================================================

func (m Model) pingCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := client.Ping(ctx)
		return PingResultMsg{Connected: err == nil}
	}
}

func schedulePing() tea.Cmd {
	return tea.Tick(pingInterval, func(time.Time) tea.Msg {
		return pingTickMsg{}
	})
}

// =============================================================================
// FILE INTAKE
// =============================================================================

// uploadFileCmd reads a local file and runs it through intake. The MIME
// type is declared from the file extension; intake validates the declared
// type and the content, never the name.
func uploadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			return UploadResultMsg{Name: name, Err: err}
		}

		declared := mime.TypeByExtension(filepath.Ext(path))
		if i := strings.IndexByte(declared, ';'); i >= 0 {
			declared = declared[:i]
		}

		result, err := intake.Prepare(name, declared, data)
		return UploadResultMsg{Result: result, Name: name, Err: err}
	}
}

// watchInboxCmd pumps one dropped file from the inbox watcher. Update
// re-issues it after each delivery.
func watchInboxCmd(w *intake.InboxWatcher) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-w.Files()
		if !ok {
			return nil
		}
		return InboxFileMsg{File: f}
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

func saveSessionCmd(store *storage.Store, sess *storage.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := store.SaveSession(ctx, sess)
		return SessionSavedMsg{ID: sess.ID, Err: err}
	}
}

func loadSessionCmd(store *storage.Store, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		sess, err := store.GetSession(ctx, id)
		if err != nil {
			return SessionLoadedMsg{Err: err}
		}
		transcript, err := store.Transcript(ctx, id)
		if err != nil {
			return SessionLoadedMsg{Session: sess, Err: err}
		}
		return SessionLoadedMsg{Session: sess, Transcript: transcript}
	}
}

func listSessionsCmd(store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		sessions, err := store.ListSessions(ctx)
		return SessionListMsg{Sessions: sessions, Err: err}
	}
}

// appendMessageCmd persists one chat message. Failures surface as a toast
// but never block the conversation.
func appendMessageCmd(store *storage.Store, sessionID, role, content string) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := store.AppendMessage(ctx, sessionID, role, content); err != nil {
			return commands.CommandErrorMsg{Err: fmt.Errorf("persist message: %w", err)}
		}
		return nil
	}
}

// =============================================================================
// EXPORT AND CLIPBOARD
// =============================================================================

// exportReportCmd writes the investigation report into the working
// directory in the requested format.
func (m *Model) exportReportCmd(format string) tea.Cmd {
	report := &export.Report{
		Session:    m.sessionSnapshot(),
		Transcript: m.transcriptEntries(),
	}
	return func() tea.Msg {
		exporter, err := export.ForFormat(format, nil)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(report, exporter, nil)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// copyTextCmd places text on the system clipboard. what names it for the
// confirmation toast.
func copyTextCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardDoneMsg{What: what, Err: clipboard.WriteAll(text)}
	}
}
