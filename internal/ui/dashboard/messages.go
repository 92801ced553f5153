// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard implements the investigation dashboard TUI.
package dashboard

import (
	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/storage"
)

// =============================================================================
// AGENT RUN MESSAGES
// =============================================================================

// AgentEventMsg delivers one streamed agent event. RunID is the local run
// identity the event belongs to; events from a superseded run are dropped
// in Update so a cancelled run can never overwrite newer state.
type AgentEventMsg struct {
	RunID string
	Event agent.Event
}

// runClosedMsg signals that a run's event channel drained.
type runClosedMsg struct {
	RunID string
}

// PingResultMsg reports agent reachability.
type PingResultMsg struct {
	Connected bool
}

// pingTickMsg schedules the next connectivity probe.
type pingTickMsg struct{}

// =============================================================================
// INTAKE MESSAGES
// =============================================================================

// UploadResultMsg delivers a prepared document, or the reason it was
// rejected.
type UploadResultMsg struct {
	Result *intake.Result
	Name   string
	Err    error
}

// InboxFileMsg delivers a PDF dropped into the watched inbox directory.
type InboxFileMsg struct {
	File intake.DroppedFile
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SessionSavedMsg reports the outcome of persisting the investigation.
type SessionSavedMsg struct {
	ID  string
	Err error
}

// SessionLoadedMsg delivers a loaded investigation and its transcript.
type SessionLoadedMsg struct {
	Session    *storage.Session
	Transcript []storage.TranscriptEntry
	Err        error
}

// SessionListMsg delivers the saved investigations for display.
type SessionListMsg struct {
	Sessions []storage.Session
	Err      error
}

// ExportDoneMsg reports the outcome of an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// ClipboardDoneMsg reports the outcome of a clipboard copy. What names the
// copied thing for the confirmation toast ("Summary", "Tweet").
type ClipboardDoneMsg struct {
	What string
	Err  error
}
