// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeranaias/dossier/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetSession(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	state := model.NewInvestigatorState()
	state.SetUploadedFile(&model.UploadedFile{
		Name:     "dossier.pdf",
		Base64:   "JVBERg==",
		MimeType: "application/pdf",
	})
	state.AnalysisStatus = model.StatusComplete
	state.Findings = []model.Finding{
		{ID: "f1", Title: "Suspicious clause", Description: "Page 4", Severity: model.SeverityHigh},
	}

	sess := &Session{ID: "sess-1", State: state}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	loaded, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if loaded.FileName != "dossier.pdf" {
		t.Errorf("file name = %q", loaded.FileName)
	}
	if loaded.Status != model.StatusComplete {
		t.Errorf("status = %q", loaded.Status)
	}
	if len(loaded.State.Findings) != 1 || loaded.State.Findings[0].Title != "Suspicious clause" {
		t.Errorf("findings = %+v", loaded.State.Findings)
	}
	if loaded.State.UploadedFile == nil || loaded.State.UploadedFile.Name != "dossier.pdf" {
		t.Error("uploaded file did not round trip")
	}
}

func TestSaveSession_Upsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	state := model.NewInvestigatorState()
	if err := s.SaveSession(ctx, &Session{ID: "sess-1", State: state}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	state.AnalysisStatus = model.StatusAnalyzing
	if err := s.SaveSession(ctx, &Session{ID: "sess-1", State: state}); err != nil {
		t.Fatalf("SaveSession (update): %v", err)
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Status != model.StatusAnalyzing {
		t.Errorf("status = %q", sessions[0].Status)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetSession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSession_CascadesTranscript(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, &Session{ID: "sess-1", State: model.NewInvestigatorState()}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := s.AppendMessage(ctx, "sess-1", "user", "what is in this file?"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	entries, err := s.Transcript(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("transcript not cascaded: %d entries remain", len(entries))
	}

	if err := s.DeleteSession(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestTranscript_Order(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveSession(ctx, &Session{ID: "sess-1", State: model.NewInvestigatorState()}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	for _, m := range []struct{ role, content string }{
		{"user", "analyze this"},
		{"assistant", "I propose an analysis plan."},
		{"user", "approve"},
	} {
		if err := s.AppendMessage(ctx, "sess-1", m.role, m.content); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	entries, err := s.Transcript(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Content != "analyze this" || entries[2].Content != "approve" {
		t.Errorf("transcript out of order: %+v", entries)
	}
}
