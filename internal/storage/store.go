// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists investigation sessions to a local SQLite
// database. A session is the shared document state plus the conversation
// transcript; it is written when a run completes and on demand.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/dossier/internal/model"
)

// ErrNotFound indicates the requested session does not exist.
var ErrNotFound = errors.New("session not found")

// Session is a persisted investigation.
type Session struct {
	ID        string
	FileName  string
	Status    model.AnalysisStatus
	State     *model.InvestigatorState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TranscriptEntry is a single message in a session's conversation.
type TranscriptEntry struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store wraps the sessions database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sessions database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init metadata: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession inserts or updates a session row with the full state snapshot.
func (s *Store) SaveSession(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return errors.New("session id required")
	}

	state := sess.State
	if state == nil {
		state = model.NewInvestigatorState()
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	fileName := sess.FileName
	if fileName == "" && state.UploadedFile != nil {
		fileName = state.UploadedFile.Name
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, file_name, analysis_status, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			analysis_status = excluded.analysis_status,
			state_json = excluded.state_json,
			updated_at = excluded.updated_at
	`, sess.ID, fileName, string(state.AnalysisStatus), string(stateJSON),
		sess.CreatedAt.Unix(), sess.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession loads a session and its state snapshot by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file_name, analysis_status, state_json, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var sess Session
	var stateJSON string
	var status string
	var created, updated int64
	err := row.Scan(&sess.ID, &sess.FileName, &status, &stateJSON, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.Status = model.AnalysisStatus(status)
	sess.CreatedAt = time.Unix(created, 0)
	sess.UpdatedAt = time.Unix(updated, 0)

	var state model.InvestigatorState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	sess.State = &state

	return &sess, nil
}

// ListSessions returns session summaries newest-first. State snapshots are
// not loaded.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, analysis_status, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var status string
		var created, updated int64
		if err := rows.Scan(&sess.ID, &sess.FileName, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.Status = model.AnalysisStatus(status)
		sess.CreatedAt = time.Unix(created, 0)
		sess.UpdatedAt = time.Unix(updated, 0)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and its transcript.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage appends a transcript entry to a session.
func (s *Store) AppendMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, role, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Transcript returns a session's conversation in insertion order.
func (s *Store) Transcript(ctx context.Context, sessionID string) ([]TranscriptEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM messages
		WHERE session_id = ? ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer rows.Close()

	var entries []TranscriptEntry
	for rows.Next() {
		var e TranscriptEntry
		var created int64
		if err := rows.Scan(&e.Role, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
