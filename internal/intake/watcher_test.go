// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intake

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInboxWatcher_DeliversPDF(t *testing.T) {
	dir := t.TempDir()

	w, err := NewInboxWatcher(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewInboxWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	content := []byte("%PDF-1.4 dropped")
	if err := os.WriteFile(filepath.Join(dir, "drop.pdf"), content, 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-w.Files():
		if filepath.Base(f.Path) != "drop.pdf" {
			t.Errorf("path = %q", f.Path)
		}
		if string(f.Data) != string(content) {
			t.Errorf("data = %q", f.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dropped file was not delivered")
	}
}

func TestInboxWatcher_IgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()

	w, err := NewInboxWatcher(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewInboxWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-w.Files():
		t.Fatalf("unexpected delivery: %q", f.Path)
	case <-time.After(500 * time.Millisecond):
		// expected
	}
}

func TestInboxWatcher_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "inbox")

	w, err := NewInboxWatcher(dir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewInboxWatcher: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("inbox directory not created: %v", err)
	}
}
