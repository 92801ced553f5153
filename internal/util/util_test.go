// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTruncateRunes_ASCII(t *testing.T) {
	tests := []struct {
		in     string
		max    int
		expect string
	}{
		{"hello world", 20, "hello world"},
		{"hello world", 8, "hello..."},
		{"hello", 5, "hello"},
		{"hello", 2, "he"},
		{"hello", 0, ""},
	}

	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.expect {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.expect)
		}
	}
}

func TestTruncateRunes_UTF8(t *testing.T) {
	// 10 runes, far more bytes
	s := "日本語のテキストです。"
	got := TruncateRunes(s, 6)
	if got != "日本語"+"..." {
		t.Errorf("TruncateRunes multibyte = %q", got)
	}
	// Must remain valid UTF-8 regardless of cut point
	for _, r := range got {
		if r == '�' {
			t.Error("truncation produced invalid UTF-8")
		}
	}
}

func TestTruncateWidth_CJK(t *testing.T) {
	// Each CJK rune is 2 cells wide
	s := "漢字漢字"
	if w := StringWidth(s); w != 8 {
		t.Fatalf("StringWidth = %d, want 8", w)
	}
	got := TruncateWidth(s, 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateWidth result too wide: %q (%d cells)", got, StringWidth(got))
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 5); got != "abcdef" {
		t.Errorf("PadRight should not trim: %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("one\ntwo"); got != "one" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine("single"); got != "single" {
		t.Errorf("FirstLine = %q", got)
	}
}

func TestAtomicWriteFile_Basic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := AtomicWriteFile(path, []byte("payload"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.json")

	if err := AtomicWriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := AtomicWriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("new"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content after overwrite = %q", data)
	}

	// No stray temp files left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry in dir, got %d", len(entries))
	}
}

func TestRedactingWriter_MasksBase64Runs(t *testing.T) {
	var buf bytes.Buffer
	w := NewRedactingWriter(&buf)

	payload := strings.Repeat("JVBERi0xLjQK", 10)
	line := "state: " + payload + " | status=analyzing\n"

	n, err := w.Write([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(line) {
		t.Errorf("reported %d bytes written, want %d", n, len(line))
	}

	out := buf.String()
	if strings.Contains(out, payload) {
		t.Error("base64 payload leaked into the log")
	}
	if !strings.Contains(out, "redacted") {
		t.Errorf("no redaction marker in %q", out)
	}
	if !strings.Contains(out, "status=analyzing") {
		t.Errorf("surrounding text lost: %q", out)
	}
}

func TestRedactingWriter_LeavesShortTokensAlone(t *testing.T) {
	var buf bytes.Buffer
	w := NewRedactingWriter(&buf)

	line := "run 6e3f2c1a started for memo.pdf\n"
	if _, err := w.Write([]byte(line)); err != nil {
		t.Fatal(err)
	}
	if buf.String() != line {
		t.Errorf("short tokens altered: %q", buf.String())
	}
}
