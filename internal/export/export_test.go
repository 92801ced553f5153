// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/storage"
)

func sampleReport() *Report {
	state := model.NewInvestigatorState()
	state.UploadedFile = &model.UploadedFile{Name: "leaked memo.pdf", MimeType: "application/pdf"}
	state.AnalysisStatus = model.StatusComplete
	state.Findings = []model.Finding{
		{ID: "f1", Title: "Offshore transfer", Description: "Page 4, unexplained wire", Severity: model.SeverityCritical},
	}
	state.RedactedContent = []model.RedactedItem{
		{ID: "r1", Location: "Paragraph 2", Speculation: "A board member's name", Confidence: 72},
	}
	state.Tweets = []model.Tweet{
		{ID: "t1", Content: "This memo is wild.", Posted: true},
		{ID: "t2", Content: "More soon."},
	}
	state.Summary = "## Verdict\n\nSomebody has explaining to do."

	return &Report{
		Session: &storage.Session{
			ID:        "sess-1",
			FileName:  "leaked memo.pdf",
			Status:    model.StatusComplete,
			State:     state,
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC),
		},
		Transcript: []storage.TranscriptEntry{
			{Role: "user", Content: "what is this document"},
			{Role: "assistant", Content: "A memo with suspicious redactions."},
		},
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	content := string(out)

	for _, want := range []string{
		"title: leaked memo.pdf",
		"generator: dossier",
		"[CRITICAL] Offshore transfer",
		"(72% confidence)",
		"(posted) This memo is wild.",
		"(draft) More soon.",
		"## Verdict",
		"## Transcript",
		"[Investigator]",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportWithoutTranscript(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeTranscript = false

	out, err := NewMarkdownExporter(opts).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(out), "## Transcript") {
		t.Error("transcript section present despite IncludeTranscript=false")
	}
}

func TestMarkdownExportRejectsEmptyReport(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("nil report should fail")
	}
	if _, err := NewMarkdownExporter(nil).Export(&Report{Session: &storage.Session{ID: "x"}}); err == nil {
		t.Error("session without state should fail")
	}
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONExportRoundTrips(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleReport())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded jsonReport
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.SessionID != "sess-1" {
		t.Errorf("sessionId = %q", decoded.SessionID)
	}
	if decoded.State == nil || len(decoded.State.Findings) != 1 {
		t.Errorf("state not carried: %+v", decoded.State)
	}
	if len(decoded.Transcript) != 2 {
		t.Errorf("transcript entries = %d, want 2", len(decoded.Transcript))
	}
}

// =============================================================================
// HTML
// =============================================================================

func TestHTMLExportEscapesContent(t *testing.T) {
	report := sampleReport()
	report.Session.State.Findings[0].Title = "<script>alert('x')</script>"

	out, err := NewHTMLExporter(nil).Export(report)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	content := string(out)

	if strings.Contains(content, "<script>alert") {
		t.Error("finding title not escaped")
	}
	if !strings.Contains(content, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
	if !strings.Contains(content, "dark-theme") {
		t.Error("default theme should be dark")
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleReport(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}

	if filepath.Ext(path) != ".md" {
		t.Errorf("extension = %q", filepath.Ext(path))
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "dossier_leaked_memo.pdf_") {
		t.Errorf("unexpected filename %q", base)
	}
	if strings.ContainsAny(base, " :") {
		t.Errorf("filename has unsafe characters: %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "# leaked memo.pdf") {
		t.Error("exported file missing title")
	}
}

func TestForFormat(t *testing.T) {
	cases := map[string]string{
		"md":       ".md",
		"markdown": ".md",
		"":         ".md",
		"JSON":     ".json",
		"html":     ".html",
	}
	for format, ext := range cases {
		exp, err := ForFormat(format, nil)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", format, err)
		}
		if exp.FileExtension() != ext {
			t.Errorf("ForFormat(%q) ext = %q, want %q", format, exp.FileExtension(), ext)
		}
	}
	if _, err := ForFormat("docx", nil); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("a/b:c*d?.pdf"); strings.ContainsAny(got, "/:*?") {
		t.Errorf("unsafe characters survived: %q", got)
	}
	if got := sanitizeFilename(""); got != "investigation" {
		t.Errorf("empty fallback = %q", got)
	}
}
