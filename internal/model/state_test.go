// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func populatedState() *InvestigatorState {
	s := NewInvestigatorState()
	s.UploadedFile = &UploadedFile{Name: "old.pdf", Base64: "QQ==", MimeType: "application/pdf"}
	s.Findings = []Finding{{ID: "f1", Title: "t", Description: "d", Severity: SeverityHigh}}
	s.RedactedContent = []RedactedItem{{ID: "r1", Location: "p2", Speculation: "aliens", Confidence: 90}}
	s.Tweets = []Tweet{
		{ID: "t1", Content: "old text", Posted: false},
		{ID: "t2", Content: "other", Posted: true},
	}
	s.Summary = "## Summary"
	s.AnalysisStatus = StatusComplete
	return s
}

func TestSetUploadedFile_ResetsDerivedState(t *testing.T) {
	s := populatedState()

	s.SetUploadedFile(&UploadedFile{Name: "new.pdf", Base64: "Qg==", MimeType: "application/pdf"})

	if s.UploadedFile == nil || s.UploadedFile.Name != "new.pdf" {
		t.Fatal("uploaded file not replaced")
	}
	if len(s.Findings) != 0 || len(s.RedactedContent) != 0 || len(s.Tweets) != 0 {
		t.Error("derived collections not reset")
	}
	if s.Summary != "" {
		t.Error("summary not reset")
	}
	if s.AnalysisStatus != StatusIdle {
		t.Errorf("status = %v, want idle", s.AnalysisStatus)
	}
}

func TestSetUploadedFile_ClearAlsoResets(t *testing.T) {
	s := populatedState()

	s.SetUploadedFile(nil)

	if s.UploadedFile != nil {
		t.Error("uploaded file not cleared")
	}
	if s.HasResults() {
		t.Error("derived state survived a clear")
	}
}

func TestEditTweet_TouchesOnlyTarget(t *testing.T) {
	s := populatedState()

	if !s.EditTweet("t1", "new text") {
		t.Fatal("EditTweet returned false for existing id")
	}

	if s.Tweets[0].Content != "new text" {
		t.Errorf("t1 content = %q", s.Tweets[0].Content)
	}
	if s.Tweets[0].Posted {
		t.Error("edit changed posted flag")
	}
	if s.Tweets[1].Content != "other" || !s.Tweets[1].Posted {
		t.Error("edit leaked into other tweet")
	}
	if len(s.Findings) != 1 || s.Summary != "## Summary" {
		t.Error("edit touched unrelated fields")
	}
}

func TestEditTweet_CapsContentLength(t *testing.T) {
	s := populatedState()

	long := make([]rune, MaxTweetLen+50)
	for i := range long {
		long[i] = 'x'
	}
	s.EditTweet("t1", string(long))

	if got := len([]rune(s.Tweets[0].Content)); got != MaxTweetLen {
		t.Errorf("content length = %d, want %d", got, MaxTweetLen)
	}
}

func TestEditTweet_UnknownID(t *testing.T) {
	s := populatedState()
	if s.EditTweet("nope", "x") {
		t.Error("EditTweet returned true for missing id")
	}
}

func TestPostTweet_Idempotent(t *testing.T) {
	s := populatedState()

	if !s.PostTweet("t1") {
		t.Fatal("PostTweet returned false for existing id")
	}
	if !s.Tweets[0].Posted {
		t.Fatal("t1 not posted")
	}

	before := s.Clone()
	s.PostTweet("t1") // second post is a state no-op

	if s.Tweets[0] != before.Tweets[0] || s.Tweets[1] != before.Tweets[1] {
		t.Error("re-posting changed state")
	}
}

func TestApplySnapshot_ReplacesEverything(t *testing.T) {
	s := populatedState()

	snap := NewInvestigatorState()
	snap.Findings = []Finding{{Title: "remote", Description: "d", Severity: "bogus"}}
	snap.AnalysisStatus = StatusAnalyzing

	s.ApplySnapshot(snap)

	if s.UploadedFile != nil {
		t.Error("snapshot should have cleared uploaded file")
	}
	if len(s.Findings) != 1 || s.Findings[0].Title != "remote" {
		t.Fatal("findings not replaced")
	}
	// Normalization fills in what the agent omitted
	if s.Findings[0].ID == "" {
		t.Error("missing id not generated")
	}
	if s.Findings[0].Severity != SeverityMedium {
		t.Errorf("bogus severity normalized to %v, want medium", s.Findings[0].Severity)
	}
	if s.Tweets == nil || s.RedactedContent == nil {
		t.Error("nil collections not normalized to empty")
	}
}

func TestApplySnapshot_DetachedFromSource(t *testing.T) {
	s := NewInvestigatorState()
	snap := populatedState()

	s.ApplySnapshot(snap)
	snap.Tweets[0].Content = "mutated"

	if s.Tweets[0].Content == "mutated" {
		t.Error("snapshot application aliased source slices")
	}
}

func TestClone_DeepCopies(t *testing.T) {
	s := populatedState()
	c := s.Clone()

	c.Findings[0].Title = "changed"
	c.UploadedFile.Name = "changed.pdf"

	if s.Findings[0].Title == "changed" || s.UploadedFile.Name == "changed.pdf" {
		t.Error("Clone shares memory with original")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"low", SeverityLow},
		{"CRITICAL", SeverityCritical},
		{" high ", SeverityHigh},
		{"", SeverityMedium},
		{"whatever", SeverityMedium},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.in); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateItemID(t *testing.T) {
	a, b := GenerateItemID(), GenerateItemID()
	if len(a) != 8 {
		t.Errorf("id length = %d, want 8", len(a))
	}
	if a == b {
		t.Error("consecutive ids collided")
	}
}
