// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity classifies a finding. The four tiers map directly to the four
// visual tiers in the findings panel.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity normalizes a severity string from the agent. Unrecognized
// values fall back to medium, matching the agent's own default.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityLow:
		return SeverityLow
	case SeverityHigh:
		return SeverityHigh
	case SeverityCritical:
		return SeverityCritical
	case SeverityMedium:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

// Rank returns an ordering value for the severity, low to critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// ANALYSIS STATUS
// =============================================================================

// AnalysisStatus tracks where the current document is in the investigation
// workflow.
type AnalysisStatus string

const (
	StatusIdle      AnalysisStatus = "idle"
	StatusProposed  AnalysisStatus = "proposed"
	StatusAnalyzing AnalysisStatus = "analyzing"
	StatusComplete  AnalysisStatus = "complete"
)

// DisplayName returns a human-readable label for the status bar.
func (s AnalysisStatus) DisplayName() string {
	switch s {
	case StatusProposed:
		return "Awaiting Approval"
	case StatusAnalyzing:
		return "Analyzing"
	case StatusComplete:
		return "Complete"
	default:
		return "Idle"
	}
}

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// UploadedFile is the document under investigation, encoded for transport.
type UploadedFile struct {
	Name     string `json:"name"`
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// Finding is a key point the agent extracted from the document.
// Findings are agent-owned; the dashboard renders them in arrival order.
type Finding struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// RedactedItem is a detected redaction plus the agent's speculation about
// what might be hidden. Confidence is a percentage the agent reports; it is
// displayed as-is and not clamped locally.
type RedactedItem struct {
	ID          string `json:"id"`
	Location    string `json:"location"`
	Speculation string `json:"speculation"`
	Confidence  int    `json:"confidence"`
}

// Tweet is a generated post. Content may be edited locally (capped at
// MaxTweetLen by the edit control) and Posted may be flipped to true; both
// mutations are pushed back through the bridge.
type Tweet struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Posted  bool   `json:"posted"`
}

// MaxTweetLen is the content cap enforced by the tweet edit control.
const MaxTweetLen = 280

// =============================================================================
// INVESTIGATOR STATE
// =============================================================================

// InvestigatorState is the single record mirrored between the dashboard and
// the agent. JSON field names match the wire protocol the agent expects.
type InvestigatorState struct {
	UploadedFile    *UploadedFile  `json:"uploadedFile"`
	Findings        []Finding      `json:"findings"`
	RedactedContent []RedactedItem `json:"redactedContent"`
	Tweets          []Tweet        `json:"tweets"`
	Summary         string         `json:"summary"`
	AnalysisStatus  AnalysisStatus `json:"analysisStatus"`
}

// NewInvestigatorState returns an empty idle state.
func NewInvestigatorState() *InvestigatorState {
	return &InvestigatorState{
		Findings:        []Finding{},
		RedactedContent: []RedactedItem{},
		Tweets:          []Tweet{},
		AnalysisStatus:  StatusIdle,
	}
}

// Clone returns a deep copy. The dashboard hands clones to goroutines (the
// bridge serializes state off the update loop) so the canonical value is
// never shared across threads.
func (s *InvestigatorState) Clone() *InvestigatorState {
	c := &InvestigatorState{
		Summary:        s.Summary,
		AnalysisStatus: s.AnalysisStatus,
	}
	if s.UploadedFile != nil {
		f := *s.UploadedFile
		c.UploadedFile = &f
	}
	c.Findings = append([]Finding{}, s.Findings...)
	c.RedactedContent = append([]RedactedItem{}, s.RedactedContent...)
	c.Tweets = append([]Tweet{}, s.Tweets...)
	return c
}

// SetUploadedFile replaces the document under investigation and resets every
// derived analysis field in the same step, so stale results are never shown
// against a new document. Passing nil clears the document with the same
// reset semantics.
func (s *InvestigatorState) SetUploadedFile(f *UploadedFile) {
	s.UploadedFile = f
	s.Findings = []Finding{}
	s.RedactedContent = []RedactedItem{}
	s.Tweets = []Tweet{}
	s.Summary = ""
	s.AnalysisStatus = StatusIdle
}

// EditTweet replaces the content of the tweet with the given id. Content
// beyond MaxTweetLen runes is truncated. Returns false when no tweet with
// that id exists.
func (s *InvestigatorState) EditTweet(id, content string) bool {
	for i := range s.Tweets {
		if s.Tweets[i].ID == id {
			runes := []rune(content)
			if len(runes) > MaxTweetLen {
				content = string(runes[:MaxTweetLen])
			}
			s.Tweets[i].Content = content
			return true
		}
	}
	return false
}

// PostTweet marks the tweet with the given id as posted. Posting an already
// posted tweet is a no-op; there is no un-posting. Returns false when no
// tweet with that id exists.
func (s *InvestigatorState) PostTweet(id string) bool {
	for i := range s.Tweets {
		if s.Tweets[i].ID == id {
			s.Tweets[i].Posted = true
			return true
		}
	}
	return false
}

// TweetByID returns the tweet with the given id, or nil.
func (s *InvestigatorState) TweetByID(id string) *Tweet {
	for i := range s.Tweets {
		if s.Tweets[i].ID == id {
			return &s.Tweets[i]
		}
	}
	return nil
}

// HasResults reports whether any derived analysis field is populated.
func (s *InvestigatorState) HasResults() bool {
	return len(s.Findings) > 0 || len(s.RedactedContent) > 0 ||
		len(s.Tweets) > 0 || s.Summary != ""
}

// normalize fills in missing ids and severities on agent-supplied items.
// The agent's model occasionally omits them, matching its own defaults.
func (s *InvestigatorState) normalize() {
	for i := range s.Findings {
		if s.Findings[i].ID == "" {
			s.Findings[i].ID = GenerateItemID()
		}
		s.Findings[i].Severity = ParseSeverity(string(s.Findings[i].Severity))
	}
	for i := range s.RedactedContent {
		if s.RedactedContent[i].ID == "" {
			s.RedactedContent[i].ID = GenerateItemID()
		}
	}
	for i := range s.Tweets {
		if s.Tweets[i].ID == "" {
			s.Tweets[i].ID = GenerateItemID()
		}
	}
	if s.Findings == nil {
		s.Findings = []Finding{}
	}
	if s.RedactedContent == nil {
		s.RedactedContent = []RedactedItem{}
	}
	if s.Tweets == nil {
		s.Tweets = []Tweet{}
	}
	if s.AnalysisStatus == "" {
		s.AnalysisStatus = StatusIdle
	}
}

// ApplySnapshot replaces the whole state with a remote snapshot. This is the
// remote half of last-writer-wins: a snapshot arriving from the agent
// overwrites every top-level field, including any local edits that raced it.
func (s *InvestigatorState) ApplySnapshot(snap *InvestigatorState) {
	*s = *snap.Clone()
	s.normalize()
}

// =============================================================================
// ID GENERATION
// =============================================================================

// GenerateItemID returns a short random hex id for findings, redacted items,
// and tweets, matching the 8-character ids the agent generates.
func GenerateItemID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}
