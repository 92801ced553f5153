// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TOOL KIND
// =============================================================================

// ToolKind is a closed enumeration of the actions the agent can emit.
// Unknown names map to ToolUnknown and render via the generic fallback card,
// so a new agent-side tool never breaks the dashboard.
type ToolKind int

const (
	ToolUnknown ToolKind = iota
	ToolUpdateFindings
	ToolUpdateRedacted
	ToolUpdateTweets
	ToolUpdateSummary
	ToolProposeAnalysis
)

// Wire names for the known tools.
const (
	NameUpdateFindings  = "update_findings"
	NameUpdateRedacted  = "update_redacted"
	NameUpdateTweets    = "update_tweets"
	NameUpdateSummary   = "update_summary"
	NameProposeAnalysis = "propose_analysis"
)

// KindForName maps a wire tool name to its kind.
func KindForName(name string) ToolKind {
	switch name {
	case NameUpdateFindings:
		return ToolUpdateFindings
	case NameUpdateRedacted:
		return ToolUpdateRedacted
	case NameUpdateTweets:
		return ToolUpdateTweets
	case NameUpdateSummary:
		return ToolUpdateSummary
	case NameProposeAnalysis:
		return ToolProposeAnalysis
	default:
		return ToolUnknown
	}
}

// String returns the wire name of the kind, or "unknown".
func (k ToolKind) String() string {
	switch k {
	case ToolUpdateFindings:
		return NameUpdateFindings
	case ToolUpdateRedacted:
		return NameUpdateRedacted
	case ToolUpdateTweets:
		return NameUpdateTweets
	case ToolUpdateSummary:
		return NameUpdateSummary
	case ToolProposeAnalysis:
		return NameProposeAnalysis
	default:
		return "unknown"
	}
}

// =============================================================================
// TOOL STATUS
// =============================================================================

// ToolStatus is a tool call's lifecycle position. Transitions only move
// forward; complete is terminal.
type ToolStatus int

const (
	ToolInProgress ToolStatus = iota
	ToolExecuting
	ToolComplete
)

// String returns a display label for the status.
func (s ToolStatus) String() string {
	switch s {
	case ToolExecuting:
		return "executing"
	case ToolComplete:
		return "complete"
	default:
		return "inProgress"
	}
}

// Terminal reports whether the status is final.
func (s ToolStatus) Terminal() bool {
	return s == ToolComplete
}

// =============================================================================
// TOOL CALL
// =============================================================================

// ToolCall is one remote agent action, tracked from first sight to
// completion. Args arrive as incremental JSON fragments and are accumulated
// until the call ends.
type ToolCall struct {
	ID        string
	Name      string
	Kind      ToolKind
	Status    ToolStatus
	StartedAt time.Time

	args   strings.Builder
	Result string
}

// NewToolCall starts tracking a tool call in the inProgress state.
func NewToolCall(id, name string) *ToolCall {
	return &ToolCall{
		ID:        id,
		Name:      name,
		Kind:      KindForName(name),
		Status:    ToolInProgress,
		StartedAt: time.Now(),
	}
}

// AppendArgs adds an incremental args fragment.
func (c *ToolCall) AppendArgs(delta string) {
	c.args.WriteString(delta)
}

// Args returns the accumulated raw argument JSON.
func (c *ToolCall) Args() string {
	return c.args.String()
}

// Advance moves the lifecycle forward. Backward transitions are ignored, so
// a late or duplicated event can never revert a completed call.
func (c *ToolCall) Advance(next ToolStatus) {
	if next > c.Status {
		c.Status = next
	}
}

// =============================================================================
// ARGUMENT PAYLOADS
// =============================================================================

// The agent nests each tool's payload under a named envelope; these mirror
// its schemas.

type findingsEnvelope struct {
	FindingsList struct {
		Findings []Finding `json:"findings"`
	} `json:"findings_list"`
}

type redactedEnvelope struct {
	RedactedList struct {
		RedactedItems []RedactedItem `json:"redacted_items"`
	} `json:"redacted_list"`
}

type tweetsEnvelope struct {
	TweetsList struct {
		Tweets []Tweet `json:"tweets"`
	} `json:"tweets_list"`
}

type summaryEnvelope struct {
	SummaryContent struct {
		Summary string `json:"summary"`
	} `json:"summary_content"`
}

// Proposal is the payload of a propose_analysis call: the document and the
// analysis steps the agent wants approval for.
type Proposal struct {
	FileName string   `json:"file_name"`
	Steps    []string `json:"steps"`
}

// ParseFindings decodes an update_findings payload. Missing ids get
// generated and severities are normalized, matching the agent's defaults.
func (c *ToolCall) ParseFindings() ([]Finding, error) {
	var env findingsEnvelope
	if err := json.Unmarshal([]byte(c.Args()), &env); err != nil {
		return nil, fmt.Errorf("decode %s args: %w", NameUpdateFindings, err)
	}
	findings := env.FindingsList.Findings
	for i := range findings {
		if findings[i].ID == "" {
			findings[i].ID = GenerateItemID()
		}
		findings[i].Severity = ParseSeverity(string(findings[i].Severity))
	}
	return findings, nil
}

// ParseRedacted decodes an update_redacted payload.
func (c *ToolCall) ParseRedacted() ([]RedactedItem, error) {
	var env redactedEnvelope
	if err := json.Unmarshal([]byte(c.Args()), &env); err != nil {
		return nil, fmt.Errorf("decode %s args: %w", NameUpdateRedacted, err)
	}
	items := env.RedactedList.RedactedItems
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = GenerateItemID()
		}
	}
	return items, nil
}

// ParseTweets decodes an update_tweets payload.
func (c *ToolCall) ParseTweets() ([]Tweet, error) {
	var env tweetsEnvelope
	if err := json.Unmarshal([]byte(c.Args()), &env); err != nil {
		return nil, fmt.Errorf("decode %s args: %w", NameUpdateTweets, err)
	}
	tweets := env.TweetsList.Tweets
	for i := range tweets {
		if tweets[i].ID == "" {
			tweets[i].ID = GenerateItemID()
		}
	}
	return tweets, nil
}

// ParseSummary decodes an update_summary payload.
func (c *ToolCall) ParseSummary() (string, error) {
	var env summaryEnvelope
	if err := json.Unmarshal([]byte(c.Args()), &env); err != nil {
		return "", fmt.Errorf("decode %s args: %w", NameUpdateSummary, err)
	}
	return env.SummaryContent.Summary, nil
}

// ParseProposal decodes a propose_analysis payload.
func (c *ToolCall) ParseProposal() (*Proposal, error) {
	var p Proposal
	if err := json.Unmarshal([]byte(c.Args()), &p); err != nil {
		return nil, fmt.Errorf("decode %s args: %w", NameProposeAnalysis, err)
	}
	return &p, nil
}

// PrettyArgs re-indents the raw args JSON for the fallback card's expandable
// view. Invalid or partial JSON is returned unchanged.
func (c *ToolCall) PrettyArgs() string {
	raw := c.Args()
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(out)
}
