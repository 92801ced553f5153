// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "testing"

func TestKindForName(t *testing.T) {
	tests := []struct {
		name string
		want ToolKind
	}{
		{NameUpdateFindings, ToolUpdateFindings},
		{NameUpdateRedacted, ToolUpdateRedacted},
		{NameUpdateTweets, ToolUpdateTweets},
		{NameUpdateSummary, ToolUpdateSummary},
		{NameProposeAnalysis, ToolProposeAnalysis},
		{"frobnicate_document", ToolUnknown},
		{"", ToolUnknown},
	}
	for _, tt := range tests {
		if got := KindForName(tt.name); got != tt.want {
			t.Errorf("KindForName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToolCall_LifecycleNeverReverts(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateFindings)

	if c.Status != ToolInProgress {
		t.Fatalf("initial status = %v", c.Status)
	}

	c.Advance(ToolExecuting)
	if c.Status != ToolExecuting {
		t.Fatal("did not advance to executing")
	}

	c.Advance(ToolComplete)
	if c.Status != ToolComplete {
		t.Fatal("did not advance to complete")
	}

	// Late duplicated events must not move the call backwards.
	c.Advance(ToolExecuting)
	c.Advance(ToolInProgress)
	if c.Status != ToolComplete {
		t.Errorf("status reverted to %v", c.Status)
	}
	if !c.Status.Terminal() {
		t.Error("complete should be terminal")
	}
}

func TestToolCall_ArgsAccumulate(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateSummary)
	c.AppendArgs(`{"summary_content":`)
	c.AppendArgs(`{"summary":"A dull memo."}}`)

	summary, err := c.ParseSummary()
	if err != nil {
		t.Fatalf("ParseSummary: %v", err)
	}
	if summary != "A dull memo." {
		t.Errorf("summary = %q", summary)
	}
}

func TestToolCall_ParseFindings(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateFindings)
	c.AppendArgs(`{"findings_list":{"findings":[
		{"title":"First","description":"d1","severity":"critical"},
		{"id":"f2","title":"Second","description":"d2","severity":"odd"}
	]}}`)

	findings, err := c.ParseFindings()
	if err != nil {
		t.Fatalf("ParseFindings: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings", len(findings))
	}
	if findings[0].ID == "" {
		t.Error("missing id not generated")
	}
	if findings[0].Severity != SeverityCritical {
		t.Errorf("severity = %v", findings[0].Severity)
	}
	if findings[1].ID != "f2" {
		t.Error("provided id was replaced")
	}
	if findings[1].Severity != SeverityMedium {
		t.Error("unknown severity not normalized")
	}
}

func TestToolCall_ParseRedacted(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateRedacted)
	c.AppendArgs(`{"redacted_list":{"redacted_items":[
		{"location":"page 3","speculation":"budget numbers","confidence":85}
	]}}`)

	items, err := c.ParseRedacted()
	if err != nil {
		t.Fatalf("ParseRedacted: %v", err)
	}
	if len(items) != 1 || items[0].Confidence != 85 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].ID == "" {
		t.Error("missing id not generated")
	}
}

func TestToolCall_ParseTweets(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateTweets)
	c.AppendArgs(`{"tweets_list":{"tweets":[{"content":"so normal #TotallyNormal"}]}}`)

	tweets, err := c.ParseTweets()
	if err != nil {
		t.Fatalf("ParseTweets: %v", err)
	}
	if len(tweets) != 1 || tweets[0].Posted {
		t.Fatalf("tweets = %+v", tweets)
	}
	if tweets[0].ID == "" {
		t.Error("missing id not generated")
	}
}

func TestToolCall_ParseProposal(t *testing.T) {
	c := NewToolCall("tc1", NameProposeAnalysis)
	c.AppendArgs(`{"file_name":"report.pdf","steps":["extract findings","spot redactions"]}`)

	p, err := c.ParseProposal()
	if err != nil {
		t.Fatalf("ParseProposal: %v", err)
	}
	if p.FileName != "report.pdf" || len(p.Steps) != 2 {
		t.Errorf("proposal = %+v", p)
	}
}

func TestToolCall_ParseMalformedArgs(t *testing.T) {
	c := NewToolCall("tc1", NameUpdateSummary)
	c.AppendArgs(`{"summary_content": not json`)

	if _, err := c.ParseSummary(); err == nil {
		t.Error("expected error for malformed args")
	}
}

func TestPrettyArgs(t *testing.T) {
	c := NewToolCall("tc1", "frobnicate_document")
	c.AppendArgs(`{"a":1,"b":[2,3]}`)

	pretty := c.PrettyArgs()
	if pretty == c.Args() {
		t.Error("valid JSON was not re-indented")
	}

	// Partial JSON (args still streaming) comes back untouched
	c2 := NewToolCall("tc2", "frobnicate_document")
	c2.AppendArgs(`{"a":`)
	if c2.PrettyArgs() != `{"a":` {
		t.Error("partial JSON should be returned unchanged")
	}
}
