// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/model"
)

// runScripted drives one run against the scripted server and collects events.
func runScripted(t *testing.T, state *model.InvestigatorState) []agent.Event {
	t.Helper()

	srv := NewServer(0).WithEventDelay(0)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}

	client := agent.NewClient(ts.URL).WithRunRate(time.Nanosecond, 100)
	var events []agent.Event
	err = client.RunStream(context.Background(), agent.RunInput{
		ThreadID: "t1",
		RunID:    "r1",
		State:    stateJSON,
	}, func(ev agent.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("RunStream: %v", err)
	}
	return events
}

func lastSnapshot(t *testing.T, events []agent.Event) *model.InvestigatorState {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == agent.EventStateSnapshot {
			var state model.InvestigatorState
			if err := json.Unmarshal(events[i].Snapshot, &state); err != nil {
				t.Fatalf("bad snapshot: %v", err)
			}
			return &state
		}
	}
	t.Fatal("no STATE_SNAPSHOT in stream")
	return nil
}

func TestRun_NoDocument(t *testing.T) {
	events := runScripted(t, model.NewInvestigatorState())

	var text strings.Builder
	for _, ev := range events {
		if ev.Type == agent.EventTextMessageContent {
			text.WriteString(ev.Delta)
		}
		if ev.Type == agent.EventToolCallStart {
			t.Errorf("unexpected tool call %q with no document", ev.ToolCallName)
		}
	}
	if !strings.Contains(text.String(), "Upload a PDF") {
		t.Errorf("expected upload nag, got %q", text.String())
	}
	if events[len(events)-1].Type != agent.EventRunFinished {
		t.Error("stream did not end with RUN_FINISHED")
	}
}

func TestRun_IdleWithDocumentProposes(t *testing.T) {
	state := model.NewInvestigatorState()
	state.SetUploadedFile(&model.UploadedFile{
		Name: "memo.pdf", Base64: "JVBERg==", MimeType: "application/pdf",
	})

	events := runScripted(t, state)

	var proposalArgs strings.Builder
	var sawProposal bool
	for _, ev := range events {
		switch ev.Type {
		case agent.EventToolCallStart:
			if ev.ToolCallName != model.NameProposeAnalysis {
				t.Errorf("unexpected tool %q", ev.ToolCallName)
			}
			sawProposal = true
		case agent.EventToolCallArgs:
			proposalArgs.WriteString(ev.Delta)
		}
	}
	if !sawProposal {
		t.Fatal("no propose_analysis call")
	}

	var p model.Proposal
	if err := json.Unmarshal([]byte(proposalArgs.String()), &p); err != nil {
		t.Fatalf("proposal args did not reassemble: %v", err)
	}
	if p.FileName != "memo.pdf" {
		t.Errorf("proposal file = %q", p.FileName)
	}
	if len(p.Steps) == 0 {
		t.Error("proposal has no steps")
	}

	if lastSnapshot(t, events).AnalysisStatus != model.StatusProposed {
		t.Error("final snapshot not in proposed status")
	}
}

func TestRun_ApprovedRunsFullInvestigation(t *testing.T) {
	state := model.NewInvestigatorState()
	state.SetUploadedFile(&model.UploadedFile{
		Name: "memo.pdf", Base64: "JVBERg==", MimeType: "application/pdf",
	})
	state.AnalysisStatus = model.StatusAnalyzing

	events := runScripted(t, state)

	tools := map[string]bool{}
	for _, ev := range events {
		if ev.Type == agent.EventToolCallStart {
			tools[ev.ToolCallName] = true
		}
	}
	for _, name := range []string{
		model.NameUpdateFindings, model.NameUpdateRedacted,
		model.NameUpdateTweets, model.NameUpdateSummary,
	} {
		if !tools[name] {
			t.Errorf("missing tool call %q", name)
		}
	}

	final := lastSnapshot(t, events)
	if final.AnalysisStatus != model.StatusComplete {
		t.Errorf("final status = %q", final.AnalysisStatus)
	}
	if len(final.Findings) == 0 || len(final.RedactedContent) == 0 || len(final.Tweets) == 0 {
		t.Error("final snapshot missing results")
	}
	if final.Summary == "" {
		t.Error("final snapshot missing summary")
	}
	if final.UploadedFile == nil || final.UploadedFile.Name != "memo.pdf" {
		t.Error("uploaded file lost across snapshots")
	}
}

func TestRun_BadInputRejected(t *testing.T) {
	srv := NewServer(0).WithEventDelay(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := agent.NewClient(ts.URL).WithRunRate(time.Nanosecond, 100)
	// Force a decode failure with a state field of the wrong JSON type
	err := client.RunStream(context.Background(), agent.RunInput{}, func(agent.Event) {})
	if err != nil {
		t.Fatalf("empty input should still run: %v", err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	// Other IPs are unaffected
	if !rl.Allow("5.6.7.8") {
		t.Error("separate ip should pass")
	}
}
