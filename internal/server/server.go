// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a built-in scripted investigation agent.
//
// Endpoints:
//   - POST /      - Start a run, stream events over SSE
//   - GET  /health - Health check
//
// The server speaks the same wire protocol as the real agent, so the TUI
// and the bridge tests can run against it without a backend. Responses are
// scripted, not derived from document content.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the scripted agent.
	DefaultPort = 8000

	// MaxRequestBodySize caps the run input body (base64 PDF plus
	// transcript).
	MaxRequestBodySize = 16 * 1024 * 1024

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Server is the scripted agent HTTP server.
type Server struct {
	port   int
	router *http.ServeMux
	server *http.Server
	script *Script

	// eventDelay spaces streamed events so the TUI animates. Zero in tests.
	eventDelay time.Duration

	runs atomic.Int64
}

// NewServer creates a scripted agent server on the given port.
// If port is 0, the default port (8000) is used.
func NewServer(port int) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:       port,
		router:     http.NewServeMux(),
		script:     DefaultScript(),
		eventDelay: 80 * time.Millisecond,
	}

	s.setupRoutes()
	return s
}

// WithScript sets a custom investigation script.
func (s *Server) WithScript(script *Script) *Server {
	if script != nil {
		s.script = script
	}
	return s
}

// WithEventDelay sets the pause between streamed events.
func (s *Server) WithEventDelay(d time.Duration) *Server {
	s.eventDelay = d
	return s
}

// Port returns the server port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the routed handler, for httptest use.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /", s.handleRun)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	handler := Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(DefaultRateLimiter()),
	)(s.router)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | runs_served=%d", s.runs.Load())
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

// handleRun accepts a run input and streams the scripted investigation.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var input agent.RunInput
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&input); err != nil {
		http.Error(w, "invalid run input: "+err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	state := model.NewInvestigatorState()
	if len(input.State) > 0 {
		// A bad snapshot from the client is treated as empty state
		_ = json.Unmarshal(input.State, state)
	}

	s.runs.Add(1)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	es := &eventStream{w: w, flusher: flusher, delay: s.eventDelay, ctx: r.Context()}

	es.send(agent.Event{Type: agent.EventRunStarted, ThreadID: input.ThreadID, RunID: input.RunID})

	switch {
	case state.UploadedFile == nil:
		s.streamNoDocument(es)
	case state.AnalysisStatus == model.StatusIdle || state.AnalysisStatus == "":
		s.streamProposal(es, state)
	default:
		s.streamInvestigation(es, state)
	}

	es.send(agent.Event{Type: agent.EventRunFinished, ThreadID: input.ThreadID, RunID: input.RunID})
}

// streamNoDocument nags the user to upload something.
func (s *Server) streamNoDocument(es *eventStream) {
	es.sendText("I investigate documents, not vibes. Upload a PDF and we can begin.")
}

// streamProposal emits the human-in-the-loop analysis proposal.
func (s *Server) streamProposal(es *eventStream, state *model.InvestigatorState) {
	args, _ := json.Marshal(model.Proposal{
		FileName: state.UploadedFile.Name,
		Steps:    s.script.ProposalSteps,
	})
	es.sendToolCall(model.NameProposeAnalysis, string(args), "Awaiting your approval.")

	state.AnalysisStatus = model.StatusProposed
	es.sendSnapshot(state)
}

// streamInvestigation runs the four update tools and closes out.
func (s *Server) streamInvestigation(es *eventStream, state *model.InvestigatorState) {
	state.AnalysisStatus = model.StatusAnalyzing
	es.sendSnapshot(state)

	findings, _ := json.Marshal(findingsPayload{
		FindingsList: findingsList{Findings: s.script.Findings},
	})
	es.sendToolCall(model.NameUpdateFindings, string(findings), "Findings recorded.")
	state.Findings = s.script.Findings
	es.sendSnapshot(state)

	redacted, _ := json.Marshal(redactedPayload{
		RedactedList: redactedList{RedactedItems: s.script.Redacted},
	})
	es.sendToolCall(model.NameUpdateRedacted, string(redacted), "Speculation filed.")
	state.RedactedContent = s.script.Redacted
	es.sendSnapshot(state)

	tweets, _ := json.Marshal(tweetsPayload{
		TweetsList: tweetsList{Tweets: s.script.Tweets},
	})
	es.sendToolCall(model.NameUpdateTweets, string(tweets), "Tweets drafted.")
	state.Tweets = s.script.Tweets
	es.sendSnapshot(state)

	summary, _ := json.Marshal(summaryPayload{
		SummaryContent: summaryContent{Summary: s.script.Summary},
	})
	es.sendToolCall(model.NameUpdateSummary, string(summary), "Summary written.")
	state.Summary = s.script.Summary
	state.AnalysisStatus = model.StatusComplete
	es.sendSnapshot(state)

	es.sendText(s.script.ClosingRemark)
}

// ============================================================================
// TOOL PAYLOADS
// ============================================================================

// The agent nests each tool's payload under a named envelope; the dashboard
// parses these shapes back out of the args stream.

type findingsList struct {
	Findings []model.Finding `json:"findings"`
}

type findingsPayload struct {
	FindingsList findingsList `json:"findings_list"`
}

type redactedList struct {
	RedactedItems []model.RedactedItem `json:"redacted_items"`
}

type redactedPayload struct {
	RedactedList redactedList `json:"redacted_list"`
}

type tweetsList struct {
	Tweets []model.Tweet `json:"tweets"`
}

type tweetsPayload struct {
	TweetsList tweetsList `json:"tweets_list"`
}

type summaryContent struct {
	Summary string `json:"summary"`
}

type summaryPayload struct {
	SummaryContent summaryContent `json:"summary_content"`
}

// ============================================================================
// EVENT STREAM
// ============================================================================

// eventStream writes SSE events with pacing and cancellation checks.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	delay   time.Duration
	ctx     context.Context
}

// send writes one event and flushes.
func (es *eventStream) send(ev agent.Event) {
	select {
	case <-es.ctx.Done():
		return
	default:
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(es.w, "data: %s\n\n", data)
	es.flusher.Flush()

	if es.delay > 0 {
		select {
		case <-es.ctx.Done():
		case <-time.After(es.delay):
		}
	}
}

// sendText streams a complete assistant message in deltas.
func (es *eventStream) sendText(text string) {
	msgID := uuid.NewString()
	es.send(agent.Event{Type: agent.EventTextMessageStart, MessageID: msgID, Role: "assistant"})

	// Chunk so the TUI gets a typing effect
	const chunk = 24
	for i := 0; i < len(text); i += chunk {
		end := i + chunk
		if end > len(text) {
			end = len(text)
		}
		es.send(agent.Event{Type: agent.EventTextMessageContent, MessageID: msgID, Delta: text[i:end]})
	}

	es.send(agent.Event{Type: agent.EventTextMessageEnd, MessageID: msgID})
}

// sendToolCall streams a full tool call: start, args split across deltas,
// end, result.
func (es *eventStream) sendToolCall(name, args, result string) {
	id := uuid.NewString()
	es.send(agent.Event{Type: agent.EventToolCallStart, ToolCallID: id, ToolCallName: name})

	half := len(args) / 2
	if half > 0 {
		es.send(agent.Event{Type: agent.EventToolCallArgs, ToolCallID: id, Delta: args[:half]})
		es.send(agent.Event{Type: agent.EventToolCallArgs, ToolCallID: id, Delta: args[half:]})
	} else {
		es.send(agent.Event{Type: agent.EventToolCallArgs, ToolCallID: id, Delta: args})
	}

	es.send(agent.Event{Type: agent.EventToolCallEnd, ToolCallID: id})
	es.send(agent.Event{Type: agent.EventToolCallResult, ToolCallID: id, Content: result})
}

// sendSnapshot streams a full state replacement.
func (es *eventStream) sendSnapshot(state *model.InvestigatorState) {
	snap, err := json.Marshal(state)
	if err != nil {
		return
	}
	es.send(agent.Event{Type: agent.EventStateSnapshot, Snapshot: snap})
}
