// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/ui/styles"
)

// =============================================================================
// ONE-SHOT ASK
// =============================================================================

// askResult is the --json output shape.
type askResult struct {
	Question string                   `json:"question"`
	Answer   string                   `json:"answer"`
	Document string                   `json:"document,omitempty"`
	State    *model.InvestigatorState `json:"state"`
}

// HandleAsk runs a single question against the agent and prints the answer.
//
// Usage:
//
//	dossier ask "what stands out in this memo?" --file memo.pdf
//	cat question.txt | dossier ask --file memo.pdf
//	dossier ask "summarize" --file memo.pdf --json
//
// The question comes from positional arguments, or from stdin when piped.
// Markdown rendering applies only when stdout is a terminal; piped output
// stays raw so it composes with other tools.
func HandleAsk(cfg *config.Config, args *ArgParser) error {
	question := args.JoinPositionalFrom(1)

	if question == "" && !IsStdinTTY() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read question from stdin: %w", err)
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return fmt.Errorf("no question provided (pass it as an argument or pipe it in)")
	}

	state := model.NewInvestigatorState()
	if path := args.Flag("file"); path != "" {
		if err := attachDocument(state, path); err != nil {
			return err
		}
	}

	jsonMode := args.BoolFlag("json")
	plain := args.BoolFlag("plain") || !IsStdoutTTY()

	client := NewAgentClient(cfg)
	if !jsonMode && IsStdoutTTY() {
		fmt.Fprintln(os.Stderr, styles.RenderInfo("Asking "+client.BaseURL()))
	}

	rawState, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	input := agent.RunInput{
		ThreadID: uuid.NewString(),
		RunID:    uuid.NewString(),
		State:    rawState,
		Messages: []agent.Message{agent.NewUserMessage(uuid.NewString(), question)},
	}

	var answer strings.Builder
	calls := make(map[string]*model.ToolCall)

	err = client.RunStream(context.Background(), input, func(ev agent.Event) {
		switch ev.Type {
		case agent.EventTextMessageContent:
			answer.WriteString(ev.Delta)
			if !jsonMode && plain {
				fmt.Print(ev.Delta)
			}
		case agent.EventToolCallStart:
			calls[ev.ToolCallID] = model.NewToolCall(ev.ToolCallID, ev.ToolCallName)
			if !jsonMode && IsStdoutTTY() {
				fmt.Fprintln(os.Stderr, styles.RenderInfo("Tool: "+calls[ev.ToolCallID].Kind.String()))
			}
		case agent.EventToolCallArgs:
			if call, ok := calls[ev.ToolCallID]; ok {
				call.AppendArgs(ev.Delta)
			}
		case agent.EventToolCallEnd:
			if call, ok := calls[ev.ToolCallID]; ok {
				applyCallToState(state, call)
			}
		case agent.EventStateSnapshot:
			var snap model.InvestigatorState
			if json.Unmarshal(ev.Snapshot, &snap) == nil {
				state.ApplySnapshot(&snap)
			}
		case agent.EventRunError:
			fmt.Fprintln(os.Stderr, styles.RenderError("Agent error: "+ev.ErrorMessage()))
		}
	})
	if err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}

	if !jsonMode && plain {
		fmt.Println()
	}

	if jsonMode {
		result := askResult{Question: question, Answer: answer.String(), State: state}
		if state.UploadedFile != nil {
			result.Document = state.UploadedFile.Name
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if !plain {
		fmt.Println(renderMarkdown(answer.String()))
	}
	return nil
}

// attachDocument reads a PDF from disk and installs it in the shared state.
func attachDocument(state *model.InvestigatorState, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	declared := mime.TypeByExtension(filepath.Ext(path))
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = declared[:idx]
	}

	res, err := intake.Prepare(intake.SanitizeName(filepath.Base(path)), declared, data)
	if err != nil {
		return fmt.Errorf("cannot ingest %s: %w", filepath.Base(path), err)
	}
	if res.Warning != "" {
		fmt.Fprintln(os.Stderr, styles.RenderWarning(res.Warning))
	}
	state.SetUploadedFile(res.File)
	return nil
}

// applyCallToState applies a completed tool call's payload to state. Parse
// failures are ignored here; the agent re-sends authoritative state in the
// next snapshot.
func applyCallToState(state *model.InvestigatorState, call *model.ToolCall) {
	switch call.Kind {
	case model.ToolUpdateFindings:
		if items, err := call.ParseFindings(); err == nil {
			state.Findings = items
		}
	case model.ToolUpdateRedacted:
		if items, err := call.ParseRedacted(); err == nil {
			state.RedactedContent = items
		}
	case model.ToolUpdateTweets:
		if items, err := call.ParseTweets(); err == nil {
			state.Tweets = items
		}
	case model.ToolUpdateSummary:
		if summary, err := call.ParseSummary(); err == nil {
			state.Summary = summary
		}
	case model.ToolProposeAnalysis:
		state.AnalysisStatus = model.StatusProposed
	}
}

// NewAgentClient builds an agent client from config. Shared with the
// dashboard entry point so every front end hits the agent the same way.
func NewAgentClient(cfg *config.Config) *agent.Client {
	client := agent.NewClient(cfg.Agent.URL).WithAgentName(cfg.Agent.Name)
	if cfg.Agent.TimeoutSecs > 0 {
		client = client.WithTimeout(time.Duration(cfg.Agent.TimeoutSecs) * time.Second)
	}
	if cfg.Agent.MaxRetries > 0 {
		client = client.WithMaxRetries(cfg.Agent.MaxRetries)
	}
	return client
}

// renderMarkdown renders markdown for terminal display, falling back to
// the raw text when glamour fails.
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(TerminalWidth(), 100)),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
