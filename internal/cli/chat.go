// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterh/liner"

	"github.com/jeranaias/dossier/internal/agent"
	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/intake"
	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/storage"
	"github.com/jeranaias/dossier/internal/ui/styles"
)

// =============================================================================
// CHAT CLI
// =============================================================================

// historyFileName under the config directory.
const historyFileName = "chat_history"

// ChatCLI is a line-based chat with the agent for terminals where the full
// dashboard is unwanted (ssh sessions, scripts driving a pty). It shares
// the session store with the dashboard, so /save here and /load there work
// on the same investigations.
type ChatCLI struct {
	cfg    *config.Config
	client *agent.Client
	store  *storage.Store

	line        *liner.State
	historyPath string

	sessionID  string
	state      *model.InvestigatorState
	transcript []agent.Message
}

// NewChatCLI creates the REPL and loads prompt history.
func NewChatCLI(cfg *config.Config, client *agent.Client, store *storage.Store) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(filepath.Dir(config.ConfigPath()), historyFileName)
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	return &ChatCLI{
		cfg:         cfg,
		client:      client,
		store:       store,
		line:        line,
		historyPath: historyPath,
		sessionID:   uuid.NewString(),
		state:       model.NewInvestigatorState(),
	}
}

// Close saves prompt history and releases the terminal.
func (c *ChatCLI) Close() {
	if f, err := os.OpenFile(c.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

// Run is the REPL loop. It returns when the user quits or stdin closes.
func (c *ChatCLI) Run() error {
	fmt.Println(styles.RenderInfo("dossier chat. /upload <path> to open a document, /help for commands, /quit to leave."))

	for {
		input, err := c.line.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println(styles.RenderInfo("Interrupted. /quit to leave."))
				continue
			}
			// io.EOF on ctrl+d or closed stdin.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := c.handleCommand(input); quit {
				return nil
			}
			continue
		}

		if c.state.UploadedFile == nil {
			fmt.Println(styles.RenderWarning("Upload a document first: /upload <path>"))
			continue
		}

		c.send(input)
	}
}

// handleCommand dispatches a slash command. Returns true on /quit.
func (c *ChatCLI) handleCommand(input string) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/h":
		c.printHelp()

	case "/upload", "/u":
		if arg == "" {
			fmt.Println(styles.RenderError("Usage: /upload <path>"))
			break
		}
		c.upload(arg)

	case "/status":
		c.printStatus()

	case "/save":
		if err := c.save(); err != nil {
			fmt.Println(styles.RenderError("Save failed: " + err.Error()))
		} else {
			fmt.Println(styles.RenderSuccess("Saved session " + c.sessionID))
		}

	case "/new":
		c.sessionID = uuid.NewString()
		c.state = model.NewInvestigatorState()
		c.transcript = nil
		fmt.Println(styles.RenderSuccess("New investigation started."))

	case "/summary":
		if c.state.Summary == "" {
			fmt.Println(styles.RenderWarning("No summary yet."))
		} else {
			fmt.Println(renderMarkdown(c.state.Summary))
		}

	default:
		fmt.Println(styles.RenderError("Unknown command " + cmd + " (try /help)"))
	}
	return false
}

func (c *ChatCLI) printHelp() {
	fmt.Print(`Commands:
  /upload <path>   Open a PDF for investigation
  /status          Show document and analysis state
  /summary         Render the current summary
  /save            Persist this session
  /new             Start a fresh investigation
  /quit            Exit
Anything else is sent to the agent.
`)
}

func (c *ChatCLI) printStatus() {
	doc := "(none)"
	if c.state.UploadedFile != nil {
		doc = c.state.UploadedFile.Name
	}
	fmt.Printf("Session:   %s\n", c.sessionID)
	fmt.Printf("Document:  %s\n", doc)
	fmt.Printf("Status:    %s\n", c.state.AnalysisStatus.DisplayName())
	fmt.Printf("Agent:     %s\n", c.client.BaseURL())
	fmt.Printf("Findings:  %d   Redactions: %d   Tweets: %d\n",
		len(c.state.Findings), len(c.state.RedactedContent), len(c.state.Tweets))
}

// upload reads a PDF, resets derived state, and kicks off the opening run.
func (c *ChatCLI) upload(path string) {
	fresh := model.NewInvestigatorState()
	if err := attachDocument(fresh, path); err != nil {
		fmt.Println(styles.RenderError(err.Error()))
		return
	}
	c.state = fresh
	c.transcript = nil
	fmt.Println(styles.RenderSuccess("Opened " + c.state.UploadedFile.Name))

	c.send(intake.ChooseMessage(len(c.transcript)))
}

// send appends a user message, runs the agent, and streams the reply to
// stdout. A proposed analysis is approved or declined inline.
func (c *ChatCLI) send(content string) {
	c.transcript = append(c.transcript, agent.NewUserMessage(uuid.NewString(), content))

	proposal, err := c.runOnce()
	if err != nil {
		fmt.Println(styles.RenderError("Agent run failed: " + err.Error()))
		return
	}

	for proposal != nil {
		if !c.confirmProposal(proposal) {
			c.state.AnalysisStatus = model.StatusIdle
			fmt.Println(styles.RenderInfo("Analysis declined."))
			return
		}
		c.state.AnalysisStatus = model.StatusAnalyzing
		c.transcript = append(c.transcript,
			agent.NewUserMessage(uuid.NewString(), "Approved. "+intake.ChooseMessage(len(c.transcript))))
		proposal, err = c.runOnce()
		if err != nil {
			fmt.Println(styles.RenderError("Agent run failed: " + err.Error()))
			return
		}
	}

	if c.store != nil {
		if err := c.save(); err != nil {
			fmt.Println(styles.RenderWarning("Session not saved: " + err.Error()))
		}
	}
}

// runOnce performs one agent run. It returns a pending proposal when the
// agent asked for approval, nil otherwise.
func (c *ChatCLI) runOnce() (*model.Proposal, error) {
	rawState, err := json.Marshal(c.state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	input := agent.RunInput{
		ThreadID: c.sessionID,
		RunID:    uuid.NewString(),
		State:    rawState,
		Messages: c.transcript,
	}

	var (
		reply    strings.Builder
		proposal *model.Proposal
		calls    = make(map[string]*model.ToolCall)
	)

	err = c.client.RunStream(context.Background(), input, func(ev agent.Event) {
		switch ev.Type {
		case agent.EventTextMessageContent:
			reply.WriteString(ev.Delta)
			fmt.Print(ev.Delta)
		case agent.EventTextMessageEnd:
			fmt.Println()
		case agent.EventToolCallStart:
			calls[ev.ToolCallID] = model.NewToolCall(ev.ToolCallID, ev.ToolCallName)
			fmt.Println(styles.RenderInfo("Tool: " + calls[ev.ToolCallID].Kind.String()))
		case agent.EventToolCallArgs:
			if call, ok := calls[ev.ToolCallID]; ok {
				call.AppendArgs(ev.Delta)
			}
		case agent.EventToolCallEnd:
			call, ok := calls[ev.ToolCallID]
			if !ok {
				return
			}
			if call.Kind == model.ToolProposeAnalysis {
				if p, perr := call.ParseProposal(); perr == nil {
					proposal = p
				}
			}
			applyCallToState(c.state, call)
		case agent.EventStateSnapshot:
			var snap model.InvestigatorState
			if json.Unmarshal(ev.Snapshot, &snap) == nil {
				c.state.ApplySnapshot(&snap)
			}
		case agent.EventRunError:
			fmt.Println(styles.RenderError("Agent error: " + ev.ErrorMessage()))
		}
	})
	if err != nil {
		return nil, err
	}

	if text := strings.TrimSpace(reply.String()); text != "" {
		c.transcript = append(c.transcript, agent.NewAssistantMessage(uuid.NewString(), text))
	}
	return proposal, nil
}

// confirmProposal prints the proposed steps and asks for approval.
func (c *ChatCLI) confirmProposal(p *model.Proposal) bool {
	fmt.Println(styles.RenderWarning("The agent proposes a deep analysis of " + p.FileName + ":"))
	for i, step := range p.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}

	for {
		answer, err := c.line.Prompt("Approve? [y/n] ")
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

// save persists the session and its transcript.
func (c *ChatCLI) save() error {
	if c.store == nil {
		return fmt.Errorf("session store unavailable")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fileName := ""
	if c.state.UploadedFile != nil {
		fileName = c.state.UploadedFile.Name
	}
	sess := &storage.Session{
		ID:       c.sessionID,
		FileName: fileName,
		Status:   c.state.AnalysisStatus,
		State:    c.state.Clone(),
	}
	if err := c.store.SaveSession(ctx, sess); err != nil {
		return err
	}

	// The transcript table is append-only; persist only messages added
	// since the last save.
	existing, err := c.store.Transcript(ctx, c.sessionID)
	if err != nil {
		return err
	}
	if len(existing) > len(c.transcript) {
		return nil
	}
	for _, msg := range c.transcript[len(existing):] {
		if err := c.store.AppendMessage(ctx, c.sessionID, msg.Role, msg.Content); err != nil {
			return err
		}
	}
	return nil
}

// HandleChat opens stores and runs the REPL until the user quits.
func HandleChat(cfg *config.Config) error {
	if !IsStdinTTY() {
		return fmt.Errorf("chat needs an interactive terminal (use `dossier ask` for pipes)")
	}

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderWarning("Session store unavailable: "+err.Error()))
		store = nil
	} else {
		defer store.Close()
	}

	chat := NewChatCLI(cfg, NewAgentClient(cfg), store)
	defer chat.Close()
	return chat.Run()
}
