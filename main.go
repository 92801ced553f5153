// dossier - a file investigation dashboard for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/dossier/internal/cli"
	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/server"
	"github.com/jeranaias/dossier/internal/storage"
	"github.com/jeranaias/dossier/internal/ui/dashboard"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const usage = `dossier - investigate documents with a remote agent

Usage:
  dossier                      Open the dashboard (default)
  dossier ask <question>       One-shot question, answer to stdout
  dossier chat                 Line-based chat without the dashboard
  dossier sessions <action>    List, show, delete, or export sessions
  dossier serve [--port 8000]  Run the built-in scripted agent
  dossier version              Print version information

Flags:
  ask:      --file <path>  --json  --plain
  sessions: --format md|json|html  --out <dir>  --no-transcript
`

func main() {
	args := cli.NewArgParser(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	switch args.Subcommand() {
	case "":
		err = runDashboard(cfg)
	case "ask":
		err = cli.HandleAsk(cfg, args)
	case "chat":
		err = cli.HandleChat(cfg)
	case "sessions":
		err = cli.HandleSessions(cfg, args)
	case "serve":
		err = runServe(args)
	case "version", "--version", "-v":
		fmt.Printf("dossier %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", args.Subcommand())
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runDashboard starts the full-screen TUI.
func runDashboard(cfg *config.Config) error {
	// Bubble Tea owns the terminal; log lines go to a file instead, with
	// document payloads masked.
	if f, err := tea.LogToFile(config.LogPath(), "dossier"); err == nil {
		log.SetOutput(util.NewRedactingWriter(f))
		defer f.Close()
	}

	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderWarning("Session store unavailable, /save and /load are disabled: "+err.Error()))
		store = nil
	} else {
		defer store.Close()
	}

	m := dashboard.New(cfg, cli.NewAgentClient(cfg), store)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited: %w", err)
	}
	return nil
}

// runServe starts the built-in scripted agent, useful for demos and for
// developing the dashboard without a real agent process.
func runServe(args *cli.ArgParser) error {
	port := args.FlagIntOrDefault("port", server.DefaultPort)
	log.SetOutput(util.NewRedactingWriter(os.Stderr))
	fmt.Printf("Scripted agent listening on 127.0.0.1:%d (ctrl+c to stop)\n", port)
	return server.NewServer(port).Start()
}
