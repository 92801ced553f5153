// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the dashboard
// input line.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/load <session_id>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeFile                   // File path
	ArgTypeSession                // Session ID from saved sessions
	ArgTypeEnum                   // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns the visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Category:    "Navigation",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit dossier",
		Category:    "Navigation",
		Handler:     handleQuit,
	})

	// Investigation commands
	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/u", "/open"},
		Description: "Upload a PDF for investigation",
		Usage:       "/upload <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeFile, Description: "Path to the PDF"},
		},
		Category: "Investigation",
		Handler:  handleUpload,
	})

	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Discard the current investigation and start fresh",
		Category:    "Investigation",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/approve",
		Aliases:     []string{"/yes"},
		Description: "Approve the proposed analysis",
		Category:    "Investigation",
		Handler:     handleApprove,
	})

	r.Register(&Command{
		Name:        "/deny",
		Aliases:     []string{"/no"},
		Description: "Deny the proposed analysis",
		Category:    "Investigation",
		Handler:     handleDeny,
	})

	// Session commands
	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the current investigation",
		Category:    "Session",
		Handler:     handleSave,
	})

	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/resume"},
		Description: "Load a saved investigation",
		Usage:       "/load <session_id>",
		Args: []ArgDef{
			{Name: "session_id", Required: true, Type: ArgTypeSession, Description: "ID of the session to load"},
		},
		Category: "Session",
		Handler:  handleLoad,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/list"},
		Description: "List saved investigations",
		Category:    "Session",
		Handler:     handleSessions,
	})

	// Result commands
	r.Register(&Command{
		Name:        "/copy",
		Description: "Copy the summary to the clipboard",
		Category:    "Results",
		Handler:     handleCopy,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the investigation to a file",
		Usage:       "/export [format]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum, Values: []string{"json", "md"}, Description: "Export format"},
		},
		Category: "Results",
		Handler:  handleExport,
	})

	r.Register(&Command{
		Name:        "/status",
		Description: "Show agent connectivity and investigation state",
		Category:    "Settings",
		Handler:     handleStatus,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers. All
// fields are optional and may be nil; handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Store handles investigation persistence
	Store *storage.Store

	// AgentURL is the configured agent endpoint, for /status
	AgentURL string
}

// NewContext creates a new command context with the given dependencies.
func NewContext(cfg *config.Config, store *storage.Store) *Context {
	ctx := &Context{
		Config: cfg,
		Store:  store,
	}
	if cfg != nil {
		ctx.AgentURL = cfg.Agent.URL
	}
	return ctx
}
