// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/dossier/internal/config"
	"github.com/jeranaias/dossier/internal/export"
	"github.com/jeranaias/dossier/internal/storage"
	"github.com/jeranaias/dossier/internal/ui/styles"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// SESSION MANAGEMENT
// =============================================================================

const sessionsUsage = `Usage: dossier sessions <action>

Actions:
  list                         List saved investigations (default)
  show <id>                    Show one investigation in detail
  delete <id>                  Delete an investigation
  export <id> [--format md]    Export a report (md, json, or html)
                               --out <dir>  --no-transcript
`

// HandleSessions manages saved investigations from the shell.
func HandleSessions(cfg *config.Config, args *ArgParser) error {
	store, err := storage.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args.Positional(1) {
	case "", "list", "ls":
		return listSessions(ctx, store)
	case "show":
		return showSession(ctx, store, args.Positional(2))
	case "delete", "rm":
		return deleteSession(ctx, store, args.Positional(2))
	case "export":
		return exportSession(ctx, store, args)
	default:
		fmt.Fprint(os.Stderr, sessionsUsage)
		return fmt.Errorf("unknown sessions action %q", args.Positional(1))
	}
}

func listSessions(ctx context.Context, store *storage.Store) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No saved investigations.")
		return nil
	}

	fmt.Printf("%-38s %-28s %-18s %s\n", "ID", "DOCUMENT", "STATUS", "UPDATED")
	for _, sess := range sessions {
		doc := sess.FileName
		if doc == "" {
			doc = "(no document)"
		}
		doc = util.TruncateWidth(doc, 26)
		fmt.Printf("%-38s %-28s %-18s %s\n",
			sess.ID, doc, sess.Status.DisplayName(), sess.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func showSession(ctx context.Context, store *storage.Store, id string) error {
	if id == "" {
		return fmt.Errorf("usage: dossier sessions show <id>")
	}
	sess, err := store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	transcript, err := store.Transcript(ctx, id)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	doc := sess.FileName
	if doc == "" {
		doc = "(no document)"
	}
	fmt.Printf("Session:   %s\n", sess.ID)
	fmt.Printf("Document:  %s\n", doc)
	fmt.Printf("Status:    %s\n", sess.Status.DisplayName())
	fmt.Printf("Created:   %s\n", sess.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:   %s\n", sess.UpdatedAt.Format(time.RFC3339))

	if sess.State != nil {
		fmt.Printf("Findings:  %d   Redactions: %d   Tweets: %d\n",
			len(sess.State.Findings), len(sess.State.RedactedContent), len(sess.State.Tweets))
		for _, f := range sess.State.Findings {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(string(f.Severity)), f.Title)
		}
		if sess.State.Summary != "" {
			fmt.Println("\nSummary:")
			if IsStdoutTTY() {
				fmt.Println(renderMarkdown(sess.State.Summary))
			} else {
				fmt.Println(sess.State.Summary)
			}
		}
	}

	if len(transcript) > 0 {
		fmt.Printf("\nTranscript (%d messages):\n", len(transcript))
		for _, entry := range transcript {
			fmt.Printf("  %-9s %s\n", entry.Role+":", firstLine(entry.Content))
		}
	}
	return nil
}

func deleteSession(ctx context.Context, store *storage.Store, id string) error {
	if id == "" {
		return fmt.Errorf("usage: dossier sessions delete <id>")
	}
	if err := store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	fmt.Println(styles.RenderSuccess("Deleted session " + id))
	return nil
}

func exportSession(ctx context.Context, store *storage.Store, args *ArgParser) error {
	id := args.Positional(2)
	if id == "" {
		return fmt.Errorf("usage: dossier sessions export <id> [--format md|json|html]")
	}

	sess, err := store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	transcript, err := store.Transcript(ctx, id)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = args.FlagOrDefault("out", ".")
	opts.IncludeTranscript = !args.BoolFlag("no-transcript")

	exporter, err := export.ForFormat(args.FlagOrDefault("format", "md"), opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(&export.Report{Session: sess, Transcript: transcript}, exporter, opts)
	if err != nil {
		return fmt.Errorf("export session: %w", err)
	}
	fmt.Println(styles.RenderSuccess("Exported to " + path))
	return nil
}

// firstLine truncates a message to one display line.
func firstLine(s string) string {
	return util.TruncateWidth(util.FirstLine(s), 100)
}
