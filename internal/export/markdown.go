// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/dossier/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders reports as Markdown with YAML frontmatter.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export renders the report as Markdown.
func (e *MarkdownExporter) Export(report *Report) ([]byte, error) {
	if report == nil || report.Session == nil {
		return nil, fmt.Errorf("report has no session")
	}
	state := report.Session.State
	if state == nil {
		return nil, fmt.Errorf("report has no investigation state")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(report.Title()))
		fmt.Fprintf(&sb, "session: %s\n", report.Session.ID)
		fmt.Fprintf(&sb, "status: %s\n", state.AnalysisStatus)
		if !report.Session.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "date: %s\n", report.Session.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(&sb, "exported: %s\n", time.Now().Format(time.RFC3339))
		sb.WriteString("generator: dossier\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(report.Title()))

	if e.options.IncludeMetadata {
		sb.WriteString("## Investigation\n\n")
		fmt.Fprintf(&sb, "- **Status**: %s\n", state.AnalysisStatus.DisplayName())
		if !report.Session.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "- **Opened**: %s\n", formatTimestamp(report.Session.CreatedAt))
		}
		if !report.Session.UpdatedAt.IsZero() {
			fmt.Fprintf(&sb, "- **Last Activity**: %s\n", formatTimestamp(report.Session.UpdatedAt))
		}
		sb.WriteString("\n")
	}

	e.writeFindings(&sb, state.Findings)
	e.writeRedacted(&sb, state.RedactedContent)
	e.writeTweets(&sb, state.Tweets)
	e.writeSummary(&sb, state.Summary)

	if e.options.IncludeTranscript && len(report.Transcript) > 0 {
		sb.WriteString("## Transcript\n\n")
		for i, entry := range report.Transcript {
			fmt.Fprintf(&sb, "### %s\n\n", roleLabel(entry.Role))
			sb.WriteString(strings.TrimSpace(entry.Content))
			sb.WriteString("\n\n")
			if i < len(report.Transcript)-1 {
				sb.WriteString("---\n\n")
			}
		}
	}

	fmt.Fprintf(&sb, "\n---\n\n*Exported from dossier on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// SECTIONS
// =============================================================================

func (e *MarkdownExporter) writeFindings(sb *strings.Builder, findings []model.Finding) {
	sb.WriteString("## Findings\n\n")
	if len(findings) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	for _, f := range findings {
		fmt.Fprintf(sb, "- **[%s] %s**: %s\n",
			strings.ToUpper(string(f.Severity)), f.Title, f.Description)
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeRedacted(sb *strings.Builder, items []model.RedactedItem) {
	sb.WriteString("## Redacted Content Speculation\n\n")
	if len(items) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	for _, r := range items {
		fmt.Fprintf(sb, "- **%s** (%d%% confidence): %s\n", r.Location, r.Confidence, r.Speculation)
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeTweets(sb *strings.Builder, tweets []model.Tweet) {
	sb.WriteString("## Tweets\n\n")
	if len(tweets) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	for _, t := range tweets {
		status := "draft"
		if t.Posted {
			status = "posted"
		}
		fmt.Fprintf(sb, "- (%s) %s\n", status, t.Content)
	}
	sb.WriteString("\n")
}

func (e *MarkdownExporter) writeSummary(sb *strings.Builder, summary string) {
	sb.WriteString("## Summary\n\n")
	if summary == "" {
		sb.WriteString("_None._\n\n")
		return
	}
	sb.WriteString(summary)
	if !strings.HasSuffix(summary, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func roleLabel(role string) string {
	switch role {
	case "user":
		return "[User]"
	case "assistant":
		return "[Investigator]"
	case "system":
		return "[System]"
	default:
		if role == "" {
			return "Unknown"
		}
		runes := []rune(role)
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}

// =============================================================================
// ESCAPING
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML special characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
