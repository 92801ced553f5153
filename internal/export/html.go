// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/dossier/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders reports as a standalone HTML page with embedded
// CSS. All user- and agent-supplied text is escaped.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export renders the report as HTML.
func (e *HTMLExporter) Export(report *Report) ([]byte, error) {
	if report == nil || report.Session == nil {
		return nil, fmt.Errorf("report has no session")
	}
	state := report.Session.State
	if state == nil {
		return nil, fmt.Errorf("report has no investigation state")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(report.Title()))
	sb.WriteString("    <meta name=\"generator\" content=\"dossier\">\n")
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", e.themeClass())
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(report))
	}

	e.renderFindings(&sb, state.Findings)
	e.renderRedacted(&sb, state.RedactedContent)
	e.renderTweets(&sb, state.Tweets)
	e.renderSummary(&sb, state.Summary)

	if e.options.IncludeTranscript && len(report.Transcript) > 0 {
		sb.WriteString("        <section class=\"transcript\">\n")
		sb.WriteString("            <h2>Transcript</h2>\n")
		for _, entry := range report.Transcript {
			fmt.Fprintf(&sb, "            <div class=\"message %s\">\n", html.EscapeString(entry.Role))
			fmt.Fprintf(&sb, "                <div class=\"role\">%s</div>\n", html.EscapeString(roleLabel(entry.Role)))
			fmt.Fprintf(&sb, "                <div class=\"content\">%s</div>\n", renderMultiline(entry.Content))
			sb.WriteString("            </div>\n")
		}
		sb.WriteString("        </section>\n")
	}

	fmt.Fprintf(&sb, "        <footer class=\"footer\"><p>Exported from <strong>dossier</strong> on %s</p></footer>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the HTML MIME type.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

func (e *HTMLExporter) themeClass() string {
	if e.options.Theme == "light" {
		return "light"
	}
	return "dark"
}

// =============================================================================
// SECTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(report *Report) string {
	var sb strings.Builder
	state := report.Session.State

	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", html.EscapeString(report.Title()))
	sb.WriteString("            <div class=\"metadata\">\n")
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Status:</strong> %s</span>\n",
		html.EscapeString(state.AnalysisStatus.DisplayName()))
	if !report.Session.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Opened:</strong> %s</span>\n",
			formatTimestamp(report.Session.CreatedAt))
	}
	fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Session:</strong> %s</span>\n",
		html.EscapeString(report.Session.ID))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderFindings(sb *strings.Builder, findings []model.Finding) {
	sb.WriteString("        <section class=\"findings\">\n            <h2>Findings</h2>\n")
	if len(findings) == 0 {
		sb.WriteString("            <p class=\"empty\">None.</p>\n")
	}
	for _, f := range findings {
		fmt.Fprintf(sb, "            <div class=\"finding sev-%s\">\n", html.EscapeString(string(f.Severity)))
		fmt.Fprintf(sb, "                <span class=\"badge\">%s</span>\n",
			html.EscapeString(strings.ToUpper(string(f.Severity))))
		fmt.Fprintf(sb, "                <strong>%s</strong>\n", html.EscapeString(f.Title))
		fmt.Fprintf(sb, "                <p>%s</p>\n", html.EscapeString(f.Description))
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </section>\n")
}

func (e *HTMLExporter) renderRedacted(sb *strings.Builder, items []model.RedactedItem) {
	sb.WriteString("        <section class=\"redacted\">\n            <h2>Redacted Content Speculation</h2>\n")
	if len(items) == 0 {
		sb.WriteString("            <p class=\"empty\">None.</p>\n")
	}
	for _, r := range items {
		sb.WriteString("            <div class=\"redacted-item\">\n")
		fmt.Fprintf(sb, "                <strong>%s</strong> <span class=\"confidence\">%d%%</span>\n",
			html.EscapeString(r.Location), r.Confidence)
		fmt.Fprintf(sb, "                <p>%s</p>\n", html.EscapeString(r.Speculation))
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </section>\n")
}

func (e *HTMLExporter) renderTweets(sb *strings.Builder, tweets []model.Tweet) {
	sb.WriteString("        <section class=\"tweets\">\n            <h2>Tweets</h2>\n")
	if len(tweets) == 0 {
		sb.WriteString("            <p class=\"empty\">None.</p>\n")
	}
	for _, t := range tweets {
		status := "draft"
		if t.Posted {
			status = "posted"
		}
		fmt.Fprintf(sb, "            <div class=\"tweet %s\">\n", status)
		fmt.Fprintf(sb, "                <p>%s</p>\n", html.EscapeString(t.Content))
		fmt.Fprintf(sb, "                <span class=\"status\">%s</span>\n", status)
		sb.WriteString("            </div>\n")
	}
	sb.WriteString("        </section>\n")
}

func (e *HTMLExporter) renderSummary(sb *strings.Builder, summary string) {
	sb.WriteString("        <section class=\"summary\">\n            <h2>Summary</h2>\n")
	if summary == "" {
		sb.WriteString("            <p class=\"empty\">None.</p>\n")
	} else {
		fmt.Fprintf(sb, "            <div class=\"content\">%s</div>\n", renderMultiline(summary))
	}
	sb.WriteString("        </section>\n")
}

// renderMultiline escapes text and converts newlines to breaks.
func renderMultiline(s string) string {
	escaped := html.EscapeString(strings.TrimSpace(s))
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}

// =============================================================================
// CSS
// =============================================================================

func (e *HTMLExporter) getCSS() string {
	return `    <style>
        :root {
            --bg: #ffffff; --fg: #1a1a2e; --surface: #f0f0f5;
            --accent: #7c3aed; --muted: #6b7280; --border: #e5e7eb;
        }
        .dark-theme {
            --bg: #12121c; --fg: #e4e4ef; --surface: #1e1e2e;
            --accent: #a78bfa; --muted: #9ca3af; --border: #2e2e44;
        }
        body {
            margin: 0; background: var(--bg); color: var(--fg);
            font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
        }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 2px solid var(--accent); padding-bottom: 1rem; margin-bottom: 2rem; }
        .header h1 { margin: 0 0 .5rem; }
        .metadata { display: flex; gap: 1.5rem; flex-wrap: wrap; color: var(--muted); font-size: .9rem; }
        section { margin-bottom: 2rem; }
        h2 { border-bottom: 1px solid var(--border); padding-bottom: .3rem; }
        .empty { color: var(--muted); font-style: italic; }
        .finding, .redacted-item, .tweet, .message {
            background: var(--surface); border-radius: 8px;
            padding: .8rem 1rem; margin-bottom: .8rem;
        }
        .badge {
            display: inline-block; font-size: .7rem; font-weight: 700;
            padding: .1rem .5rem; border-radius: 4px; margin-right: .5rem;
            background: var(--accent); color: var(--bg);
        }
        .sev-critical .badge { background: #e11d48; }
        .sev-high .badge { background: #f59e0b; }
        .sev-low .badge { background: #10b981; }
        .confidence { color: var(--accent); font-weight: 600; margin-left: .5rem; }
        .tweet.posted { border-left: 3px solid #10b981; }
        .tweet .status { color: var(--muted); font-size: .8rem; text-transform: uppercase; }
        .message .role { font-weight: 700; color: var(--accent); margin-bottom: .3rem; }
        .footer { color: var(--muted); font-size: .85rem; border-top: 1px solid var(--border); padding-top: 1rem; }
    </style>
`
}
