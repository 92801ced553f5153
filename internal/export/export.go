// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders investigation results to shareable formats.
// The dashboard's /export command and the sessions CLI both go through
// the exporters here, so a report looks the same whichever surface
// produced it.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/dossier/internal/storage"
	"github.com/jeranaias/dossier/internal/util"
)

// =============================================================================
// REPORT
// =============================================================================

// Report bundles everything an exporter needs: the investigation state
// and, optionally, the chat transcript that produced it.
type Report struct {
	Session    *storage.Session
	Transcript []storage.TranscriptEntry
}

// Title returns the report heading: the document name, or a fallback for
// investigations without one.
func (r *Report) Title() string {
	if r.Session != nil && r.Session.FileName != "" {
		return r.Session.FileName
	}
	return "untitled investigation"
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a report in one target format.
type Exporter interface {
	Export(report *Report) ([]byte, error)

	// FileExtension returns the extension including the dot, e.g. ".md".
	FileExtension() string

	MimeType() string
}

// ForFormat returns the exporter for a format name: "md", "markdown",
// "json", or "html".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "html":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want md, json, or html)", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeMetadata adds the session header (document, status, dates).
	IncludeMetadata bool

	// IncludeTranscript appends the chat transcript after the results.
	IncludeTranscript bool

	// Theme for HTML export, "dark" or "light".
	Theme string
}

// DefaultOptions returns the default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTranscript: true,
		Theme:             "dark",
	}
}

// =============================================================================
// FILE EXPORT
// =============================================================================

// ExportToFile renders the report and writes it as
// dossier_<document>_<timestamp><ext> under opts.OutputDir. Returns the
// output path.
func ExportToFile(report *Report, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(report)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("dossier_%s_%s%s",
		sanitizeFilename(report.Title()),
		timestamp,
		exporter.FileExtension(),
	)

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in filenames on
// either Windows or Unix.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := make([]rune, 0, len(s))
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "investigation"
	}
	return string(result)
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
