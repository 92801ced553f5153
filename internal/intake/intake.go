// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intake validates and prepares documents for investigation.
//
// A document enters the system either through the file picker or by being
// dropped into the watched inbox directory. Either way it passes through
// Prepare, which enforces the type and size rules and produces the base64
// payload carried in the shared state.
package intake

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jeranaias/dossier/internal/model"
)

// Intake limits.
const (
	// MaxFileSize is the hard upload ceiling.
	MaxFileSize = 10 * 1024 * 1024 // 10 MiB

	// ModelDocumentCeiling is the size past which the remote model truncates
	// the document. Crossing it is a warning at intake, not a rejection.
	ModelDocumentCeiling = 4608 * 1024 // 4.5 MB

	// AcceptedMimeType is the only document type the investigator handles.
	AcceptedMimeType = "application/pdf"
)

// Error variables for intake failures.
var (
	// ErrNotPDF indicates the declared MIME type is not application/pdf.
	ErrNotPDF = errors.New("only PDF files are accepted")

	// ErrTooLarge indicates the file exceeds MaxFileSize.
	ErrTooLarge = errors.New("file exceeds the 10 MiB limit")
)

// Result is a prepared document plus any non-blocking warning.
type Result struct {
	File *model.UploadedFile

	// Warning is set when the document passes validation but will be
	// truncated by the remote model.
	Warning string
}

// Prepare validates a candidate document and encodes it for the shared
// state. The declared MIME type is authoritative; the file name and its
// extension are never consulted for type decisions. Zero-byte files pass.
func Prepare(name, declaredMime string, data []byte) (*Result, error) {
	if !strings.EqualFold(strings.TrimSpace(declaredMime), AcceptedMimeType) {
		return nil, fmt.Errorf("%w (got %q)", ErrNotPDF, declaredMime)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w (%.1f MB)", ErrTooLarge, float64(len(data))/(1024*1024))
	}

	res := &Result{
		File: &model.UploadedFile{
			Name:     name,
			Base64:   base64.StdEncoding.EncodeToString(data),
			MimeType: AcceptedMimeType,
		},
	}

	if len(data) > ModelDocumentCeiling {
		res.Warning = fmt.Sprintf(
			"%s is %.1f MB; the agent truncates documents over 4.5 MB",
			name, float64(len(data))/(1024*1024))
	}

	return res, nil
}

// Decode reverses the base64 encoding applied by Prepare.
func Decode(f *model.UploadedFile) ([]byte, error) {
	if f == nil {
		return nil, errors.New("no file")
	}
	return base64.StdEncoding.DecodeString(f.Base64)
}

// =============================================================================
// DOCUMENT NAME SANITIZATION
// =============================================================================

var (
	nameDisallowed = regexp.MustCompile(`[^a-zA-Z0-9\s\-\(\)\[\]]`)
	nameSpaceRuns  = regexp.MustCompile(`\s+`)
	nameDashRuns   = regexp.MustCompile(`-+`)
)

// SanitizeName normalizes a document display name to the character set the
// agent accepts: alphanumerics, spaces, hyphens, parentheses, and brackets.
// Disallowed characters become hyphens, runs collapse, and an empty result
// falls back to "document".
func SanitizeName(name string) string {
	s := nameDisallowed.ReplaceAllString(name, "-")
	s = nameSpaceRuns.ReplaceAllString(s, " ")
	s = nameDashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, " -")
	if s == "" {
		return "document"
	}
	return s
}

// =============================================================================
// LOADING FLAVOR TEXT
// =============================================================================

// LoadingMessages is the pool of flavor texts shown while a document upload
// is in flight.
var LoadingMessages = []string{
	"Dusting for fingerprints...",
	"Holding pages up to the light...",
	"Cross-referencing with the conspiracy board...",
	"Squinting at the fine print...",
	"Checking for invisible ink...",
	"Interrogating the metadata...",
	"Following the paper trail...",
}

// ChooseMessage deterministically selects a loading message for the given
// seed. Same seed, same message.
func ChooseMessage(seed int) string {
	if len(LoadingMessages) == 0 {
		return ""
	}
	if seed < 0 {
		seed = -seed
	}
	return LoadingMessages[seed%len(LoadingMessages)]
}
