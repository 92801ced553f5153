// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"io"
	"regexp"
)

// =============================================================================
// LOG REDACTION
// =============================================================================

// base64RunPattern matches long unbroken base64 runs, the signature of an
// embedded document payload. Ordinary identifiers and hashes stay under
// the threshold.
var base64RunPattern = regexp.MustCompile(`[A-Za-z0-9+/]{64,}={0,2}`)

// RedactingWriter masks base64 document payloads before they reach a log
// file. Each Write is filtered independently, so it should sit in front of
// a line-oriented writer like the stdlib logger.
type RedactingWriter struct {
	w io.Writer
}

// NewRedactingWriter wraps w with base64 payload masking.
func NewRedactingWriter(w io.Writer) *RedactingWriter {
	return &RedactingWriter{w: w}
}

// Write filters p and forwards it. The reported length covers the original
// input so the logger never sees a short write.
func (r *RedactingWriter) Write(p []byte) (int, error) {
	redacted := base64RunPattern.ReplaceAllFunc(p, func(run []byte) []byte {
		return fmt.Appendf(nil, "[base64 %d bytes redacted]", len(run))
	})
	if _, err := r.w.Write(redacted); err != nil {
		return 0, err
	}
	return len(p), nil
}
