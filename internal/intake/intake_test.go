// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intake

import (
	"bytes"
	"errors"
	"testing"
)

func TestPrepare_AcceptsPDF(t *testing.T) {
	data := []byte("%PDF-1.4 fake content")
	res, err := Prepare("report.pdf", "application/pdf", data)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.File.Name != "report.pdf" {
		t.Errorf("name = %q", res.File.Name)
	}
	if res.File.MimeType != AcceptedMimeType {
		t.Errorf("mime = %q", res.File.MimeType)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning: %q", res.Warning)
	}

	decoded, err := Decode(res.File)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("base64 round trip lost data")
	}
}

func TestPrepare_RejectsNonPDFMime(t *testing.T) {
	// Extension never overrides the declared type
	_, err := Prepare("notes.pdf", "text/plain", []byte("plain text"))
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}

	_, err = Prepare("image.png", "image/png", []byte{0x89, 0x50})
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("expected ErrNotPDF, got %v", err)
	}
}

func TestPrepare_RejectsOversize(t *testing.T) {
	data := make([]byte, MaxFileSize+1)
	_, err := Prepare("huge.pdf", "application/pdf", data)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestPrepare_ZeroBytePasses(t *testing.T) {
	res, err := Prepare("empty.pdf", "application/pdf", nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.File.Base64 != "" {
		t.Errorf("base64 of empty = %q", res.File.Base64)
	}
}

func TestPrepare_WarnsOverModelCeiling(t *testing.T) {
	data := make([]byte, ModelDocumentCeiling+1)
	res, err := Prepare("big.pdf", "application/pdf", data)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.Warning == "" {
		t.Error("expected a truncation warning for document over the model ceiling")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Annual Report (2024).pdf", "Annual Report (2024)-pdf"},
		{"weird///name***here", "weird-name-here"},
		{"  spaced   out  ", "spaced out"},
		{"___", "document"},
		{"", "document"},
		{"[classified] memo", "[classified] memo"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChooseMessage_Deterministic(t *testing.T) {
	for seed := 0; seed < 20; seed++ {
		a := ChooseMessage(seed)
		b := ChooseMessage(seed)
		if a != b {
			t.Fatalf("seed %d: %q != %q", seed, a, b)
		}
		if a == "" {
			t.Fatalf("seed %d chose empty message", seed)
		}
	}
	// Negative seeds do not panic
	if ChooseMessage(-3) == "" {
		t.Error("negative seed chose empty message")
	}
}
