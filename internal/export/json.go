// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/dossier/internal/model"
	"github.com/jeranaias/dossier/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders reports as JSON. JSON exports always carry the
// complete state so a report can be re-ingested; the transcript is
// included when the options ask for it.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

type jsonReport struct {
	SessionID  string                       `json:"sessionId"`
	FileName   string                       `json:"fileName,omitempty"`
	Status     model.AnalysisStatus         `json:"status"`
	CreatedAt  time.Time                    `json:"createdAt,omitempty"`
	UpdatedAt  time.Time                    `json:"updatedAt,omitempty"`
	State      *model.InvestigatorState     `json:"state"`
	Transcript []storage.TranscriptEntry    `json:"transcript,omitempty"`
	ExportedAt time.Time                    `json:"exportedAt"`
}

// Export renders the report as indented JSON.
func (e *JSONExporter) Export(report *Report) ([]byte, error) {
	if report == nil || report.Session == nil {
		return nil, fmt.Errorf("report has no session")
	}

	out := jsonReport{
		SessionID:  report.Session.ID,
		FileName:   report.Session.FileName,
		Status:     report.Session.Status,
		CreatedAt:  report.Session.CreatedAt,
		UpdatedAt:  report.Session.UpdatedAt,
		State:      report.Session.State,
		ExportedAt: time.Now(),
	}
	if e.options.IncludeTranscript {
		out.Transcript = report.Transcript
	}

	return json.MarshalIndent(out, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the JSON MIME type.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
