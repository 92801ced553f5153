// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/jeranaias/dossier/internal/model"
)

// Script is the canned investigation the built-in agent performs. Tests
// inject small scripts; the default is a full sardonic run.
type Script struct {
	ProposalSteps []string
	Findings      []model.Finding
	Redacted      []model.RedactedItem
	Tweets        []model.Tweet
	Summary       string
	ClosingRemark string
}

// DefaultScript returns the stock investigation used by `dossier serve`.
func DefaultScript() *Script {
	return &Script{
		ProposalSteps: []string{
			"Skim the document while muttering",
			"Extract anything that smells like a finding",
			"Speculate wildly about the redacted parts",
			"Draft tweets nobody asked for",
			"Write an executive summary executives will not read",
		},
		Findings: []model.Finding{
			{
				ID:          "a1b2c3d4",
				Title:       "Budget line item labeled 'miscellaneous'",
				Description: "Page 3 allocates 40% of the budget to 'misc.' That is not a category, that is a confession.",
				Severity:    model.SeverityHigh,
			},
			{
				ID:          "e5f6a7b8",
				Title:       "Signature dated before the document was written",
				Description: "The approval signature on page 7 predates the drafting date on page 1 by two weeks.",
				Severity:    model.SeverityCritical,
			},
			{
				ID:          "c9d0e1f2",
				Title:       "Font changes mid-paragraph",
				Description: "Section 4.2 switches typefaces mid-sentence, suggesting a late and hasty edit.",
				Severity:    model.SeverityLow,
			},
		},
		Redacted: []model.RedactedItem{
			{
				ID:          "11aa22bb",
				Location:    "Page 5, paragraph 2",
				Speculation: "Almost certainly a name. Probably a name someone regrets.",
				Confidence:  85,
			},
			{
				ID:          "33cc44dd",
				Location:    "Page 9, footnote 3",
				Speculation: "A dollar figure with an uncomfortable number of digits.",
				Confidence:  60,
			},
		},
		Tweets: []model.Tweet{
			{
				ID:      "55ee66ff",
				Content: "Just read a document where 'miscellaneous' is the biggest budget line. Bold strategy.",
			},
			{
				ID:      "77aa88bb",
				Content: "New favorite genre: approval signatures that predate the thing they approve.",
			},
		},
		Summary: "## Executive Summary\n\n" +
			"This document wants very much to appear unremarkable and fails. " +
			"Key risks center on an unexplained 'miscellaneous' allocation, a " +
			"chronologically impossible approval, and redactions placed exactly " +
			"where the interesting parts would be.\n\n" +
			"**Recommendation:** ask whoever signed page 7 how they did it.",
		ClosingRemark: "Investigation complete. The document has been thoroughly judged.",
	}
}
