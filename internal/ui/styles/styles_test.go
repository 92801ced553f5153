// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestSeverityBadge_FallsBackToMedium(t *testing.T) {
	th := NewTheme()

	if th.SeverityBadge("nonsense").GetBackground() != th.SeverityMedium.GetBackground() {
		t.Error("unknown severity did not fall back to medium")
	}
	if th.SeverityBadge("critical").GetBackground() == th.SeverityLow.GetBackground() {
		t.Error("critical and low tiers should differ")
	}
}

func TestSpinnerFrame(t *testing.T) {
	if DotsSpinner.Frame(0) != DotsSpinner.Frames[0] {
		t.Error("frame 0 mismatch")
	}
	// Wraps around
	n := len(DotsSpinner.Frames)
	if DotsSpinner.Frame(n) != DotsSpinner.Frames[0] {
		t.Error("frame did not wrap")
	}
	// Negative ticks do not panic
	_ = DotsSpinner.Frame(-1)
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(10, 0); got != strings.Repeat(ProgressEmpty, 10) {
		t.Errorf("empty bar = %q", got)
	}
	if got := RenderProgressBar(10, 100); got != strings.Repeat(ProgressFull, 10) {
		t.Errorf("full bar = %q", got)
	}
	if got := RenderProgressBar(10, 50); len(got) != 10 {
		t.Errorf("half bar length = %d", len(got))
	}
	// Out-of-range inputs clamp
	if got := RenderProgressBar(10, 150); got != strings.Repeat(ProgressFull, 10) {
		t.Errorf("over-100 bar = %q", got)
	}
	if RenderProgressBar(0, 50) != "" {
		t.Error("zero width should render empty")
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), StatusIndicators.Success) {
		t.Error("success indicator missing")
	}
	if !strings.Contains(RenderError("boom"), StatusIndicators.Error) {
		t.Error("error indicator missing")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("warning indicator missing")
	}
	if !strings.Contains(RenderInfo("fyi"), StatusIndicators.Info) {
		t.Error("info indicator missing")
	}
}
