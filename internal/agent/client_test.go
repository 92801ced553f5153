// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("base url = %q", c.BaseURL())
	}
	if c.maxRetries != DefaultMaxRetries {
		t.Errorf("max retries = %d", c.maxRetries)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://agent.test:8000/")
	if c.BaseURL() != "http://agent.test:8000" {
		t.Errorf("base url = %q", c.BaseURL())
	}
}

func TestClientOptions(t *testing.T) {
	c := NewClient("http://agent.test").
		WithAgentName("investigator").
		WithTimeout(30 * time.Second).
		WithMaxRetries(5)

	if c.agentName != "investigator" {
		t.Errorf("agent name = %q", c.agentName)
	}
	if c.timeout != 30*time.Second {
		t.Errorf("timeout = %v", c.timeout)
	}
	if c.maxRetries != 5 {
		t.Errorf("max retries = %d", c.maxRetries)
	}
}

func TestHandleErrorResponse(t *testing.T) {
	c := NewClient("")

	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrRunRejected},
		{http.StatusUnprocessableEntity, ErrRunRejected},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		err := c.handleErrorResponse(tt.status, []byte("detail"))
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
	}

	err := c.handleErrorResponse(http.StatusBadGateway, []byte("proxy sad"))
	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("expected AgentError, got %v", err)
	}
	if agentErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d", agentErr.Status)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"run rejected", ErrRunRejected, false},
		{"rate limited", ErrRateLimited, true},
		{"4xx", &AgentError{Status: 404}, false},
		{"5xx", &AgentError{Status: 503}, true},
		{"network", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("%s: isRetryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	if d := calculateBackoff(0); d != 500*time.Millisecond {
		t.Errorf("attempt 0 = %v", d)
	}
	if d := calculateBackoff(1); d != time.Second {
		t.Errorf("attempt 1 = %v", d)
	}
	// Large attempts clamp to the cap
	if d := calculateBackoff(10); d != retryMaxDelay {
		t.Errorf("attempt 10 = %v", d)
	}
}
