// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent implements the synchronization bridge to the remote
// investigation agent.
//
// The agent exposes a single streaming endpoint: POST the full run input
// (transcript, shared state, advertised tools) and read back an SSE stream
// of run, text-message, tool-call, and state-snapshot events. The bridge
// never mutates local state itself; decoded events are handed to the caller,
// who applies them through the update loop.
package agent

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the agent bridge.
const (
	// DefaultBaseURL is where the investigation agent listens locally.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of reconnect attempts for a
	// dropped stream.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// runStartBurst allows a couple of quick run starts before the rate
	// limiter begins pacing (rapid re-prompts, upload-then-ask).
	runStartBurst = 2
)

var (
	// Shared HTTP client with connection pooling for short agent requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for SSE requests. No client timeout;
	// stream lifetime is controlled via context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
)

// Error variables for common bridge failures.
var (
	// ErrAgentUnavailable indicates the agent endpoint could not be reached.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrRateLimited indicates the agent rejected the run with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrRunRejected indicates the agent rejected the run input.
	ErrRunRejected = errors.New("run rejected")
)

// AgentError represents an error response from the agent endpoint.
type AgentError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("agent error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("agent error (HTTP %d)", e.Status)
}

// Client talks to the investigation agent endpoint.
type Client struct {
	baseURL    string
	agentName  string
	maxRetries int
	timeout    time.Duration

	// limiter paces outbound run starts so a stuck key or scripted caller
	// cannot hammer the agent.
	limiter *rate.Limiter
}

// NewClient creates a bridge client for the given agent base URL.
// An empty URL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		agentName:  "file_investigator",
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		limiter:    rate.NewLimiter(rate.Every(time.Second), runStartBurst),
	}
}

// WithAgentName sets the agent name sent in request headers.
func (c *Client) WithAgentName(name string) *Client {
	if name != "" {
		c.agentName = name
	}
	return c
}

// WithTimeout sets the non-streaming request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// WithMaxRetries sets the maximum number of stream reconnect attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries >= 0 {
		c.maxRetries = maxRetries
	}
	return c
}

// WithRunRate overrides the pacing of outbound run starts.
func (c *Client) WithRunRate(interval time.Duration, burst int) *Client {
	if interval > 0 && burst > 0 {
		c.limiter = rate.NewLimiter(rate.Every(interval), burst)
	}
	return c
}

// BaseURL returns the configured agent endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// setHeaders sets the required headers for agent requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "dossier/0.1.0")
	req.Header.Set("X-Agent-Name", c.agentName)
}

// handleErrorResponse converts HTTP error responses to bridge errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	msg := strings.TrimSpace(string(body))

	switch statusCode {
	case http.StatusTooManyRequests:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrRunRejected, msg)
		}
		return ErrRunRejected
	default:
		return &AgentError{Message: msg, Status: statusCode}
	}
}

// isRetryable determines if a bridge error should trigger a reconnect.
// 4xx responses and context errors never retry.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRunRejected) {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		if agentErr.Status >= 400 && agentErr.Status < 500 {
			return false
		}
		return agentErr.Status >= 500
	}

	// Network errors are retryable.
	return true
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
