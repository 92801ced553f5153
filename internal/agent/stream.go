// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxEventSize is the maximum allowed size for a single SSE event (256KB).
// State snapshots carry the full document state, so this is roomier than a
// chat-chunk limit would be.
const MaxEventSize = 256 * 1024

// =============================================================================
// STREAMING TYPES
// =============================================================================

// EventCallback is called for each decoded event in arrival order.
type EventCallback func(ev Event)

// StreamError represents an error that occurred mid-stream, preserving any
// assistant text received before the drop.
type StreamError struct {
	Partial string // Text content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SSE READER
// =============================================================================

// SSEReader parses Server-Sent Events from a stream.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader creates a new SSE reader from an io.Reader.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{
		reader: bufio.NewReader(r),
	}
}

// ReadEvent reads the next SSE event from the stream, returning the event
// type field and joined data lines. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte
	var total int

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(dataLines) > 0 {
					return eventType, bytes.Join(dataLines, []byte("\n")), nil
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		total += len(line)
		if total > MaxEventSize {
			return "", nil, fmt.Errorf("event too large: %d bytes", total)
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("event:")) {
			eventType = string(bytes.TrimSpace(line[6:]))
		} else if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Ignore other fields (id:, retry:, comments starting with :)
	}
}

// =============================================================================
// RUN STREAMING
// =============================================================================

// RunStream starts an agent run and invokes callback for each decoded event
// in arrival order. It blocks until the run finishes, the stream fails past
// the reconnect budget, or ctx is cancelled.
//
// Dropped connections are retried with exponential backoff; 4xx responses
// and context errors are not retried. Assistant text received before a
// terminal failure is preserved in the returned StreamError.
func (c *Client) RunStream(ctx context.Context, input RunInput, callback EventCallback) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal run input: %w", err)
	}

	var lastErr error
	var accumulated strings.Builder

	// Accumulate assistant text so a mid-stream drop can report partial
	// content alongside the error.
	wrapped := func(ev Event) {
		if ev.Type == EventTextMessageContent {
			accumulated.WriteString(ev.Delta)
		}
		callback(ev)
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")

		resp, err := sharedStreamingClient.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			lastErr = fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			httpErr := c.handleErrorResponse(resp.StatusCode, body)
			if !isRetryable(httpErr) {
				return httpErr
			}
			lastErr = httpErr
			continue
		}

		err = c.processStream(ctx, resp.Body, wrapped)
		resp.Body.Close()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("max reconnection attempts exceeded")
	} else {
		lastErr = fmt.Errorf("max reconnection attempts exceeded: %w", lastErr)
	}
	if accumulated.Len() > 0 {
		return &StreamError{Partial: accumulated.String(), Err: lastErr}
	}
	return lastErr
}

// processStream reads and decodes the SSE stream until a terminal event.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback EventCallback) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				// Stream ended without RUN_FINISHED; treat as a drop so
				// the caller can reconnect.
				return &StreamError{Err: io.ErrUnexpectedEOF}
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Skip malformed events rather than killing the run
			continue
		}

		callback(ev)

		if ev.IsTerminal() {
			return nil
		}
	}
}

// RunStreamChan starts an agent run and returns a channel of events. The
// channel is closed when the run completes or fails; stream failures are
// delivered as a final Event with the Error field set.
func (c *Client) RunStreamChan(ctx context.Context, input RunInput) <-chan Event {
	events := make(chan Event, 64)

	go func() {
		defer close(events)

		err := c.RunStream(ctx, input, func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})

		if err != nil {
			select {
			case events <- Event{Error: err}:
			case <-ctx.Done():
			}
		}
	}()

	return events
}

// Ping checks whether the agent endpoint is reachable. Used by the status
// bar connectivity indicator; any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAgentUnavailable, err)
	}
	resp.Body.Close()
	return nil
}
