// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import "encoding/json"

// =============================================================================
// WIRE EVENT TYPES
// =============================================================================

// EventType identifies a streamed agent event.
type EventType string

// Event types emitted by the agent over the SSE channel.
const (
	EventRunStarted         EventType = "RUN_STARTED"
	EventRunFinished        EventType = "RUN_FINISHED"
	EventRunError           EventType = "RUN_ERROR"
	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"
	EventToolCallStart      EventType = "TOOL_CALL_START"
	EventToolCallArgs       EventType = "TOOL_CALL_ARGS"
	EventToolCallEnd        EventType = "TOOL_CALL_END"
	EventToolCallResult     EventType = "TOOL_CALL_RESULT"
	EventStateSnapshot      EventType = "STATE_SNAPSHOT"
)

// Event is a single decoded event from the agent stream. Fields are sparse:
// which ones are populated depends on Type.
type Event struct {
	Type EventType `json:"type"`

	// Run identity, set on RUN_STARTED / RUN_FINISHED / RUN_ERROR.
	ThreadID string `json:"threadId,omitempty"`
	RunID    string `json:"runId,omitempty"`

	// Text message streaming.
	MessageID string `json:"messageId,omitempty"`
	Role      string `json:"role,omitempty"`
	Delta     string `json:"delta,omitempty"`

	// Tool call streaming. ToolCallName is set on TOOL_CALL_START only;
	// subsequent args/end/result events carry just the ID.
	ToolCallID   string `json:"toolCallId,omitempty"`
	ToolCallName string `json:"toolCallName,omitempty"`

	// Content carries the tool result payload on TOOL_CALL_RESULT and the
	// error message on RUN_ERROR.
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`

	// Snapshot is the full replacement state on STATE_SNAPSHOT.
	Snapshot json.RawMessage `json:"snapshot,omitempty"`

	// Error is set for channel-based streaming when the stream itself
	// failed. Never populated from the wire.
	Error error `json:"-"`
}

// HasError returns true if the event carries a transport error.
func (e *Event) HasError() bool {
	return e.Error != nil
}

// IsTerminal returns true if the event ends the run.
func (e *Event) IsTerminal() bool {
	return e.Type == EventRunFinished || e.Type == EventRunError
}

// ErrorMessage returns the agent-reported error text for RUN_ERROR events.
func (e *Event) ErrorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Content
}

// =============================================================================
// RUN INPUT
// =============================================================================

// Message is a single entry in the conversation transcript sent to the agent.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(id, content string) Message {
	return Message{ID: id, Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(id, content string) Message {
	return Message{ID: id, Role: "assistant", Content: content}
}

// Tool advertises a frontend tool to the agent.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// RunInput is the request body for starting an agent run. State carries the
// full shared document state so local mutations made since the last run are
// visible to the agent without a separate sync step.
type RunInput struct {
	ThreadID string          `json:"threadId"`
	RunID    string          `json:"runId"`
	State    json.RawMessage `json:"state,omitempty"`
	Messages []Message       `json:"messages"`
	Tools    []Tool          `json:"tools,omitempty"`
}
