// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared between the dashboard
// and the remote investigation agent: the investigator state that both sides
// read and write, and the tool calls the agent emits while analyzing a
// document.
//
// Ownership rules: findings, redacted items, and the summary are written only
// by the agent; tweets are created by the agent but may be edited or posted
// locally; the uploaded file is written only locally. Either side may replace
// any top-level field, and the last write observed wins.
package model
