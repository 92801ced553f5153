// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI entry points: one-shot questions,
// an interactive terminal chat, and session management from the shell.
//
// Everything here talks to the same agent endpoint and session store as
// the dashboard, so a session started in the TUI can be inspected,
// resumed, or exported from a script.
package cli
