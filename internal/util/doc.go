// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the dossier application:
// rune-safe string truncation, numeric formatting, and atomic file writes.
package util
