// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the dossier
// dashboard: the four result panels, tool activity cards, the proposal
// prompt, toasts, header, and status bar.
//
// Components are plain view structs. They hold presentation state only;
// the investigator state itself lives in the dashboard model and is passed
// in at render time, so a component can never show data the model does not
// hold.
package components
