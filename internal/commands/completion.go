// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the dashboard
// input line.
package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is one suggestion for the input line.
type Completion struct {
	// Value to insert
	Value string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}

// Complete returns suggestions for a partially typed command name, best
// match first. Exact prefix matches outrank subsequence matches; aliases
// complete to their primary command.
func (r *Registry) Complete(partial string) []Completion {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" || !strings.HasPrefix(partial, "/") {
		return nil
	}

	seen := make(map[string]bool)
	var completions []Completion

	add := func(cmd *Command, score int) {
		if cmd.Hidden || seen[cmd.Name] {
			return
		}
		seen[cmd.Name] = true
		completions = append(completions, Completion{
			Value:       cmd.Name,
			Description: cmd.Description,
			Score:       score,
		})
	}

	for name, cmd := range r.commands {
		if score := matchScore(name, partial); score > 0 {
			add(cmd, score)
		}
	}
	for alias, cmd := range r.aliases {
		if score := matchScore(alias, partial); score > 0 {
			// Alias matches rank slightly below direct name matches
			add(cmd, score-1)
		}
	}

	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})

	return completions
}

// matchScore ranks candidate against the typed partial. Exact match beats
// prefix, prefix beats subsequence, no match is zero.
func matchScore(candidate, partial string) int {
	candidate = strings.ToLower(candidate)

	if candidate == partial {
		return 100
	}
	if strings.HasPrefix(candidate, partial) {
		// Shorter candidates are closer matches
		return 80 - len(candidate) + len(partial)
	}
	if isSubsequence(partial, candidate) {
		return 20
	}
	return 0
}

// isSubsequence reports whether every rune of needle appears in haystack in
// order.
func isSubsequence(needle, haystack string) bool {
	if needle == "" {
		return true
	}
	n := []rune(needle)
	i := 0
	for _, r := range haystack {
		if r == n[i] {
			i++
			if i == len(n) {
				return true
			}
		}
	}
	return false
}
