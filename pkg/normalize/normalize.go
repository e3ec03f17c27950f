// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package normalize produces the canonical keys used to compare account identities.
//
// # Policy
//
// Emails and usernames are compared case-insensitively. Every lookup and every
// uniqueness check must go through the same function so that "Alice" and
// "alice" can never become two accounts.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Email returns the canonical, comparable form of an email address.
//
// # Transformation Pipeline
//
// 1. Trims surrounding whitespace.
// 2. Normalizes to NFKC (compatibility composition: "ｆｕｌｌ" → "full").
// 3. Applies Unicode case folding.
func Email(s string) string {
	return key(s)
}

// Username returns the canonical key for a username. The display form is
// stored separately and keeps the casing the user typed.
func Username(s string) string {
	return key(s)
}

func key(s string) string {
	trimmed := strings.TrimSpace(s)

	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(norm.NFKC.String(trimmed))
}
