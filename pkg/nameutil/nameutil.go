// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

// Package nameutil provides accent-insensitive matching for person names.
//
// # Usage
//
// The signup flow lets a visitor search for their own node by typing a name
// fragment ("jose" should find "José MARTINEZ"). This package handles Unicode
// normalization and accent removal so that matching works across the accented
// French names the graph is full of.
package nameutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns a lowercase, accent-free rendition of s suitable for
// case- and accent-insensitive comparison.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)
	return strings.ToLower(result)
}

// Matches reports whether the folded form of name contains the folded form
// of fragment. An empty fragment matches every name.
func Matches(name, fragment string) bool {
	if strings.TrimSpace(fragment) == "" {
		return true
	}
	return strings.Contains(Fold(name), Fold(fragment))
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
