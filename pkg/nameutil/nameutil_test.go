// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package nameutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"José MARTINEZ", "jose martinez"},
		{"Éloïse LELIÈVRE", "eloise lelievre"},
		{"Alice DUPONT", "alice dupont"},
		{"", ""},
		{"ÀÂÄÉÈÊËÎÏÔÖÙÛÜÇ", "aaaeeeeiioouuuc"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Fold(tc.in), "Fold(%q)", tc.in)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     bool
	}{
		{"José MARTINEZ", "jose", true},
		{"José MARTINEZ", "JOSÉ", true},
		{"José MARTINEZ", "martinez", true},
		{"José MARTINEZ", "tine", true},
		{"José MARTINEZ", "", true},
		{"José MARTINEZ", "   ", true},
		{"José MARTINEZ", "dupont", false},
		{"Éloïse LELIÈVRE", "elo", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Matches(tc.name, tc.fragment),
			"Matches(%q, %q)", tc.name, tc.fragment)
	}
}
