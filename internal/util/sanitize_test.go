package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		max      int
		expected string
		ok       bool
	}{
		{name: "trims whitespace", raw: "  Dossier Meier  ", max: 255, expected: "Dossier Meier", ok: true},
		{name: "keeps accents", raw: "Zürich Nord", max: 255, expected: "Zürich Nord", ok: true},
		{name: "folds line breaks", raw: "Hans\nMuster", max: 255, expected: "Hans Muster", ok: true},
		{name: "drops null bytes", raw: "Ha\x00ns", max: 255, expected: "Hans", ok: true},
		{name: "drops zero-width characters", raw: "Hans\u200BMuster\uFEFF", max: 255, expected: "HansMuster", ok: true},
		{name: "rejects blank", raw: "   ", max: 255, ok: false},
		{name: "rejects only invisible", raw: "\u200B\u200D", max: 255, ok: false},
		{name: "counts runes not bytes", raw: strings.Repeat("ä", 10), max: 10, expected: strings.Repeat("ä", 10), ok: true},
		{name: "rejects over limit", raw: strings.Repeat("a", 11), max: 10, expected: strings.Repeat("a", 11), ok: false},
		{name: "zero max disables limit", raw: strings.Repeat("a", 400), max: 0, expected: strings.Repeat("a", 400), ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			actual, ok := CleanLabel(tt.raw, tt.max)
			require.Equal(t, tt.ok, ok)
			if tt.expected != "" {
				require.Equal(t, tt.expected, actual)
			}
		})
	}
}
