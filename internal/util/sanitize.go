package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanLabel strips control and invisible characters from a user-supplied name or title
// and trims surrounding whitespace. ok is false when nothing printable remains or the
// result is longer than maxRunes.
func CleanLabel(raw string, maxRunes int) (string, bool) {
	builder := strings.Builder{}
	builder.Grow(len(raw))

	for _, char := range raw {
		if char == utf8.RuneError || isInvisibleUnicode(char) {
			continue
		}
		if unicode.IsControl(char) {
			// Tabs and line breaks fold into plain spaces.
			if unicode.IsSpace(char) {
				builder.WriteRune(' ')
			}
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(builder.String())
	if cleaned == "" {
		return "", false
	}
	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		return cleaned, false
	}
	return cleaned, true
}

// isInvisibleUnicode returns true for zero-width, formatting, and other
// invisible Unicode characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
