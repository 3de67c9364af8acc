// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain ascii untouched", "A Study of Zeolites", "A Study of Zeolites"},
		{"newlines become spaces", "Hello\nWorld", "Hello World"},
		{"tabs and carriage returns", "a\tb\rc", "a b c"},
		{"nul bytes stripped", "a\x00b", "ab"},
		{"en dash", "electrode–electrolyte", "electrode-electrolyte"},
		{"em dash", "It's—a test", "It's-a test"},
		{"ellipsis", "and so on…", "and so on..."},
		{"curly single quotes", "‘quoted’", "'quoted'"},
		{"curly double quotes", "“quoted”", `"quoted"`},
		{"non-breaking space", "a b", "a b"},
		{"thin space", "10 9 cycles", "10 9 cycles"},
		{"copyright", "© 2024 Elsevier", "(c) 2024 Elsevier"},
		{"registered and trademark", "Nafion® Teflon™", "Nafion(R) Teflon(TM)"},
		{"control characters stripped", "a\x01\x02b", "ab"},
		{"runs of spaces collapse", "a    b  c", "a b c"},
		{"leading and trailing trimmed", "  padded  ", "padded"},
		{"newline runs collapse", "a\n\n\nb", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeRemovesAllWhitespaceArtifacts(t *testing.T) {
	inputs := []string{
		"line one\nline two\r\nline three",
		"tab\there\tand\tthere",
		"mixed    spaces\n\twith controls\x1f",
	}
	for _, in := range inputs {
		got := Normalize(in)
		assert.NotContains(t, got, "\n")
		assert.NotContains(t, got, "\t")
		assert.NotContains(t, got, "\r")
		assert.NotContains(t, got, "  ", "no run of 2+ spaces in %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain title",
		"messy\n\ttitle–with artifacts…",
		"  “quoted”  and ‘more’  ",
		strings.Repeat("a\n", 50),
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizePair(t *testing.T) {
	title, abstract := NormalizePair("A\nTitle", "An\tAbstract—here")
	assert.Equal(t, "A Title", title)
	assert.Equal(t, "An Abstract-here", abstract)
}
