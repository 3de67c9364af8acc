// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm cleans control codes and special Unicode characters from
// paper titles and abstracts before they enter the corpus index or a prompt.
// Implements: prd001-corpus (R2.1-R2.4).
package textnorm

import "strings"

// replacer maps Unicode artifacts commonly found in scraped abstracts to
// their ASCII equivalents. Newlines, carriage returns, and tabs become
// spaces so normalized text is always single-line.
var replacer = strings.NewReplacer(
	"\x00", "",
	"\n", " ",
	"\r", " ",
	"\t", " ",
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"…", "...", // horizontal ellipsis
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"‚", "'", // single low-9 quotation mark
	"‛", "'", // single high-reversed-9 quotation mark
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"„", `"`, // double low-9 quotation mark
	"‟", `"`, // double high-reversed-9 quotation mark
	" ", " ", // non-breaking space
	" ", " ", // en space
	" ", " ", // em space
	" ", " ", // three-per-em space
	" ", " ", // four-per-em space
	" ", " ", // six-per-em space
	" ", " ", // figure space
	" ", " ", // punctuation space
	" ", " ", // thin space
	" ", " ", // hair space
	" ", " ", // narrow no-break space
	" ", " ", // medium mathematical space
	"©", "(c)", // copyright
	"®", "(R)", // registered trademark
	"™", "(TM)", // trademark
)

// Normalize returns text with control codes and Unicode punctuation
// artifacts mapped to ASCII, consecutive spaces collapsed, and surrounding
// whitespace trimmed. It is pure and idempotent, and returns empty input
// unchanged.
func Normalize(text string) string {
	if text == "" {
		return text
	}

	text = replacer.Replace(text)

	// Drop any remaining control characters below U+0020.
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 32 {
			b.WriteRune(r)
		}
	}
	text = b.String()

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	return strings.TrimSpace(text)
}

// NormalizePair normalizes a title and abstract together.
func NormalizePair(title, abstract string) (string, string) {
	return Normalize(title), Normalize(abstract)
}
