// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package titlematch reconciles model-generated paper titles against the
// canonical corpus titles. Generated titles rarely match stored titles
// byte-for-byte, so every lookup goes through token-set Jaccard similarity.
// Implements: prd004-screening (R3.1-R3.4).
package titlematch

import (
	"fmt"
	"io"
	"strings"
)

const (
	// LowConfidence is the similarity below which a match is reported as
	// likely wrong. The resolver still returns its best guess.
	LowConfidence = 0.3

	// ContainmentThreshold is the default similarity above which an element
	// counts as present in a list for approximate membership checks.
	ContainmentThreshold = 0.7
)

// Similarity computes the token-set Jaccard similarity of two strings:
// the word sets are case-folded and whitespace-tokenized, and the result
// is |intersection| / |union|, in [0, 1].
func Similarity(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 0
	}

	union := len(wordsA)
	intersection := 0
	for w := range wordsB {
		if _, ok := wordsA[w]; ok {
			intersection++
		} else {
			union++
		}
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// Resolve returns the canonical title most similar to candidate, together
// with the similarity score. Ties break toward the first maximum in
// enumeration order, so the result is deterministic for a fixed canonical
// ordering. An empty canonical set is a caller error.
func Resolve(candidate string, canonical []string) (string, float64, error) {
	if len(canonical) == 0 {
		return "", 0, fmt.Errorf("resolving title %q: canonical title set is empty", candidate)
	}

	best := canonical[0]
	bestScore := Similarity(candidate, canonical[0])
	for _, title := range canonical[1:] {
		if score := Similarity(candidate, title); score > bestScore {
			best = title
			bestScore = score
		}
	}
	return best, bestScore, nil
}

// ResolveGenerated cleans a model-generated title (stray quotes and
// surrounding whitespace) and resolves it against the canonical set,
// logging a warning to w when the best match is below LowConfidence.
// There is no no-match outcome: downstream code always needs a canonical
// identity, even a low-confidence one.
func ResolveGenerated(w io.Writer, generated string, canonical []string) (string, error) {
	cleaned := TrimGenerated(generated)
	matched, score, err := Resolve(cleaned, canonical)
	if err != nil {
		return "", err
	}
	if score < LowConfidence && w != nil {
		fmt.Fprintf(w, "warning: low-confidence title match (%.2f): %q -> %q\n", score, cleaned, matched)
	}
	return matched, nil
}

// ContainsSimilar reports whether any element of list has similarity above
// threshold with element. Used where exact membership would be too strict.
func ContainsSimilar(list []string, element string, threshold float64) bool {
	element = TrimGenerated(element)
	for _, cur := range list {
		if Similarity(element, TrimGenerated(cur)) > threshold {
			return true
		}
	}
	return false
}

// TrimGenerated strips the whitespace and quote wrapping models tend to
// put around titles.
func TrimGenerated(title string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
}
