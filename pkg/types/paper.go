// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the hypothesis-engine pipeline.
// Implements: prd001-corpus (Paper);
//
//	prd004-screening (Selection, RoundResult, ScreeningHistory);
//	prd005-evaluation (HitRatio).
package types

// Paper is one candidate inspiration source: a title and its abstract.
// Identity is the title; the corpus loader deduplicates by title with
// first-seen-wins before papers enter a screening run.
type Paper struct {
	// Title is the canonical paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`
}

// Selection is one paper the model picked from a screening window,
// together with its stated justification. After reconciliation the Title
// always refers to a canonical corpus entry.
type Selection struct {
	// Title is the selected paper title, reconciled to canonical form.
	Title string `json:"title" yaml:"title"`

	// Reason is the model's justification for selecting this paper.
	Reason string `json:"reason" yaml:"reason"`
}

// RoundResult holds one screening round's output: the per-window selection
// lists in window order. Flattening all windows yields the candidate pool
// for the next round.
type RoundResult [][]Selection

// Flatten returns all selections of the round in window order.
func (r RoundResult) Flatten() []Selection {
	var flat []Selection
	for _, window := range r {
		flat = append(flat, window...)
	}
	return flat
}

// ScreeningHistory accumulates the RoundResults for one background
// question, one entry per executed round. Append-only; a completed round
// is never mutated.
type ScreeningHistory []RoundResult

// HitRatio scores one screening round against the ground-truth inspiration
// titles of a background question. Both values are in [0, 1], and
// Top1 <= Top3 always holds: a hit counted in top-1 also counts in top-3.
type HitRatio struct {
	// Top1 is the fraction of ground-truth titles appearing as the first
	// selection of some window.
	Top1 float64 `json:"top1" yaml:"top1"`

	// Top3 is the fraction of ground-truth titles appearing anywhere among
	// the round's selections.
	Top3 float64 `json:"top3" yaml:"top3"`
}

// ResearchBackground pairs a background research question with its
// background survey text. Used when screening a custom question outside
// the annotated benchmark.
type ResearchBackground struct {
	// Question is the background research question under investigation.
	Question string `json:"question" yaml:"question"`

	// Survey introduces the previous methods for the question.
	Survey string `json:"survey" yaml:"survey"`
}
