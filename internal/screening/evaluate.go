// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screening

import (
	"fmt"
	"io"

	"github.com/pdiddy/hypothesis-engine/internal/titlematch"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Evaluate scores one round of selections against the ground-truth
// inspiration titles for a question. The top-1 pool is the first
// selection of each window; the top-3 pool is every selection. A ground
// truth title counts as hit when the pool contains a sufficiently
// similar title. Both ratios are over the ground-truth count, so
// top1 <= top3 and both lie in [0, 1].
//
// Ground-truth titles come from the annotation workbook and may differ
// cosmetically from the corpus titles, so they are reconciled against
// the canonical set before comparison. Selection titles are already
// canonical.
func Evaluate(log io.Writer, round types.RoundResult, groundTruth, canonical []string) (types.HitRatio, error) {
	if log == nil {
		log = io.Discard
	}
	if len(groundTruth) == 0 {
		return types.HitRatio{}, fmt.Errorf("evaluate: question has no ground-truth inspirations")
	}

	var top1, top3 []string
	for _, window := range round {
		for i, s := range window {
			if i == 0 {
				top1 = append(top1, s.Title)
			}
			top3 = append(top3, s.Title)
		}
	}

	var hits1, hits3 int
	for _, truth := range groundTruth {
		matched, err := titlematch.ResolveGenerated(log, truth, canonical)
		if err != nil {
			return types.HitRatio{}, fmt.Errorf("evaluate: %w", err)
		}
		if titlematch.ContainsSimilar(top1, matched, titlematch.ContainmentThreshold) {
			hits1++
		}
		if titlematch.ContainsSimilar(top3, matched, titlematch.ContainmentThreshold) {
			hits3++
		}
	}

	n := float64(len(groundTruth))
	return types.HitRatio{
		Top1: float64(hits1) / n,
		Top3: float64(hits3) / n,
	}, nil
}
