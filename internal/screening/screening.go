// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package screening narrows an inspiration corpus down to the few papers
// most likely to combine with a background research question into a
// hypothesis. Each round partitions the candidate pool into fixed-size
// windows, asks the model to keep the best few per window, reconciles the
// returned titles against the corpus, and feeds the survivors to the next
// round.
// Implements: prd004-screening (R1-R4), prd005-evaluation (R1-R2).
package screening

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/hypothesis-engine/internal/corpus"
	"github.com/pdiddy/hypothesis-engine/internal/prompt"
	"github.com/pdiddy/hypothesis-engine/internal/titlematch"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// PassthroughReason marks selections from windows too small to screen.
const PassthroughReason = "Fewer candidates than the keep size, so kept without screening."

// Screening runs at temperature 0 to favor reproducible selection over
// diversity. Fixed policy, not a tunable.
const screeningTemperature = 0.0

// Generator is the slice of the generation gateway the engine needs.
// The real implementation is genai.Gateway; tests supply a mock.
type Generator interface {
	GenerateSelections(ctx context.Context, prompt, model string, temperature float64) ([]types.Selection, error)
}

// Engine screens candidate pools for one corpus. It owns no mutable
// state across calls; the same Engine serves every background question
// of a run sequentially.
type Engine struct {
	cfg    types.ScreeningConfig
	gen    Generator
	corpus *corpus.Corpus
	log    io.Writer
}

// New validates the screening configuration and builds an Engine.
func New(cfg types.ScreeningConfig, gen Generator, c *corpus.Corpus, log io.Writer) (*Engine, error) {
	if gen == nil {
		return nil, fmt.Errorf("screening engine: generator is nil")
	}
	if c == nil || c.Len() == 0 {
		return nil, fmt.Errorf("screening engine: corpus is empty")
	}
	if cfg.WindowSize < 10 {
		return nil, fmt.Errorf("screening engine: window size %d below minimum 10", cfg.WindowSize)
	}
	if cfg.KeepSize <= 0 {
		return nil, fmt.Errorf("screening engine: keep size must be positive, got %d", cfg.KeepSize)
	}
	if cfg.Rounds < 1 || cfg.Rounds > 4 {
		return nil, fmt.Errorf("screening engine: rounds must be between 1 and 4, got %d", cfg.Rounds)
	}
	if log == nil {
		log = io.Discard
	}
	if cfg.KeepSize != prompt.DefaultKeepSize {
		// The fragments literally ask for "three" candidates; other keep
		// sizes only change the passthrough cutoff.
		fmt.Fprintf(log, "warning: keep size %d disagrees with the screening prompts, which ask for %d candidates per window\n",
			cfg.KeepSize, prompt.DefaultKeepSize)
	}
	return &Engine{cfg: cfg, gen: gen, corpus: c, log: log}, nil
}

// windows partitions n candidates into contiguous [start, end) slices of
// at most size. The windows are non-overlapping and cover [0, n) exactly.
func windows(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// stage picks the screening prompt variant from configuration.
func (e *Engine) stage() prompt.Stage {
	if e.cfg.SimilarityOnly {
		return prompt.SimilarityScreening
	}
	return prompt.FirstRoundScreening
}

// ScreenRound performs one screening round over candidates and returns
// the per-window selections plus the next round's candidate pool. A
// window no larger than the keep size skips the model entirely: every
// candidate passes through with a fixed reason. A gateway failure aborts
// the round; there is no partial-round recovery.
func (e *Engine) ScreenRound(ctx context.Context, question, survey string, candidates []types.Paper) (types.RoundResult, []types.Paper, error) {
	fragments, err := prompt.Instruction(e.stage())
	if err != nil {
		return nil, nil, err
	}
	canonical := e.corpus.Titles()

	var round types.RoundResult
	var nextPool []types.Paper

	for _, w := range windows(len(candidates), e.cfg.WindowSize) {
		start, end := w[0], w[1]
		window := candidates[start:end]
		fmt.Fprintf(e.log, "screening window [%d, %d) of %d candidates\n", start, end, len(candidates))

		var selections []types.Selection
		if len(window) <= e.cfg.KeepSize {
			// Too small to meaningfully filter; keep everything without
			// spending a model call.
			for _, p := range window {
				selections = append(selections, types.Selection{Title: p.Title, Reason: PassthroughReason})
			}
		} else {
			raw, err := e.gen.GenerateSelections(ctx, e.windowPrompt(fragments, question, survey, window), e.cfg.Model, screeningTemperature)
			if err != nil {
				return nil, nil, fmt.Errorf("screening window [%d, %d): %w", start, end, err)
			}
			selections, err = e.reconcile(raw, canonical)
			if err != nil {
				return nil, nil, fmt.Errorf("screening window [%d, %d): %w", start, end, err)
			}
		}

		round = append(round, selections)
		for _, s := range selections {
			nextPool = append(nextPool, types.Paper{Title: s.Title, Abstract: e.corpus.Abstracts[s.Title]})
		}
	}
	return round, nextPool, nil
}

// windowPrompt assembles the screening prompt for one window: the four
// instruction fragments interleaved with the question, the survey, and an
// enumerated candidate list.
func (e *Engine) windowPrompt(fragments []string, question, survey string, window []types.Paper) string {
	var b strings.Builder
	b.WriteString(fragments[0])
	b.WriteString(question)
	b.WriteString(fragments[1])
	b.WriteString(survey)
	b.WriteString(fragments[2])
	for i, p := range window {
		b.WriteString(prompt.Candidate(i, p.Title, p.Abstract))
	}
	b.WriteString(fragments[3])
	return b.String()
}

// reconcile rewrites raw model selections with canonical corpus titles.
// Every selection always resolves to some canonical title; low-confidence
// matches are logged, not rejected.
func (e *Engine) reconcile(raw []types.Selection, canonical []string) ([]types.Selection, error) {
	out := make([]types.Selection, 0, len(raw))
	for _, s := range raw {
		matched, err := titlematch.ResolveGenerated(e.log, s.Title, canonical)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Selection{Title: matched, Reason: s.Reason})
	}
	return out, nil
}

// Screen runs the configured number of rounds for one background
// question, starting from the full corpus, and returns the per-round
// results. Round k screens round k-1's selections.
func (e *Engine) Screen(ctx context.Context, question, survey string) (types.ScreeningHistory, error) {
	pool := e.corpus.Papers
	var history types.ScreeningHistory

	for round := 0; round < e.cfg.Rounds; round++ {
		fmt.Fprintf(e.log, "screening round %d: %d candidates\n", round, len(pool))
		result, next, err := e.ScreenRound(ctx, question, survey, pool)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		history = append(history, result)
		pool = next
	}
	return history, nil
}
