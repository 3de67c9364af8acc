// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hypothesis-engine/internal/annotation"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// RunOutput collects a whole run: per-question screening histories and,
// when ground truth is available, per-question per-round hit ratios.
type RunOutput struct {
	// Histories maps question to its per-round screening results.
	Histories map[string]types.ScreeningHistory

	// Ratios maps question to one HitRatio per round. Empty when the run
	// used a custom research background (no ground truth to score against).
	Ratios map[string][]types.HitRatio

	// Questions lists the screened questions in run order.
	Questions []string
}

// Run screens every annotated question (or just the one selected by
// cfg.QuestionID when it is not -1) and scores each round against the
// question's ground-truth inspirations. A failed window aborts its
// question and the run; partial results are not returned.
func Run(ctx context.Context, e *Engine, ann *annotation.Annotation) (*RunOutput, error) {
	out := &RunOutput{
		Histories: make(map[string]types.ScreeningHistory),
		Ratios:    make(map[string][]types.HitRatio),
	}
	canonical := e.corpus.Titles()

	for idx, question := range ann.Questions {
		if e.cfg.QuestionID >= 0 && e.cfg.QuestionID != idx {
			continue
		}
		fmt.Fprintf(e.log, "screening question %d of %d\n", idx+1, len(ann.Questions))

		history, err := e.Screen(ctx, question, ann.Surveys[question])
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", idx, err)
		}

		ratios := make([]types.HitRatio, 0, len(history))
		for round, result := range history {
			ratio, err := Evaluate(e.log, result, ann.Inspirations[question], canonical)
			if err != nil {
				return nil, fmt.Errorf("question %d round %d: %w", idx, round, err)
			}
			fmt.Fprintf(e.log, "question %d round %d: top1 %.2f, top3 %.2f\n", idx, round, ratio.Top1, ratio.Top3)
			ratios = append(ratios, ratio)
		}

		out.Questions = append(out.Questions, question)
		out.Histories[question] = history
		out.Ratios[question] = ratios
	}

	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("no question matched id %d (annotation has %d)", e.cfg.QuestionID, len(ann.Questions))
	}
	return out, nil
}

// RunBackground screens a single caller-supplied research background.
// There is no ground truth for a custom background, so no ratios are
// computed.
func RunBackground(ctx context.Context, e *Engine, bg types.ResearchBackground) (*RunOutput, error) {
	survey := bg.Survey
	if survey == "" {
		survey = annotation.SurveyPlaceholder
	}

	history, err := e.Screen(ctx, bg.Question, survey)
	if err != nil {
		return nil, err
	}
	return &RunOutput{
		Histories: map[string]types.ScreeningHistory{bg.Question: history},
		Ratios:    map[string][]types.HitRatio{},
		Questions: []string{bg.Question},
	}, nil
}

// MarshalJSON encodes the run output as a two-element array: selections
// organized by question, then hit ratios by question. Selections flatten
// to [title, reason] pairs per round; ratios to [top1, top3] pairs.
func (o *RunOutput) MarshalJSON() ([]byte, error) {
	organized := make(map[string][][][2]string, len(o.Histories))
	for question, history := range o.Histories {
		rounds := make([][][2]string, 0, len(history))
		for _, result := range history {
			flat := make([][2]string, 0)
			for _, s := range result.Flatten() {
				flat = append(flat, [2]string{s.Title, s.Reason})
			}
			rounds = append(rounds, flat)
		}
		organized[question] = rounds
	}

	ratios := make(map[string][][2]float64, len(o.Ratios))
	for question, rs := range o.Ratios {
		pairs := make([][2]float64, 0, len(rs))
		for _, r := range rs {
			pairs = append(pairs, [2]float64{r.Top1, r.Top3})
		}
		ratios[question] = pairs
	}

	return json.Marshal([2]any{organized, ratios})
}

// UnmarshalJSON decodes the two-element run output array written by
// MarshalJSON. Question order is not stored in the file, so Questions
// is left empty.
func (o *RunOutput) UnmarshalJSON(data []byte) error {
	var organized map[string][][][2]string
	var ratios map[string][][2]float64
	raw := [2]any{&organized, &ratios}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Histories = make(map[string]types.ScreeningHistory, len(organized))
	for question, rounds := range organized {
		history := make(types.ScreeningHistory, 0, len(rounds))
		for _, flat := range rounds {
			selections := make([]types.Selection, 0, len(flat))
			for _, pair := range flat {
				selections = append(selections, types.Selection{Title: pair[0], Reason: pair[1]})
			}
			// Window boundaries are not stored in the file; each round
			// round-trips as a single flattened window.
			history = append(history, types.RoundResult{selections})
		}
		o.Histories[question] = history
	}

	o.Ratios = make(map[string][]types.HitRatio, len(ratios))
	for question, pairs := range ratios {
		rs := make([]types.HitRatio, 0, len(pairs))
		for _, pair := range pairs {
			rs = append(rs, types.HitRatio{Top1: pair[0], Top3: pair[1]})
		}
		o.Ratios[question] = rs
	}
	return nil
}

// WriteResults writes the run output JSON to path, refusing to overwrite
// an existing file: reruns must not silently destroy results that cost
// real model calls to produce.
func WriteResults(path string, out *RunOutput) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("output file %s already exists, refusing to overwrite", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking output file %s: %w", path, err)
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	return nil
}

// ReadResults loads a run output JSON written by WriteResults.
func ReadResults(path string) (*RunOutput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results %s: %w", path, err)
	}
	var out RunOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding results %s: %w", path, err)
	}
	return &out, nil
}

// Manifest is the YAML sidecar written next to the results JSON: enough
// configuration echo to reproduce the run without the original command line.
type Manifest struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	WindowSize int    `yaml:"windowSize"`
	KeepSize   int    `yaml:"keepSize"`
	Rounds     int    `yaml:"rounds"`
	QuestionID int    `yaml:"questionId"`
	Questions  int    `yaml:"questions"`
	CorpusSize int    `yaml:"corpusSize"`
}

// WriteManifest writes the run manifest YAML to w.
func WriteManifest(w io.Writer, cfg types.ScreeningConfig, out *RunOutput, corpusSize int) error {
	m := Manifest{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		WindowSize: cfg.WindowSize,
		KeepSize:   cfg.KeepSize,
		Rounds:     cfg.Rounds,
		QuestionID: cfg.QuestionID,
		Questions:  len(out.Questions),
		CorpusSize: corpusSize,
	}
	raw, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encoding run manifest: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing run manifest: %w", err)
	}
	return nil
}
