// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screening

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/hypothesis-engine/internal/annotation"
	"github.com/pdiddy/hypothesis-engine/internal/corpus"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// fakeGenerator records calls and replies from a caller-supplied function.
type fakeGenerator struct {
	calls        int
	prompts      []string
	models       []string
	temperatures []float64
	reply        func(prompt string) ([]types.Selection, error)
}

func (f *fakeGenerator) GenerateSelections(_ context.Context, prompt, model string, temperature float64) ([]types.Selection, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.models = append(f.models, model)
	f.temperatures = append(f.temperatures, temperature)
	if f.reply == nil {
		return nil, errors.New("no reply configured")
	}
	return f.reply(prompt)
}

// benchTitles are distinct enough that fuzzy matching never confuses them.
var benchTitles = []string{
	"Self-healing polymer electrolytes for lithium batteries",
	"Covalent organic frameworks as photocatalysts",
	"Grain boundary engineering in perovskite solar cells",
	"Machine learning interatomic potentials for alloy design",
	"Ionic liquid gating of two-dimensional materials",
	"Metal-organic framework membranes for gas separation",
	"Strain tuning of magnetic anisotropy in thin films",
	"Electrocatalytic nitrogen reduction on single atoms",
	"Phonon transport in layered thermoelectric compounds",
	"Additive manufacturing of high-entropy alloys",
	"Defect passivation strategies in quantum dot emitters",
	"Solid-state sintering of garnet electrolytes",
}

func testCorpus(t *testing.T, n int) *corpus.Corpus {
	t.Helper()
	require.LessOrEqual(t, n, len(benchTitles))
	c := &corpus.Corpus{Abstracts: make(map[string]string)}
	for i := 0; i < n; i++ {
		title := benchTitles[i]
		abstract := fmt.Sprintf("Abstract %d discusses the approach in detail.", i)
		c.Papers = append(c.Papers, types.Paper{Title: title, Abstract: abstract})
		c.Abstracts[title] = abstract
	}
	return c
}

func testConfig(window, keep, rounds int) types.ScreeningConfig {
	cfg := types.ScreeningConfig{
		WindowSize: window,
		KeepSize:   keep,
		Rounds:     rounds,
		QuestionID: -1,
	}
	cfg.Provider = "openai"
	cfg.Model = "gpt-4o"
	return cfg
}

func TestWindows(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want [][2]int
	}{
		{"exact multiple", 24, 12, [][2]int{{0, 12}, {12, 24}}},
		{"remainder window", 25, 12, [][2]int{{0, 12}, {12, 24}, {24, 25}}},
		{"single short window", 5, 12, [][2]int{{0, 5}}},
		{"empty pool", 0, 12, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, windows(tt.n, tt.size))
		})
	}
}

func TestNewValidation(t *testing.T) {
	gen := &fakeGenerator{}
	c := testCorpus(t, 12)

	tests := []struct {
		name    string
		cfg     types.ScreeningConfig
		gen     Generator
		corpus  *corpus.Corpus
		wantErr string
	}{
		{"nil generator", testConfig(12, 3, 1), nil, c, "generator is nil"},
		{"nil corpus", testConfig(12, 3, 1), gen, nil, "corpus is empty"},
		{"window below minimum", testConfig(9, 3, 1), gen, c, "below minimum 10"},
		{"zero keep size", testConfig(12, 0, 1), gen, c, "keep size"},
		{"zero rounds", testConfig(12, 3, 0), gen, c, "rounds"},
		{"too many rounds", testConfig(12, 3, 5), gen, c, "rounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, tt.gen, tt.corpus, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	e, err := New(testConfig(12, 3, 2), gen, c, nil)
	require.NoError(t, err)
	assert.NotNil(t, e.log)
}

func TestNewWarnsOnNonStandardKeepSize(t *testing.T) {
	gen := &fakeGenerator{}
	c := testCorpus(t, 12)

	var log bytes.Buffer
	_, err := New(testConfig(12, 4, 1), gen, c, &log)
	require.NoError(t, err)
	assert.Contains(t, log.String(), "warning: keep size 4 disagrees with the screening prompts")

	log.Reset()
	_, err = New(testConfig(12, 3, 1), gen, c, &log)
	require.NoError(t, err)
	assert.Empty(t, log.String(), "the standard keep size warns about nothing")
}

func TestScreenRoundPassthrough(t *testing.T) {
	gen := &fakeGenerator{}
	c := testCorpus(t, 3)
	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	round, next, err := e.ScreenRound(context.Background(), "q", "s", c.Papers)
	require.NoError(t, err)

	assert.Zero(t, gen.calls, "a window at or below keep size must not call the model")
	require.Len(t, round, 1)
	require.Len(t, round[0], 3)
	for i, s := range round[0] {
		assert.Equal(t, c.Papers[i].Title, s.Title)
		assert.Equal(t, PassthroughReason, s.Reason)
	}
	assert.Equal(t, c.Papers, next, "passthrough selections enter the next pool")
}

func TestScreenRoundPromptAssembly(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: benchTitles[0], Reason: "direct mechanism overlap"},
				{Title: benchTitles[4], Reason: "shared tuning strategy"},
				{Title: benchTitles[7], Reason: "analogous active site"},
			}, nil
		},
	}
	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	question := "How can dendrite growth be suppressed?"
	survey := "Prior work used ceramic coatings."
	round, next, err := e.ScreenRound(context.Background(), question, survey, c.Papers)
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	p := gen.prompts[0]
	assert.Contains(t, p, question)
	assert.Contains(t, p, survey)
	for i, paper := range c.Papers {
		assert.Contains(t, p, fmt.Sprintf("inspiration candidate %d. Title: %s", i, paper.Title))
		assert.Contains(t, p, paper.Abstract)
	}
	assert.Equal(t, "gpt-4o", gen.models[0])
	assert.Zero(t, gen.temperatures[0], "screening runs at temperature 0")

	require.Len(t, round, 1)
	require.Len(t, round[0], 3)
	require.Len(t, next, 3)
	assert.Equal(t, c.Abstracts[benchTitles[4]], next[1].Abstract, "next pool carries corpus abstracts")
}

func TestScreenRoundReconcilesMangledTitles(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: `"self-healing POLYMER electrolytes for lithium batteries"`, Reason: "r1"},
				{Title: "Grain boundary engineering in perovskite cells", Reason: "r2"},
				{Title: benchTitles[9], Reason: "r3"},
			}, nil
		},
	}
	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	round, _, err := e.ScreenRound(context.Background(), "q", "s", c.Papers)
	require.NoError(t, err)
	require.Len(t, round[0], 3)
	assert.Equal(t, benchTitles[0], round[0][0].Title)
	assert.Equal(t, benchTitles[2], round[0][1].Title)
	assert.Equal(t, benchTitles[9], round[0][2].Title)
	assert.Equal(t, "r2", round[0][1].Reason)
}

func TestScreenRoundGatewayFailureAborts(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	_, _, err = e.ScreenRound(context.Background(), "q", "s", c.Papers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unavailable")
	assert.Contains(t, err.Error(), "[0, 12)")
}

func TestScreenMultiRoundNarrowing(t *testing.T) {
	// 12 candidates, window 10: round one screens [0, 10) and passes
	// [10, 12) through, leaving 5 candidates. 5 exceeds the keep size, so
	// round two makes one more model call.
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(prompt string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: benchTitles[1], Reason: "a"},
				{Title: benchTitles[3], Reason: "b"},
				{Title: benchTitles[5], Reason: "c"},
			}, nil
		},
	}
	e, err := New(testConfig(10, 3, 2), gen, c, io.Discard)
	require.NoError(t, err)

	history, err := e.Screen(context.Background(), "q", "s")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, gen.calls)

	// Round one: screened window of 10 plus passthrough window of 2.
	require.Len(t, history[0], 2)
	assert.Len(t, history[0][0], 3)
	assert.Len(t, history[0][1], 2)
	assert.Equal(t, PassthroughReason, history[0][1][0].Reason)

	// Round two pool is the 5 round-one selections, a single window.
	require.Len(t, history[1], 1)
	assert.Len(t, history[1][0], 3)
}

func TestEvaluate(t *testing.T) {
	canonical := benchTitles

	round := types.RoundResult{
		{
			{Title: benchTitles[0], Reason: "a"},
			{Title: benchTitles[5], Reason: "b"},
			{Title: benchTitles[7], Reason: "c"},
		},
	}

	t.Run("spec scenario", func(t *testing.T) {
		// Ground truth: one title hit in first position, one hit later in
		// the window. Top-1 catches only the first, top-3 catches both.
		ratio, err := Evaluate(io.Discard, round, []string{benchTitles[0], benchTitles[7]}, canonical)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, ratio.Top1, 1e-9)
		assert.InDelta(t, 1.0, ratio.Top3, 1e-9)
	})

	t.Run("no hits", func(t *testing.T) {
		ratio, err := Evaluate(io.Discard, round, []string{benchTitles[2]}, canonical)
		require.NoError(t, err)
		assert.Zero(t, ratio.Top1)
		assert.Zero(t, ratio.Top3)
	})

	t.Run("cosmetic title differences still count", func(t *testing.T) {
		truth := []string{"Self-Healing Polymer Electrolytes for Lithium Batteries"}
		ratio, err := Evaluate(io.Discard, round, truth, canonical)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, ratio.Top1, 1e-9)
		assert.InDelta(t, 1.0, ratio.Top3, 1e-9)
	})

	t.Run("top1 never exceeds top3", func(t *testing.T) {
		truth := []string{benchTitles[0], benchTitles[5], benchTitles[2]}
		ratio, err := Evaluate(io.Discard, round, truth, canonical)
		require.NoError(t, err)
		assert.LessOrEqual(t, ratio.Top1, ratio.Top3)
	})

	t.Run("empty ground truth is an error", func(t *testing.T) {
		_, err := Evaluate(io.Discard, round, nil, canonical)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no ground-truth inspirations")
	})
}

func testAnnotation(questions []string, inspirations map[string][]string) *annotation.Annotation {
	a := &annotation.Annotation{
		Questions:     questions,
		Inspirations:  inspirations,
		Surveys:       make(map[string]string),
		QuestionIndex: make(map[string]int),
		IndexQuestion: make(map[int]string),
	}
	for i, q := range questions {
		a.Surveys[q] = "survey for " + q
		a.QuestionIndex[q] = i
		a.IndexQuestion[i] = q
	}
	return a
}

func TestRun(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: benchTitles[0], Reason: "a"},
				{Title: benchTitles[5], Reason: "b"},
				{Title: benchTitles[7], Reason: "c"},
			}, nil
		},
	}
	ann := testAnnotation(
		[]string{"question one", "question two"},
		map[string][]string{
			"question one": {benchTitles[0], benchTitles[7]},
			"question two": {benchTitles[2]},
		},
	)

	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	out, err := Run(context.Background(), e, ann)
	require.NoError(t, err)
	assert.Equal(t, []string{"question one", "question two"}, out.Questions)
	assert.Equal(t, 2, gen.calls)

	require.Len(t, out.Ratios["question one"], 1)
	assert.InDelta(t, 0.5, out.Ratios["question one"][0].Top1, 1e-9)
	assert.InDelta(t, 1.0, out.Ratios["question one"][0].Top3, 1e-9)
	assert.Zero(t, out.Ratios["question two"][0].Top3)

	require.Len(t, out.Histories["question one"], 1)

	// Each question's prompt embeds its own survey.
	assert.Contains(t, gen.prompts[0], "survey for question one")
	assert.Contains(t, gen.prompts[1], "survey for question two")
}

func TestRunQuestionFilter(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: benchTitles[2], Reason: "a"},
				{Title: benchTitles[3], Reason: "b"},
				{Title: benchTitles[4], Reason: "c"},
			}, nil
		},
	}
	ann := testAnnotation(
		[]string{"question one", "question two"},
		map[string][]string{
			"question one": {benchTitles[0]},
			"question two": {benchTitles[2]},
		},
	)

	cfg := testConfig(12, 3, 1)
	cfg.QuestionID = 1
	e, err := New(cfg, gen, c, io.Discard)
	require.NoError(t, err)

	out, err := Run(context.Background(), e, ann)
	require.NoError(t, err)
	assert.Equal(t, []string{"question two"}, out.Questions)
	assert.Equal(t, 1, gen.calls)

	cfg.QuestionID = 9
	e, err = New(cfg, gen, c, io.Discard)
	require.NoError(t, err)
	_, err = Run(context.Background(), e, ann)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no question matched id 9")
}

func TestRunAbortsOnQuestionFailure(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	ann := testAnnotation([]string{"q1"}, map[string][]string{"q1": {benchTitles[0]}})

	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)
	_, err = Run(context.Background(), e, ann)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestRunBackground(t *testing.T) {
	c := testCorpus(t, 12)
	gen := &fakeGenerator{
		reply: func(string) ([]types.Selection, error) {
			return []types.Selection{
				{Title: benchTitles[1], Reason: "a"},
				{Title: benchTitles[2], Reason: "b"},
				{Title: benchTitles[3], Reason: "c"},
			}, nil
		},
	}
	e, err := New(testConfig(12, 3, 1), gen, c, io.Discard)
	require.NoError(t, err)

	bg := types.ResearchBackground{Question: "custom question"}
	out, err := RunBackground(context.Background(), e, bg)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom question"}, out.Questions)
	assert.Empty(t, out.Ratios, "custom backgrounds have no ground truth to score")
	require.Len(t, out.Histories["custom question"], 1)
	assert.Contains(t, gen.prompts[0], annotation.SurveyPlaceholder,
		"missing survey falls back to the placeholder")
}

func TestRunOutputJSONShape(t *testing.T) {
	out := &RunOutput{
		Questions: []string{"q"},
		Histories: map[string]types.ScreeningHistory{
			"q": {
				types.RoundResult{
					{{Title: "t1", Reason: "r1"}},
					{{Title: "t2", Reason: "r2"}},
				},
			},
		},
		Ratios: map[string][]types.HitRatio{
			"q": {{Top1: 0.5, Top3: 1.0}},
		},
	}

	raw, err := out.MarshalJSON()
	require.NoError(t, err)

	want := `[{"q":[[["t1","r1"],["t2","r2"]]]},{"q":[[0.5,1]]}]`
	assert.JSONEq(t, want, string(raw))
}

func TestWriteReadResultsRoundTrip(t *testing.T) {
	out := &RunOutput{
		Questions: []string{"q"},
		Histories: map[string]types.ScreeningHistory{
			"q": {
				types.RoundResult{{
					{Title: "t1", Reason: "r1"},
					{Title: "t2", Reason: "r2"},
				}},
			},
		},
		Ratios: map[string][]types.HitRatio{
			"q": {{Top1: 0.0, Top3: 0.5}},
		},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteResults(path, out))

	err := WriteResults(path, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	got, err := ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, out.Ratios, got.Ratios)
	require.Len(t, got.Histories["q"], 1)
	assert.Equal(t,
		out.Histories["q"][0].Flatten(),
		got.Histories["q"][0].Flatten(),
		"window boundaries are not preserved, flattened selections are")
}

func TestWriteManifest(t *testing.T) {
	cfg := testConfig(12, 3, 2)
	out := &RunOutput{Questions: []string{"q1", "q2"}}

	var buf bytes.Buffer
	require.NoError(t, WriteManifest(&buf, cfg, out, 120))

	text := buf.String()
	for _, line := range []string{
		"provider: openai",
		"model: gpt-4o",
		"windowSize: 12",
		"keepSize: 3",
		"rounds: 2",
		"questionId: -1",
		"questions: 2",
		"corpusSize: 120",
	} {
		assert.True(t, strings.Contains(text, line), "manifest missing %q in:\n%s", line, text)
	}
}
