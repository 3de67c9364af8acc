// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotation reads the benchmark annotation workbook: one row per
// background research question with its survey, up to three ground-truth
// inspiration titles, the ground-truth hypothesis, the reasoning process,
// and a note. Survey and question each have a "strict" variant that falls
// back to the normal variant when the cell is blank.
// Implements: prd002-annotation (R1.1-R1.5).
package annotation

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/hypothesis-engine/internal/textnorm"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// SheetName is the workbook sheet holding the annotations.
const SheetName = "Overall"

// SurveyPlaceholder replaces the survey text when surveys are disabled.
const SurveyPlaceholder = "Survey not provided. Please overlook the survey."

// Fixed column positions in the Overall sheet (0-based).
const (
	colSurvey         = 4
	colSurveyStrict   = 5
	colQuestion       = 6
	colQuestionStrict = 7
	colInsp1          = 9
	colInsp2          = 11
	colInsp3          = 13
	colHypothesis     = 15
	colReasoning      = 17
	colNote           = 18
)

// minStrictLen guards against strict cells holding "NA" variants instead
// of real text.
const minStrictLen = 10

// Annotation exposes the per-question lookup tables built from the workbook.
type Annotation struct {
	// Questions lists the background questions in row order.
	Questions []string

	// Inspirations maps question to its ground-truth inspiration titles (1-3).
	Inspirations map[string][]string

	// Surveys maps question to its background survey text (or the
	// placeholder when surveys are disabled).
	Surveys map[string]string

	// Hypotheses maps question to the ground-truth hypothesis.
	Hypotheses map[string]string

	// Reasoning maps question to the annotated reasoning process.
	Reasoning map[string]string

	// Notes maps question to the annotator's note.
	Notes map[string]string

	// QuestionIndex and IndexQuestion map between question text and row index.
	QuestionIndex map[string]int
	IndexQuestion map[int]string
}

// Load reads the workbook at cfg.Path and builds the lookup tables.
func Load(cfg types.AnnotationConfig) (*Annotation, error) {
	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening annotation workbook %s: %w", cfg.Path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", SheetName, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("annotation workbook %s: sheet %s has no data rows", cfg.Path, SheetName)
	}

	a := &Annotation{
		Inspirations:  make(map[string][]string),
		Surveys:       make(map[string]string),
		Hypotheses:    make(map[string]string),
		Reasoning:     make(map[string]string),
		Notes:         make(map[string]string),
		QuestionIndex: make(map[string]int),
		IndexQuestion: make(map[int]string),
	}

	for i, row := range rows[1:] {
		question := cell(row, colQuestion)
		survey := cell(row, colSurvey)
		if cfg.UseStrict {
			if question, err = strictOrFallback(cell(row, colQuestionStrict), question); err != nil {
				return nil, fmt.Errorf("row %d question: %w", i+2, err)
			}
			if survey, err = strictOrFallback(cell(row, colSurveyStrict), survey); err != nil {
				return nil, fmt.Errorf("row %d survey: %w", i+2, err)
			}
		}
		if question == "" {
			return nil, fmt.Errorf("annotation row %d: background question is empty", i+2)
		}

		var insps []string
		for _, col := range []int{colInsp1, colInsp2, colInsp3} {
			if title := cell(row, col); title != "" {
				insps = append(insps, textnorm.Normalize(title))
			}
		}

		a.Questions = append(a.Questions, question)
		a.Inspirations[question] = insps
		if cfg.UseSurvey {
			if survey == "" {
				return nil, fmt.Errorf("annotation row %d: background survey is empty", i+2)
			}
			a.Surveys[question] = survey
		} else {
			a.Surveys[question] = SurveyPlaceholder
		}
		a.Hypotheses[question] = cell(row, colHypothesis)
		a.Reasoning[question] = cell(row, colReasoning)
		a.Notes[question] = cell(row, colNote)
		a.QuestionIndex[question] = i
		a.IndexQuestion[i] = question
	}

	return a, nil
}

// cell returns the trimmed value at col, or "" when the row is short.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// strictOrFallback returns the strict variant when present, the normal
// variant otherwise. A non-blank strict cell shorter than minStrictLen is
// assumed to be an "NA" marker that slipped through annotation.
func strictOrFallback(strict, normal string) (string, error) {
	if strict == "" {
		return normal, nil
	}
	if len(strict) <= minStrictLen {
		return "", fmt.Errorf("strict variant %q too short to be real text", strict)
	}
	return strict, nil
}
