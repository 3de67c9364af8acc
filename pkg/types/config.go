// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "hypothesis-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GenerationConfig holds shared settings for stages that call a Generative
// AI API. Per prd003-generation R2.1-R2.4.
type GenerationConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the API flavor: "openai", "azure", or "google".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o", "gemini-1.5-pro").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider's default endpoint. Required for Azure
	// (the resource endpoint), optional for OpenAI-compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ScreeningConfig holds settings for the inspiration screening stage.
// Per prd004-screening R1.1-R1.6.
type ScreeningConfig struct {
	GenerationConfig `yaml:",inline"`

	// WindowSize is the number of candidates presented to the model in one
	// screening call. Must be at least 10.
	WindowSize int `json:"window_size" yaml:"window_size"`

	// KeepSize is the number of candidates the model is asked to keep per
	// window. The shipped prompts assume 3.
	KeepSize int `json:"keep_size" yaml:"keep_size"`

	// Rounds is the number of screening rounds, between 1 and 4. Each round
	// screens the previous round's selections.
	Rounds int `json:"rounds" yaml:"rounds"`

	// QuestionID restricts the run to one annotated background question by
	// index; -1 screens every question.
	QuestionID int `json:"question_id" yaml:"question_id"`

	// CorpusPath is the inspiration corpus JSON file ([[title, abstract], ...]).
	CorpusPath string `json:"corpus_path" yaml:"corpus_path"`

	// AnnotationPath is the annotation workbook (xlsx) with background
	// questions, surveys, and ground-truth inspirations.
	AnnotationPath string `json:"annotation_path" yaml:"annotation_path"`

	// OutputPath is where the run results JSON is written.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Save controls whether results are written to OutputPath.
	Save bool `json:"save" yaml:"save"`

	// SimilarityOnly switches the screening prompt to select by semantic
	// similarity instead of inspiration potential.
	SimilarityOnly bool `json:"similarity_only" yaml:"similarity_only"`

	// UseSurvey controls whether the background survey text is embedded in
	// prompts. When false a fixed placeholder is used instead.
	UseSurvey bool `json:"use_survey" yaml:"use_survey"`

	// StrictBackground selects the strict variants of the survey and
	// question columns from the annotation workbook.
	StrictBackground bool `json:"strict_background" yaml:"strict_background"`
}

// AnnotationConfig holds settings for reading the annotation workbook.
// Per prd002-annotation R1.1.
type AnnotationConfig struct {
	// Path is the xlsx workbook location.
	Path string `json:"path" yaml:"path"`

	// UseStrict selects the strict survey/question variants.
	UseStrict bool `json:"use_strict" yaml:"use_strict"`

	// UseSurvey controls whether real survey text is exposed; when false
	// every question maps to a fixed placeholder survey.
	UseSurvey bool `json:"use_survey" yaml:"use_survey"`
}
