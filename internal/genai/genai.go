// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai wraps the generative model APIs behind a single gateway
// with input validation, bounded retry with exponential backoff, and two
// response modes: free text and schema-constrained selections.
// Implements: prd003-generation (R2.1-R2.6).
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Kind identifies the provider API flavor.
type Kind int

const (
	KindOpenAI Kind = iota
	KindAzure
	KindGoogle
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOpenAI:
		return "openai"
	case KindAzure:
		return "azure"
	case KindGoogle:
		return "google"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai":
		return KindOpenAI, nil
	case "azure":
		return KindAzure, nil
	case "google":
		return KindGoogle, nil
	}
	return 0, fmt.Errorf("unknown provider %q: supported providers are openai, azure, google", s)
}

// ErrInvalidInput marks caller errors detected before any network call.
var ErrInvalidInput = errors.New("invalid input")

// GenerationError reports that every retry attempt failed. It wraps the
// last underlying error.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Retry policy. Package-level vars so tests can avoid real sleeps
// (same pattern as overriding an HTTP retry base delay in tests).
var (
	// MaxAttempts is the total number of provider calls before giving up.
	MaxAttempts = 3

	// RetryInitialDelay is the sleep before the second attempt; it is
	// multiplied by RetryMultiplier per attempt and capped at RetryMaxDelay.
	RetryInitialDelay = 500 * time.Millisecond
	RetryMaxDelay     = 5 * time.Second
	RetryMultiplier   = 2.0
)

// retryDelay returns the backoff before retrying after attempt (0-indexed).
func retryDelay(attempt int) time.Duration {
	delay := RetryInitialDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * RetryMultiplier)
	}
	if delay > RetryMaxDelay {
		delay = RetryMaxDelay
	}
	return delay
}

// Per-model completion token caps. Lightweight models get a smaller cap.
const (
	tokenCapLightweight = 4096
	tokenCapDefault     = 8192
)

// maxCompletionTokens selects the token cap for a model.
func maxCompletionTokens(model string) int {
	if strings.Contains(strings.ToLower(model), "claude-3-haiku") {
		return tokenCapLightweight
	}
	return tokenCapDefault
}

// System prompts per response mode.
const (
	systemPromptFreeText   = "You are a helpful assistant."
	systemPromptStructured = "You are a helpful and knowledgeable scientist. Provide your response in the exact format requested."
)

// defaultUserAgent identifies the pipeline on outbound requests when the
// configuration does not set one.
const defaultUserAgent = "hypothesis-engine/0.1"

// Gateway issues generation requests against one configured provider.
// It holds no per-call state, so a single Gateway may serve an entire run.
type Gateway struct {
	kind      Kind
	apiKey    string
	baseURL   string
	userAgent string
	client    *http.Client
}

// New builds a Gateway from configuration. Azure needs a base URL (the
// resource endpoint); OpenAI and Google fall back to their public endpoints.
func New(cfg types.GenerationConfig) (*Gateway, error) {
	kind, err := ParseKind(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if kind == KindAzure && strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("provider azure requires a base URL (resource endpoint)")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Gateway{
		kind:      kind,
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Kind returns the provider kind the gateway was built for.
func (g *Gateway) Kind() Kind { return g.kind }

// validate enforces the gateway preconditions before any network call.
func validate(prompt, model string, temperature float64) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidInput)
	}
	if temperature < 0.0 || temperature > 2.0 {
		return fmt.Errorf("%w: temperature %g outside [0.0, 2.0]", ErrInvalidInput, temperature)
	}
	return nil
}

// Generate returns the model's free-text response to prompt. Any provider
// error, including an empty response, is retried with exponential backoff
// up to MaxAttempts before a GenerationError is returned.
func (g *Gateway) Generate(ctx context.Context, prompt, model string, temperature float64) (string, error) {
	if err := validate(prompt, model, temperature); err != nil {
		return "", err
	}

	var text string
	err := g.withRetry(ctx, func() error {
		var err error
		switch g.kind {
		case KindOpenAI, KindAzure:
			text, err = g.chatCompletion(ctx, prompt, model, temperature, nil)
		case KindGoogle:
			text, err = g.generateContent(ctx, prompt, model, temperature)
		default:
			err = fmt.Errorf("free-text generation for provider %s: not implemented", g.kind)
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("provider %s returned an empty response", g.kind)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateSelections returns the model's schema-constrained selection list
// for a screening prompt. Only the OpenAI and Azure kinds support
// structured output; a Google gateway still burns its retry budget before
// failing, which is the documented (if wasteful) behavior of the pipeline.
// Titles in the result are raw model output: reconciling them against the
// corpus is the caller's responsibility.
func (g *Gateway) GenerateSelections(ctx context.Context, prompt, model string, temperature float64) ([]types.Selection, error) {
	if err := validate(prompt, model, temperature); err != nil {
		return nil, err
	}

	var selections []types.Selection
	err := g.withRetry(ctx, func() error {
		switch g.kind {
		case KindOpenAI, KindAzure:
			var err error
			selections, err = g.chatSelections(ctx, prompt, model, temperature)
			return err
		default:
			return fmt.Errorf("structured generation for provider %s: not implemented", g.kind)
		}
	})
	if err != nil {
		return nil, err
	}
	return selections, nil
}

// withRetry runs call up to MaxAttempts times, sleeping the backoff delay
// between attempts. Exhausting the budget returns a GenerationError
// wrapping the last failure.
func (g *Gateway) withRetry(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay(attempt - 1)):
			}
		}

		if lastErr = call(); lastErr == nil {
			return nil
		}
	}
	return &GenerationError{Attempts: MaxAttempts, Err: lastErr}
}
