// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// openAIDefaultBaseURL is the public OpenAI endpoint, used when no base
// URL is configured.
const openAIDefaultBaseURL = "https://api.openai.com/v1"

// azureAPIVersion is the Azure OpenAI REST API version the gateway speaks.
const azureAPIVersion = "2024-06-01"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	// Model is omitted for Azure, where the deployment is in the URL.
	Model               string          `json:"model,omitempty"`
	Temperature         float64         `json:"temperature"`
	MaxCompletionTokens int             `json:"max_completion_tokens"`
	Messages            []chatMessage   `json:"messages"`
	ResponseFormat      json.RawMessage `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// selectionSchema is the JSON schema the structured mode constrains the
// model to: a list of {title, reason} selections.
var selectionSchema = json.RawMessage(`{
	"type": "json_schema",
	"json_schema": {
		"name": "selected_inspirations",
		"strict": true,
		"schema": {
			"type": "object",
			"properties": {
				"inspirations": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"title": {"type": "string"},
							"reason": {"type": "string"}
						},
						"required": ["title", "reason"],
						"additionalProperties": false
					}
				}
			},
			"required": ["inspirations"],
			"additionalProperties": false
		}
	}
}`)

// selectionPayload is the shape the selection schema produces.
type selectionPayload struct {
	Inspirations []types.Selection `json:"inspirations"`
}

// chatCompletion issues one chat-completions call and returns the first
// choice's content. responseFormat is nil for free text.
func (g *Gateway) chatCompletion(ctx context.Context, prompt, model string, temperature float64, responseFormat json.RawMessage) (string, error) {
	system := systemPromptFreeText
	if responseFormat != nil {
		system = systemPromptStructured
	}

	reqBody := chatRequest{
		Temperature:         temperature,
		MaxCompletionTokens: maxCompletionTokens(model),
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat,
	}

	endpoint, err := g.chatEndpoint(model)
	if err != nil {
		return "", err
	}
	if g.kind == KindOpenAI {
		reqBody.Model = model
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	switch g.kind {
	case KindAzure:
		req.Header.Set("api-key", g.apiKey)
	default:
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling %s chat API: %w", g.kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s response: %w", g.kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s chat API returned %d: %s", g.kind, resp.StatusCode, string(body))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", g.kind, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%s response contains no choices", g.kind)
	}
	return decoded.Choices[0].Message.Content, nil
}

// chatSelections runs a structured chat call and decodes the selection list.
func (g *Gateway) chatSelections(ctx context.Context, prompt, model string, temperature float64) ([]types.Selection, error) {
	content, err := g.chatCompletion(ctx, prompt, model, temperature, selectionSchema)
	if err != nil {
		return nil, err
	}

	var payload selectionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decoding structured selections: %w", err)
	}
	return payload.Inspirations, nil
}

// chatEndpoint builds the provider-specific chat completions URL.
func (g *Gateway) chatEndpoint(model string) (string, error) {
	switch g.kind {
	case KindOpenAI:
		base := g.baseURL
		if base == "" {
			base = openAIDefaultBaseURL
		}
		return base + "/chat/completions", nil
	case KindAzure:
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			g.baseURL, url.PathEscape(model), azureAPIVersion), nil
	}
	return "", fmt.Errorf("no chat endpoint for provider %s", g.kind)
}
