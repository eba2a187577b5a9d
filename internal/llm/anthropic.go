package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/joestump/affilinks/internal/config"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
)

type anthropicDescriber struct {
	apiKey       string
	model        string
	url          string
	promptCustom string
	client       *http.Client
}

func newAnthropicDescriber(cfg *config.Config) *anthropicDescriber {
	model := cfg.LLM.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	url := anthropicAPIURL
	if cfg.LLM.BaseURL != "" {
		url = trimBase(cfg.LLM.BaseURL) + "/v1/messages"
	}
	return &anthropicDescriber{
		apiKey:       cfg.LLM.APIKey,
		model:        model,
		url:          url,
		promptCustom: cfg.LLM.Prompt,
		client:       &http.Client{Timeout: cfg.LLM.Timeout},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *anthropicDescriber) Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error) {
	prompt, err := renderPrompt(a.promptCustom, PromptData(req))
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: 512,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "anthropic", Code: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, c := range apiResp.Content {
		if c.Type == "text" {
			return parseDescription(c.Text)
		}
	}
	return nil, fmt.Errorf("empty response from anthropic")
}
