// Package llm generates product descriptions through a hosted language
// model. It is called by the pages and the API, never by the links
// repository.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/joestump/affilinks/internal/config"
)

// DescribeRequest is the input to the Describer.
type DescribeRequest struct {
	ProductName string
	Keywords    string
}

// DescribeResponse is the structured output returned by the LLM.
type DescribeResponse struct {
	Description string `json:"description"`
}

// Describer writes a short marketing description for a product.
type Describer interface {
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)
}

var (
	// ErrOverloaded is returned when the provider answers 429, 503 or 529.
	ErrOverloaded = errors.New("AI service overloaded")

	// ErrEmptyDescription is returned when the model's JSON has no description.
	ErrEmptyDescription = errors.New("model returned an empty description")
)

// StatusError is a non-200 provider response.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrOverloaded && (e.Code == http.StatusServiceUnavailable || e.Code == http.StatusTooManyRequests || e.Code == 529)
}

// New creates a Describer based on the config. Returns nil when the
// provider is unset, meaning AI descriptions are disabled.
func New(cfg *config.Config) (Describer, error) {
	var d Describer
	switch cfg.LLM.Provider {
	case "":
		return nil, nil
	case "anthropic":
		d = newAnthropicDescriber(cfg)
	case "openai", "openai-compatible":
		d = newOpenAIDescriber(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
	return NewBreaker(cfg.LLM.Provider, d), nil
}

// IsOverloaded reports whether err means the provider is shedding load
// or the breaker is open. Callers should answer 503.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrOverloaded) || errors.Is(err, ErrCircuitOpen)
}

// UserMessage turns a generation error into one sentence for display.
func UserMessage(err error) string {
	if IsOverloaded(err) {
		return "The AI service is currently overloaded. Please try again later."
	}
	return "Failed to generate description: " + err.Error()
}

// parseDescription decodes the model's JSON answer. Models sometimes wrap
// JSON in a fenced code block; the fence is stripped first.
func parseDescription(text string) (*DescribeResponse, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	var out DescribeResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode description JSON: %w", err)
	}
	out.Description = strings.TrimSpace(out.Description)
	if out.Description == "" {
		return nil, ErrEmptyDescription
	}
	return &out, nil
}
