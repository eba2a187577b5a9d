package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/joestump/affilinks/internal/llm"
)

type mockDescriber struct {
	resp *llm.DescribeResponse
	err  error
}

func (m *mockDescriber) Describe(context.Context, llm.DescribeRequest) (*llm.DescribeResponse, error) {
	return m.resp, m.err
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name       string
		describer  llm.Describer
		form       url.Values
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ok",
			describer:  &mockDescriber{resp: &llm.DescribeResponse{Description: "Sip in style."}},
			form:       url.Values{"product_name": {"Mug"}, "keywords": {"ceramic"}},
			wantStatus: http.StatusOK,
			wantBody:   "Sip in style.",
		},
		{
			name:       "not configured",
			form:       url.Values{"product_name": {"Mug"}, "keywords": {"ceramic"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "AI descriptions are not configured.",
		},
		{
			name:       "overloaded",
			describer:  &mockDescriber{err: &llm.StatusError{Provider: "anthropic", Code: 529}},
			form:       url.Values{"product_name": {"Mug"}, "keywords": {"ceramic"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "The AI service is currently overloaded. Please try again later.",
		},
		{
			name:       "provider error",
			describer:  &mockDescriber{err: errors.New("boom")},
			form:       url.Values{"product_name": {"Mug"}, "keywords": {"ceramic"}},
			wantStatus: http.StatusBadGateway,
			wantBody:   "Failed to generate description: boom",
		},
		{
			name:       "invalid",
			describer:  &mockDescriber{resp: &llm.DescribeResponse{Description: "unused"}},
			form:       url.Values{"product_name": {"M"}, "keywords": {"ab"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "Keywords must be at least 3 characters.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithDescriber(t, tt.describer)
			c := env.client()
			c.login(t, "alice@example.com")

			rec := c.postForm(t, "/describe", tt.form)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q", tt.wantBody)
			}
		})
	}
}

func TestDescribe_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.client().get(t, "/describe"); rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
}
