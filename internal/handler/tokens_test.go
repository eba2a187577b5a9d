package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestTokens_CreateShowsPlaintextOnce(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, "alice@example.com")

	rec := c.postForm(t, "/settings/tokens", url.Values{"name": {"cli"}, "expires_in": {"720h"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<code class="token">af_`) {
		t.Error("plaintext token not shown after creation")
	}

	body = c.get(t, "/settings/tokens").Body.String()
	if strings.Contains(body, `<code class="token">`) {
		t.Error("plaintext token shown again")
	}
	if !strings.Contains(body, "cli") {
		t.Error("token not listed")
	}
}

func TestTokens_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.login(t, "alice@example.com")

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing name", url.Values{"name": {"  "}}, "Token name is required."},
		{"bad expiry", url.Values{"name": {"cli"}, "expires_in": {"soon"}}, "Invalid expiry duration."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.postForm(t, "/settings/tokens", tt.form)
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}
