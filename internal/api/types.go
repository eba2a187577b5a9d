package api

import (
	"time"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/store"
)

// ErrorResponse documents the error envelope for API consumers.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Link types ---

// LinkResponse is the JSON representation of a single affiliate link.
type LinkResponse struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"productName"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl"`
	AffiliateURL string    `json:"affiliateUrl"`
	UserID       string    `json:"userId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Default      bool      `json:"default"`
}

// LinkListResponse wraps the full link list. There is no pagination.
type LinkListResponse struct {
	Links []LinkResponse `json:"links"`
}

// LinkCreatedResponse is returned by POST /links.
type LinkCreatedResponse struct {
	ID string `json:"id"`
}

func toLinkResponse(l *store.AffiliateLink, isDefault bool) LinkResponse {
	return LinkResponse{
		ID:           l.ID,
		ProductName:  l.ProductName,
		Description:  l.Description,
		ImageURL:     l.ImageURL,
		AffiliateURL: l.AffiliateURL,
		UserID:       l.UserID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		Default:      isDefault,
	}
}

// --- Session types ---

// SessionResponse describes the caller as the Gate sees it.
type SessionResponse struct {
	State     string          `json:"state"`
	Principal *auth.Principal `json:"principal,omitempty"`
	IsAdmin   bool            `json:"isAdmin"`
}

// --- Description types ---

// DescriptionRequest is the request body for POST /descriptions.
type DescriptionRequest struct {
	ProductName string `json:"productName"`
	Keywords    string `json:"keywords"`
}

// DescriptionResponse carries the generated text.
type DescriptionResponse struct {
	Description string `json:"description"`
}

// --- Token types ---

// CreateTokenRequest is the request body for POST /tokens.
type CreateTokenRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// TokenResponse is the JSON representation of an API token. The hash is never included.
type TokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	RevokedAt  *time.Time `json:"revokedAt"`
}

// TokenCreatedResponse carries the plaintext token exactly once.
type TokenCreatedResponse struct {
	TokenResponse
	Token string `json:"token"`
}

// TokenListResponse lists the caller's tokens.
type TokenListResponse struct {
	Tokens []TokenResponse `json:"tokens"`
}

func toTokenResponse(rec *auth.TokenRecord) TokenResponse {
	item := TokenResponse{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt}
	if rec.LastUsedAt.Valid {
		t := rec.LastUsedAt.Time
		item.LastUsedAt = &t
	}
	if rec.ExpiresAt.Valid {
		t := rec.ExpiresAt.Time
		item.ExpiresAt = &t
	}
	if rec.RevokedAt.Valid {
		t := rec.RevokedAt.Time
		item.RevokedAt = &t
	}
	return item
}
