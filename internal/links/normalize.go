package links

import (
	"strings"

	"github.com/joestump/affilinks/internal/store"
)

// Defaults substituted for fields missing from storage.
const (
	DefaultProductName  = "Unnamed Product"
	DefaultDescription  = "No description available."
	DefaultImageURL     = "https://picsum.photos/100/100?random=placeholder"
	DefaultAffiliateURL = "#"
)

// Normalize fills blank fields of l with renderable defaults and keeps
// UpdatedAt from predating CreatedAt. It modifies l in place and returns it.
func Normalize(l *store.AffiliateLink) *store.AffiliateLink {
	if strings.TrimSpace(l.ProductName) == "" {
		l.ProductName = DefaultProductName
	}
	if strings.TrimSpace(l.Description) == "" {
		l.Description = DefaultDescription
	}
	if strings.TrimSpace(l.ImageURL) == "" {
		l.ImageURL = DefaultImageURL
	}
	if strings.TrimSpace(l.AffiliateURL) == "" {
		l.AffiliateURL = DefaultAffiliateURL
	}
	if l.UpdatedAt.IsZero() || l.UpdatedAt.Before(l.CreatedAt) {
		l.UpdatedAt = l.CreatedAt
	}
	return l
}
