package links

import (
	"strings"
	"time"

	"github.com/joestump/affilinks/internal/store"
)

// SeedIDPrefix marks the built-in links. Records with this prefix are never
// written to the store and cannot be updated or deleted.
const SeedIDPrefix = "default-link-"

// SeedUserID is the owner recorded on built-in links.
const SeedUserID = "system"

// IsSeedID reports whether id names a built-in link.
func IsSeedID(id string) bool {
	return strings.HasPrefix(id, SeedIDPrefix)
}

var seedLinks = []store.AffiliateLink{
	{
		ID:           SeedIDPrefix + "1",
		ProductName:  "High-Performance Laptop",
		Description:  "Boost your productivity with this top-tier laptop, perfect for work and play.",
		ImageURL:     "https://picsum.photos/100/100?random=1",
		AffiliateURL: "https://www.amazon.com/dp/EXAMPLE_LAPTOP_ASIN",
		UserID:       SeedUserID,
		CreatedAt:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	},
	{
		ID:           SeedIDPrefix + "2",
		ProductName:  "Wireless Noise-Cancelling Headphones",
		Description:  "Immerse yourself in sound with these comfortable, high-fidelity headphones.",
		ImageURL:     "https://picsum.photos/100/100?random=2",
		AffiliateURL: "https://www.amazon.com/dp/EXAMPLE_HEADPHONES_ASIN",
		UserID:       SeedUserID,
		CreatedAt:    time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC),
	},
	{
		ID:           SeedIDPrefix + "3",
		ProductName:  "Ergonomic Office Chair",
		Description:  "Support your back and improve posture with this adjustable ergonomic chair.",
		ImageURL:     "https://picsum.photos/100/100?random=3",
		AffiliateURL: "https://www.amazon.com/dp/EXAMPLE_CHAIR_ASIN",
		UserID:       SeedUserID,
		CreatedAt:    time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC),
	},
}

// Seeds returns fresh copies of the built-in links in their fixed order.
func Seeds() []*store.AffiliateLink {
	out := make([]*store.AffiliateLink, len(seedLinks))
	for i := range seedLinks {
		l := seedLinks[i]
		l.UpdatedAt = l.CreatedAt
		out[i] = &l
	}
	return out
}
