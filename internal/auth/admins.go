package auth

import "strings"

// AdminSet is the configured allow-list of administrator emails.
type AdminSet map[string]struct{}

// NewAdminSet builds a set from emails, trimmed and lowercased.
func NewAdminSet(emails ...string) AdminSet {
	s := make(AdminSet, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			s[e] = struct{}{}
		}
	}
	return s
}

// Contains reports whether email is an administrator. Case-insensitive.
func (s AdminSet) Contains(email string) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[normalizeEmail(email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
