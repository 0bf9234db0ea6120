package models

import "strings"

// Target is one side of a migration: the origin or the destination system.
type Target struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	TokenURL string `json:"token_url"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Insecure bool   `json:"insecure"` // skip TLS verification
}

// BaseURL returns the target URL without a trailing slash.
func (t *Target) BaseURL() string {
	return strings.TrimRight(t.URL, "/")
}

// MaskedPassword returns a fixed mask for display, or "" if no password is set.
func (t *Target) MaskedPassword() string {
	if t.Password == "" {
		return ""
	}
	return "••••••••"
}
