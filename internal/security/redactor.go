// Package security keeps the bot token out of everything the process prints.
package security

import (
	"regexp"
	"strings"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "REDACTED"

// tokenPattern matches the Telegram bot token shape <bot_id>:<hash>, so even
// tokens the redactor was never told about are caught in URLs and bodies.
var tokenPattern = regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{20,}`)

// Redactor replaces secret values in strings with RedactPlaceholder. It holds
// the literal credentials loaded at startup plus the token shape pattern.
// Redactor is immutable after construction and safe for concurrent use.
type Redactor struct {
	literals []string
}

// NewRedactor creates a Redactor that removes the given literal secrets on
// sight. Empty literals are ignored.
func NewRedactor(literals ...string) *Redactor {
	r := &Redactor{}
	for _, lit := range literals {
		if lit != "" {
			r.literals = append(r.literals, lit)
		}
	}
	return r
}

// Redact replaces all known literals and token-shaped substrings in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	for _, lit := range r.literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	return tokenPattern.ReplaceAllString(s, RedactPlaceholder)
}

// DisplayToken renders a token for config printouts: the first ten characters
// followed by a fixed run of asterisks. Short values are fully redacted.
func DisplayToken(token string) string {
	if len(token) <= 10 {
		return RedactPlaceholder
	}
	return token[:10] + strings.Repeat("*", 30)
}
