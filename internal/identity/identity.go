// Package identity canonicalizes buyer identity. The three forms share
// no foreign key, so the canonical email is the only join key across
// datasets; both helpers are pure, total and idempotent.
package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonEmail lowercases and trims a raw email into the buyer key.
func CanonEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CanonName collapses whitespace runs to single spaces, trims, and
// title-cases each word. "  aNA   maria " -> "Ana Maria".
func CanonName(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return ""
	}
	return cases.Title(language.BrazilianPortuguese).String(collapsed)
}
