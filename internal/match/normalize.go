// Package match scores extracted passenger names against the master guest
// registry.
package match

import (
	"regexp"
	"strings"
)

var (
	// Honorific and kinship tokens that appear in registry names but rarely
	// in tickets (and vice versa).
	reHonorifics = regexp.MustCompile(`\b(KR|KUMAR|DEVI|SHRI|SMT|MR|MRS|MS|MISS|SRI)\b`)
	reNonLetter  = regexp.MustCompile(`[^A-Z ]`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Normalize maps a name to its comparable form: uppercase, honorifics
// stripped, letters and single spaces only. Idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	n := strings.ToUpper(name)
	n = reHonorifics.ReplaceAllString(n, "")
	n = reNonLetter.ReplaceAllString(n, "")
	n = reSpaces.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
