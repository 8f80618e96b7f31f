package features

import (
	"regexp"
	"strings"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonLetters    = regexp.MustCompile(`[^A-Za-z\s]`)
)

// NormalizeName turns a player name into the join key shared by the odds
// feed and the stats tables:
//
//	"LeBron James (LAL)" → "lebron james"
//	"J. Harden"          → "j harden"
//	"D'Angelo Russell!"  → "dangelo russell"
func NormalizeName(name string) string {
	name = parenthetical.ReplaceAllString(name, "")
	name = nonLetters.ReplaceAllString(name, "")
	return strings.TrimSpace(strings.ToLower(name))
}
