// Package compliance flags banned marketing claims and supplies the clauses
// every proposal must carry.
package compliance

import "strings"

var bannedClaims = []string{"guaranteed", "100% uptime", "unlimited"}

var mandatoryClauses = []string{
	"Pricing valid for 30 days from date of issue.",
	"Taxes extra as applicable.",
	"Payment terms: 50% advance, 50% on delivery (sample).",
}

// Checker matches text against an ordered list of banned phrases.
type Checker struct {
	banned []string
}

// NewChecker returns a checker for the built-in phrases plus extra.
// Blank and duplicate phrases are dropped.
func NewChecker(extra ...string) *Checker {
	seen := make(map[string]struct{}, len(bannedClaims)+len(extra))
	c := &Checker{}
	for _, p := range append(append([]string{}, bannedClaims...), extra...) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		c.banned = append(c.banned, p)
	}
	return c
}

// Default is the checker with only the built-in phrases.
var Default = NewChecker()

// CheckClaims returns each banned phrase found in text (case-insensitive),
// in list order. The result is never nil.
func (c *Checker) CheckClaims(text string) []string {
	low := strings.ToLower(text)
	hits := make([]string, 0)
	for _, p := range c.banned {
		if strings.Contains(low, p) {
			hits = append(hits, p)
		}
	}
	return hits
}

// BannedPhrases returns a copy of the active list.
func (c *Checker) BannedPhrases() []string {
	return append([]string{}, c.banned...)
}

// MandatoryClauses returns a fresh copy of the fixed clauses.
func (c *Checker) MandatoryClauses() []string {
	return MandatoryClauses()
}

// CheckClaims uses the built-in phrases.
func CheckClaims(text string) []string { return Default.CheckClaims(text) }

// MandatoryClauses returns a fresh copy of the fixed clauses.
func MandatoryClauses() []string {
	return append([]string{}, mandatoryClauses...)
}
