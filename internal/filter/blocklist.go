package filter

import (
	"regexp"
	"strings"
)

// Blocklist is an ordered set of compiled patterns matched against the
// lower-cased input. Matching stops at the first hit.
type Blocklist struct {
	patterns []*regexp.Regexp
}

// NewBlocklist compiles patterns. It panics on an invalid pattern, so it is
// meant for package-level lists.
func NewBlocklist(patterns ...string) *Blocklist {
	b := &Blocklist{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		b.patterns = append(b.patterns, regexp.MustCompile(p))
	}
	return b
}

// Match returns the first pattern that matches s.
func (b *Blocklist) Match(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, re := range b.patterns {
		if re.MatchString(lower) {
			return re.String(), true
		}
	}
	return "", false
}

// Len returns the number of patterns.
func (b *Blocklist) Len() int {
	return len(b.patterns)
}

// LabelBlocklist rejects labels that name dates, meta pages or entities that
// make poor quiz material.
var LabelBlocklist = NewBlocklist(
	// Dates
	`century`,
	`\d\d\d\d`,
	// Meta
	`wikipedia`,
	`list of`,
	// Uninteresting
	`airport`,
	`flag of`,
)

// DescriptionBlocklist rejects descriptions of entity classes that are too
// numerous or too obscure.
var DescriptionBlocklist = NewBlocklist(
	// Space objects
	`galaxy`,
	`constellation`,
	`star`,
	`planet`,
	`nebula`,
	`moon`,
	`supernova`,
	`asteroid`,
	`cluster`,
	`natural satellite`,
	// Chemicals
	`compound`,
	`element`,
	// Locations
	`region`,
	`state`,
	`capital`,
	`borough`,
	`community`,
	`department`,
	`province`,
	`county`,
	`city`,
	`town`,
	`commune`,
	`federal subject`,
	// Sport
	`football`,
	`basketball`,
	`baseball`,
	`esportiva`,
	`sport`,
	`team`,
	// Datetimes
	`decade`,
	`domain`,
	// Animals
	`species`,
)
