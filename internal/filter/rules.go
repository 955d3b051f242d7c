// Package filter holds the static selection rules applied to each entity.
package filter

// Type labels with special handling.
const (
	TypeTaxon = "taxon"
	TypeHuman = "human"
)

// DefaultMinSitelinks is the minimum number of sitelinks an entity needs.
const DefaultMinSitelinks = 15

// LabelAllowed reports whether label passes the label blocklist.
func LabelAllowed(label string) bool {
	_, blocked := LabelBlocklist.Match(label)
	return !blocked
}

// DescriptionAllowed reports whether description passes the description
// blocklist.
func DescriptionAllowed(description string) bool {
	_, blocked := DescriptionBlocklist.Match(description)
	return !blocked
}

// TypesAllowed rejects taxa.
func TypesAllowed(types []string) bool {
	return !contains(types, TypeTaxon)
}

// EnoughSitelinks reports whether count reaches min.
func EnoughSitelinks(count, min int) bool {
	return count >= min
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
