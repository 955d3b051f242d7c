package model

import (
	"net/url"
	"strings"
)

// Item is a knowledge-base entity that passed every selection rule and had
// all of its external lookups resolved.
type Item struct {
	ID             string   `json:"id"`                    // Entity identifier (e.g., "Q42")
	Label          string   `json:"label"`                 // Canonical page title from the encyclopedia
	Description    string   `json:"description"`           // Short description, first letter upper-cased
	WikipediaTitle string   `json:"wikipedia_title"`       // Sitelink title used for page lookups
	DatePropID     string   `json:"date_prop_id"`          // Property that supplied Year
	Year           int64    `json:"year"`                  // Negative for BCE
	InstanceOf     []string `json:"instance_of"`           // Resolved type labels
	Occupations    []string `json:"occupations,omitempty"` // Resolved occupation labels, if any resolved
	PageViews      int      `json:"page_views"`            // Views over the configured window
	Image          string   `json:"image"`                 // Representative image file name
}

// HasType reports whether label is one of the item's resolved types.
func (i *Item) HasType(label string) bool {
	for _, t := range i.InstanceOf {
		if t == label {
			return true
		}
	}
	return false
}

// WikipediaURL returns the link to the item's encyclopedia page.
func (i *Item) WikipediaURL() string {
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.ReplaceAll(i.WikipediaTitle, " ", "_"))
}

// ImageURL returns a 300px wide rendition of the item's image on Commons.
func (i *Item) ImageURL() string {
	if i.Image == "" {
		return ""
	}
	file := strings.ReplaceAll(url.QueryEscape(i.Image), "+", "%20")
	return "https://commons.wikimedia.org/w/index.php?title=Special:Redirect/file/" + file + "&width=300"
}
