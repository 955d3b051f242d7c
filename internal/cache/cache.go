// Package cache holds the identifier-to-label cache shared by every lookup
// in a run.
package cache

// LabelCache maps entity identifiers to resolved display labels.
//
// Entries are never invalidated: once an identifier is stored its label is
// served for the rest of the run.
type LabelCache interface {
	Get(id string) (string, bool)
	Set(id string, label string)
	Len() int
}
