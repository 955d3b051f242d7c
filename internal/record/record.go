// Package record reads the handful of fields the selection pipeline needs
// out of one knowledge-base entity document.
//
// Records are kept as untyped JSON trees. Every getter returns (value, ok);
// ok is false when the field is absent or has an unexpected shape.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/wikisift/internal/model"
)

// Claim properties read by the extractors.
const (
	PropInstanceOf = "P31"
	PropOccupation = "P106"
)

// Record is one parsed entity document. It is never mutated after Parse.
type Record struct {
	doc map[string]any
}

// Parse decodes a single JSON line into a Record.
func Parse(data []byte) (Record, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if doc == nil {
		return Record{}, fmt.Errorf("decode record: not an object")
	}
	return Record{doc: doc}, nil
}

// FromMap wraps an already decoded document.
func FromMap(doc map[string]any) Record {
	return Record{doc: doc}
}

// DateAndProperty is a year together with the property that supplied it.
type DateAndProperty struct {
	PropertyID string
	Year       int64
}

// ID returns the entity identifier.
func (r Record) ID() (string, bool) {
	return asString(r.lookup("id"))
}

// Label returns the English label.
func (r Record) Label() (string, bool) {
	return textValue(r.lookup("labels", "en"))
}

// Description returns the English description with its first letter
// upper-cased.
func (r Record) Description() (string, bool) {
	desc, ok := textValue(r.lookup("descriptions", "en"))
	if !ok {
		return "", false
	}
	return upperFirst(desc), true
}

// WikipediaTitle returns the English encyclopedia sitelink title.
func (r Record) WikipediaTitle() (string, bool) {
	v, ok := r.lookup("sitelinks", "enwiki")
	if !ok {
		return "", false
	}
	if obj, isObj := v.(map[string]any); isObj {
		return asString(obj["title"], true)
	}
	return asString(v, true)
}

// DateAndProperty walks props in order and parses the first date of the first
// property that has a non-empty date list. Lower-priority properties are
// ignored once one matches, even if the matching date does not parse.
func (r Record) DateAndProperty(props []model.DateProperty) (DateAndProperty, bool) {
	for _, p := range props {
		dates, ok := asArray(r.lookup("claims", p.ID))
		if !ok || len(dates) == 0 {
			continue
		}
		raw, ok := asString(dates[0], true)
		if !ok {
			return DateAndProperty{}, false
		}
		year, ok := ParseYear(raw)
		if !ok {
			return DateAndProperty{}, false
		}
		return DateAndProperty{PropertyID: p.ID, Year: year}, true
	}
	return DateAndProperty{}, false
}

// TypeIDs returns the raw "instance of" identifiers. A missing claim is
// reported as absent, not as an empty list.
func (r Record) TypeIDs() ([]string, bool) {
	return r.claimIDs(PropInstanceOf)
}

// OccupationIDs returns the raw occupation identifiers.
func (r Record) OccupationIDs() ([]string, bool) {
	return r.claimIDs(PropOccupation)
}

// SitelinkCount returns the number of sitelinks on the entity.
func (r Record) SitelinkCount() (int, bool) {
	v, ok := r.lookup("sitelinks")
	if !ok {
		return 0, false
	}
	links, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	return len(links), true
}

func (r Record) claimIDs(prop string) ([]string, bool) {
	values, ok := asArray(r.lookup("claims", prop))
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := asString(v, true); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, true
}

// lookup follows path through nested objects.
func (r Record) lookup(path ...string) (any, bool) {
	var cur any = r.doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// ParseYear extracts the year from a date string such as "1969-07-20",
// "-0044-03-15" or "+1969-07-20T00:00:00Z". A leading minus marks BCE and
// yields a negative year.
func ParseYear(date string) (int64, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}

	bce := false
	switch date[0] {
	case '-':
		bce = true
		date = date[1:]
	case '+':
		date = date[1:]
	}

	yearPart, _, _ := strings.Cut(date, "-")
	year, err := strconv.ParseInt(yearPart, 10, 64)
	if err != nil || year < 0 {
		return 0, false
	}

	if bce {
		year = -year
	}
	return year, true
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// textValue accepts both a bare string and the {"language", "value"} form.
func textValue(v any, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	if obj, isObj := v.(map[string]any); isObj {
		return asString(obj["value"], true)
	}
	return asString(v, true)
}

func asString(v any, ok bool) (string, bool) {
	if !ok {
		return "", false
	}
	s, isString := v.(string)
	return s, isString
}

func asArray(v any, ok bool) ([]any, bool) {
	if !ok {
		return nil, false
	}
	arr, isArray := v.([]any)
	return arr, isArray
}
