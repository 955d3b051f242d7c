package record

import (
	"reflect"
	"testing"

	"github.com/ppiankov/wikisift/internal/model"
)

const moonLanding = `{
	"id": "Q43653",
	"labels": {"en": "Apollo 11"},
	"descriptions": {"en": "first crewed Moon landing mission"},
	"sitelinks": {"enwiki": "Apollo 11", "dewiki": "Apollo 11", "frwiki": "Apollo 11"},
	"claims": {
		"P31": ["Q2133344", "Q1143622"],
		"P619": ["1969-07-16"],
		"P580": ["1969-07-16"],
		"P582": ["1969-07-24"]
	}
}`

func mustParse(t *testing.T, s string) Record {
	t.Helper()
	rec, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return rec
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte(`{"id": `)); err == nil {
		t.Error("expected error for truncated JSON")
	}
	if _, err := Parse([]byte(`null`)); err == nil {
		t.Error("expected error for null document")
	}
}

func TestSimpleFields(t *testing.T) {
	rec := mustParse(t, moonLanding)

	if id, ok := rec.ID(); !ok || id != "Q43653" {
		t.Errorf("ID: got %q, %v", id, ok)
	}
	if label, ok := rec.Label(); !ok || label != "Apollo 11" {
		t.Errorf("Label: got %q, %v", label, ok)
	}
	if desc, ok := rec.Description(); !ok || desc != "First crewed Moon landing mission" {
		t.Errorf("Description: got %q, %v", desc, ok)
	}
	if title, ok := rec.WikipediaTitle(); !ok || title != "Apollo 11" {
		t.Errorf("WikipediaTitle: got %q, %v", title, ok)
	}
	if n, ok := rec.SitelinkCount(); !ok || n != 3 {
		t.Errorf("SitelinkCount: got %d, %v", n, ok)
	}
}

func TestFields_Absent(t *testing.T) {
	rec := mustParse(t, `{"claims": {}}`)

	if _, ok := rec.ID(); ok {
		t.Error("ID should be absent")
	}
	if _, ok := rec.Label(); ok {
		t.Error("Label should be absent")
	}
	if _, ok := rec.Description(); ok {
		t.Error("Description should be absent")
	}
	if _, ok := rec.WikipediaTitle(); ok {
		t.Error("WikipediaTitle should be absent")
	}
	if _, ok := rec.SitelinkCount(); ok {
		t.Error("SitelinkCount should be absent")
	}
	if _, ok := rec.TypeIDs(); ok {
		t.Error("TypeIDs should be absent, not empty")
	}
	if _, ok := rec.OccupationIDs(); ok {
		t.Error("OccupationIDs should be absent")
	}
}

func TestFields_FullEntityShape(t *testing.T) {
	rec := mustParse(t, `{
		"labels": {"en": {"language": "en", "value": "Douglas Adams"}},
		"descriptions": {"en": {"language": "en", "value": "english writer"}},
		"sitelinks": {"enwiki": {"site": "enwiki", "title": "Douglas Adams"}}
	}`)

	if label, _ := rec.Label(); label != "Douglas Adams" {
		t.Errorf("expected label from value object, got %q", label)
	}
	if desc, _ := rec.Description(); desc != "English writer" {
		t.Errorf("expected description from value object, got %q", desc)
	}
	if title, _ := rec.WikipediaTitle(); title != "Douglas Adams" {
		t.Errorf("expected title from sitelink object, got %q", title)
	}
}

func TestDescription_UpperFirstUnicode(t *testing.T) {
	rec := mustParse(t, `{"descriptions": {"en": "école normale"}}`)
	if desc, _ := rec.Description(); desc != "École normale" {
		t.Errorf("got %q", desc)
	}

	rec = mustParse(t, `{"descriptions": {"en": ""}}`)
	if desc, ok := rec.Description(); !ok || desc != "" {
		t.Errorf("empty description should stay empty and present, got %q, %v", desc, ok)
	}
}

func TestClaimIDs(t *testing.T) {
	rec := mustParse(t, `{"claims": {"P31": ["Q5", 7, "Q215627"], "P106": []}}`)

	types, ok := rec.TypeIDs()
	if !ok {
		t.Fatal("expected types present")
	}
	if !reflect.DeepEqual(types, []string{"Q5", "Q215627"}) {
		t.Errorf("unexpected types: %v", types)
	}

	occ, ok := rec.OccupationIDs()
	if !ok || len(occ) != 0 {
		t.Errorf("expected present but empty occupations, got %v, %v", occ, ok)
	}
}

func TestDateAndProperty_PriorityOrder(t *testing.T) {
	rec := mustParse(t, moonLanding)

	got, ok := rec.DateAndProperty(model.DefaultDateProperties())
	if !ok {
		t.Fatal("expected a date")
	}
	// P580 (start time) comes before P582 (end time) in the priority list.
	if got.PropertyID != "P580" || got.Year != 1969 {
		t.Errorf("got %+v", got)
	}

	// Reversed priority picks the other property.
	props := []model.DateProperty{{ID: "P582"}, {ID: "P580"}}
	got, ok = rec.DateAndProperty(props)
	if !ok || got.PropertyID != "P582" {
		t.Errorf("expected P582 to win, got %+v", got)
	}
}

func TestDateAndProperty_SkipsEmptyLists(t *testing.T) {
	rec := mustParse(t, `{"claims": {"P575": [], "P569": ["-0100-07-12"]}}`)

	got, ok := rec.DateAndProperty(model.DefaultDateProperties())
	if !ok {
		t.Fatal("expected a date")
	}
	if got.PropertyID != "P569" || got.Year != -100 {
		t.Errorf("got %+v", got)
	}
}

func TestDateAndProperty_NoneFound(t *testing.T) {
	rec := mustParse(t, `{"claims": {"P31": ["Q5"], "P619": ["1969-07-16"]}}`)

	if _, ok := rec.DateAndProperty(model.DefaultDateProperties()); ok {
		t.Error("expected absent when no priority property is claimed")
	}
}

func TestDateAndProperty_UnparsableWinnerIsAbsent(t *testing.T) {
	rec := mustParse(t, `{"claims": {"P575": ["unknown"], "P569": ["1900-01-01"]}}`)

	if _, ok := rec.DateAndProperty(model.DefaultDateProperties()); ok {
		t.Error("expected absent when the winning property's date does not parse")
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1969-07-20", 1969, true},
		{"-0044-01-01", -44, true},
		{"+1969-07-20T00:00:00Z", 1969, true},
		{"0800-12-25", 800, true},
		{"2001", 2001, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc-01-01", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseYear(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseYear(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
