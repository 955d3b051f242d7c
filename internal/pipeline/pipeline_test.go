package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/wikisift/internal/cache"
	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/record"
	"github.com/ppiankov/wikisift/internal/resolve"
)

// fakeResolver mimics resolve.Resolver: labels are served from the cache
// first and only misses count as lookups.
type fakeResolver struct {
	labels        map[string]string
	views         map[string]int
	pages         map[string]resolve.PageInfo
	labelLookups  map[string]int
	viewLookups   int
	pageInfoCalls int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		labels: map[string]string{
			"Q5":      "human",
			"Q16521":  "taxon",
			"Q7432":   "species",
			"Q901":    "scientist",
			"Q169470": "physicist",
			"Q11424":  "film",
		},
		views: map[string]int{
			"Albert Einstein": 200_000,
		},
		pages: map[string]resolve.PageInfo{
			"Albert Einstein": {Title: "Albert Einstein", Image: "Einstein_1921.jpg"},
		},
		labelLookups: make(map[string]int),
	}
}

func (f *fakeResolver) Label(ctx context.Context, id string, labels cache.LabelCache) (string, bool) {
	if label, ok := labels.Get(id); ok {
		return label, true
	}
	f.labelLookups[id]++
	label, ok := f.labels[id]
	if !ok {
		return "", false
	}
	labels.Set(id, label)
	return label, true
}

func (f *fakeResolver) PageViews(ctx context.Context, title string) (int, bool) {
	f.viewLookups++
	views, ok := f.views[title]
	return views, ok
}

func (f *fakeResolver) PageInfo(ctx context.Context, title string) (resolve.PageInfo, bool) {
	f.pageInfoCalls++
	info, ok := f.pages[title]
	return info, ok
}

// entity builds a record that passes every rule unless modified.
func entity() map[string]any {
	sitelinks := map[string]any{"enwiki": "Albert Einstein"}
	for i := 0; i < 19; i++ {
		sitelinks[fmt.Sprintf("wiki%02d", i)] = "Albert Einstein"
	}
	return map[string]any{
		"id":           "Q937",
		"labels":       map[string]any{"en": "Albert Einstein"},
		"descriptions": map[string]any{"en": "german-born theoretical physicist"},
		"sitelinks":    sitelinks,
		"claims": map[string]any{
			"P31":  []any{"Q5"},
			"P569": []any{"1990-03-14"},
		},
	}
}

func toRecord(t *testing.T, doc map[string]any) record.Record {
	t.Helper()
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec, err := record.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return rec
}

func newTestPipeline(res Resolver) *Pipeline {
	sel := model.DefaultConfig().Selection
	return New(res, cache.NewMemoryCache(), sel, nil)
}

func TestEvaluate_Accepts(t *testing.T) {
	res := newFakeResolver()
	p := newTestPipeline(res)

	v := p.Evaluate(context.Background(), toRecord(t, entity()))
	if !v.Accepted() {
		t.Fatalf("expected acceptance, rejected at %q: %s", v.Stage, v.Reason)
	}

	item := v.Item
	if item.ID != "Q937" || item.Label != "Albert Einstein" {
		t.Errorf("unexpected identity: %+v", item)
	}
	if item.Description != "German-born theoretical physicist" {
		t.Errorf("description not normalized: %q", item.Description)
	}
	if item.WikipediaTitle != "Albert Einstein" || item.Image != "Einstein_1921.jpg" {
		t.Errorf("unexpected page fields: %+v", item)
	}
	if item.DatePropID != "P569" || item.Year != 1990 {
		t.Errorf("unexpected date: %s %d", item.DatePropID, item.Year)
	}
	if !reflect.DeepEqual(item.InstanceOf, []string{"human"}) {
		t.Errorf("unexpected types: %v", item.InstanceOf)
	}
	if item.PageViews != 200_000 {
		t.Errorf("unexpected page views: %d", item.PageViews)
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal item: %v", err)
	}
	if strings.Contains(string(data), "occupations") {
		t.Errorf("occupations should be omitted when none claimed: %s", data)
	}
}

func TestEvaluate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		stage  Stage
	}{
		{"no label", func(d map[string]any) { delete(d, "labels") }, StageLabel},
		{"list label", func(d map[string]any) {
			d["labels"] = map[string]any{"en": "List of capital cities"}
		}, StageLabel},
		{"no description", func(d map[string]any) { delete(d, "descriptions") }, StageDescription},
		{"moon description", func(d map[string]any) {
			d["descriptions"] = map[string]any{"en": "a moon of Jupiter"}
		}, StageDescription},
		{"no id", func(d map[string]any) { delete(d, "id") }, StageIdentity},
		{"no enwiki", func(d map[string]any) {
			links := d["sitelinks"].(map[string]any)
			delete(links, "enwiki")
		}, StageIdentity},
		{"no date property", func(d map[string]any) {
			d["claims"] = map[string]any{"P31": []any{"Q5"}, "P619": []any{"1969-07-16"}}
		}, StageIdentity},
		{"no instance of", func(d map[string]any) {
			d["claims"] = map[string]any{"P569": []any{"1990-03-14"}}
		}, StageTypes},
		{"taxon", func(d map[string]any) {
			d["claims"].(map[string]any)["P31"] = []any{"Q16521", "Q7432"}
		}, StageTypes},
		{"few sitelinks", func(d map[string]any) {
			d["sitelinks"] = map[string]any{"enwiki": "Albert Einstein", "dewiki": "Albert Einstein"}
		}, StageSitelinks},
		{"page views unavailable", func(d map[string]any) {
			d["sitelinks"].(map[string]any)["enwiki"] = "Unknown page"
		}, StagePopularity},
		{"recent human with enough views", func(d map[string]any) {
			d["claims"].(map[string]any)["P569"] = []any{"2001-01-01"}
			d["sitelinks"].(map[string]any)["enwiki"] = "Albert Einstein"
		}, StageAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := entity()
			tt.mutate(doc)
			v := newTestPipeline(newFakeResolver()).Evaluate(context.Background(), toRecord(t, doc))
			if tt.stage == StageAccepted {
				if !v.Accepted() {
					t.Fatalf("expected acceptance, got %q: %s", v.Stage, v.Reason)
				}
				return
			}
			if v.Accepted() {
				t.Fatalf("expected rejection at %q, got accepted", tt.stage)
			}
			if v.Stage != tt.stage {
				t.Errorf("expected stage %q, got %q (%s)", tt.stage, v.Stage, v.Reason)
			}
		})
	}
}

func TestEvaluate_EarlyRejectionSkipsLookups(t *testing.T) {
	res := newFakeResolver()
	p := newTestPipeline(res)

	doc := entity()
	doc["labels"] = map[string]any{"en": "List of capital cities"}
	p.Evaluate(context.Background(), toRecord(t, doc))

	doc = entity()
	doc["sitelinks"] = map[string]any{"enwiki": "Albert Einstein"}
	v := p.Evaluate(context.Background(), toRecord(t, doc))
	if v.Stage != StageSitelinks {
		t.Fatalf("expected sitelinks rejection, got %q", v.Stage)
	}

	if res.viewLookups != 0 || res.pageInfoCalls != 0 {
		t.Errorf("expected no page lookups, got views=%d info=%d", res.viewLookups, res.pageInfoCalls)
	}
	if res.labelLookups["Q5"] != 1 {
		t.Errorf("expected Q5 looked up once (second record only), got %d", res.labelLookups["Q5"])
	}
}

func TestEvaluate_PopularityByEra(t *testing.T) {
	res := newFakeResolver()
	res.views["Albert Einstein"] = 50_000
	p := newTestPipeline(res)

	// A modern human needs 100k views.
	v := p.Evaluate(context.Background(), toRecord(t, entity()))
	if v.Stage != StagePopularity {
		t.Fatalf("expected popularity rejection, got %q", v.Stage)
	}
	if res.pageInfoCalls != 0 {
		t.Error("page info should not be fetched for unpopular items")
	}

	// The same views are enough for a non-human from the same era.
	doc := entity()
	doc["claims"].(map[string]any)["P31"] = []any{"Q11424"}
	v = p.Evaluate(context.Background(), toRecord(t, doc))
	if !v.Accepted() {
		t.Fatalf("expected acceptance for film, got %q: %s", v.Stage, v.Reason)
	}
}

func TestEvaluate_PageInfoRequired(t *testing.T) {
	res := newFakeResolver()
	delete(res.pages, "Albert Einstein")

	v := newTestPipeline(res).Evaluate(context.Background(), toRecord(t, entity()))
	if v.Stage != StagePageInfo {
		t.Fatalf("expected page info rejection, got %q", v.Stage)
	}
}

func TestEvaluate_UnresolvedTypesDropped(t *testing.T) {
	res := newFakeResolver()
	doc := entity()
	doc["claims"].(map[string]any)["P31"] = []any{"Q404", "Q5", "Q5"}

	v := newTestPipeline(res).Evaluate(context.Background(), toRecord(t, doc))
	if !v.Accepted() {
		t.Fatalf("expected acceptance, got %q: %s", v.Stage, v.Reason)
	}
	if !reflect.DeepEqual(v.Item.InstanceOf, []string{"human"}) {
		t.Errorf("expected unresolved and duplicate ids dropped, got %v", v.Item.InstanceOf)
	}
	if res.labelLookups["Q404"] != 1 || res.labelLookups["Q5"] != 1 {
		t.Errorf("unexpected lookups: %v", res.labelLookups)
	}
}

func TestEvaluate_Occupations(t *testing.T) {
	res := newFakeResolver()
	doc := entity()
	doc["claims"].(map[string]any)["P106"] = []any{"Q169470", "Q404", "Q901"}

	v := newTestPipeline(res).Evaluate(context.Background(), toRecord(t, doc))
	if !v.Accepted() {
		t.Fatalf("expected acceptance, got %q: %s", v.Stage, v.Reason)
	}
	if !reflect.DeepEqual(v.Item.Occupations, []string{"physicist", "scientist"}) {
		t.Errorf("unexpected occupations: %v", v.Item.Occupations)
	}

	// Occupations that all fail to resolve do not reject the record.
	doc["claims"].(map[string]any)["P106"] = []any{"Q404"}
	v = newTestPipeline(res).Evaluate(context.Background(), toRecord(t, doc))
	if !v.Accepted() {
		t.Fatalf("unresolved occupations must not reject, got %q", v.Stage)
	}
	if len(v.Item.Occupations) != 0 {
		t.Errorf("expected no occupations, got %v", v.Item.Occupations)
	}
}

func TestEvaluate_LabelCacheSharedAcrossRecords(t *testing.T) {
	res := newFakeResolver()
	p := newTestPipeline(res)

	for i := 0; i < 3; i++ {
		if v := p.Evaluate(context.Background(), toRecord(t, entity())); !v.Accepted() {
			t.Fatalf("run %d rejected at %q", i, v.Stage)
		}
	}
	if res.labelLookups["Q5"] != 1 {
		t.Errorf("expected a single Q5 lookup for the whole run, got %d", res.labelLookups["Q5"])
	}
	if p.Labels().Len() != 1 {
		t.Errorf("expected 1 cached label, got %d", p.Labels().Len())
	}
}
