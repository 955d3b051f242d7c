package pipeline

import (
	"context"
	"log/slog"

	"github.com/ppiankov/wikisift/internal/cache"
	"github.com/ppiankov/wikisift/internal/filter"
	"github.com/ppiankov/wikisift/internal/logging"
	"github.com/ppiankov/wikisift/internal/model"
	"github.com/ppiankov/wikisift/internal/record"
	"github.com/ppiankov/wikisift/internal/resolve"
)

// Stage names the rule that rejected a record.
type Stage string

const (
	StageAccepted    Stage = ""
	StageLabel       Stage = "label"
	StageDescription Stage = "description"
	StageIdentity    Stage = "identity"
	StageTypes       Stage = "types"
	StageSitelinks   Stage = "sitelinks"
	StagePopularity  Stage = "popularity"
	StagePageInfo    Stage = "page_info"
)

// Stages lists the rejection stages in evaluation order.
var Stages = []Stage{
	StageLabel,
	StageDescription,
	StageIdentity,
	StageTypes,
	StageSitelinks,
	StagePopularity,
	StagePageInfo,
}

// Resolver performs the external lookups the pipeline needs.
type Resolver interface {
	Label(ctx context.Context, id string, labels cache.LabelCache) (string, bool)
	PageViews(ctx context.Context, title string) (int, bool)
	PageInfo(ctx context.Context, title string) (resolve.PageInfo, bool)
}

// Verdict is the outcome of evaluating one record. Item is set only when
// every rule passed.
type Verdict struct {
	Item   *model.Item
	Stage  Stage
	Reason string
}

// Accepted reports whether the record produced an item.
func (v Verdict) Accepted() bool {
	return v.Item != nil
}

func reject(stage Stage, reason string) Verdict {
	return Verdict{Stage: stage, Reason: reason}
}

// Pipeline evaluates records one at a time against the selection rules.
type Pipeline struct {
	resolver     Resolver
	labels       cache.LabelCache
	dateProps    []model.DateProperty
	minSitelinks int
	logger       *slog.Logger
}

// New creates a pipeline. labels lives for the whole run and is passed to
// every label lookup.
func New(resolver Resolver, labels cache.LabelCache, sel model.SelectionConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	dateProps := sel.DateProperties
	if len(dateProps) == 0 {
		dateProps = model.DefaultDateProperties()
	}
	return &Pipeline{
		resolver:     resolver,
		labels:       labels,
		dateProps:    dateProps,
		minSitelinks: sel.MinSitelinks,
		logger:       logger.With(slog.String("component", "pipeline")),
	}
}

// Labels returns the run's label cache.
func (p *Pipeline) Labels() cache.LabelCache {
	return p.labels
}

// DateProperties returns the date property priority list in use.
func (p *Pipeline) DateProperties() []model.DateProperty {
	return p.dateProps
}

// Evaluate runs the selection rules against rec in order and stops at the
// first failure. Network lookups happen only after every static rule that
// precedes them has passed.
func (p *Pipeline) Evaluate(ctx context.Context, rec record.Record) Verdict {
	label, ok := rec.Label()
	if !ok {
		return reject(StageLabel, "no label")
	}
	if pattern, blocked := filter.LabelBlocklist.Match(label); blocked {
		return reject(StageLabel, "label matches "+pattern)
	}

	description, ok := rec.Description()
	if !ok {
		return reject(StageDescription, "no description")
	}
	if pattern, blocked := filter.DescriptionBlocklist.Match(description); blocked {
		return reject(StageDescription, "description matches "+pattern)
	}

	id, ok := rec.ID()
	if !ok {
		return reject(StageIdentity, "no id")
	}
	title, ok := rec.WikipediaTitle()
	if !ok {
		return reject(StageIdentity, "no wikipedia sitelink")
	}
	date, ok := rec.DateAndProperty(p.dateProps)
	if !ok {
		return reject(StageIdentity, "no date property")
	}

	typeIDs, ok := rec.TypeIDs()
	if !ok {
		return reject(StageTypes, "no instance of claim")
	}
	types := p.resolveLabels(ctx, typeIDs)
	if !filter.TypesAllowed(types) {
		return reject(StageTypes, "excluded type")
	}

	var occupations []string
	if occupationIDs, ok := rec.OccupationIDs(); ok {
		occupations = p.resolveLabels(ctx, occupationIDs)
	}

	sitelinks, ok := rec.SitelinkCount()
	if !ok {
		return reject(StageSitelinks, "no sitelinks")
	}
	if !filter.EnoughSitelinks(sitelinks, p.minSitelinks) {
		return reject(StageSitelinks, "too few sitelinks")
	}

	views, ok := p.resolver.PageViews(ctx, title)
	if !ok {
		return reject(StagePopularity, "page views unavailable")
	}
	if !filter.EnoughPageViews(date.Year, types, views) {
		return reject(StagePopularity, "too few page views")
	}

	info, ok := p.resolver.PageInfo(ctx, title)
	if !ok {
		return reject(StagePageInfo, "page info unavailable")
	}

	return Verdict{Item: &model.Item{
		ID:             id,
		Label:          info.Title,
		Description:    description,
		WikipediaTitle: title,
		DatePropID:     date.PropertyID,
		Year:           date.Year,
		InstanceOf:     types,
		Occupations:    occupations,
		PageViews:      views,
		Image:          info.Image,
	}}
}

// resolveLabels looks up each distinct id in first-seen order. Ids that fail
// to resolve are dropped.
func (p *Pipeline) resolveLabels(ctx context.Context, ids []string) []string {
	labels := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if label, ok := p.resolver.Label(ctx, id, p.labels); ok {
			labels = append(labels, label)
		}
	}
	return labels
}
