package resolve

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/ppiankov/wikisift/internal/cache"
)

type entitiesResponse struct {
	Entities map[string]struct {
		ID     string `json:"id"`
		Labels map[string]struct {
			Language string `json:"language"`
			Value    string `json:"value"`
		} `json:"labels"`
	} `json:"entities"`
}

// Label returns the English label of entity id. Cached labels are returned
// without a request; successful lookups are added to labels. Failed lookups
// are not cached.
func (r *Resolver) Label(ctx context.Context, id string, labels cache.LabelCache) (string, bool) {
	if label, ok := labels.Get(id); ok {
		return label, true
	}

	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("props", "labels")
	params.Set("ids", id)
	params.Set("languages", "en")
	params.Set("format", "json")

	var payload entitiesResponse
	if err := r.client.getJSON(ctx, ServiceWikidata, r.api.WikidataURL+"?"+params.Encode(), &payload); err != nil {
		r.logger.Warn("label lookup failed",
			slog.String("service", ServiceWikidata),
			slog.String("id", id),
			slog.String("error", err.Error()))
		return "", false
	}

	entity, ok := payload.Entities[id]
	if !ok {
		r.logger.Warn("label lookup returned no entity",
			slog.String("service", ServiceWikidata),
			slog.String("id", id))
		return "", false
	}
	en, ok := entity.Labels["en"]
	if !ok {
		r.logger.Debug("entity has no english label",
			slog.String("service", ServiceWikidata),
			slog.String("id", id))
		return "", false
	}

	labels.Set(id, en.Value)
	return en.Value, true
}
