package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

type pageviewsResponse struct {
	Items []struct {
		Project     string `json:"project"`
		Article     string `json:"article"`
		Granularity string `json:"granularity"`
		Timestamp   string `json:"timestamp"`
		Access      string `json:"access"`
		Agent       string `json:"agent"`
		Views       int    `json:"views"`
	} `json:"items"`
}

// PageViews returns the view count of title over the configured monthly
// window.
func (r *Resolver) PageViews(ctx context.Context, title string) (int, bool) {
	endpoint := fmt.Sprintf("%s/%s/monthly/%s/%s",
		strings.TrimRight(r.api.PageviewsURL, "/"),
		url.PathEscape(NormalizeTitle(title)),
		r.api.PageviewsStart,
		r.api.PageviewsEnd,
	)

	var payload pageviewsResponse
	if err := r.client.getJSON(ctx, ServicePageviews, endpoint, &payload); err != nil {
		r.logger.Warn("page views lookup failed",
			slog.String("service", ServicePageviews),
			slog.String("title", title),
			slog.String("error", err.Error()))
		return 0, false
	}

	if len(payload.Items) == 0 {
		r.logger.Warn("page views lookup returned no items",
			slog.String("service", ServicePageviews),
			slog.String("title", title))
		return 0, false
	}

	return payload.Items[0].Views, true
}
