package resolve

import (
	"context"
	"log/slog"
	"net/url"
)

// PageInfo is the canonical title and lead image of an encyclopedia page.
type PageInfo struct {
	Title string
	Image string
}

type pageImagesResponse struct {
	Query struct {
		Normalized []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"normalized"`
		Pages []struct {
			PageID    int    `json:"pageid"`
			NS        int    `json:"ns"`
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			PageImage string `json:"pageimage"`
		} `json:"pages"`
	} `json:"query"`
}

// PageInfo returns the canonical title and page image of title. Pages
// without an image are reported as absent.
func (r *Resolver) PageInfo(ctx context.Context, title string) (PageInfo, bool) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "pageimages")
	params.Set("titles", NormalizeTitle(title))

	var payload pageImagesResponse
	if err := r.client.getJSON(ctx, ServiceWikipedia, r.api.WikipediaURL+"?"+params.Encode(), &payload); err != nil {
		r.logger.Warn("page info lookup failed",
			slog.String("service", ServiceWikipedia),
			slog.String("title", title),
			slog.String("error", err.Error()))
		return PageInfo{}, false
	}

	if len(payload.Query.Pages) == 0 {
		r.logger.Warn("page info lookup returned no pages",
			slog.String("service", ServiceWikipedia),
			slog.String("title", title))
		return PageInfo{}, false
	}

	page := payload.Query.Pages[0]
	if page.Missing || page.PageImage == "" {
		r.logger.Warn("page has no image",
			slog.String("service", ServiceWikipedia),
			slog.String("title", title),
			slog.Bool("missing", page.Missing))
		return PageInfo{}, false
	}

	return PageInfo{Title: page.Title, Image: page.PageImage}, true
}
