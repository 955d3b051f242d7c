package resolve

import (
	"log/slog"
	"strings"

	"github.com/ppiankov/wikisift/internal/model"
)

// Service names used in log lines.
const (
	ServiceWikidata  = "wikidata"
	ServicePageviews = "pageviews"
	ServiceWikipedia = "wikipedia"
)

// Resolver performs the three external lookups over a shared Client.
type Resolver struct {
	client *Client
	api    model.APIConfig
	logger *slog.Logger
}

// NewResolver creates a Resolver for the given endpoints.
func NewResolver(client *Client, api model.APIConfig) *Resolver {
	return &Resolver{
		client: client,
		api:    api,
		logger: client.logger.With(slog.String("component", "resolve")),
	}
}

// NormalizeTitle converts a page title to its URL form.
func NormalizeTitle(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}
