package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortly/internal/ratelimit"
)

// RegisterRoutes registers the URL shortener routes. Only the shorten
// endpoint is rate limited; redirects are exempted explicitly so the
// asymmetry is visible here rather than buried in the middleware.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/api/shorten",
		Summary:       "Create a short URL",
		Description:   "Generates a short URL with an expiration date. Shortening the same URL again returns the existing token with a refreshed expiration.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "redirect-short-url",
		Method:      http.MethodGet,
		Path:        "/{token}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short token.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Exempt: true},
		},
	}, urlHandler.Redirect)
}
