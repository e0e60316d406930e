package handlers

import "time"

// ShortenRequest is the request body for creating a short URL.
type ShortenRequest struct {
	Body struct {
		// Length is validated by the engine so oversized URLs map to a
		// 400 rather than huma's schema-level 422.
		OriginalURL string `doc:"The URL to shorten, at most 2048 characters" example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// ShortenResponse is the response for a successfully created short URL.
type ShortenResponse struct {
	Body struct {
		ShortURL       string    `doc:"The full short URL"          example:"http://localhost:8888/a1b2c3d4" json:"shortUrl"`
		ExpirationDate time.Time `doc:"When the short link expires" json:"expirationDate"`
		Success        bool      `doc:"Always true on success"      json:"success"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	Token string `doc:"The short token" example:"a1b2c3d4" path:"token"`
}

// RedirectResponse redirects the visitor to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}
