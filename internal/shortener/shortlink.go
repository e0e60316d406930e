package shortener

import (
	"errors"
	"time"
)

// ShortLink is a live token-to-URL mapping.
type ShortLink struct {
	Token       string
	OriginalURL string
	ExpiresAt   time.Time
}

var (
	// ErrInvalidURL is returned for malformed, non-absolute, or oversized URLs.
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotFound is returned when a token does not exist or has expired.
	ErrNotFound = errors.New("short link not found")

	// ErrTokenGeneration is returned after exhausting collision retries.
	ErrTokenGeneration = errors.New("token generation exhausted")
)
