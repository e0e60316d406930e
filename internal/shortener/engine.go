package shortener

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/serroba/shortly/internal/store"
	"go.uber.org/zap"
)

const (
	tokenPrefix   = "url:"
	reversePrefix = "urlmap:"

	maxURLLength     = 2048
	maxTokenAttempts = 5
)

// TokenGenerator produces candidate short tokens.
type TokenGenerator func() string

// Engine implements URL shortening over a TTL-based key-value store.
// For every live link exactly two keys exist, token->url and url->token,
// carrying the same remaining TTL. The store's TTL eviction is the only
// destructor; there is no explicit delete path.
type Engine struct {
	kv       store.KV
	generate TokenGenerator
	ttl      time.Duration
	logger   *zap.Logger
}

// New creates a shortening engine. Tokens from the generator are expected to
// be unique enough that maxTokenAttempts retries cover collisions.
func New(kv store.KV, generate TokenGenerator, ttl time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		kv:       kv,
		generate: generate,
		ttl:      ttl,
		logger:   logger,
	}
}

// Shorten returns a short link for rawURL, minting a token on first sight and
// returning the existing one (with a refreshed TTL) on subsequent calls.
func (e *Engine) Shorten(ctx context.Context, rawURL string) (*ShortLink, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	reverseKey := reversePrefix + rawURL

	existing, err := e.kv.Get(ctx, reverseKey)
	if err == nil {
		return e.refresh(ctx, existing, rawURL)
	}

	if !errors.Is(err, store.ErrKeyNotFound) {
		return nil, err
	}

	token, err := e.newToken(ctx)
	if err != nil {
		return nil, err
	}

	// SET NX closes the check-then-act race: two concurrent calls for the
	// same new URL both reach here, but only one claims the reverse key.
	created, err := e.kv.SetIfAbsent(ctx, reverseKey, token, e.ttl)
	if err != nil {
		return nil, err
	}

	if !created {
		winner, err := e.kv.Get(ctx, reverseKey)
		if err == nil {
			return e.refresh(ctx, winner, rawURL)
		}

		if !errors.Is(err, store.ErrKeyNotFound) {
			return nil, err
		}

		// The winner's mapping already expired; claim it ourselves.
		if err := e.kv.SetWithExpiry(ctx, reverseKey, token, e.ttl); err != nil {
			return nil, err
		}
	}

	if err := e.kv.SetWithExpiry(ctx, tokenPrefix+token, rawURL, e.ttl); err != nil {
		return nil, err
	}

	return &ShortLink{
		Token:       token,
		OriginalURL: rawURL,
		ExpiresAt:   time.Now().Add(e.ttl),
	}, nil
}

// Resolve looks up the original URL for a token. It is a pure read: the TTL
// is not touched, so heavily visited links still expire on schedule.
func (e *Engine) Resolve(ctx context.Context, token string) (string, error) {
	originalURL, err := e.kv.Get(ctx, tokenPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return "", ErrNotFound
		}

		return "", err
	}

	return originalURL, nil
}

// refresh resets both keys of an existing link to the full TTL window.
// Either key can be missing: a crash between the pair's writes, or an
// eviction between our read and the Expire, leaves the mapping one-sided.
// Recreating the absent key here restores the two-entry invariant instead
// of renewing a token that no longer resolves.
func (e *Engine) refresh(ctx context.Context, token, rawURL string) (*ShortLink, error) {
	ok, err := e.kv.Expire(ctx, tokenPrefix+token, e.ttl)
	if err != nil {
		return nil, err
	}

	if !ok {
		if err := e.kv.SetWithExpiry(ctx, tokenPrefix+token, rawURL, e.ttl); err != nil {
			return nil, err
		}
	}

	ok, err = e.kv.Expire(ctx, reversePrefix+rawURL, e.ttl)
	if err != nil {
		return nil, err
	}

	if !ok {
		if err := e.kv.SetWithExpiry(ctx, reversePrefix+rawURL, token, e.ttl); err != nil {
			return nil, err
		}
	}

	return &ShortLink{
		Token:       token,
		OriginalURL: rawURL,
		ExpiresAt:   time.Now().Add(e.ttl),
	}, nil
}

// newToken generates a token that is not currently mapped to another URL,
// giving up after maxTokenAttempts collisions.
func (e *Engine) newToken(ctx context.Context) (string, error) {
	for range maxTokenAttempts {
		token := e.generate()

		_, err := e.kv.Get(ctx, tokenPrefix+token)
		if errors.Is(err, store.ErrKeyNotFound) {
			return token, nil
		}

		if err != nil {
			return "", err
		}

		e.logger.Warn("token collision, regenerating", zap.String("token", token))
	}

	e.logger.Error("token generation exhausted", zap.Int("attempts", maxTokenAttempts))

	return "", ErrTokenGeneration
}

func validateURL(rawURL string) error {
	if rawURL == "" || len(rawURL) > maxURLLength {
		return ErrInvalidURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}
