package shortener_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/serroba/shortly/internal/shortener"
	"github.com/serroba/shortly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.com/very/long/path"

var hexToken = regexp.MustCompile(`^[0-9a-f]{8}$`)

func newTestEngine(kv store.KV, ttl time.Duration) *shortener.Engine {
	gen, _ := nanoid.CustomASCII("0123456789abcdef", 8)

	return shortener.New(kv, gen, ttl, zap.NewNop())
}

func TestShorten(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), time.Hour)

		link, err := engine.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Equal(t, testURL, link.OriginalURL)

		resolved, err := engine.Resolve(context.Background(), link.Token)

		require.NoError(t, err)
		assert.Equal(t, testURL, resolved)
	})

	t.Run("token matches hex format", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), time.Hour)

		link, err := engine.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Regexp(t, hexToken, link.Token)
	})

	t.Run("same url returns same token", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), time.Hour)

		first, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		second, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		assert.Equal(t, first.Token, second.Token)
		assert.False(t, second.ExpiresAt.Before(first.ExpiresAt),
			"dedup must refresh the expiration")
	})

	t.Run("different urls get different tokens", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), time.Hour)

		first, err := engine.Shorten(context.Background(), "https://example.com/a")
		require.NoError(t, err)

		second, err := engine.Shorten(context.Background(), "https://example.com/b")
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
	})

	t.Run("dedup recreates a lost token key", func(t *testing.T) {
		kv := store.NewMemory()
		engine := newTestEngine(kv, time.Hour)

		// Reverse mapping without its token key, as left by a crash
		// between the pair's two writes
		err := kv.SetWithExpiry(context.Background(), "urlmap:"+testURL, "deadbeef", time.Hour)
		require.NoError(t, err)

		link, err := engine.Shorten(context.Background(), testURL)

		require.NoError(t, err)
		assert.Equal(t, "deadbeef", link.Token)

		resolved, err := engine.Resolve(context.Background(), link.Token)

		require.NoError(t, err)
		assert.Equal(t, testURL, resolved)
	})

	t.Run("dedup survives near-expiry", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), 100*time.Millisecond)

		first, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)

		// Refresh lands inside the original window and restarts it
		second, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)
		assert.Equal(t, first.Token, second.Token)

		time.Sleep(60 * time.Millisecond)

		resolved, err := engine.Resolve(context.Background(), first.Token)

		require.NoError(t, err)
		assert.Equal(t, testURL, resolved)
	})
}

func TestShortenValidation(t *testing.T) {
	engine := newTestEngine(store.NewMemory(), time.Hour)

	cases := map[string]string{
		"empty":           "",
		"no scheme":       "example.com/path",
		"bad scheme":      "ftp://example.com/file",
		"no host":         "https://",
		"not a url":       "://nope",
		"over max length": "https://example.com/" + strings.Repeat("a", 2048),
	}

	for name, rawURL := range cases {
		t.Run(name, func(t *testing.T) {
			link, err := engine.Shorten(context.Background(), rawURL)

			assert.Nil(t, link)
			assert.ErrorIs(t, err, shortener.ErrInvalidURL)
		})
	}
}

func TestTokenCollision(t *testing.T) {
	t.Run("regenerates on collision", func(t *testing.T) {
		kv := store.NewMemory()

		tokens := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
		idx := 0
		gen := func() string {
			token := tokens[idx]
			idx++

			return token
		}

		engine := shortener.New(kv, gen, time.Hour, zap.NewNop())

		first, err := engine.Shorten(context.Background(), "https://example.com/a")
		require.NoError(t, err)
		assert.Equal(t, "aaaaaaaa", first.Token)

		// Generator repeats the live token once before producing a fresh one
		second, err := engine.Shorten(context.Background(), "https://example.com/b")
		require.NoError(t, err)
		assert.Equal(t, "bbbbbbbb", second.Token)

		resolved, err := engine.Resolve(context.Background(), first.Token)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", resolved)
	})

	t.Run("gives up after retry cap", func(t *testing.T) {
		kv := store.NewMemory()
		gen := func() string { return "aaaaaaaa" }

		engine := shortener.New(kv, gen, time.Hour, zap.NewNop())

		_, err := engine.Shorten(context.Background(), "https://example.com/a")
		require.NoError(t, err)

		link, err := engine.Shorten(context.Background(), "https://example.com/b")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, shortener.ErrTokenGeneration)
	})
}

func TestResolve(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), time.Hour)

		_, err := engine.Resolve(context.Background(), "doesnotex")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("expired token", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), 20*time.Millisecond)

		link, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)

		_, err = engine.Resolve(context.Background(), link.Token)

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("resolve does not refresh ttl", func(t *testing.T) {
		engine := newTestEngine(store.NewMemory(), 60*time.Millisecond)

		link, err := engine.Shorten(context.Background(), testURL)
		require.NoError(t, err)

		for range 3 {
			time.Sleep(25 * time.Millisecond)

			_, _ = engine.Resolve(context.Background(), link.Token)
		}

		_, err = engine.Resolve(context.Background(), link.Token)

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
