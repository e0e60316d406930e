package container

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortly/internal/handlers"
	"github.com/serroba/shortly/internal/health"
	"github.com/serroba/shortly/internal/middleware"
	"github.com/serroba/shortly/internal/ratelimit"
	"github.com/serroba/shortly/internal/shortener"
	"github.com/serroba/shortly/internal/store"
	"go.uber.org/zap"
)

// Tokens are 8 hex characters; the reverse mapping guarantees uniqueness
// per live URL, collisions are handled by the engine's retry loop.
const (
	tokenAlphabet = "0123456789abcdef"
	tokenLength   = 8
)

type Options struct {
	Port              int    `default:"8888"           help:"Port to listen on"                                                  short:"p"`
	BaseURL           string `default:""               help:"Public base URL for short links (defaults to http://localhost:<port>)"`
	RedisAddr         string `default:"localhost:6379" help:"Redis server address"                                               short:"r"`
	TokenTTLSeconds   int    `default:"2592000"        help:"Short link lifetime in seconds"`
	RateLimit         int    `default:"10"             help:"Max shorten requests per client per window"`
	RateWindowSeconds int    `default:"60"             help:"Rate limit window length in seconds"`
}

// LoggerPackage provides the application logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*zap.Logger, error) {
		return zap.NewProduction()
	})
}

// RedisPackage provides the shared Redis client. The pool inside the client
// is created lazily on first use and lives for the whole process.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr:        options.RedisAddr,
			DialTimeout: 5 * time.Second,
			ReadTimeout: 5 * time.Second,
		}), nil
	})
}

// StorePackage provides the key-value store adapter used by both the
// shortening engine and the rate limiter.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (store.KV, error) {
		return store.NewRedis(do.MustInvoke[*redis.Client](i)), nil
	})
}

// ShortenerPackage provides the shortening engine.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Engine, error) {
		options := do.MustInvoke[*Options](i)

		generate, err := nanoid.CustomASCII(tokenAlphabet, tokenLength)
		if err != nil {
			return nil, err
		}

		ttl := time.Duration(options.TokenTTLSeconds) * time.Second

		return shortener.New(
			do.MustInvoke[store.KV](i),
			generate,
			ttl,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the fixed-window rate limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.FixedWindowLimiter, error) {
		options := do.MustInvoke[*Options](i)
		window := time.Duration(options.RateWindowSeconds) * time.Second

		return ratelimit.NewFixedWindowLimiter(
			do.MustInvoke[store.KV](i),
			int64(options.RateLimit),
			window,
		), nil
	})
}

// HTTPPackage provides the router and API, wiring middleware and routes.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Shortly", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestID(),
			middleware.RateLimiter(api, do.MustInvoke[*ratelimit.FixedWindowLimiter](i), logger),
		)

		baseURL := options.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", options.Port)
		}

		urlHandler := handlers.NewURLHandler(do.MustInvoke[*shortener.Engine](i), baseURL, logger)
		handlers.RegisterRoutes(api, urlHandler)

		healthHandler := health.NewHandler(health.NewRedisChecker(do.MustInvoke[*redis.Client](i)))
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}
