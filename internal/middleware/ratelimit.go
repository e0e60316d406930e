package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortly/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware that enforces the fixed-window limit
// keyed by hashed client IP. Operations flagged ratelimit.EndpointConfig
// {Exempt: true} in their metadata skip the check. Store failures fail
// closed: the request is rejected with a 503 rather than admitted while the
// counter is unreachable.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.FixedWindowLimiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil && cfg.Exempt {
			next(ctx)

			return
		}

		identity := clientKey(ctx)

		decision, err := limiter.Allow(ctx.Context(), identity)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("request_id", RequestIDFromContext(ctx.Context())),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "service unavailable", err)

			return
		}

		ctx.SetHeader("X-Rate-Limit", strconv.FormatInt(decision.Limit, 10))

		if !decision.Allowed {
			retryAfter := int(decision.RetryAfter / time.Second)
			if decision.RetryAfter%time.Second != 0 {
				retryAfter++
			}

			ctx.SetHeader("Retry-After", strconv.Itoa(retryAfter))

			logger.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP(ctx)),
				zap.String("request_id", RequestIDFromContext(ctx.Context())),
				zap.Int64("limit", decision.Limit),
				zap.Int("retry_after", retryAfter),
			)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// clientKey hashes the client IP so raw addresses never become store keys.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx)))

	return hex.EncodeToString(hash[:])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	// Check X-Forwarded-For header (may contain multiple IPs)
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP header
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to Host (which contains remote addr in Huma context)
	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
