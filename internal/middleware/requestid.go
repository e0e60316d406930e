package middleware

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// HeaderRequestID is the header carrying the request ID.
const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns a Huma middleware that assigns each request a UUID,
// echoes it in the response, and stores it in the request context for log
// correlation. An inbound X-Request-Id from a trusted proxy is reused.
func RequestID() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		id := ctx.Header(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx.SetHeader(HeaderRequestID, id)

		next(huma.WithValue(ctx, requestIDKey{}, id))
	}
}

// RequestIDFromContext extracts the request ID, or "" when the middleware
// did not run.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}
