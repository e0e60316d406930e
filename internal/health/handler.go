package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortly/internal/ratelimit"
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations.
type Handler struct {
	redis Checker
}

// NewHandler creates a new health handler.
func NewHandler(redis Checker) *Handler {
	return &Handler{redis: redis}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status"`
		Redis  string `json:"redis"`
	}
}

// Check reports service health and store reachability.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "OK"

	if err := h.redis.Ping(ctx); err != nil {
		resp.Body.Redis = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Redis = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Exempt: true},
		},
	}, h.Check)
}
