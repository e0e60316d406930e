package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortly/internal/middleware"
	"github.com/serroba/shortly/internal/shortener"
	"github.com/serroba/shortly/internal/store"
	"go.uber.org/zap"
)

// URLHandler maps shortening engine results onto HTTP responses.
type URLHandler struct {
	engine  *shortener.Engine
	baseURL string
	logger  *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(engine *shortener.Engine, baseURL string, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		engine:  engine,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.engine.Shorten(ctx, req.Body.OriginalURL)
	if err != nil {
		return nil, h.mapShortenError(ctx, err)
	}

	resp := &ShortenResponse{}
	resp.Body.ShortURL = fmt.Sprintf("%s/%s", h.baseURL, link.Token)
	resp.Body.ExpirationDate = link.ExpiresAt
	resp.Body.Success = true

	return resp, nil
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	originalURL, err := h.engine.Resolve(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrNotFound):
			return nil, huma.Error404NotFound("short url not found")
		case errors.Is(err, store.ErrUnavailable):
			return nil, huma.Error503ServiceUnavailable("store unavailable")
		default:
			return nil, huma.Error500InternalServerError("failed to resolve short url")
		}
	}

	resp := &RedirectResponse{
		Status: http.StatusTemporaryRedirect,
	}
	resp.Headers.Location = originalURL

	return resp, nil
}

func (h *URLHandler) mapShortenError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidURL):
		return huma.Error400BadRequest("invalid url: must be an absolute http(s) url of at most 2048 characters")
	case errors.Is(err, shortener.ErrTokenGeneration):
		// Should be rare: means the token space is badly crowded
		h.logger.Error("token generation exhausted",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.Error(err),
		)

		return huma.Error503ServiceUnavailable("unable to allocate short token")
	case errors.Is(err, store.ErrUnavailable):
		return huma.Error503ServiceUnavailable("store unavailable")
	default:
		h.logger.Error("shorten failed",
			zap.String("request_id", middleware.RequestIDFromContext(ctx)),
			zap.Error(err),
		)

		return huma.Error500InternalServerError("failed to shorten url")
	}
}
