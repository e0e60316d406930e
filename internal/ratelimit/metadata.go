package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig is attached to huma operations via the Metadata field to
// control rate limiting per endpoint.
type EndpointConfig struct {
	// Exempt skips the rate limit check entirely for this endpoint.
	// Redirects are exempt: they are single cheap reads, and throttling
	// them would punish legitimate link traffic rather than abusive
	// shortening.
	Exempt bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
