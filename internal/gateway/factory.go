package gateway

import (
	"context"
	"fmt"
	"strings"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend string // "memory", "postgres" or "mongo"

	PostgresDSN string

	MongoURI      string
	MongoDatabase string
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Gateway, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		return OpenPostgres(ctx, cfg.PostgresDSN)
	case "mongo":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown gateway backend: %q", cfg.Backend)
	}
}
