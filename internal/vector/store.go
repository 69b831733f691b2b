// Package vector wraps the external vector index the chatbot retrieves from.
package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatdawah/rag-chatbot/internal/config"
)

// Point is one indexed knowledge item: a sequential integer id, its
// embedding, and the payload stored alongside it.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload map[string]string
}

// Hit is a search result. Backends return hits in descending-similarity
// order; no re-ranking happens on top of what the index provides.
type Hit struct {
	Score   float32
	Payload map[string]string
}

// Store is the contract a vector index backend implements.
type Store interface {
	// EnsureCollection creates the collection with the given dimensionality
	// if it does not exist. It reports whether a new collection was created,
	// which tells the caller the collection still needs populating.
	EnsureCollection(ctx context.Context, dim int) (created bool, err error)
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
	// Drop removes the collection entirely. Used by the ingestion CLI.
	Drop(ctx context.Context) error
	Close() error
	Name() string
}

// New resolves the vector backend from configuration. Missing endpoints and
// unknown backend names are configuration errors at startup.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.VectorBackend) {
	case "qdrant":
		return NewQdrant(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.CollectionName)
	case "pgvector":
		return NewPgVector(ctx, cfg.DatabaseURL, cfg.CollectionName)
	default:
		return nil, fmt.Errorf("unknown vector backend %q (use \"qdrant\" or \"pgvector\")", cfg.VectorBackend)
	}
}
