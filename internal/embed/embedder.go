// Package embed wraps the hosted embedding APIs the service delegates to.
package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatdawah/rag-chatbot/internal/config"
)

// Embedder turns texts into fixed-length vectors. Implementations return one
// vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Options carries the settings an embedding backend needs.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	TimeoutSec int
}

// New resolves the embedding backend from configuration. Unknown names and
// missing credentials are configuration errors at startup.
func New(ctx context.Context, cfg *config.Config) (Embedder, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "openai":
		return NewOpenAI(Options{
			APIKey:  cfg.EmbeddingAPIKey,
			BaseURL: cfg.EmbeddingBaseURL,
			Model:   cfg.EmbeddingModel,
		})
	case "gemini":
		return NewGemini(ctx, Options{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.EmbeddingModel,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (use \"openai\" or \"gemini\")", cfg.EmbeddingProvider)
	}
}
