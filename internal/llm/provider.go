// Package llm implements the pluggable text-generation backends.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatdawah/rag-chatbot/internal/config"
)

// Provider is the contract every generation backend implements.
type Provider interface {
	// Generate produces a completion for prompt. systemPrompt may be empty.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
	// Available reports whether the backend is configured with credentials.
	Available() bool
	// Name identifies the backend ("openai", "huggingface", "gemini").
	Name() string
	// Model returns the configured generation model.
	Model() string
}

// Options carries the per-provider settings resolved from configuration.
// BaseURL is overridable so tests can point at a local server.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	TimeoutSec  int
}

// New resolves the active provider from configuration. An unrecognized
// provider name is a configuration error and fails at startup, not at
// request time.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai":
		return NewOpenAI(Options{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}), nil
	case "huggingface":
		return NewHuggingFace(Options{
			APIKey:      cfg.HuggingFaceAPIKey,
			Model:       cfg.HuggingFaceModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		}), nil
	case "gemini":
		return NewGemini(ctx, Options{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use \"openai\", \"huggingface\" or \"gemini\")", cfg.LLMProvider)
	}
}
