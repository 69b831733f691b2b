package llm

import (
	"context"
	"fmt"
)

// HuggingFace implements Provider against the Hugging Face inference router,
// which exposes an OpenAI-compatible chat-completions endpoint.
type HuggingFace struct {
	opts Options
	http *httpClient
}

func NewHuggingFace(opts Options) *HuggingFace {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://router.huggingface.co/v1"
	}
	if opts.Model == "" {
		opts.Model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	return &HuggingFace{
		opts: opts,
		http: newHTTPClient(opts.BaseURL, opts.TimeoutSec, map[string]string{
			"Authorization": "Bearer " + opts.APIKey,
		}),
	}
}

func (h *HuggingFace) Name() string    { return "huggingface" }
func (h *HuggingFace) Model() string   { return h.opts.Model }
func (h *HuggingFace) Available() bool { return h.opts.APIKey != "" }

func (h *HuggingFace) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !h.Available() {
		return "", fmt.Errorf("huggingface provider not configured, set HUGGINGFACE_API_KEY")
	}
	return chatCompletion(ctx, h.http, h.Name(), h.opts, prompt, systemPrompt)
}
