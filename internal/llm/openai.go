package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// OpenAI implements Provider against the OpenAI chat-completions API.
type OpenAI struct {
	opts Options
	http *httpClient
}

// NewOpenAI creates the OpenAI provider. A missing API key does not fail
// construction; it makes the provider unavailable, which initialization
// reports to the operator.
func NewOpenAI(opts Options) *OpenAI {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	return &OpenAI{
		opts: opts,
		http: newHTTPClient(opts.BaseURL, opts.TimeoutSec, map[string]string{
			"Authorization": "Bearer " + opts.APIKey,
		}),
	}
}

func (o *OpenAI) Name() string    { return "openai" }
func (o *OpenAI) Model() string   { return o.opts.Model }
func (o *OpenAI) Available() bool { return o.opts.APIKey != "" }

func (o *OpenAI) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !o.Available() {
		return "", fmt.Errorf("openai provider not configured, set OPENAI_API_KEY")
	}
	return chatCompletion(ctx, o.http, o.Name(), o.opts, prompt, systemPrompt)
}

// --- OpenAI-compatible chat-completions wire format, shared with the
// Hugging Face router backend. ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func chatCompletion(ctx context.Context, hc *httpClient, name string, opts Options, prompt, systemPrompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body := chatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := hc.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("%s chat: %w", name, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s chat: %s", name, readErrorBody(resp))
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s chat decode: %w", name, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s chat: no choices returned", name)
	}
	return out.Choices[0].Message.Content, nil
}
