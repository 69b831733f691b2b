package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini implements Provider on top of the Google GenAI API.
type Gemini struct {
	opts   Options
	client *genai.Client
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	g := &Gemini{opts: opts}
	if opts.APIKey == "" {
		// Construct unavailable; initialization surfaces the missing key.
		return g, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = c
	return g, nil
}

func (g *Gemini) Name() string    { return "gemini" }
func (g *Gemini) Model() string   { return g.opts.Model }
func (g *Gemini) Available() bool { return g.client != nil && g.opts.APIKey != "" }

func (g *Gemini) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if !g.Available() {
		return "", fmt.Errorf("gemini provider not configured, set GEMINI_API_KEY")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens: int32(g.opts.MaxTokens),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.Text(systemPrompt)[0]
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generateContent error: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return "", fmt.Errorf("model returned empty text")
	}
	return txt, nil
}

var _ Provider = (*Gemini)(nil)
var _ Provider = (*OpenAI)(nil)
var _ Provider = (*HuggingFace)(nil)
