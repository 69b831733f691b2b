package llm

import (
	"context"
	"testing"

	"github.com/chatdawah/rag-chatbot/internal/config"
)

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{
		LLMProvider:       "openai",
		OpenAIAPIKey:      "k",
		OpenAIModel:       "gpt-3.5-turbo",
		HuggingFaceModel:  "mistralai/Mistral-7B-Instruct-v0.2",
		HuggingFaceAPIKey: "k2",
	}

	p, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai, got %q", p.Name())
	}
	if p.Model() != "gpt-3.5-turbo" {
		t.Errorf("unexpected model: %q", p.Model())
	}

	cfg.LLMProvider = "HuggingFace"
	p, err = New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "huggingface" {
		t.Errorf("expected huggingface, got %q", p.Name())
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{LLMProvider: "anthropic"}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected configuration error for unknown provider")
	}
}
