package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chatdawah/rag-chatbot/internal/chatbot"
	"github.com/chatdawah/rag-chatbot/internal/config"
	"github.com/chatdawah/rag-chatbot/internal/vector"
)

type stubProvider struct{ answer string }

func (s *stubProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return s.answer, nil
}
func (s *stubProvider) Available() bool { return true }
func (s *stubProvider) Name() string    { return "openai" }
func (s *stubProvider) Model() string   { return "gpt-3.5-turbo" }

type stubEmbedder struct{}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (s *stubEmbedder) Model() string { return "text-embedding-3-small" }

type stubStore struct {
	hits  []vector.Hit
	count int
}

func (s *stubStore) EnsureCollection(_ context.Context, _ int) (bool, error) { return false, nil }
func (s *stubStore) Upsert(_ context.Context, _ []vector.Point) error       { return nil }
func (s *stubStore) Search(_ context.Context, _ []float32, limit int) ([]vector.Hit, error) {
	if limit > len(s.hits) {
		limit = len(s.hits)
	}
	return s.hits[:limit], nil
}
func (s *stubStore) Count(_ context.Context) (int, error) { return s.count, nil }
func (s *stubStore) Drop(_ context.Context) error         { return nil }
func (s *stubStore) Close() error                         { return nil }
func (s *stubStore) Name() string                         { return "Qdrant" }

func testServer(t *testing.T, store vector.Store, initialize bool) *httptest.Server {
	t.Helper()

	dataPath := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(dataPath, []byte(`[{"instruction":"q","output":"a"}]`), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}

	cfg := &config.Config{
		AppVersion:          "1.0.0",
		LLMProvider:         "openai",
		OpenAIModel:         "gpt-3.5-turbo",
		MaxTokens:           1000,
		Temperature:         0.7,
		TopK:                10,
		SimilarityThreshold: 0.3,
		CollectionName:      "instructions",
		EmbeddingModel:      "text-embedding-3-small",
		DataPath:            dataPath,
	}

	svc := chatbot.NewService(cfg, &stubProvider{answer: "an answer"}, &stubEmbedder{}, store)
	if initialize {
		if err := svc.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
	}

	srv := httptest.NewServer(NewRouter(NewHandler(svc, cfg)))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url, body string, out any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealthReflectsReadiness(t *testing.T) {
	srv := testServer(t, &stubStore{}, false)

	var health healthResponse
	if code := getJSON(t, srv.URL+"/health", &health); code != http.StatusOK {
		t.Fatalf("health status %d", code)
	}
	if health.ChatbotReady || health.Status != "initializing" {
		t.Errorf("expected initializing before setup, got %+v", health)
	}

	srv2 := testServer(t, &stubStore{}, true)
	if code := getJSON(t, srv2.URL+"/health", &health); code != http.StatusOK {
		t.Fatalf("health status %d", code)
	}
	if !health.ChatbotReady || health.Status != "healthy" {
		t.Errorf("expected healthy after setup, got %+v", health)
	}
	if health.Version != "1.0.0" {
		t.Errorf("unexpected version: %q", health.Version)
	}
}

func TestQueryNotReadyReturns503(t *testing.T) {
	srv := testServer(t, &stubStore{}, false)

	var body map[string]string
	code := postJSON(t, srv.URL+"/query", `{"question":"What is Zakat?"}`, &body)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body["detail"] == "" {
		t.Error("expected error detail in body")
	}
}

func TestQueryValidation(t *testing.T) {
	srv := testServer(t, &stubStore{}, true)

	if code := postJSON(t, srv.URL+"/query", `{broken`, nil); code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", code)
	}
	if code := postJSON(t, srv.URL+"/query", `{"question":"   "}`, nil); code != http.StatusBadRequest {
		t.Errorf("blank question: expected 400, got %d", code)
	}
}

func TestQuerySuccess(t *testing.T) {
	store := &stubStore{hits: []vector.Hit{
		{Score: 0.81, Payload: map[string]string{"instruction": "What is Zakat?", "output": "Obligatory charity."}},
		{Score: 0.52, Payload: map[string]string{"instruction": "Who pays it?", "output": "Those above nisab."}},
		{Score: 0.20, Payload: map[string]string{"instruction": "What is Hajj?", "output": "The pilgrimage."}},
	}}
	srv := testServer(t, store, true)

	var res chatbot.QueryResult
	code := postJSON(t, srv.URL+"/query", `{"question":"What is Zakat?","top_k":3}`, &res)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if res.Answer != "an answer" {
		t.Errorf("unexpected answer: %q", res.Answer)
	}
	if res.Question != "What is Zakat?" {
		t.Errorf("question not echoed: %q", res.Question)
	}
	if len(res.Context) != 2 {
		t.Fatalf("expected 2 context items after threshold filter, got %d", len(res.Context))
	}
	if res.Context[0].Similarity < res.Context[1].Similarity {
		t.Error("context not in descending similarity order")
	}
}

func TestStats(t *testing.T) {
	srv := testServer(t, &stubStore{}, false)
	if code := getJSON(t, srv.URL+"/stats", nil); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before ready, got %d", code)
	}

	srv2 := testServer(t, &stubStore{count: 42}, true)
	var stats chatbot.Stats
	if code := getJSON(t, srv2.URL+"/stats", &stats); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if stats.TotalDocuments != 42 {
		t.Errorf("expected 42 documents, got %d", stats.TotalDocuments)
	}
	if stats.Model != "gpt-3.5-turbo" || stats.DefaultTopK != 10 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestConfig(t *testing.T) {
	srv := testServer(t, &stubStore{}, false)

	var cfg configResponse
	if code := getJSON(t, srv.URL+"/config", &cfg); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if cfg.TopK != 10 || cfg.MaxTokens != 1000 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("unexpected model: %q", cfg.Model)
	}
	if cfg.SimilarityThreshold != 0.3 {
		t.Errorf("unexpected threshold: %v", cfg.SimilarityThreshold)
	}
}
