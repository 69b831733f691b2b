// Package chatbot contains the retrieval-augmented query orchestrator.
package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/chatdawah/rag-chatbot/internal/config"
	"github.com/chatdawah/rag-chatbot/internal/embed"
	"github.com/chatdawah/rag-chatbot/internal/llm"
	"github.com/chatdawah/rag-chatbot/internal/vector"
)

// ErrNotReady is returned for queries that arrive before initialization has
// completed. Callers map it to a retryable "service unavailable" signal.
var ErrNotReady = errors.New("chatbot not initialized")

// State tracks the one-time initialization phase.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Points are uploaded to the index in fixed-size batches; a failed batch
// aborts initialization.
const uploadBatchSize = 100

// Service composes retrieval and generation into one answer-producing
// operation. After initialization completes the service is read-only, so the
// query path needs no locking.
type Service struct {
	cfg      *config.Config
	provider llm.Provider
	embedder embed.Embedder
	store    vector.Store

	state atomic.Int32
	items []KnowledgeItem
}

func NewService(cfg *config.Config, provider llm.Provider, embedder embed.Embedder, store vector.Store) *Service {
	return &Service{
		cfg:      cfg,
		provider: provider,
		embedder: embedder,
		store:    store,
	}
}

func (s *Service) State() State { return State(s.state.Load()) }
func (s *Service) Ready() bool  { return s.State() == StateReady }

// Initialize loads the knowledge base, verifies the provider, connects the
// vector collection and populates it when newly created. It runs once;
// queries arriving before it completes get ErrNotReady instead of racing it.
func (s *Service) Initialize(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return fmt.Errorf("initialize called in state %q", s.State())
	}
	if err := s.initialize(ctx); err != nil {
		s.state.Store(int32(StateFailed))
		return err
	}
	s.state.Store(int32(StateReady))
	log.Printf("chatbot ready: provider=%s model=%s embedding=%s store=%s",
		s.provider.Name(), s.provider.Model(), s.embedder.Model(), s.store.Name())
	return nil
}

func (s *Service) initialize(ctx context.Context) error {
	items, err := LoadKnowledge(s.cfg.DataPath)
	if err != nil {
		return err
	}
	log.Printf("loaded %d knowledge items from %s", len(items), s.cfg.DataPath)

	if !s.provider.Available() {
		return fmt.Errorf("LLM provider %q is not properly configured, check your API keys", s.provider.Name())
	}

	// The vector dimension depends on the embedding model; probe it from a
	// sample instead of hardcoding.
	sample, err := s.embedder.Embed(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(sample) == 0 || len(sample[0]) == 0 {
		return fmt.Errorf("embedding model returned an empty vector")
	}
	dim := len(sample[0])
	log.Printf("vector dimension: %d", dim)

	created, err := s.store.EnsureCollection(ctx, dim)
	if err != nil {
		return err
	}
	if created {
		if err := s.populate(ctx, items); err != nil {
			return err
		}
	} else {
		n, err := s.store.Count(ctx)
		if err != nil {
			return err
		}
		log.Printf("loaded existing collection with %d items", n)
	}

	s.items = items
	return nil
}

// populate embeds all knowledge items and uploads them, sequentially, in
// fixed-size batches keyed by sequential integer ids.
func (s *Service) populate(ctx context.Context, items []KnowledgeItem) error {
	log.Printf("populating collection with %d items", len(items))

	for start := 0; start < len(items); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = item.Instruction
		}
		vectors, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}

		points := make([]vector.Point, len(batch))
		for i, item := range batch {
			points[i] = vector.Point{
				ID:      uint64(start + i),
				Vector:  vectors[i],
				Payload: PayloadFrom(item),
			}
		}
		if err := s.store.Upsert(ctx, points); err != nil {
			return fmt.Errorf("upload batch at %d: %w", start, err)
		}
		log.Printf("uploaded %d/%d items", end, len(items))
	}

	log.Printf("collection populated")
	return nil
}

// Retrieve returns the context items for a question: the index's top matches
// with any candidate below the similarity threshold filtered out, in the
// index's descending-similarity order.
func (s *Service) Retrieve(ctx context.Context, question string, topK int) ([]ContextItem, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}

	vecs, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.store.Search(ctx, vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	items := make([]ContextItem, 0, len(hits))
	for _, h := range hits {
		if float64(h.Score) < s.cfg.SimilarityThreshold {
			continue
		}
		items = append(items, ContextItem{
			Instruction:     h.Payload["instruction"],
			Output:          h.Payload["output"],
			Similarity:      h.Score,
			ChannelUsername: h.Payload["channel_username"],
			VideoID:         h.Payload["video_id"],
			Source:          h.Payload["source"],
		})
	}
	return items, nil
}

// Query answers a question. topK <= 0 selects the configured default; the
// effective value is clamped to [1,20]. When retrieval comes back empty the
// fixed fallback answer is returned and no generation call is made.
func (s *Service) Query(ctx context.Context, question string, topK int) (*QueryResult, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}

	topK = s.clampTopK(topK)

	items, err := s.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return &QueryResult{
			Answer:   fallbackAnswer,
			Context:  []ContextItem{},
			Question: question,
		}, nil
	}

	answer, err := s.provider.Generate(ctx, buildPrompt(question, items), systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &QueryResult{
		Answer:   answer,
		Context:  items,
		Question: question,
	}, nil
}

// GetStats reports document count and model configuration.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}

	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	return &Stats{
		TotalDocuments: n,
		LLMProvider:    s.provider.Name(),
		Model:          s.provider.Model(),
		EmbeddingModel: s.embedder.Model(),
		MaxTokens:      s.cfg.MaxTokens,
		DefaultTopK:    s.cfg.TopK,
		VectorDB:       s.store.Name(),
	}, nil
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	if topK < 1 {
		topK = 1
	}
	if topK > 20 {
		topK = 20
	}
	return topK
}

// LoadKnowledge reads a JSON array of knowledge items from path.
func LoadKnowledge(path string) ([]KnowledgeItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge data: %w", err)
	}
	var items []KnowledgeItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse knowledge data: %w", err)
	}
	return items, nil
}

// PayloadFrom builds the payload stored with an indexed item. Optional
// metadata is included only when present; the source tag defaults to the
// canonical data file name.
func PayloadFrom(item KnowledgeItem) map[string]string {
	payload := map[string]string{
		"instruction": item.Instruction,
		"output":      item.Output,
	}
	if item.Input != "" {
		payload["input"] = item.Input
	}
	if item.ChannelUsername != "" {
		payload["channel_username"] = item.ChannelUsername
	}
	if item.VideoID != "" {
		payload["video_id"] = item.VideoID
	}
	if item.Lang != "" {
		payload["lang"] = item.Lang
	}
	source := item.Source
	if source == "" {
		source = "data.json"
	}
	payload["source"] = source
	return payload
}
