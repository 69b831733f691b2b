package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chatdawah/rag-chatbot/internal/chatbot"
	"github.com/chatdawah/rag-chatbot/internal/config"
)

type Handler struct {
	svc *chatbot.Service
	cfg *config.Config
}

func NewHandler(svc *chatbot.Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type healthResponse struct {
	Status       string `json:"status"`
	ChatbotReady bool   `json:"chatbot_ready"`
	Version      string `json:"version"`
}

type configResponse struct {
	TopK                int     `json:"top_k"`
	MaxTokens           int     `json:"max_tokens"`
	Temperature         float64 `json:"temperature"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	LLMProvider         string  `json:"llm_provider"`
	Model               string  `json:"model"`
	EmbeddingModel      string  `json:"embedding_model"`
	CollectionName      string  `json:"collection_name"`
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.svc.Query(r.Context(), req.Question, req.TopK)
	if err != nil {
		if errors.Is(err, chatbot.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "Chatbot not initialized")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error processing query: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ready := h.svc.Ready()
	status := "initializing"
	if ready {
		status = "healthy"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       status,
		ChatbotReady: ready,
		Version:      h.cfg.AppVersion,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		if errors.Is(err, chatbot.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "Chatbot not initialized")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Config exposes the tunable settings so the frontend can pick them up
// dynamically instead of duplicating them.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		TopK:                h.cfg.TopK,
		MaxTokens:           h.cfg.MaxTokens,
		Temperature:         h.cfg.Temperature,
		SimilarityThreshold: h.cfg.SimilarityThreshold,
		LLMProvider:         h.cfg.LLMProvider,
		Model:               h.cfg.ModelName(),
		EmbeddingModel:      h.cfg.EmbeddingModel,
		CollectionName:      h.cfg.CollectionName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
