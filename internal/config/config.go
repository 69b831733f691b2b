package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is loaded once at startup and
// passed to components at construction; nothing mutates it afterwards.
type Config struct {
	AppName    string
	AppVersion string

	Host string
	Port string

	// LLMProvider selects the generation backend: "openai", "huggingface" or "gemini".
	LLMProvider string

	OpenAIAPIKey      string
	OpenAIModel       string
	HuggingFaceAPIKey string
	HuggingFaceModel  string
	GeminiAPIKey      string
	GeminiModel       string

	MaxTokens   int
	Temperature float64

	TopK                int
	SimilarityThreshold float64

	// VectorBackend selects the vector index: "qdrant" or "pgvector".
	VectorBackend  string
	QdrantURL      string
	QdrantAPIKey   string
	DatabaseURL    string
	CollectionName string

	// EmbeddingProvider selects the embedding backend: "openai" or "gemini".
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingBaseURL  string
	EmbeddingAPIKey   string

	DataPath string

	CORSOrigins []string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "RAG Chatbot API"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "7860"),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
		HuggingFaceModel:  getEnv("HUGGINGFACE_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		MaxTokens:   getEnvInt("MAX_TOKENS", 1000),
		Temperature: getEnvFloat("TEMPERATURE", 0.7),

		TopK:                getEnvInt("TOP_K", 10),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.3),

		VectorBackend:  getEnv("VECTOR_BACKEND", "qdrant"),
		QdrantURL:      getEnv("QDRANT_URL", ""),
		QdrantAPIKey:   getEnv("QDRANT_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CollectionName: getEnv("COLLECTION_NAME", "instructions"),

		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "https://api.openai.com/v1"),

		DataPath: getEnv("DATA_PATH", "data/data.json"),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:8000",
			"https://chat-dawah-frontend.vercel.app",
		}),
	}

	// Embeddings default to the OpenAI key unless a dedicated one is set.
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.OpenAIAPIKey)

	return cfg
}

// ModelName returns the generation model for the active provider.
func (c *Config) ModelName() string {
	switch strings.ToLower(c.LLMProvider) {
	case "openai":
		return c.OpenAIModel
	case "huggingface":
		return c.HuggingFaceModel
	case "gemini":
		return c.GeminiModel
	default:
		return "unknown"
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
