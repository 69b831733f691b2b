package chatbot

// KnowledgeItem is one indexed question/answer pair. Items are created by
// offline ingestion and read-only at query time.
type KnowledgeItem struct {
	Instruction     string `json:"instruction"`
	Input           string `json:"input,omitempty"`
	Output          string `json:"output"`
	ChannelUsername string `json:"channel_username,omitempty"`
	VideoID         string `json:"video_id,omitempty"`
	Lang            string `json:"lang,omitempty"`
	Source          string `json:"source,omitempty"`
}

// ContextItem is a retrieval result: a knowledge item plus its similarity
// score. Higher score means more similar.
type ContextItem struct {
	Instruction     string  `json:"instruction"`
	Output          string  `json:"output"`
	Similarity      float32 `json:"similarity"`
	ChannelUsername string  `json:"channel_username,omitempty"`
	VideoID         string  `json:"video_id,omitempty"`
	Source          string  `json:"source,omitempty"`
}

// QueryResult is the orchestrator's answer to one question.
type QueryResult struct {
	Answer   string        `json:"answer"`
	Context  []ContextItem `json:"context"`
	Question string        `json:"question"`
}

// Stats describes the running chatbot.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	LLMProvider    string `json:"llm_provider"`
	Model          string `json:"model"`
	EmbeddingModel string `json:"embedding_model"`
	MaxTokens      int    `json:"max_tokens"`
	DefaultTopK    int    `json:"default_top_k"`
	VectorDB       string `json:"vector_db"`
}
