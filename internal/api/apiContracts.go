package api

import "time"

// requests---------------------

type AskRequest struct {
	Question string `json:"question" validate:"required"`
	ChatID   string `json:"chat_id,omitempty"`
	TopK     uint64 `json:"top_k,omitempty"`
}

type SearchRequest struct {
	Query          string  `json:"query" validate:"required"`
	ChatID         string  `json:"chat_id,omitempty"`
	Limit          uint64  `json:"limit,omitempty"`
	ScoreThreshold float32 `json:"score_threshold,omitempty"`
}

// responses--------------------

type ErrorResponse struct {
	Id      string `json:"id,omitempty" example:"doc_cz109"`
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"document not found"`
}

type UploadResponse struct {
	DocumentId string `json:"document_id"`
	Status     string `json:"status"`
	StatusURL  string `json:"status_url"`
}

type DocumentStatusResponse struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	ChatId      string    `json:"chat_id,omitempty"`
	Status      string    `json:"status"`
	ChunkCount  int       `json:"chunk_count"`
	Vectorized  bool      `json:"vectorized"`
	Error       string    `json:"error,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

type SourceResponse struct {
	DocumentId string  `json:"document_id"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
}

type AskResponse struct {
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Sources    []SourceResponse `json:"sources"`
	Confidence float64          `json:"confidence"`
	ChunksUsed int              `json:"chunks_used"`
}

type SearchHit struct {
	Id         string  `json:"id"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
	DocumentId string  `json:"document_id"`
	ChatId     string  `json:"chat_id,omitempty"`
}

type SearchResponse struct {
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

type DeleteResponse struct {
	Id      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	LLMOk         bool   `json:"llm_ok"`
	VectorStoreOk bool   `json:"vector_store_ok"`
	RAGOk         bool   `json:"rag_ok"`
	Message       string `json:"message"`
}
