package commonModels

import (
	"context"
	"time"
)

type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "UPLOADED"
	DocumentProcessing DocumentStatus = "PROCESSING"
	DocumentCompleted  DocumentStatus = "COMPLETED"
	DocumentError      DocumentStatus = "ERROR"
)

type Document struct {
	Id          string         `json:"id"`
	Name        string         `json:"doc_name"`
	ChatId      string         `json:"chat_id,omitempty"`
	ContentType DocType        `json:"content_type"`
	Status      DocumentStatus `json:"status"`
	//derived by the ingestion pipeline, never set by callers
	ChunkCount  int       `json:"chunk_count"`
	Vectorized  bool      `json:"vectorized"`
	Error       string    `json:"error,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// Chunk is a bounded, positioned slice of a document's cleaned text.
// Immutable once created; the vector index references it by Id only.
type Chunk struct {
	Id            string         `json:"id"`
	DocumentId    string         `json:"document_id"`
	ChatId        string         `json:"chat_id,omitempty"`
	Text          string         `json:"text"`
	StartPosition int            `json:"start_position"`
	EndPosition   int            `json:"end_position"`
	Length        int            `json:"length"`
	ChunkIndex    int            `json:"chunk_index"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type SearchResult struct {
	Id         string         `json:"id"`
	Score      float32        `json:"score"`
	Text       string         `json:"text"`
	DocumentId string         `json:"document_id"`
	ChatId     string         `json:"chat_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Source struct {
	DocumentId string  `json:"document_id"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
}

type Answer struct {
	Answer        string   `json:"answer"`
	ContextChunks []string `json:"context_chunks"`
	Sources       []Source `json:"sources"`
	Confidence    float64  `json:"confidence"`
	ChunksUsed    int      `json:"chunks_used"`
}

type HealthStatus struct {
	Status        string `json:"status"`
	LLMOk         bool   `json:"llm_ok"`
	VectorStoreOk bool   `json:"vector_store_ok"`
	RAGOk         bool   `json:"rag_ok"`
	Message       string `json:"message"`
}

type VectorStoreStats struct {
	Status         string `json:"status"`
	CollectionName string `json:"collection_name"`
	VectorSize     uint64 `json:"vector_size"`
	PointsCount    uint64 `json:"points_count"`
	SegmentsCount  uint64 `json:"segments_count"`
	Error          string `json:"error,omitempty"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (Document, bool)
	SaveDocument(ctx context.Context, doc Document) error
	DeleteDocument(ctx context.Context, id string)
}
