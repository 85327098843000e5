package vectorDB

import (
	"context"

	"github.com/akolanti/docmind/internal/domain/commonModels"
)

// Store indexes chunk vectors and answers chat-scoped similarity queries.
type Store interface {
	// EnsureSchema Startup and ingest call; idempotent
	EnsureSchema(ctx context.Context) error
	UpsertBatch(ctx context.Context, chunks []commonModels.Chunk) (int, error)
	Search(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error)

	DeleteByDocument(ctx context.Context, documentId string) error
	DeleteByChat(ctx context.Context, chatId string) error

	Stats(ctx context.Context) commonModels.VectorStoreStats
	Close() error
}
