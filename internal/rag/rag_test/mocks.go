package rag_test

import (
	"context"

	"github.com/akolanti/docmind/internal/domain/commonModels"
)

// MockVectorStore implements vectorDB.Store
type MockVectorStore struct {
	// Control fields to simulate different behaviors
	OnEnsureSchema     func(ctx context.Context) error
	OnUpsertBatch      func(ctx context.Context, chunks []commonModels.Chunk) (int, error)
	OnSearch           func(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error)
	OnDeleteByDocument func(ctx context.Context, documentId string) error
	OnDeleteByChat     func(ctx context.Context, chatId string) error
	OnStats            func(ctx context.Context) commonModels.VectorStoreStats
}

func (m *MockVectorStore) EnsureSchema(ctx context.Context) error {
	if m.OnEnsureSchema != nil {
		return m.OnEnsureSchema(ctx)
	}
	return nil
}

func (m *MockVectorStore) UpsertBatch(ctx context.Context, chunks []commonModels.Chunk) (int, error) {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, chunks)
	}
	return len(chunks), nil
}

func (m *MockVectorStore) Search(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, query, chatId, limit, scoreThreshold)
	}
	return nil, nil
}

func (m *MockVectorStore) DeleteByDocument(ctx context.Context, documentId string) error {
	if m.OnDeleteByDocument != nil {
		return m.OnDeleteByDocument(ctx, documentId)
	}
	return nil
}

func (m *MockVectorStore) DeleteByChat(ctx context.Context, chatId string) error {
	if m.OnDeleteByChat != nil {
		return m.OnDeleteByChat(ctx, chatId)
	}
	return nil
}

func (m *MockVectorStore) Stats(ctx context.Context) commonModels.VectorStoreStats {
	if m.OnStats != nil {
		return m.OnStats(ctx)
	}
	return commonModels.VectorStoreStats{Status: "green"}
}

func (m *MockVectorStore) Close() error { return nil }

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, systemInstruction string, prompt string) (string, error)
	OnPing     func(ctx context.Context) error
}

func (m *MockLLM) Generate(ctx context.Context, systemInstruction string, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, systemInstruction, prompt)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Ping(ctx context.Context) error {
	if m.OnPing != nil {
		return m.OnPing(ctx)
	}
	return nil
}

func (m *MockLLM) Name() string { return "mock" }
