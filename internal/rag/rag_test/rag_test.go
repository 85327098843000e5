package rag_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/data/store"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/internal/rag"
	"github.com/akolanti/docmind/internal/rag/chunker"
	"github.com/akolanti/docmind/internal/rag/ingest"
)

func newTestService(vector *MockVectorStore, llm *MockLLM) rag.Service {
	docStore := store.InitInMemoryDocumentStore()
	pipeline := ingest.NewPipeline(chunker.Default(), vector, docStore)
	return rag.NewService(vector, llm, pipeline, docStore)
}

func testContext() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestAsk_WithContext(t *testing.T) {
	longText := strings.Repeat("relevant context sentence. ", 20) //over the preview limit

	mVec := &MockVectorStore{
		OnSearch: func(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
			if chatId != "chat-7" {
				t.Errorf("Search chatId got %q, want chat-7", chatId)
			}
			if scoreThreshold != config.RAGScoreThreshold {
				t.Errorf("Score threshold got %v, want %v", scoreThreshold, config.RAGScoreThreshold)
			}
			return []commonModels.SearchResult{
				{Id: "c1", Score: 0.9, Text: longText, DocumentId: "doc-1"},
				{Id: "c2", Score: 0.8, Text: "short chunk", DocumentId: "doc-2"},
			}, nil
		},
	}

	var capturedPrompt string
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, systemInstruction string, prompt string) (string, error) {
			capturedPrompt = prompt
			return "  final answer  ", nil
		},
	}

	s := newTestService(mVec, mLLM)
	answer, err := s.Ask(testContext(), "what is the pipeline?", "chat-7", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if answer.Answer != "final answer" {
		t.Errorf("Answer got %q", answer.Answer)
	}
	if answer.ChunksUsed != 2 || len(answer.ContextChunks) != 2 {
		t.Errorf("ChunksUsed=%d ContextChunks=%d, want 2/2", answer.ChunksUsed, len(answer.ContextChunks))
	}
	if math.Abs(answer.Confidence-0.85) > 0.001 {
		t.Errorf("Confidence got %v, want mean 0.85", answer.Confidence)
	}

	if len(answer.Sources) != 2 {
		t.Fatalf("Sources got %d, want 2", len(answer.Sources))
	}
	preview := answer.Sources[0].Text
	if !strings.HasSuffix(preview, "...") || len(preview) != config.SourcePreviewLength+3 {
		t.Errorf("Long source should be previewed, got %d chars", len(preview))
	}
	if answer.Sources[1].Text != "short chunk" {
		t.Errorf("Short source should pass through, got %q", answer.Sources[1].Text)
	}

	if !strings.Contains(capturedPrompt, "what is the pipeline?") || !strings.Contains(capturedPrompt, "short chunk") {
		t.Errorf("Prompt should carry question and context, got %q", capturedPrompt)
	}
}

func TestAsk_NoContext(t *testing.T) {
	mVec := &MockVectorStore{
		OnSearch: func(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
			return nil, nil
		},
	}

	var capturedPrompt string
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, systemInstruction string, prompt string) (string, error) {
			capturedPrompt = prompt
			return "general knowledge answer", nil
		},
	}

	s := newTestService(mVec, mLLM)
	answer, err := s.Ask(testContext(), "anything?", "", 0)
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if answer.Answer == "" {
		t.Error("Answer must not be empty on the no-context path")
	}
	if answer.Confidence != 0 || len(answer.Sources) != 0 || answer.ChunksUsed != 0 {
		t.Errorf("No-context answer should carry no evidence: %+v", answer)
	}
	if strings.Contains(capturedPrompt, "Context:") {
		t.Errorf("No-context prompt should not include a context block: %q", capturedPrompt)
	}
}

func TestAsk_Validation(t *testing.T) {
	s := newTestService(&MockVectorStore{}, &MockLLM{})

	_, err := s.Ask(testContext(), "   ", "chat-1", 0)
	if err == nil {
		t.Fatal("Expected error for blank question")
	}
	if ragerrors.KindOf(err) != ragerrors.KindValidation {
		t.Errorf("Kind got %v, want %v", ragerrors.KindOf(err), ragerrors.KindValidation)
	}
}

func TestAsk_RetrievalFailure(t *testing.T) {
	mVec := &MockVectorStore{
		OnSearch: func(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
			return nil, ragerrors.New(ragerrors.KindConnection, "db timeout")
		},
	}

	s := newTestService(mVec, &MockLLM{})
	_, err := s.Ask(testContext(), "question", "", 0)
	if err == nil {
		t.Fatal("Expected retrieval failure to surface")
	}
	if ragerrors.KindOf(err) != ragerrors.KindRAG {
		t.Errorf("Kind got %v, want %v", ragerrors.KindOf(err), ragerrors.KindRAG)
	}
}

func TestAsk_LLMFailure(t *testing.T) {
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, systemInstruction string, prompt string) (string, error) {
			return "", ragerrors.New(ragerrors.KindBackend, "provider down")
		},
	}

	s := newTestService(&MockVectorStore{}, mLLM)
	_, err := s.Ask(testContext(), "question", "", 0)
	if err == nil {
		t.Fatal("Expected LLM failure to surface")
	}
}

func TestSearch_DefaultsAndValidation(t *testing.T) {
	var gotLimit uint64
	mVec := &MockVectorStore{
		OnSearch: func(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
			gotLimit = limit
			return []commonModels.SearchResult{}, nil
		},
	}
	s := newTestService(mVec, &MockLLM{})

	if _, err := s.Search(testContext(), "", "", 0, 0.7); err == nil {
		t.Error("Expected validation error for empty query")
	}

	if _, err := s.Search(testContext(), "query", "", 0, 0.7); err != nil {
		t.Fatal(err)
	}
	if gotLimit != config.RAGTopK {
		t.Errorf("Zero limit should default to %d, got %d", config.RAGTopK, gotLimit)
	}
}

func TestDeleteDocument_RemovesVectorsAndState(t *testing.T) {
	deletedFromIndex := ""
	mVec := &MockVectorStore{
		OnDeleteByDocument: func(ctx context.Context, documentId string) error {
			deletedFromIndex = documentId
			return nil
		},
	}

	docStore := store.InitInMemoryDocumentStore()
	pipeline := ingest.NewPipeline(chunker.Default(), mVec, docStore)
	s := rag.NewService(mVec, &MockLLM{}, pipeline, docStore)

	ctx := testContext()
	_ = docStore.SaveDocument(ctx, commonModels.Document{Id: "doc-9"})

	if err := s.DeleteDocument(ctx, "doc-9"); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if deletedFromIndex != "doc-9" {
		t.Errorf("Vector delete got %q", deletedFromIndex)
	}
	if _, found := docStore.GetDocument(ctx, "doc-9"); found {
		t.Error("Document state should be removed")
	}

	//deleting again must stay a no-op, not an error
	if err := s.DeleteDocument(ctx, "doc-9"); err != nil {
		t.Errorf("Second delete should be idempotent, got %v", err)
	}
}

func TestDeleteDocument_ContinuesPastVectorFailure(t *testing.T) {
	mVec := &MockVectorStore{
		OnDeleteByDocument: func(ctx context.Context, documentId string) error {
			return ragerrors.New(ragerrors.KindVectorStore, "qdrant down")
		},
	}

	docStore := store.InitInMemoryDocumentStore()
	pipeline := ingest.NewPipeline(chunker.Default(), mVec, docStore)
	s := rag.NewService(mVec, &MockLLM{}, pipeline, docStore)

	ctx := testContext()
	_ = docStore.SaveDocument(ctx, commonModels.Document{Id: "doc-10"})

	// A dangling vector beats a document record that refuses to die, so the
	// vector-index failure is logged and the cleanup still succeeds.
	if err := s.DeleteDocument(ctx, "doc-10"); err != nil {
		t.Fatalf("DeleteDocument should survive a vector-store failure, got %v", err)
	}
	if _, found := docStore.GetDocument(ctx, "doc-10"); found {
		t.Error("Document state should be removed even when the vector delete fails")
	}
}

func TestDeleteChat_ContinuesPastVectorFailure(t *testing.T) {
	mVec := &MockVectorStore{
		OnDeleteByChat: func(ctx context.Context, chatId string) error {
			return ragerrors.New(ragerrors.KindConnection, "no route")
		},
	}

	docStore := store.InitInMemoryDocumentStore()
	pipeline := ingest.NewPipeline(chunker.Default(), mVec, docStore)
	s := rag.NewService(mVec, &MockLLM{}, pipeline, docStore)

	if err := s.DeleteChat(testContext(), "chat-9"); err != nil {
		t.Errorf("DeleteChat should survive a vector-store failure, got %v", err)
	}
}

func TestHealthCheck_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		llmPing     func(ctx context.Context) error
		stats       func(ctx context.Context) commonModels.VectorStoreStats
		wantHealthy bool
		wantMessage string
	}{
		{
			name:        "All_Healthy",
			wantHealthy: true,
			wantMessage: "All services are operational.",
		},
		{
			name:        "LLM_Down",
			llmPing:     func(ctx context.Context) error { return ragerrors.New(ragerrors.KindConnection, "no route") },
			wantHealthy: false,
			wantMessage: "LLM connection failed.",
		},
		{
			name: "VectorStore_Down",
			stats: func(ctx context.Context) commonModels.VectorStoreStats {
				return commonModels.VectorStoreStats{Status: "unavailable", Error: "connection refused"}
			},
			wantHealthy: false,
			wantMessage: "Vector store error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mVec := &MockVectorStore{OnStats: tt.stats}
			mLLM := &MockLLM{OnPing: tt.llmPing}
			s := newTestService(mVec, mLLM)

			health := s.HealthCheck(testContext())

			if health.RAGOk != tt.wantHealthy {
				t.Errorf("RAGOk got %v, want %v", health.RAGOk, tt.wantHealthy)
			}
			wantStatus := "unhealthy"
			if tt.wantHealthy {
				wantStatus = "healthy"
			}
			if health.Status != wantStatus {
				t.Errorf("Status got %q, want %q", health.Status, wantStatus)
			}
			if !strings.Contains(health.Message, tt.wantMessage) {
				t.Errorf("Message got %q, want it to contain %q", health.Message, tt.wantMessage)
			}
		})
	}
}

func TestIngestDocument_ThroughService(t *testing.T) {
	content := "The service level ingest path runs the whole pipeline end to end. " +
		"These sentences are long enough to survive the cleaning filters."
	path := filepath.Join(t.TempDir(), "service_ingest.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	upserts := 0
	mVec := &MockVectorStore{
		OnUpsertBatch: func(ctx context.Context, chunks []commonModels.Chunk) (int, error) {
			upserts += len(chunks)
			return len(chunks), nil
		},
	}

	docStore := store.InitInMemoryDocumentStore()
	pipeline := ingest.NewPipeline(chunker.Default(), mVec, docStore)
	s := rag.NewService(mVec, &MockLLM{}, pipeline, docStore)

	job := jobModel.Job{
		Id:         "ingest-job-1",
		DocumentId: "ingest-doc-1",
		FileName:   "service_ingest.txt",
		FilePath:   path,
	}

	result := s.IngestDocument(testContext(), job)
	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want complete (error: %+v)", result.Status, result.Error)
	}
	if upserts == 0 {
		t.Error("Expected at least one chunk to be upserted")
	}

	doc, found := docStore.GetDocument(testContext(), "ingest-doc-1")
	if !found || doc.ChunkCount != upserts {
		t.Errorf("Document state not updated: found=%v doc=%+v", found, doc)
	}
}
