package rag

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/internal/metrics"
	"github.com/akolanti/docmind/internal/rag/ingest"
	"github.com/akolanti/docmind/internal/rag/llm"
	"github.com/akolanti/docmind/internal/rag/prompts"
	"github.com/akolanti/docmind/internal/rag/vectorDB"
	"github.com/akolanti/docmind/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract.
  - It defines the "behavior" (what handlers and workers can do).
  - We expose this to keep callers decoupled from our specific logic.

2. service (Private Struct):
  - This is the PRIVATE implementation.
  - It holds the "state" (vector store, LLM client, ingestion pipeline).
  - It is lowercase to prevent external packages from accessing our
    internal dependencies directly.

3. Pointer Receiver (*service):
  - By defining methods on (*service), the struct IMPLICITLY satisfies
    the Service interface.

4. Dependency Injection (NewService):
  - This constructor links the private struct to the public interface.
  - It allows us to swap real DBs for mocks during testing without
    changing the callers' code.
*/

// Service is the only thing handlers and workers talk to; they never see
// the vector store or the LLM directly.
type Service interface {
	Ask(ctx context.Context, question string, chatId string, topK uint64) (commonModels.Answer, error)
	Search(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job

	DeleteDocument(ctx context.Context, documentId string) error
	DeleteChat(ctx context.Context, chatId string) error

	HealthCheck(ctx context.Context) commonModels.HealthStatus
	Stats(ctx context.Context) commonModels.VectorStoreStats
}

type service struct {
	vectorDB    vectorDB.Store
	llmProvider llm.Provider
	ingestor    *ingest.Pipeline
	docStore    commonModels.DocumentStore
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.Store, llmProvider llm.Provider, ingestor *ingest.Pipeline, docStore commonModels.DocumentStore) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llmProvider,
		ingestor:    ingestor,
		docStore:    docStore,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// Ask retrieves chat-scoped context for the question and generates an
// answer. When nothing relevant is found the model gets a no-context
// prompt instead; the answer then carries zero confidence and no sources.
func (s *service) Ask(ctx context.Context, question string, chatId string, topK uint64) (commonModels.Answer, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId)

	question = strings.TrimSpace(question)
	if question == "" {
		return commonModels.Answer{}, ragerrors.New(ragerrors.KindValidation, "question is empty")
	}
	if topK == 0 {
		topK = config.RAGTopK
	}

	askContext, cancel := context.WithTimeout(ctx, config.RAGRequestTimeout)
	defer cancel()

	// Retrieval
	results, err := s.executeRetrieveStep(askContext, inMethodLogger, question, chatId, topK)
	if err != nil {
		return commonModels.Answer{}, ragerrors.Wrap(ragerrors.KindRAG, "retrieval failed", err)
	}

	answer := commonModels.Answer{ChunksUsed: len(results)}
	var prompt string
	if len(results) > 0 {
		inMethodLogger.Info("Found relevant chunks", "count", len(results))
		answer.ContextChunks = chunkTexts(results)
		answer.Sources = buildSources(results)
		answer.Confidence = meanScore(results)
		prompt = prompts.WithContext(question, answer.ContextChunks)
	} else {
		inMethodLogger.Info("No relevant chunks found, using general knowledge")
		prompt = prompts.WithoutContext(question)
	}

	// LLM Generation
	generated, err := s.executeLLMStep(askContext, inMethodLogger, prompt)
	if err != nil {
		if ragerrors.KindOf(err) == ragerrors.KindRAG {
			return commonModels.Answer{}, err
		}
		return commonModels.Answer{}, ragerrors.Wrap(ragerrors.KindRAG, "failed to generate answer", err)
	}

	answer.Answer = strings.TrimSpace(generated)
	return answer, nil
}

func (s *service) Search(ctx context.Context, query string, chatId string, limit uint64, scoreThreshold float32) ([]commonModels.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ragerrors.New(ragerrors.KindValidation, "query is empty")
	}
	if limit == 0 {
		limit = config.RAGTopK
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.vectorDB.Search(ctx, query, chatId, limit, scoreThreshold)
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	j := s.ingestor.ProcessDocument(ctx, job)
	metrics.CaptureJobMetrics(string(j.Status), time.Since(start))
	return j
}

// DeleteDocument removes the document's vectors and its stored state.
// Unknown ids are not an error; deletion is idempotent. A vector-index
// failure is logged and the cleanup continues: a dangling vector is less
// harmful than a document record that refuses to die.
func (s *service) DeleteDocument(ctx context.Context, documentId string) error {
	if err := s.vectorDB.DeleteByDocument(ctx, documentId); err != nil {
		s.logger.Error("Failed to delete document vectors, continuing cleanup",
			"traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId, "error", err)
	}
	s.docStore.DeleteDocument(ctx, documentId)
	return nil
}

func (s *service) DeleteChat(ctx context.Context, chatId string) error {
	if err := s.vectorDB.DeleteByChat(ctx, chatId); err != nil {
		s.logger.Error("Failed to delete chat vectors, continuing cleanup",
			"traceId", ctx.Value(config.TRACE_ID_KEY), "chatId", chatId, "error", err)
	}
	return nil
}

// HealthCheck probes the LLM and the vector store; the pipeline is healthy
// only when both answer.
func (s *service) HealthCheck(ctx context.Context) commonModels.HealthStatus {
	llmOk := false
	vectorStoreOk := false
	var messageParts []string

	if err := s.llmProvider.Ping(ctx); err != nil {
		s.logger.Error("LLM health check failed", "provider", s.llmProvider.Name(), "error", err)
		messageParts = append(messageParts, "LLM connection failed.")
	} else {
		llmOk = true
	}

	stats := s.vectorDB.Stats(ctx)
	if stats.Error != "" {
		messageParts = append(messageParts, "Vector store error: "+stats.Error)
	} else {
		vectorStoreOk = true
	}

	healthy := llmOk && vectorStoreOk
	message := strings.Join(messageParts, " ")
	if message == "" {
		message = "All services are operational."
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return commonModels.HealthStatus{
		Status:        status,
		LLMOk:         llmOk,
		VectorStoreOk: vectorStoreOk,
		RAGOk:         healthy,
		Message:       message,
	}
}

func (s *service) Stats(ctx context.Context) commonModels.VectorStoreStats {
	return s.vectorDB.Stats(ctx)
}
