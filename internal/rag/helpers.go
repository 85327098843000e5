package rag

import (
	"context"
	"time"

	"github.com/akolanti/docmind/internal/adapter/utils"
	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/metrics"
	"github.com/akolanti/docmind/pkg/logger_i"
)

func (s *service) executeRetrieveStep(ctx context.Context, log *logger_i.Logger, question string, chatId string, topK uint64) ([]commonModels.SearchResult, error) {
	log.Debug("Ask", "Current Step", "Retrieve")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieve", time.Since(start)) }()

	return s.vectorDB.Search(ctx, question, chatId, topK, config.RAGScoreThreshold)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, prompt string) (string, error) {
	log.Debug("Ask", "Current Step", "LLM")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(ctx, config.ModelContext, prompt)
}

func chunkTexts(results []commonModels.SearchResult) []string {
	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Text
	}
	return texts
}

// buildSources keeps a short preview per hit so responses stay small even
// when chunks are at the size limit.
func buildSources(results []commonModels.SearchResult) []commonModels.Source {
	sources := make([]commonModels.Source, len(results))
	for i, result := range results {
		sources[i] = commonModels.Source{
			DocumentId: result.DocumentId,
			Score:      result.Score,
			Text:       utils.TruncateWithEllipsis(result.Text, config.SourcePreviewLength),
		}
	}
	return sources
}

func meanScore(results []commonModels.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, result := range results {
		sum += float64(result.Score)
	}
	return sum / float64(len(results))
}
