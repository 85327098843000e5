package adapter

import (
	"fmt"

	"github.com/akolanti/docmind/internal/api"
	"github.com/akolanti/docmind/internal/domain/commonModels"
)

func ToUploadResponse(doc commonModels.Document) api.UploadResponse {
	return api.UploadResponse{
		DocumentId: doc.Id,
		Status:     string(doc.Status),
		StatusURL:  fmt.Sprintf("documents/%s/status", doc.Id),
	}
}

func ToDocumentStatusResponse(doc commonModels.Document) api.DocumentStatusResponse {
	return api.DocumentStatusResponse{
		Id:          doc.Id,
		Name:        doc.Name,
		ChatId:      doc.ChatId,
		Status:      string(doc.Status),
		ChunkCount:  doc.ChunkCount,
		Vectorized:  doc.Vectorized,
		Error:       doc.Error,
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
	}
}

func ToAskResponse(question string, answer commonModels.Answer) api.AskResponse {
	sources := make([]api.SourceResponse, 0, len(answer.Sources))
	for _, src := range answer.Sources {
		sources = append(sources, api.SourceResponse{
			DocumentId: src.DocumentId,
			Score:      src.Score,
			Text:       src.Text,
		})
	}

	return api.AskResponse{
		Question:   question,
		Answer:     answer.Answer,
		Sources:    sources,
		Confidence: answer.Confidence,
		ChunksUsed: answer.ChunksUsed,
	}
}

func ToSearchResponse(query string, results []commonModels.SearchResult) api.SearchResponse {
	hits := make([]api.SearchHit, 0, len(results))
	for _, res := range results {
		hits = append(hits, api.SearchHit{
			Id:         res.Id,
			Score:      res.Score,
			Text:       res.Text,
			DocumentId: res.DocumentId,
			ChatId:     res.ChatId,
		})
	}

	return api.SearchResponse{
		Query:   query,
		Results: hits,
		Count:   len(hits),
	}
}

func ToHealthResponse(status commonModels.HealthStatus) api.HealthResponse {
	return api.HealthResponse{
		Status:        status.Status,
		LLMOk:         status.LLMOk,
		VectorStoreOk: status.VectorStoreOk,
		RAGOk:         status.RAGOk,
		Message:       status.Message,
	}
}

func BadRequest(id string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id:      id,
		Code:    code,
		Message: message,
	}
}
