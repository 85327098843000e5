package ingest

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/domain/ragerrors"
	"github.com/akolanti/docmind/internal/metrics"
	"github.com/akolanti/docmind/internal/rag/chunker"
	"github.com/akolanti/docmind/internal/rag/vectorDB"
	"github.com/akolanti/docmind/pkg/logger_i"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// Pipeline turns an uploaded file into indexed chunks: extract, clean and
// chunk the text, embed and upsert the vectors, then record the outcome on
// the document.
type Pipeline struct {
	chunker  *chunker.Chunker
	vector   vectorDB.Store
	docStore commonModels.DocumentStore
	logger   *logger_i.Logger
}

func NewPipeline(ch *chunker.Chunker, vector vectorDB.Store, docStore commonModels.DocumentStore) *Pipeline {
	return &Pipeline{
		chunker:  ch,
		vector:   vector,
		docStore: docStore,
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

func (p *Pipeline) ProcessDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	loggr := p.logger.With("traceId", job.TraceId, "documentId", job.DocumentId)
	loggr.Debug("Processing document", "filename", job.FileName, "path", job.FilePath)

	doc, found := p.docStore.GetDocument(ctx, job.DocumentId)
	if !found {
		doc = commonModels.Document{
			Id:         job.DocumentId,
			Name:       job.FileName,
			ChatId:     job.ChatId,
			UploadedAt: job.CreatedTime,
		}
	}
	doc.Status = commonModels.DocumentProcessing
	p.saveDocument(ctx, doc)

	if err := p.vector.EnsureSchema(ctx); err != nil {
		return p.fail(ctx, job, doc, err, "vector store unavailable")
	}

	job.CurrentStep = jobModel.IngestExtract
	doc.ContentType = getDocType(job.FilePath)
	if doc.ContentType == commonModels.ERR {
		err := ragerrors.New(ragerrors.KindExtraction, "unsupported document type")
		return p.fail(ctx, job, doc, err, "unsupported document type")
	}

	pages, err := extractText(job.FilePath, doc.ContentType)
	if err != nil {
		return p.fail(ctx, job, doc, err, "could not extract document content")
	}
	loggr.Debug("Extracted document", "pages", len(pages))

	job.CurrentStep = jobModel.IngestChunk
	chunks := p.prepareChunks(pages, doc)
	loggr.Debug("Chunked document", "chunks", len(chunks))

	job.CurrentStep = jobModel.IngestVectorize
	indexed, err := p.indexChunks(ctx, chunks)
	if err != nil {
		return p.fail(ctx, job, doc, err, "could not index document")
	}

	if err := os.Remove(job.FilePath); err != nil {
		loggr.Error("Error removing temp file", "error", err)
	}

	doc.Status = commonModels.DocumentCompleted
	doc.ChunkCount = indexed
	doc.Vectorized = indexed > 0
	doc.ProcessedAt = time.Now()
	doc.Error = ""
	p.saveDocument(ctx, doc)

	metrics.CaptureDocumentIngested("completed")
	job.Status = jobModel.JobStatusComplete
	job.CurrentStep = jobModel.Complete
	return job
}

// prepareChunks joins the extracted pages and runs the chunker; page
// numbers survive in the chunk metadata only when a document has a single
// page per extraction (docx, txt), so the page map is kept coarse.
func (p *Pipeline) prepareChunks(pages []rawPage, doc commonModels.Document) []commonModels.Chunk {
	text := joinPages(pages)
	metadata := map[string]any{
		"file_name": doc.Name,
		"pages":     len(pages),
	}
	return p.chunker.Split(text, doc.Id, doc.ChatId, metadata)
}

// indexChunks upserts in bounded slices so one huge document cannot pin
// the whole chunk set in a single request.
func (p *Pipeline) indexChunks(ctx context.Context, chunks []commonModels.Chunk) (int, error) {
	total := 0
	batchSize := config.IngestUpsertBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		start := time.Now()
		count, err := p.vector.UpsertBatch(ctx, chunks[i:end])
		metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
		if err != nil {
			return total, err
		}
		total += count
		metrics.CaptureChunksIndexed(count)
	}
	return total, nil
}

func (p *Pipeline) fail(ctx context.Context, job jobModel.Job, doc commonModels.Document, err error, message string) jobModel.Job {
	p.logger.Error(message, "traceId", job.TraceId, "documentId", job.DocumentId, "kind", ragerrors.KindOf(err), "error", err)

	doc.Status = commonModels.DocumentError
	doc.Error = message
	p.saveDocument(ctx, doc)
	metrics.CaptureDocumentIngested("error")

	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Retry:   ragerrors.IsRetryable(err),
	}
	return job
}

func (p *Pipeline) saveDocument(ctx context.Context, doc commonModels.Document) {
	if err := p.docStore.SaveDocument(ctx, doc); err != nil {
		p.logger.Error("Failed to save document state", "documentId", doc.Id, "error", err)
	}
}
