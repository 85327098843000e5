package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/docmind/internal/config"
	jobmodel "github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/metrics"
)

// executeJob runs one ingestion job end to end. Document state transitions
// happen inside the pipeline; the worker only stamps the job timeline.
func executeJob(job jobmodel.Job) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, 10*time.Minute)
	defer cancel()

	loggr := logger.With("traceId", job.TraceId, "jobId", job.Id)
	loggr.Debug("Processing ingestion job", "documentId", job.DocumentId)

	job.Status = jobmodel.JobStatusRunning
	job = _ragService.IngestDocument(ctx, job)

	job.EndTime = time.Now()
	loggr.Debug("Ingestion job done", "status", job.Status, "took", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
