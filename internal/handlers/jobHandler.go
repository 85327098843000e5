package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/docmind/internal/config"
	"github.com/akolanti/docmind/internal/domain/commonModels"
	"github.com/akolanti/docmind/internal/domain/jobModel"
	"github.com/akolanti/docmind/internal/job"
	"github.com/akolanti/docmind/internal/metrics"
	"github.com/akolanti/docmind/internal/rag"
	"github.com/akolanti/docmind/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
	rag     rag.Service
}

func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, rag: ragService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

// CreateIngestJob registers the document as UPLOADED and queues the
// ingestion job. The returned document is what the caller echoes back
// to the client; processing state is polled via the status endpoint.
func CreateIngestJob(newJob newJobData) commonModels.Document {
	logJH.With("traceId", newJob.traceId, "document id", newJob.documentId)
	logJH.Info("To create new ingest job")
	return handlerInstance.pushToJobChannel(newJob)
}

func GetDocumentStatus(id string, traceId string) (commonModels.Document, bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.DocumentStore.GetDocument(ctxC, id)
	}
	return commonModels.Document{}, false
}

func ragService() rag.Service {
	if handlerInstance == nil {
		return nil
	}
	return handlerInstance.rag
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) commonModels.Document {

	doc := commonModels.Document{
		Id:         newJob.documentId,
		Name:       newJob.documentName,
		ChatId:     newJob.chatId,
		Status:     commonModels.DocumentUploaded,
		UploadedAt: time.Now(),
	}
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := h.service.DocumentStore.SaveDocument(ctxC, doc); err != nil {
		logJH.Error("Error saving initial document state", newJob.documentId, err)
	}

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.DocumentId = newJob.documentId
	_job.ChatId = newJob.chatId
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.FileName = newJob.documentName
	_job.FilePath = newJob.filePath
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new ingest job")

	//ingestion involves batch embedding which might take time - external system call
	//so every ingest request signals the dispatcher for an extra worker;
	//the worker is removed once it goes idle, so at quiet times we still
	//only pay for one resident worker
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	logJH.Debug("Request count ", accurateCount)
	metrics.StartDispatcherSignalCount() //metrics
	h.service.DispatcherChannel <- true

	return doc
}
