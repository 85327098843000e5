package jobModel

import "time"

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	IngestInit      InternalStatus = "IngestInit"
	IngestExtract   InternalStatus = "IngestExtract"
	IngestChunk     InternalStatus = "IngestChunk"
	IngestVectorize InternalStatus = "IngestVectorize"
	Error           InternalStatus = "Error"
	Complete        InternalStatus = "Complete"
)

// Job is one queued document ingestion. The document itself lives in the
// DocumentStore keyed by DocumentId; the job only carries what the worker
// needs to run the pipeline.
type Job struct {
	Id          string         `json:"id"`
	DocumentId  string         `json:"document_id"`
	ChatId      string         `json:"chat_id,omitempty"`
	TraceId     string         `json:"trace_id"`
	FileName    string         `json:"file_name"`
	FilePath    string         `json:"file_path"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
	Error       JobError       `json:"error,omitempty"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}
