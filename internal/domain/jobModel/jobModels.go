package jobModel

import (
	"context"
	"time"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusSkipped  JobStatus = "SKIPPED"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	IngestChunking   InternalStatus = "IngestChunking"
	IngestEmbedding  InternalStatus = "IngestEmbedding"
	IngestReplacing  InternalStatus = "IngestReplacing"
	Error            InternalStatus = "Error"
	Complete         InternalStatus = "Complete"
)

// Job is one document rebuild request flowing through the worker pool.
type Job struct {
	Id          string             `json:"id"`
	TraceId     string             `json:"trace_id"`
	Document    ragModel.Document  `json:"document"`
	Error       JobError           `json:"error,omitempty"`
	CreatedTime time.Time          `json:"created_time"`
	EndTime     time.Time          `json:"end_time,omitempty"`
	Status      JobStatus          `json:"status"`
	CurrentStep InternalStatus     `json:"current_step"`
	ChunkCount  int                `json:"chunk_count,omitempty"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
