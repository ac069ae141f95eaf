package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/jobModel"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/job"
	"github.com/rsarva/ContextAPI/internal/metrics"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateIngestJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new ingest job")
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateIngestRequest(doc ragModel.Document) bool {
	if handlerInstance == nil {
		return false
	}
	if doc.Content == "" || doc.SourceId <= 0 {
		return false
	}
	if doc.Url == "" && doc.ExternalGuid == "" {
		return false
	}
	return true
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.CurrentStep = jobModel.IngestInit
	_job.Document = newJob.document

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a rebuild involves batch embedding calls which might take time - external system call
	//so every queued rebuild signals the dispatcher for a new worker
	//the dispatcher caps the pool at MaxWorkerCount and idle workers retire on their own
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	metrics.StartDispatcherSignalCount()                         //metrics
	logJH.Debug("Request count ", accurateCount)
	h.service.DispatcherChannel <- true
}
