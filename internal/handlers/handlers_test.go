package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rsarva/ContextAPI/internal/config"
	"github.com/rsarva/ContextAPI/internal/domain/jobModel"
	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/job"
	"github.com/rsarva/ContextAPI/pkg/logger_i"
)

func captureLogs() *bytes.Buffer {
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

func TestValidateContext_LogsTraceId(t *testing.T) {
	buf := captureLogs()
	logRH = logger_i.NewLogger("RequestHandler")

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), config.TRACE_ID_KEY, "trace-ctx-1"))
	cancel()

	if validateContext(ctx) {
		t.Fatal("expected cancelled context to fail validation")
	}
	if !strings.Contains(buf.String(), "trace-ctx-1") {
		t.Errorf("trace id missing from log output: %s", buf.String())
	}
}

func TestCreateIngestJob_LogsTraceId(t *testing.T) {
	buf := captureLogs()
	InitJobHandler(&job.Service{
		JobChannel:        make(chan jobModel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
	})

	CreateIngestJob(newJobData{
		id:       "job-1",
		traceId:  "trace-job-1",
		document: ragModel.Document{SourceId: 1, Url: "https://example.com/a", Content: "x"},
	})

	if !strings.Contains(buf.String(), "trace-job-1") {
		t.Errorf("trace id missing from log output: %s", buf.String())
	}
	if got := <-handlerInstance.service.JobChannel; got.TraceId != "trace-job-1" || got.Status != jobModel.JobStatusQueued {
		t.Errorf("unexpected queued job %+v", got)
	}
}
