package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Renderer produces documents.
type Renderer interface {
	Render(ctx context.Context, req documents.Request) (documents.Document, error)
}

// ExportSink receives finished or failed exports.
type ExportSink interface {
	Save(ctx context.Context, id string, doc documents.Document) error
	Fail(ctx context.Context, id string, kind documents.Kind, reason string) error
}

// ExportJob renders queued documents into the export store.
type ExportJob struct {
	Renderer Renderer
	Sink     ExportSink
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	timeout  time.Duration
}

// NewExportJob wires the export handler.
func NewExportJob(renderer Renderer, sink ExportSink, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExportJob {
	return &ExportJob{Renderer: renderer, Sink: sink, Logger: logger, Metrics: metrics, timeout: time.Minute}
}

// Handle processes TaskDocumentExport tasks. Invalid requests and missing
// records fail the export at once; other errors are retried and the export
// is marked failed after the last attempt.
func (j *ExportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Renderer == nil || j.Sink == nil {
		return errors.New("document export: handler not configured")
	}
	var payload ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDocumentExport)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("export_id", payload.ID), slog.String("kind", string(payload.Request.Kind)))

	renderCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	doc, err := j.Renderer.Render(renderCtx, payload.Request)
	if err != nil {
		resultErr = err
		permanent := httpx.StatusFor(err) != http.StatusInternalServerError
		if permanent || lastAttempt(ctx) {
			logger.Warn("export failed", slog.Bool("permanent", permanent), slog.Any("error", err))
			if ferr := j.Sink.Fail(ctx, payload.ID, payload.Request.Kind, err.Error()); ferr != nil {
				logger.Error("record export failure", slog.Any("error", ferr))
			}
		}
		if permanent {
			resultErr = fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return resultErr
	}
	if err := j.Sink.Save(ctx, payload.ID, doc); err != nil {
		resultErr = err
		logger.Error("store export", slog.Any("error", err))
		return resultErr
	}
	logger.Info("export ready", slog.String("file_name", doc.FileName), slog.Int("pages", doc.Pages))
	return resultErr
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	limit, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= limit
}

func (j *ExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
