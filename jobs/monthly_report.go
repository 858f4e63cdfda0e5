package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// MonthlyReportJob renders the daily sales report of a closed month and
// keeps it in the export store under MonthlyExportID.
type MonthlyReportJob struct {
	Renderer Renderer
	Sink     ExportSink
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	loc      *time.Location
	clock    func() time.Time
}

// NewMonthlyReportJob wires the monthly report handler for loc.
func NewMonthlyReportJob(renderer Renderer, sink ExportSink, loc *time.Location, logger *slog.Logger, metrics *jobmetrics.Metrics) *MonthlyReportJob {
	if loc == nil {
		loc = time.UTC
	}
	return &MonthlyReportJob{
		Renderer: renderer,
		Sink:     sink,
		Logger:   logger,
		Metrics:  metrics,
		loc:      loc,
		clock:    time.Now,
	}
}

// WithClock overrides the job clock for testing.
func (j *MonthlyReportJob) WithClock(fn func() time.Time) {
	if fn != nil {
		j.clock = fn
	}
}

// Handle processes TaskMonthlyDailyReport tasks.
func (j *MonthlyReportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Renderer == nil || j.Sink == nil {
		return errors.New("monthly report: handler not configured")
	}
	var payload MonthlyReportPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Year == 0 || payload.Month == 0 {
		now := j.clock().In(j.loc)
		prev := now.AddDate(0, 0, -now.Day())
		payload.Year, payload.Month = prev.Year(), int(prev.Month())
	}

	tracker := j.metrics().Track(TaskMonthlyDailyReport)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	id := MonthlyExportID(payload.Year, payload.Month)
	logger := j.logger().With(slog.Int("year", payload.Year), slog.Int("month", payload.Month), slog.String("export_id", id))

	doc, err := j.Renderer.Render(ctx, documents.Request{Kind: documents.KindDailySales, Year: payload.Year, Month: payload.Month})
	if err != nil {
		resultErr = err
		logger.Error("render monthly report", slog.Any("error", err))
		return resultErr
	}
	if err := j.Sink.Save(ctx, id, doc); err != nil {
		resultErr = err
		logger.Error("store monthly report", slog.Any("error", err))
		return resultErr
	}
	logger.Info("monthly report ready", slog.Int("pages", doc.Pages))
	return resultErr
}

func (j *MonthlyReportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MonthlyReportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
