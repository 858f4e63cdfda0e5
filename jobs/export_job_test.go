package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

type stubRenderer struct {
	doc  documents.Document
	err  error
	reqs []documents.Request
}

func (s *stubRenderer) Render(_ context.Context, req documents.Request) (documents.Document, error) {
	s.reqs = append(s.reqs, req)
	return s.doc, s.err
}

type stubSink struct {
	saved  map[string]documents.Document
	failed map[string]string
}

func newStubSink() *stubSink {
	return &stubSink{saved: map[string]documents.Document{}, failed: map[string]string{}}
}

func (s *stubSink) Save(_ context.Context, id string, doc documents.Document) error {
	s.saved[id] = doc
	return nil
}

func (s *stubSink) Fail(_ context.Context, id string, _ documents.Kind, reason string) error {
	s.failed[id] = reason
	return nil
}

func exportTask(t *testing.T, id string, req documents.Request) *asynq.Task {
	t.Helper()
	task, err := NewExportTask(ExportPayload{ID: id, Request: req})
	require.NoError(t, err)
	return task
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestExportJobStoresRenderedDocument(t *testing.T) {
	renderer := &stubRenderer{doc: documents.Document{Kind: documents.KindUserSales, FileName: "reporte-cajeros.pdf", Body: []byte("%PDF")}}
	sink := newStubSink()
	job := NewExportJob(renderer, sink, nil, testMetrics())

	req := documents.Request{Kind: documents.KindUserSales}
	require.NoError(t, job.Handle(context.Background(), exportTask(t, "e1", req)))

	assert.Equal(t, "reporte-cajeros.pdf", sink.saved["e1"].FileName)
	require.Len(t, renderer.reqs, 1)
	assert.Equal(t, req, renderer.reqs[0])
}

func TestExportJobSkipsRetryForPermanentErrors(t *testing.T) {
	renderer := &stubRenderer{err: fmt.Errorf("sale 1: %w", pos.ErrNotFound)}
	sink := newStubSink()
	job := NewExportJob(renderer, sink, nil, testMetrics())

	err := job.Handle(context.Background(), exportTask(t, "e2", documents.Request{Kind: documents.KindInvoice, SaleNumber: "1"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, sink.failed["e2"], "sale 1")
	assert.Empty(t, sink.saved)
}

func TestExportJobRecordsFailureOnLastAttempt(t *testing.T) {
	boom := errors.New("database unavailable")
	sink := newStubSink()
	job := NewExportJob(&stubRenderer{err: boom}, sink, nil, testMetrics())

	// Outside a worker the retry counters are absent and the attempt counts as the last one.
	err := job.Handle(context.Background(), exportTask(t, "e3", documents.Request{Kind: documents.KindProductSales}))
	assert.Same(t, boom, err)
	assert.Equal(t, "database unavailable", sink.failed["e3"])
}

func TestExportJobRejectsMalformedPayload(t *testing.T) {
	job := NewExportJob(&stubRenderer{}, newStubSink(), nil, testMetrics())

	assert.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskDocumentExport, []byte("{"))), asynq.SkipRetry)
	assert.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskDocumentExport, []byte(`{"request":{}}`))), asynq.SkipRetry)
}

func TestMonthlyReportDefaultsToPreviousMonth(t *testing.T) {
	renderer := &stubRenderer{doc: documents.Document{Kind: documents.KindDailySales, FileName: "reporte-ventas-diarias-2024-07.pdf"}}
	sink := newStubSink()
	loc := time.FixedZone("PYT", -3*3600)
	job := NewMonthlyReportJob(renderer, sink, loc, nil, testMetrics())
	// 02:00 UTC on Aug 1 is still July 31 in UTC-3.
	job.WithClock(func() time.Time { return time.Date(2024, 8, 1, 2, 0, 0, 0, time.UTC) })

	task, err := NewMonthlyReportTask(MonthlyReportPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, renderer.reqs, 1)
	assert.Equal(t, documents.Request{Kind: documents.KindDailySales, Year: 2024, Month: 6}, renderer.reqs[0])
	_, ok := sink.saved[MonthlyExportID(2024, 6)]
	assert.True(t, ok)
}

func TestMonthlyReportUsesExplicitMonth(t *testing.T) {
	renderer := &stubRenderer{}
	sink := newStubSink()
	job := NewMonthlyReportJob(renderer, sink, time.UTC, nil, testMetrics())

	payload, err := json.Marshal(MonthlyReportPayload{Year: 2023, Month: 12})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskMonthlyDailyReport, payload)))
	assert.Equal(t, 12, renderer.reqs[0].Month)
	assert.Contains(t, sink.saved, MonthlyExportID(2023, 12))
	assert.NotEqual(t, MonthlyExportID(2023, 12), MonthlyExportID(2024, 12))
}
