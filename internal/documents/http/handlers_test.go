package documenthttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/store/memory"
)

var testNow = time.Date(2024, 8, 20, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func mount(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func demoRenderer() *documents.Service {
	store := memory.New(memory.Demo(testNow, time.UTC), time.UTC)
	builder := documents.NewBuilder(nil, nil)
	builder.WithNow(func() time.Time { return testNow })
	return documents.NewService(reports.NewService(store, time.UTC), store, builder, nil, discardLogger())
}

type stubRenderer struct {
	mu   sync.Mutex
	reqs []documents.Request
}

func (s *stubRenderer) Render(_ context.Context, req documents.Request) (documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return documents.Document{Kind: req.Kind, FileName: "doc.pdf", ContentType: documents.ContentTypePDF, Body: []byte("%PDF-stub")}, nil
}

func (s *stubRenderer) last() documents.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs[len(s.reqs)-1]
}

type stubEnqueuer struct {
	ids  []string
	reqs []documents.Request
}

func (s *stubEnqueuer) EnqueueExport(_ context.Context, id string, req documents.Request) error {
	s.ids = append(s.ids, id)
	s.reqs = append(s.reqs, req)
	return nil
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestInvoicePDF(t *testing.T) {
	router := mount(NewHandler(discardLogger(), demoRenderer(), nil, nil, time.UTC))

	rec := do(router, http.MethodGet, "/documents/invoices/001-001-0000003", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, documents.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="factura-001-001-0000003.pdf"`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = do(router, http.MethodGet, "/documents/invoices/999-999-9999999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCashRegisterPDF(t *testing.T) {
	router := mount(NewHandler(discardLogger(), demoRenderer(), nil, nil, time.UTC))
	id := memory.DemoID("register", 1)

	rec := do(router, http.MethodGet, "/documents/cash-registers/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cierre-caja-"+id+".pdf")

	rec = do(router, http.MethodGet, "/documents/cash-registers/caja-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/documents/cash-registers/"+memory.DemoID("register", 99), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportPDFs(t *testing.T) {
	router := mount(NewHandler(discardLogger(), demoRenderer(), nil, nil, time.UTC))

	rec := do(router, http.MethodGet, "/documents/reports/daily?year=2024&month=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte-ventas-diarias-2024-07.pdf")

	rec = do(router, http.MethodGet, "/documents/reports/products?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte-productos-2024-08-20T12-00-00.000Z.pdf")

	rec = do(router, http.MethodGet, "/documents/reports/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/documents/reports/weekly", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodGet, "/documents/reports/daily?month=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyReportPDFRequiresPeriod(t *testing.T) {
	renderer := &stubRenderer{}
	router := mount(NewHandler(discardLogger(), renderer, nil, nil, time.UTC))

	for _, target := range []string{
		"/documents/reports/daily",
		"/documents/reports/daily?month=8",
		"/documents/reports/daily?year=2024",
	} {
		rec := do(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), target)
	}
	assert.Empty(t, renderer.reqs, "no render without a period")
}

func TestInvoiceListParsesQuery(t *testing.T) {
	renderer := &stubRenderer{}
	router := mount(NewHandler(discardLogger(), renderer, nil, nil, time.UTC))
	cashier := memory.DemoID("user", 1)

	rec := do(router, http.MethodGet, "/documents/invoices?cashierId="+cashier+"&status=completed,refunded&from=2024-08-01&to=2024-08-31&minTotal=1000&search=+chipa+&limit=20&page=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	req := renderer.last()
	assert.Equal(t, documents.KindInvoiceList, req.Kind)
	assert.Equal(t, cashier, req.Invoices.CashierID)
	assert.Equal(t, []pos.SaleStatus{pos.StatusCompleted, pos.StatusRefunded}, req.Invoices.Statuses)
	require.NotNil(t, req.Invoices.From)
	assert.Equal(t, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), *req.Invoices.From)
	require.NotNil(t, req.Invoices.MinTotal)
	assert.Equal(t, "1000", req.Invoices.MinTotal.String())
	assert.Nil(t, req.Invoices.MaxTotal)
	assert.Equal(t, "chipa", req.Invoices.Search)
	assert.Equal(t, 20, req.Invoices.Limit)
	assert.Equal(t, 3, req.Page)

	for _, target := range []string{
		"/documents/invoices?cashierId=ana",
		"/documents/invoices?minTotal=mucho",
		"/documents/invoices?page=-1",
		"/documents/invoices?to=31/08/2024",
	} {
		rec := do(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestDocumentRoutesAreRateLimited(t *testing.T) {
	router := mount(NewHandler(discardLogger(), &stubRenderer{}, nil, nil, time.UTC))

	for i := 0; i < 20; i++ {
		rec := do(router, http.MethodGet, "/documents/invoices/001", "")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
	rec := do(router, http.MethodGet, "/documents/invoices/001", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestExportLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := documents.NewExportStore(client, time.Hour)
	enqueuer := &stubEnqueuer{}
	router := mount(NewHandler(discardLogger(), &stubRenderer{}, enqueuer, store, time.UTC))

	rec := do(router, http.MethodPost, "/documents/exports", `{"kind":"daily-sales","year":2024,"month":7}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created exportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, enqueuer.ids, 1)
	assert.Equal(t, created.ID, enqueuer.ids[0])
	assert.Equal(t, documents.KindDailySales, enqueuer.reqs[0].Kind)
	assert.Equal(t, "/documents/exports/"+created.ID, rec.Header().Get("Location"))

	rec = do(router, http.MethodGet, created.Location, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.NoError(t, store.Save(context.Background(), created.ID, documents.Document{
		Kind: documents.KindDailySales, FileName: "reporte-ventas-diarias-2024-07.pdf", ContentType: documents.ContentTypePDF, Pages: 1, Body: []byte("%PDF-1.3"),
	}))
	rec = do(router, http.MethodGet, created.Location, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte-ventas-diarias-2024-07.pdf")

	rec = do(router, http.MethodGet, "/documents/exports/6a1f7d0e-2f4b-4c3e-9d55-5b8f1c2a9e10", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(router, http.MethodGet, "/documents/exports/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExportRejectsInvalidRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	enqueuer := &stubEnqueuer{}
	router := mount(NewHandler(discardLogger(), &stubRenderer{}, enqueuer, documents.NewExportStore(client, time.Hour), time.UTC))

	for _, body := range []string{
		`{"kind":"invoice"}`,
		`{"kind":"receipt"}`,
		`{"kind":"user-sales","extra":true}`,
		`not json`,
	} {
		rec := do(router, http.MethodPost, "/documents/exports", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, enqueuer.ids)

	disabled := mount(NewHandler(discardLogger(), &stubRenderer{}, nil, nil, time.UTC))
	rec := do(disabled, http.MethodPost, "/documents/exports", `{"kind":"user-sales"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
