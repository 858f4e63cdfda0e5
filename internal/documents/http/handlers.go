// Package documenthttp serves rendered documents as PDF downloads and
// manages background exports.
package documenthttp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	reporthttp "github.com/odyssey-erp/odyssey-pos/internal/reports/http"
)

const requestTimeout = 15 * time.Second

// Renderer produces documents synchronously.
type Renderer interface {
	Render(ctx context.Context, req documents.Request) (documents.Document, error)
}

// Enqueuer schedules a background export.
type Enqueuer interface {
	EnqueueExport(ctx context.Context, id string, req documents.Request) error
}

// ExportStore tracks background exports.
type ExportStore interface {
	MarkPending(ctx context.Context, id string, kind documents.Kind) error
	Load(ctx context.Context, id string) (documents.Document, error)
}

// Handler serves the document endpoints.
type Handler struct {
	logger   *slog.Logger
	renderer Renderer
	enqueuer Enqueuer
	exports  ExportStore
	parser   *reporthttp.Parser
}

// NewHandler constructs the document handler. enqueuer and exports may be
// nil, in which case the export endpoints answer 503.
func NewHandler(logger *slog.Logger, renderer Renderer, enqueuer Enqueuer, exports ExportStore, loc *time.Location) *Handler {
	return &Handler{
		logger:   logger,
		renderer: renderer,
		enqueuer: enqueuer,
		exports:  exports,
		parser:   reporthttp.NewParser(loc),
	}
}

type invoiceQuery struct {
	CashierID string `query:"cashierId" validate:"omitempty,uuid"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	MinTotal  string `query:"minTotal" validate:"omitempty,numeric"`
	MaxTotal  string `query:"maxTotal" validate:"omitempty,numeric"`
	Limit     string `query:"limit" validate:"omitempty,numeric"`
	Offset    string `query:"offset" validate:"omitempty,number"`
	Page      string `query:"page" validate:"omitempty,number"`
}

func (h *Handler) handleInvoiceList(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseInvoiceList(r)
	if err != nil {
		h.respond(w, "parse invoice filters", err)
		return
	}
	h.render(w, r, req)
}

func (h *Handler) parseInvoiceList(r *http.Request) (documents.Request, error) {
	q := r.URL.Query()
	raw := invoiceQuery{
		CashierID: strings.TrimSpace(q.Get("cashierId")),
		From:      strings.TrimSpace(q.Get("from")),
		To:        strings.TrimSpace(q.Get("to")),
		MinTotal:  strings.TrimSpace(q.Get("minTotal")),
		MaxTotal:  strings.TrimSpace(q.Get("maxTotal")),
		Limit:     strings.TrimSpace(q.Get("limit")),
		Offset:    strings.TrimSpace(q.Get("offset")),
		Page:      strings.TrimSpace(q.Get("page")),
	}
	if err := h.parser.Struct(raw); err != nil {
		return documents.Request{}, err
	}
	inv := pos.InvoiceQuery{
		CashierID: raw.CashierID,
		Statuses:  pos.ParseStatuses(q["status"]),
		Search:    strings.TrimSpace(q.Get("search")),
	}
	var err error
	if inv.From, err = h.parser.Date(raw.From); err != nil {
		return documents.Request{}, err
	}
	if inv.To, err = h.parser.Date(raw.To); err != nil {
		return documents.Request{}, err
	}
	if inv.MinTotal, err = optionalDecimal("minTotal", raw.MinTotal); err != nil {
		return documents.Request{}, err
	}
	if inv.MaxTotal, err = optionalDecimal("maxTotal", raw.MaxTotal); err != nil {
		return documents.Request{}, err
	}
	req := documents.Request{Kind: documents.KindInvoiceList}
	if inv.Limit, err = optionalInt("limit", raw.Limit); err != nil {
		return documents.Request{}, err
	}
	if inv.Offset, err = optionalInt("offset", raw.Offset); err != nil {
		return documents.Request{}, err
	}
	if req.Page, err = optionalInt("page", raw.Page); err != nil {
		return documents.Request{}, err
	}
	req.Invoices = inv
	return req, nil
}

func optionalInt(field, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: parámetros inválidos: %s", httpx.ErrValidation, field)
	}
	return n, nil
}

func optionalDecimal(field, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%w: parámetros inválidos: %s", httpx.ErrValidation, field)
	}
	return &d, nil
}

func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, documents.Request{Kind: documents.KindInvoice, SaleNumber: chi.URLParam(r, "saleNumber")})
}

func (h *Handler) handleCashRegister(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: identificador de caja inválido", httpx.ErrValidation))
		return
	}
	h.render(w, r, documents.Request{Kind: documents.KindCashRegister, CashRegisterID: id.String()})
}

var reportKinds = map[string]documents.Kind{
	"daily":    documents.KindDailySales,
	"products": documents.KindProductSales,
	"users":    documents.KindUserSales,
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := reportKinds[chi.URLParam(r, "report")]
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: reporte desconocido", httpx.ErrNotFound))
		return
	}
	filters, err := h.parser.Filters(r)
	if err != nil {
		h.respond(w, "parse filters", err)
		return
	}
	req := documents.Request{Kind: kind, Filters: filters}
	if kind == documents.KindDailySales {
		if req.Year, req.Month, err = h.parser.Period(r); err != nil {
			h.respond(w, "parse period", err)
			return
		}
	}
	h.render(w, r, req)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, req documents.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	doc, err := h.renderer.Render(ctx, req)
	if err != nil {
		h.respond(w, "render "+string(req.Kind), err)
		return
	}
	if err := httpx.Attachment(w, doc.ContentType, doc.FileName, doc.Body); err != nil {
		h.logError("stream pdf", err)
	}
}

type exportResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

func (h *Handler) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil || h.exports == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "Las exportaciones no están habilitadas")
		return
	}
	var req documents.Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id := uuid.NewString()
	if err := h.exports.MarkPending(r.Context(), id, req.Kind); err != nil {
		h.respond(w, "mark export", err)
		return
	}
	if err := h.enqueuer.EnqueueExport(r.Context(), id, req); err != nil {
		h.respond(w, "enqueue export", err)
		return
	}
	location := "/documents/exports/" + id
	w.Header().Set("Location", location)
	httpx.JSON(w, http.StatusAccepted, exportResponse{ID: id, Status: documents.ExportPending, Location: location})
}

func (h *Handler) handleGetExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "Las exportaciones no están habilitadas")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: identificador de exportación inválido", httpx.ErrValidation))
		return
	}
	doc, err := h.exports.Load(r.Context(), id.String())
	switch {
	case errors.Is(err, httpx.ErrNotReady):
		httpx.JSON(w, http.StatusAccepted, exportResponse{ID: id.String(), Status: documents.ExportPending, Location: r.URL.Path})
		return
	case err != nil:
		h.respond(w, "load export", err)
		return
	}
	if err := httpx.Attachment(w, doc.ContentType, doc.FileName, doc.Body); err != nil {
		h.logError("stream export", err)
	}
}

func (h *Handler) respond(w http.ResponseWriter, action string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logError(action, err)
	}
	httpx.RespondError(w, err)
}

func (h *Handler) logError(action string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.Error("documents handler", slog.String("action", action), slog.Any("error", err))
}
