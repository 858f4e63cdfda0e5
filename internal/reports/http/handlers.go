// Package reporthttp exposes the report engines as JSON endpoints.
package reporthttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

const requestTimeout = 5 * time.Second

// ReportService is the report contract used by the handler.
type ReportService interface {
	DailyTotals(ctx context.Context, year, month int, f reports.FilterSet) ([]reports.DailyTotalRow, error)
	ProductTotals(ctx context.Context, f reports.FilterSet) ([]reports.ProductTotalRow, error)
	UserTotals(ctx context.Context, f reports.FilterSet) ([]reports.UserTotalRow, error)
	Location() *time.Location
}

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	parser  *Parser
}

// NewHandler constructs the report handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		parser:  NewParser(service.Location()),
	}
}

type dailyResponse struct {
	Year    int                     `json:"year"`
	Month   int                     `json:"month"`
	Rows    []reports.DailyTotalRow `json:"rows"`
	Summary reports.DailySummary    `json:"summary"`
}

type productResponse struct {
	Rows    []reports.ProductTotalRow `json:"rows"`
	Summary reports.ProductSummary    `json:"summary"`
}

type userResponse struct {
	Rows    []reports.UserTotalRow `json:"rows"`
	Summary reports.UserSummary    `json:"summary"`
}

type dashboardResponse struct {
	Daily    dailyResponse   `json:"daily"`
	Products productResponse `json:"products"`
	Users    userResponse    `json:"users"`
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parser.Period(r)
	if err != nil {
		h.respond(w, "parse period", err)
		return
	}
	filters, err := h.parser.Filters(r)
	if err != nil {
		h.respond(w, "parse filters", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.daily(ctx, year, month, filters)
	if err != nil {
		h.respond(w, "daily totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parser.Filters(r)
	if err != nil {
		h.respond(w, "parse filters", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.products(ctx, filters)
	if err != nil {
		h.respond(w, "product totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parser.Filters(r)
	if err != nil {
		h.respond(w, "parse filters", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := h.users(ctx, filters)
	if err != nil {
		h.respond(w, "user totals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// handleDashboard loads the three reports for one month concurrently.
// Product and cashier rankings cover the same month unless the caller
// narrows the dates.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parser.Period(r)
	if err != nil {
		h.respond(w, "parse period", err)
		return
	}
	filters, err := h.parser.Filters(r)
	if err != nil {
		h.respond(w, "parse filters", err)
		return
	}
	if filters.From == nil && filters.To == nil && month >= 1 && month <= 12 {
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, h.parser.Location())
		last := first.AddDate(0, 1, -1)
		filters.From, filters.To = &first, &last
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp dashboardResponse
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		daily, err := h.daily(ctx, year, month, filters)
		if err != nil {
			return err
		}
		resp.Daily = daily
		return nil
	})
	g.Go(func() error {
		products, err := h.products(ctx, filters)
		if err != nil {
			return err
		}
		resp.Products = products
		return nil
	})
	g.Go(func() error {
		users, err := h.users(ctx, filters)
		if err != nil {
			return err
		}
		resp.Users = users
		return nil
	})
	if err := g.Wait(); err != nil {
		h.respond(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) daily(ctx context.Context, year, month int, f reports.FilterSet) (dailyResponse, error) {
	rows, err := h.service.DailyTotals(ctx, year, month, f)
	if err != nil {
		return dailyResponse{}, err
	}
	return dailyResponse{Year: year, Month: month, Rows: rows, Summary: reports.SummarizeDaily(rows)}, nil
}

func (h *Handler) products(ctx context.Context, f reports.FilterSet) (productResponse, error) {
	rows, err := h.service.ProductTotals(ctx, f)
	if err != nil {
		return productResponse{}, err
	}
	return productResponse{Rows: rows, Summary: reports.SummarizeProducts(rows)}, nil
}

func (h *Handler) users(ctx context.Context, f reports.FilterSet) (userResponse, error) {
	rows, err := h.service.UserTotals(ctx, f)
	if err != nil {
		return userResponse{}, err
	}
	return userResponse{Rows: rows, Summary: reports.SummarizeUsers(rows)}, nil
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
	h.logger.Error("reports handler", slog.String("action", action), slog.Any("error", err))
}
