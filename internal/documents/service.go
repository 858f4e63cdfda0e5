package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

// ErrValidation marks a request that cannot be rendered as given.
var ErrValidation = fmt.Errorf("documents: %w", httpx.ErrValidation)

// ReportSource produces the rows of the three sales reports.
type ReportSource interface {
	DailyTotals(ctx context.Context, year, month int, f reports.FilterSet) ([]reports.DailyTotalRow, error)
	ProductTotals(ctx context.Context, f reports.FilterSet) ([]reports.ProductTotalRow, error)
	UserTotals(ctx context.Context, f reports.FilterSet) ([]reports.UserTotalRow, error)
}

// Request names a document and the inputs it needs. It is JSON encoded
// when queued for background export.
type Request struct {
	Kind           Kind              `json:"kind"`
	SaleNumber     string            `json:"saleNumber,omitempty"`
	CashRegisterID string            `json:"cashRegisterId,omitempty"`
	Year           int               `json:"year,omitempty"`
	Month          int               `json:"month,omitempty"`
	Page           int               `json:"page,omitempty"`
	Filters        reports.FilterSet `json:"filters"`
	Invoices       pos.InvoiceQuery  `json:"invoices"`
}

// Validate checks that the fields required by Kind are present.
func (r Request) Validate() error {
	switch r.Kind {
	case KindInvoiceList, KindProductSales, KindUserSales:
		return nil
	case KindInvoice:
		if strings.TrimSpace(r.SaleNumber) == "" {
			return fmt.Errorf("%w: se requiere el número de factura", ErrValidation)
		}
	case KindCashRegister:
		if strings.TrimSpace(r.CashRegisterID) == "" {
			return fmt.Errorf("%w: se requiere el identificador de caja", ErrValidation)
		}
	case KindDailySales:
		if r.Year < 1 || r.Year > 9999 || r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("%w: se requiere año y mes válidos para el reporte diario", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: tipo de documento desconocido %q", ErrValidation, r.Kind)
	}
	return nil
}

// Service fetches records and renders them through the Builder.
type Service struct {
	reports ReportSource
	records pos.Repository
	builder *Builder
	metrics *Metrics
	logger  *slog.Logger
	group   singleflight.Group

	renderTimeout time.Duration
}

// DefaultRenderTimeout bounds a shared render once detached from its callers.
const DefaultRenderTimeout = 2 * time.Minute

// NewService wires the document service. metrics may be nil.
func NewService(rs ReportSource, records pos.Repository, builder *Builder, metrics *Metrics, logger *slog.Logger) *Service {
	if builder == nil {
		builder = NewBuilder(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reports:       rs,
		records:       records,
		builder:       builder,
		metrics:       metrics,
		logger:        logger,
		renderTimeout: DefaultRenderTimeout,
	}
}

// WithRenderTimeout overrides the bound on a shared render.
func (s *Service) WithRenderTimeout(d time.Duration) *Service {
	if d > 0 {
		s.renderTimeout = d
	}
	return s
}

// Render builds the requested document. Identical concurrent requests share
// a single render.
func (s *Service) Render(ctx context.Context, req Request) (Document, error) {
	if err := req.Validate(); err != nil {
		return Document{}, err
	}
	key, err := json.Marshal(req)
	if err != nil {
		return Document{}, err
	}
	ch := s.group.DoChan(string(key), func() (any, error) {
		// The render outlives any single caller; each caller gives up on
		// its own context below.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.renderTimeout)
		defer cancel()
		start := time.Now()
		doc, err := s.render(rctx, req)
		s.metrics.Observe(req.Kind, doc.Pages, err)
		if err != nil {
			return Document{}, err
		}
		s.logger.Info("document rendered",
			slog.String("kind", string(doc.Kind)),
			slog.Int("pages", doc.Pages),
			slog.Int("bytes", len(doc.Body)),
			slog.Duration("duration", time.Since(start)),
		)
		return doc, nil
	})
	select {
	case <-ctx.Done():
		return Document{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Document{}, res.Err
		}
		return res.Val.(Document), nil
	}
}

func (s *Service) render(ctx context.Context, req Request) (Document, error) {
	switch req.Kind {
	case KindInvoiceList:
		in, err := s.invoiceList(ctx, req)
		if err != nil {
			return Document{}, err
		}
		return s.builder.InvoiceListDocument(in)
	case KindInvoice:
		sale, err := s.records.SaleByNumber(ctx, strings.TrimSpace(req.SaleNumber))
		if err != nil {
			return Document{}, err
		}
		return s.builder.InvoiceDocument(pos.MapInvoiceDetail(sale))
	case KindCashRegister:
		reg, err := s.records.CashRegister(ctx, strings.TrimSpace(req.CashRegisterID))
		if err != nil {
			return Document{}, err
		}
		return s.builder.CashRegisterDocument(pos.MapCashRegisterDetail(reg))
	case KindDailySales:
		rows, err := s.reports.DailyTotals(ctx, req.Year, req.Month, req.Filters)
		if err != nil {
			return Document{}, err
		}
		return s.builder.DailySalesDocument(DailySales{Year: req.Year, Month: req.Month, Rows: rows})
	case KindProductSales:
		rows, err := s.reports.ProductTotals(ctx, req.Filters)
		if err != nil {
			return Document{}, err
		}
		return s.builder.ProductSalesDocument(ProductSales{Filters: req.Filters, Rows: rows})
	case KindUserSales:
		rows, err := s.reports.UserTotals(ctx, req.Filters)
		if err != nil {
			return Document{}, err
		}
		return s.builder.UserSalesDocument(UserSales{Filters: req.Filters, Rows: rows})
	}
	return Document{}, fmt.Errorf("%w: tipo de documento desconocido %q", ErrValidation, req.Kind)
}

// invoiceList fetches one page of invoices. Printed lists default to the
// largest page the store allows.
func (s *Service) invoiceList(ctx context.Context, req Request) (InvoiceList, error) {
	q := req.Invoices
	if q.Limit == 0 {
		q.Limit = pos.MaxInvoiceLimit
	}
	q = q.Normalize(s.builder.fmt.Location())
	page := req.Page
	if page > 1 && q.Offset == 0 {
		q.Offset = (page - 1) * q.Limit
	}
	if page < 1 {
		page = q.Offset/q.Limit + 1
	}

	cashier := ""
	if q.CashierID != "" {
		user, err := s.records.UserByID(ctx, q.CashierID)
		switch {
		case err == nil:
			cashier = user.FullName()
		case errors.Is(err, pos.ErrNotFound):
			cashier = q.CashierID
		default:
			return InvoiceList{}, err
		}
	}

	result, err := s.records.ListInvoices(ctx, q)
	if err != nil {
		return InvoiceList{}, err
	}
	items := pos.MapInvoiceListItems(result.Sales)
	in := InvoiceList{
		Items:      items,
		TotalCount: result.Total,
		Page:       page,
		Filters: InvoiceListFilters{
			CashierName: cashier,
			Statuses:    q.Statuses,
			From:        q.From,
			To:          q.To,
			MinTotal:    q.MinTotal,
			MaxTotal:    q.MaxTotal,
			Search:      q.Search,
		},
	}
	if len(items) > 0 {
		in.RangeFrom = q.Offset + 1
		in.RangeTo = q.Offset + len(items)
	}
	return in, nil
}
