package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// ErrValidation marks report input rejected before any fetch happens.
var ErrValidation = fmt.Errorf("reports: %w", httpx.ErrValidation)

// Repository runs the staged aggregation queries. Implementations apply
// filter, join, group, sort and limit; the engines only map and derive.
type Repository interface {
	AggregateDaily(ctx context.Context, p Predicate) ([]DailyAggregate, error)
	AggregateProducts(ctx context.Context, p Predicate, limit int) ([]ProductAggregate, error)
	AggregateUsers(ctx context.Context, p Predicate, limit int) ([]UserAggregate, error)
}

// Service hosts the three report engines.
type Service struct {
	repo       Repository
	normalizer Normalizer
}

// NewService wires a Repository with a normalizer for loc.
func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{repo: repo, normalizer: NewNormalizer(loc)}
}

// Location returns the business time zone reports are computed in.
func (s *Service) Location() *time.Location {
	return s.normalizer.Location()
}

// DailyTotals returns one row per day of year/month with sales matching f.
// The month bounds replace any From/To in f.
func (s *Service) DailyTotals(ctx context.Context, year, month int, f FilterSet) ([]DailyTotalRow, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: se requiere año y mes válidos para el reporte diario", ErrValidation)
	}
	loc := s.normalizer.Location()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	f.From, f.To = &first, &last

	aggs, err := s.repo.AggregateDaily(ctx, s.normalizer.Normalize(f))
	if err != nil {
		return nil, err
	}
	rows := make([]DailyTotalRow, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, DailyTotalRow{
			Date:          fmt.Sprintf("%04d-%02d-%02d", a.Year, a.Month, a.Day),
			Year:          a.Year,
			Month:         a.Month,
			Day:           a.Day,
			Total:         a.Total,
			Subtotal:      a.Subtotal,
			Tax:           a.Tax,
			Discount:      a.Discount,
			SaleCount:     a.Count,
			AverageTicket: averageOf(a.Total, decimal.NewFromInt(int64(a.Count))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows, nil
}

// ProductTotals ranks products by sold amount.
func (s *Service) ProductTotals(ctx context.Context, f FilterSet) ([]ProductTotalRow, error) {
	aggs, err := s.repo.AggregateProducts(ctx, s.normalizer.Normalize(f), ProductLimit.Sanitize(f.Limit))
	if err != nil {
		return nil, err
	}
	rows := make([]ProductTotalRow, 0, len(aggs))
	for _, a := range aggs {
		avg := a.AvgUnitPrice
		if a.Quantity.IsPositive() {
			avg = a.Total.Div(a.Quantity)
		}
		rows = append(rows, ProductTotalRow{
			ProductID:        a.ProductID,
			Name:             a.Name,
			Barcode:          a.Barcode,
			Quantity:         a.Quantity,
			Total:            a.Total,
			AverageUnitPrice: avg,
			LastSaleAt:       a.LastSaleAt,
		})
	}
	return rows, nil
}

// UserTotals ranks cashiers by sold amount.
func (s *Service) UserTotals(ctx context.Context, f FilterSet) ([]UserTotalRow, error) {
	aggs, err := s.repo.AggregateUsers(ctx, s.normalizer.Normalize(f), UserLimit.Sanitize(f.Limit))
	if err != nil {
		return nil, err
	}
	rows := make([]UserTotalRow, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, UserTotalRow{
			UserID:        a.UserID,
			Name:          a.Name,
			Lastname:      a.Lastname,
			Email:         a.Email,
			SaleCount:     a.Count,
			Total:         a.Total,
			AverageTicket: averageOf(a.Total, decimal.NewFromInt(int64(a.Count))),
			LastSaleAt:    a.LastSaleAt,
		})
	}
	return rows, nil
}
