package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

type stubRepo struct {
	daily     []DailyAggregate
	products  []ProductAggregate
	users     []UserAggregate
	err       error
	calls     int
	lastPred  Predicate
	lastLimit int
}

func (s *stubRepo) AggregateDaily(ctx context.Context, p Predicate) ([]DailyAggregate, error) {
	s.calls++
	s.lastPred = p
	return s.daily, s.err
}

func (s *stubRepo) AggregateProducts(ctx context.Context, p Predicate, limit int) ([]ProductAggregate, error) {
	s.calls++
	s.lastPred, s.lastLimit = p, limit
	return s.products, s.err
}

func (s *stubRepo) AggregateUsers(ctx context.Context, p Predicate, limit int) ([]UserAggregate, error) {
	s.calls++
	s.lastPred, s.lastLimit = p, limit
	return s.users, s.err
}

func TestDailyTotalsRejectsInvalidPeriod(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, time.UTC)
	for _, period := range [][2]int{{2024, 0}, {2024, 13}, {0, 5}, {-1, 1}} {
		_, err := svc.DailyTotals(context.Background(), period[0], period[1], FilterSet{})
		require.Error(t, err)
		assert.ErrorIs(t, err, httpx.ErrValidation)
	}
	assert.Zero(t, repo.calls, "validation happens before any fetch")
}

func TestDailyTotalsUsesMonthBounds(t *testing.T) {
	repo := &stubRepo{}
	loc := time.FixedZone("PYT", -3*3600)
	svc := NewService(repo, loc)
	outside := time.Date(2020, 1, 1, 0, 0, 0, 0, loc)

	_, err := svc.DailyTotals(context.Background(), 2024, 2, FilterSet{From: &outside})
	require.NoError(t, err)
	require.NotNil(t, repo.lastPred.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), *repo.lastPred.From)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, loc), *repo.lastPred.To)
	assert.Equal(t, []pos.SaleStatus{pos.StatusCompleted}, repo.lastPred.Statuses)
}

func TestDailyTotalsDerivesAverageTicketAndSorts(t *testing.T) {
	repo := &stubRepo{daily: []DailyAggregate{
		{Year: 2024, Month: 8, Day: 12, Total: decimal.NewFromInt(100), Count: 3},
		{Year: 2024, Month: 8, Day: 2, Total: decimal.NewFromInt(0), Count: 0},
	}}
	rows, err := NewService(repo, time.UTC).DailyTotals(context.Background(), 2024, 8, FilterSet{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-08-02", rows[0].Date)
	assert.True(t, rows[0].AverageTicket.IsZero())
	assert.Equal(t, "2024-08-12", rows[1].Date)
	product := rows[1].AverageTicket.Mul(decimal.NewFromInt(3))
	assert.True(t, product.Sub(decimal.NewFromInt(100)).Abs().LessThan(decimal.New(1, -10)))
}

func TestProductTotalsRecomputesAverageUnitPrice(t *testing.T) {
	repo := &stubRepo{products: []ProductAggregate{
		{ProductID: "p1", Quantity: decimal.NewFromInt(4), Total: decimal.NewFromInt(5000), AvgUnitPrice: decimal.NewFromInt(999)},
		{ProductID: "p2", Quantity: decimal.Zero, Total: decimal.Zero, AvgUnitPrice: decimal.NewFromInt(700)},
	}}
	rows, err := NewService(repo, time.UTC).ProductTotals(context.Background(), FilterSet{Limit: intPtr(0)})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lastLimit)
	assert.True(t, rows[0].AverageUnitPrice.Equal(decimal.NewFromInt(1250)))
	assert.True(t, rows[1].AverageUnitPrice.Equal(decimal.NewFromInt(700)))
	assert.Nil(t, rows[0].Name)
}

func TestUserTotalsDefaultsLimitAndAverages(t *testing.T) {
	repo := &stubRepo{users: []UserAggregate{{UserID: "u1", Name: "Ana", Total: decimal.NewFromInt(300), Count: 4}}}
	rows, err := NewService(repo, time.UTC).UserTotals(context.Background(), FilterSet{})
	require.NoError(t, err)
	assert.Equal(t, 25, repo.lastLimit)
	assert.True(t, rows[0].AverageTicket.Equal(decimal.NewFromInt(75)))
}

func TestEnginesPropagateFetchErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&stubRepo{err: boom}, time.UTC)

	_, err := svc.DailyTotals(context.Background(), 2024, 8, FilterSet{})
	assert.Same(t, boom, err)
	_, err = svc.ProductTotals(context.Background(), FilterSet{})
	assert.Same(t, boom, err)
	_, err = svc.UserTotals(context.Background(), FilterSet{})
	assert.Same(t, boom, err)
}

func TestSummarizeDailyPicksFirstBestDay(t *testing.T) {
	rows := []DailyTotalRow{
		{Date: "2024-08-01", Total: decimal.NewFromInt(100), SaleCount: 2},
		{Date: "2024-08-02", Total: decimal.NewFromInt(300), SaleCount: 3},
		{Date: "2024-08-03", Total: decimal.NewFromInt(300), SaleCount: 1},
	}
	sum := SummarizeDaily(rows)
	assert.True(t, sum.Total.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 6, sum.SaleCount)
	require.NotNil(t, sum.BestDay)
	assert.Equal(t, "2024-08-02", sum.BestDay.Date)

	empty := SummarizeDaily(nil)
	assert.Nil(t, empty.BestDay)
	assert.True(t, empty.AverageTicket.IsZero())
}
