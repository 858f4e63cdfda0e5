package pos

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceQueryNormalizeClampsPaging(t *testing.T) {
	cases := []struct {
		limit, offset   int
		wantLimit, want int
	}{
		{0, 0, 50, 0},
		{-3, -1, 1, 0},
		{500, 10, 200, 10},
		{25, 5, 25, 5},
	}
	for _, tc := range cases {
		q := InvoiceQuery{Limit: tc.limit, Offset: tc.offset}.Normalize(time.UTC)
		assert.Equal(t, tc.wantLimit, q.Limit)
		assert.Equal(t, tc.want, q.Offset)
	}
}

func TestInvoiceQueryMatchesWholeDayRange(t *testing.T) {
	day := time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
	q := InvoiceQuery{From: &day, To: &day}.Normalize(time.UTC)

	late := Sale{CreatedAt: time.Date(2024, 8, 10, 23, 59, 59, 0, time.UTC), Status: StatusCancelled}
	next := Sale{CreatedAt: time.Date(2024, 8, 11, 0, 0, 0, 0, time.UTC)}
	assert.True(t, q.Matches(late), "empty status list keeps every status")
	assert.False(t, q.Matches(next))
}

func TestInvoiceQueryMatchesSearchAndTotals(t *testing.T) {
	minTotal := decimal.NewFromInt(100)
	q := InvoiceQuery{Search: "comercial", MinTotal: &minTotal}.Normalize(time.UTC)

	hit := Sale{Total: decimal.NewFromInt(150), Customer: &Customer{Name: "Comercial Sur"}}
	cheap := Sale{Total: decimal.NewFromInt(50), Customer: &Customer{Name: "Comercial Sur"}}
	other := Sale{Total: decimal.NewFromInt(150), SaleNumber: "F-9"}
	assert.True(t, q.Matches(hit))
	assert.False(t, q.Matches(cheap))
	assert.False(t, q.Matches(other))
}

func TestEndOfDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("PY", -3*3600)
	end := EndOfDay(time.Date(2024, 8, 10, 1, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, 9, end.Day(), "01:00 UTC is still the 9th at UTC-3")
	assert.Equal(t, 999*int(time.Millisecond), end.Nanosecond())
}
