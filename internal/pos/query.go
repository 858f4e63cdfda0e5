package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultInvoiceLimit = 50
	MaxInvoiceLimit     = 200
)

// InvoiceQuery filters the paged invoice list. An empty Statuses list means
// every status; unlike the report filters there is no default.
type InvoiceQuery struct {
	CashierID string           `json:"cashierId,omitempty"`
	Statuses  []SaleStatus     `json:"statuses,omitempty"`
	From      *time.Time       `json:"from,omitempty"`
	To        *time.Time       `json:"to,omitempty"`
	MinTotal  *decimal.Decimal `json:"minTotal,omitempty"`
	MaxTotal  *decimal.Decimal `json:"maxTotal,omitempty"`
	Search    string           `json:"search,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Offset    int              `json:"offset,omitempty"`
}

// Normalize trims text filters, clamps paging and widens the date range to
// whole days in loc.
func (q InvoiceQuery) Normalize(loc *time.Location) InvoiceQuery {
	out := q
	out.CashierID = strings.TrimSpace(q.CashierID)
	out.Search = strings.TrimSpace(q.Search)
	switch {
	case q.Limit == 0:
		out.Limit = DefaultInvoiceLimit
	case q.Limit < 1:
		out.Limit = 1
	case q.Limit > MaxInvoiceLimit:
		out.Limit = MaxInvoiceLimit
	}
	if q.Offset < 0 {
		out.Offset = 0
	}
	if q.From != nil {
		from := StartOfDay(*q.From, loc)
		out.From = &from
	}
	if q.To != nil {
		to := EndOfDay(*q.To, loc)
		out.To = &to
	}
	if len(q.Statuses) > 0 {
		out.Statuses = make([]SaleStatus, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			if s.Valid() {
				out.Statuses = append(out.Statuses, s)
			}
		}
	}
	return out
}

// Matches applies the normalized query to a sale with resolved relations.
func (q InvoiceQuery) Matches(s Sale) bool {
	if s.DeletedAt != nil {
		return false
	}
	if q.CashierID != "" && s.UserID != q.CashierID {
		return false
	}
	if len(q.Statuses) > 0 && !containsStatus(q.Statuses, s.Status) {
		return false
	}
	if q.From != nil && s.CreatedAt.Before(*q.From) {
		return false
	}
	if q.To != nil && s.CreatedAt.After(*q.To) {
		return false
	}
	if q.MinTotal != nil && s.Total.LessThan(*q.MinTotal) {
		return false
	}
	if q.MaxTotal != nil && s.Total.GreaterThan(*q.MaxTotal) {
		return false
	}
	if q.Search != "" && !matchesSearch(s, q.Search) {
		return false
	}
	return true
}

func matchesSearch(s Sale, term string) bool {
	term = strings.ToLower(term)
	fields := []string{s.SaleNumber}
	if s.User != nil {
		fields = append(fields, s.User.Name, s.User.Lastname)
	}
	if s.Customer != nil {
		fields = append(fields, s.Customer.Name, s.Customer.RUC)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func containsStatus(list []SaleStatus, s SaleStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}
