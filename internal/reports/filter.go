// Package reports turns sales into daily, product and cashier totals. Every
// engine shares one filter normalizer so that status, date and entity
// filters mean the same thing across reports.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

// DefaultStatus is the only status reported when a caller names none.
const DefaultStatus = pos.StatusCompleted

// FilterSet is the raw report filter supplied by callers.
type FilterSet struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Statuses   []string   `json:"statuses,omitempty"`
	CheckoutID string     `json:"checkoutId,omitempty"`
	UserID     string     `json:"userId,omitempty"`
	CustomerID string     `json:"customerId,omitempty"`
	ProductID  string     `json:"productId,omitempty"`
	Limit      *int       `json:"limit,omitempty"`
}

// Predicate is a normalized FilterSet. Deleted sales never match.
type Predicate struct {
	Statuses   []pos.SaleStatus
	From       *time.Time
	To         *time.Time
	CheckoutID string
	UserID     string
	CustomerID string
	ProductID  string
}

// Normalizer compiles filter sets in a fixed business time zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer builds a normalizer for loc, defaulting to UTC.
func NewNormalizer(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return Normalizer{loc: loc}
}

// Location returns the business time zone.
func (n Normalizer) Location() *time.Location {
	if n.loc == nil {
		return time.UTC
	}
	return n.loc
}

// Normalize compiles f. Unknown statuses are dropped and an empty result
// falls back to DefaultStatus. From starts at 00:00:00.000 and To ends at
// 23:59:59.999 of their calendar days.
func (n Normalizer) Normalize(f FilterSet) Predicate {
	p := Predicate{
		Statuses:   pos.ParseStatuses(f.Statuses),
		CheckoutID: strings.TrimSpace(f.CheckoutID),
		UserID:     strings.TrimSpace(f.UserID),
		CustomerID: strings.TrimSpace(f.CustomerID),
		ProductID:  strings.TrimSpace(f.ProductID),
	}
	if len(p.Statuses) == 0 {
		p.Statuses = []pos.SaleStatus{DefaultStatus}
	}
	if f.From != nil {
		from := pos.StartOfDay(*f.From, n.Location())
		p.From = &from
	}
	if f.To != nil {
		to := pos.EndOfDay(*f.To, n.Location())
		p.To = &to
	}
	return p
}

// MatchSale applies the sale-level conditions.
func (p Predicate) MatchSale(s pos.Sale) bool {
	if s.DeletedAt != nil {
		return false
	}
	if !p.matchStatus(s.Status) {
		return false
	}
	if p.From != nil && s.CreatedAt.Before(*p.From) {
		return false
	}
	if p.To != nil && s.CreatedAt.After(*p.To) {
		return false
	}
	if p.CheckoutID != "" && s.CheckoutID != p.CheckoutID {
		return false
	}
	if p.UserID != "" && s.UserID != p.UserID {
		return false
	}
	if p.CustomerID != "" && s.CustomerID != p.CustomerID {
		return false
	}
	return true
}

// MatchItem applies the line-item conditions. The parent sale is matched
// separately with MatchSale.
func (p Predicate) MatchItem(item pos.SaleItem) bool {
	if item.DeletedAt != nil {
		return false
	}
	return p.ProductID == "" || item.ProductID == p.ProductID
}

func (p Predicate) matchStatus(s pos.SaleStatus) bool {
	for _, status := range p.Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// sqlWhere renders the sale-level conditions against the sales table
// aliased as alias. Placeholders continue from len(args).
func (p Predicate) sqlWhere(alias string, args []any) (string, []any) {
	col := func(name string) string { return alias + "." + name }
	conds := []string{col("deleted_at") + " IS NULL"}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	switch len(p.Statuses) {
	case 0:
	case 1:
		add(col("status")+" = $%d", string(p.Statuses[0]))
	default:
		statuses := make([]string, 0, len(p.Statuses))
		for _, s := range p.Statuses {
			statuses = append(statuses, string(s))
		}
		add(col("status")+" = ANY($%d)", statuses)
	}
	if p.From != nil {
		add(col("created_at")+" >= $%d", *p.From)
	}
	if p.To != nil {
		add(col("created_at")+" <= $%d", *p.To)
	}
	if p.CheckoutID != "" {
		add(col("checkout_id")+"::text = $%d", p.CheckoutID)
	}
	if p.UserID != "" {
		add(col("user_id")+"::text = $%d", p.UserID)
	}
	if p.CustomerID != "" {
		add(col("customer_id")+"::text = $%d", p.CustomerID)
	}
	return strings.Join(conds, " AND "), args
}
