// Package memory is an in-process implementation of the sales and report
// repositories. It backs demo mode and the end-to-end tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

// Dataset is the full content loaded into a Store.
type Dataset struct {
	Users     []pos.User
	Customers []pos.Customer
	Checkouts []pos.Checkout
	Products  []pos.Product
	Sales     []pos.Sale
	Registers []pos.CashRegister
}

// Store keeps a Dataset in memory behind a read-write lock.
type Store struct {
	mu        sync.RWMutex
	loc       *time.Location
	users     map[string]pos.User
	customers map[string]pos.Customer
	checkouts map[string]pos.Checkout
	products  map[string]pos.Product
	sales     []pos.Sale
	registers map[string]pos.CashRegister
}

var (
	_ pos.Repository     = (*Store)(nil)
	_ reports.Repository = (*Store)(nil)
)

// New loads ds. Days are grouped in loc.
func New(ds Dataset, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	s := &Store{
		loc:       loc,
		users:     make(map[string]pos.User, len(ds.Users)),
		customers: make(map[string]pos.Customer, len(ds.Customers)),
		checkouts: make(map[string]pos.Checkout, len(ds.Checkouts)),
		products:  make(map[string]pos.Product, len(ds.Products)),
		registers: make(map[string]pos.CashRegister, len(ds.Registers)),
	}
	for _, u := range ds.Users {
		s.users[u.ID] = u
	}
	for _, c := range ds.Customers {
		s.customers[c.ID] = c
	}
	for _, c := range ds.Checkouts {
		s.checkouts[c.ID] = c
	}
	for _, p := range ds.Products {
		s.products[p.ID] = p
	}
	for _, r := range ds.Registers {
		s.registers[r.ID] = r
	}
	s.sales = append(s.sales, ds.Sales...)
	return s
}

// AddSale appends a sale with its items.
func (s *Store) AddSale(sale pos.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale)
}

// SaleByNumber returns a live sale with relations and items resolved.
func (s *Store) SaleByNumber(ctx context.Context, saleNumber string) (pos.Sale, error) {
	if err := ctx.Err(); err != nil {
		return pos.Sale{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sale := range s.sales {
		if sale.DeletedAt == nil && sale.SaleNumber == saleNumber {
			return s.resolve(sale, true), nil
		}
	}
	return pos.Sale{}, fmt.Errorf("sale %q: %w", saleNumber, pos.ErrNotFound)
}

// ListInvoices pages sales newest first.
func (s *Store) ListInvoices(ctx context.Context, query pos.InvoiceQuery) (pos.InvoicePage, error) {
	if err := ctx.Err(); err != nil {
		return pos.InvoicePage{}, err
	}
	q := query.Normalize(s.loc)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []pos.Sale
	for _, sale := range s.sales {
		resolved := s.resolve(sale, false)
		if q.Matches(resolved) {
			matched = append(matched, resolved)
		}
	}
	slices.SortStableFunc(matched, func(a, b pos.Sale) int { return b.CreatedAt.Compare(a.CreatedAt) })

	page := pos.InvoicePage{Total: len(matched)}
	if q.Offset < len(matched) {
		end := min(q.Offset+q.Limit, len(matched))
		page.Sales = matched[q.Offset:end]
	}
	return page, nil
}

// CashRegister returns a register session with people and checkout resolved.
func (s *Store) CashRegister(ctx context.Context, id string) (pos.CashRegister, error) {
	if err := ctx.Err(); err != nil {
		return pos.CashRegister{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registers[id]
	if !ok {
		return pos.CashRegister{}, fmt.Errorf("cash register %q: %w", id, pos.ErrNotFound)
	}
	if c, ok := s.checkouts[reg.CheckoutID]; ok && reg.Checkout == nil {
		reg.Checkout = &c
	}
	reg.Transactions = slices.Clone(reg.Transactions)
	return reg, nil
}

// UserByID returns a user.
func (s *Store) UserByID(ctx context.Context, id string) (pos.User, error) {
	if err := ctx.Err(); err != nil {
		return pos.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return pos.User{}, fmt.Errorf("user %q: %w", id, pos.ErrNotFound)
	}
	return u, nil
}

func (s *Store) resolve(sale pos.Sale, withItems bool) pos.Sale {
	if u, ok := s.users[sale.UserID]; ok {
		sale.User = &u
	}
	if c, ok := s.customers[sale.CustomerID]; ok {
		sale.Customer = &c
	}
	if c, ok := s.checkouts[sale.CheckoutID]; ok {
		sale.Checkout = &c
	}
	if !withItems {
		sale.Items = nil
		return sale
	}
	items := make([]pos.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.DeletedAt != nil {
			continue
		}
		if p, ok := s.products[item.ProductID]; ok {
			item.Product = &p
		}
		items = append(items, item)
	}
	sale.Items = items
	return sale
}

// AggregateDaily groups matching sales by calendar day in the store zone.
func (s *Store) AggregateDaily(ctx context.Context, p reports.Predicate) ([]reports.DailyAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	type dayKey struct{ y, m, d int }
	groups := make(map[dayKey]*reports.DailyAggregate)
	for _, sale := range s.filterSales(p) {
		y, m, d := sale.CreatedAt.In(s.loc).Date()
		key := dayKey{y, int(m), d}
		agg, ok := groups[key]
		if !ok {
			agg = &reports.DailyAggregate{Year: y, Month: int(m), Day: d}
			groups[key] = agg
		}
		agg.Total = agg.Total.Add(sale.Total)
		agg.Subtotal = agg.Subtotal.Add(sale.Subtotal)
		agg.Tax = agg.Tax.Add(sale.Tax)
		agg.Discount = agg.Discount.Add(sale.Discount)
		agg.Count++
	}
	out := make([]reports.DailyAggregate, 0, len(groups))
	for _, agg := range groups {
		out = append(out, *agg)
	}
	slices.SortFunc(out, func(a, b reports.DailyAggregate) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Month, b.Month), cmp.Compare(a.Day, b.Day))
	})
	return out, nil
}

type productGroup struct {
	agg       reports.ProductAggregate
	priceSum  decimal.Decimal
	lineCount int64
}

// AggregateProducts groups live items of matching sales by product.
func (s *Store) AggregateProducts(ctx context.Context, p reports.Predicate, limit int) ([]reports.ProductAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string]*productGroup)
	var order []string
	for _, sale := range s.filterSales(p) {
		for _, item := range sale.Items {
			if !p.MatchItem(item) {
				continue
			}
			g, ok := groups[item.ProductID]
			if !ok {
				g = &productGroup{agg: reports.ProductAggregate{ProductID: item.ProductID}}
				if prod, found := s.products[item.ProductID]; found {
					name, barcode := prod.Name, prod.Barcode
					g.agg.Name = &name
					if strings.TrimSpace(barcode) != "" {
						g.agg.Barcode = &barcode
					}
				}
				groups[item.ProductID] = g
				order = append(order, item.ProductID)
			}
			g.agg.Quantity = g.agg.Quantity.Add(item.Quantity)
			g.agg.Total = g.agg.Total.Add(item.Total)
			g.priceSum = g.priceSum.Add(item.UnitPrice)
			g.lineCount++
			if g.agg.LastSaleAt == nil || sale.CreatedAt.After(*g.agg.LastSaleAt) {
				at := sale.CreatedAt
				g.agg.LastSaleAt = &at
			}
		}
	}

	out := make([]reports.ProductAggregate, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		if g.lineCount > 0 {
			g.agg.AvgUnitPrice = g.priceSum.Div(decimal.NewFromInt(g.lineCount))
		}
		out = append(out, g.agg)
	}
	slices.SortStableFunc(out, func(a, b reports.ProductAggregate) int {
		return cmp.Or(b.Total.Cmp(a.Total), cmp.Compare(a.ProductID, b.ProductID))
	})
	return truncate(out, limit), nil
}

// AggregateUsers groups matching sales by cashier, skipping sales whose user
// record does not exist.
func (s *Store) AggregateUsers(ctx context.Context, p reports.Predicate, limit int) ([]reports.UserAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string]*reports.UserAggregate)
	var order []string
	for _, sale := range s.filterSales(p) {
		user, ok := s.users[sale.UserID]
		if !ok {
			continue
		}
		agg, ok := groups[user.ID]
		if !ok {
			agg = &reports.UserAggregate{UserID: user.ID, Name: user.Name, Lastname: user.Lastname}
			if user.Email != "" {
				email := user.Email
				agg.Email = &email
			}
			groups[user.ID] = agg
			order = append(order, user.ID)
		}
		agg.Total = agg.Total.Add(sale.Total)
		agg.Count++
		if agg.LastSaleAt == nil || sale.CreatedAt.After(*agg.LastSaleAt) {
			at := sale.CreatedAt
			agg.LastSaleAt = &at
		}
	}

	out := make([]reports.UserAggregate, 0, len(groups))
	for _, id := range order {
		out = append(out, *groups[id])
	}
	slices.SortStableFunc(out, func(a, b reports.UserAggregate) int {
		return cmp.Or(b.Total.Cmp(a.Total), cmp.Compare(a.UserID, b.UserID))
	})
	return truncate(out, limit), nil
}

func (s *Store) filterSales(p reports.Predicate) []pos.Sale {
	var out []pos.Sale
	for _, sale := range s.sales {
		if p.MatchSale(sale) {
			out = append(out, sale)
		}
	}
	return out
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
