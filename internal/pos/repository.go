package pos

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// ErrNotFound marks a sale, user or register lookup that matched nothing.
var ErrNotFound = fmt.Errorf("pos: %w", httpx.ErrNotFound)

// InvoicePage is one slice of the invoice list plus the unpaged count.
type InvoicePage struct {
	Sales []Sale
	Total int
}

// Repository is the read side of the sales store used by reporting.
type Repository interface {
	SaleByNumber(ctx context.Context, saleNumber string) (Sale, error)
	ListInvoices(ctx context.Context, query InvoiceQuery) (InvoicePage, error)
	CashRegister(ctx context.Context, id string) (CashRegister, error)
	UserByID(ctx context.Context, id string) (User, error)
}
