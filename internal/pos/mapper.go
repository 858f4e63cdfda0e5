package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	unknownCashierID   = "unknown"
	unknownCashierName = "Sin cajero"
	unnamedUser        = "Sin nombre"
	missingSaleNumber  = "N/A"
	unnamedProduct     = "Producto sin nombre"
)

// PartyRef is a resolved person reference ready for display.
type PartyRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Lastname string `json:"lastname,omitempty"`
}

// FullName joins name and lastname.
func (p PartyRef) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.Lastname)
}

// CustomerRef is a resolved customer reference.
type CustomerRef struct {
	Name string `json:"name"`
	RUC  string `json:"ruc,omitempty"`
}

// InvoiceListItem is one row of the invoice list.
type InvoiceListItem struct {
	ID         string          `json:"id"`
	SaleNumber string          `json:"saleNumber"`
	CreatedAt  time.Time       `json:"createdAt"`
	Status     SaleStatus      `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Cashier    PartyRef        `json:"cashier"`
	Customer   *CustomerRef    `json:"customer,omitempty"`
	Checkout   string          `json:"checkout,omitempty"`
}

// InvoiceLine is a printable sale line.
type InvoiceLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Barcode   string          `json:"barcode,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceDetail is the flattened single-invoice view.
type InvoiceDetail struct {
	SaleNumber string          `json:"saleNumber"`
	Status     SaleStatus      `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Notes      string          `json:"notes,omitempty"`
	Cashier    PartyRef        `json:"cashier"`
	Customer   *CustomerRef    `json:"customer,omitempty"`
	Checkout   string          `json:"checkout,omitempty"`
	Lines      []InvoiceLine   `json:"lines"`
}

// MapInvoiceListItem flattens a sale for the invoice list. Missing relations
// fall back to placeholders; it never fails.
func MapInvoiceListItem(s Sale) InvoiceListItem {
	return InvoiceListItem{
		ID:         s.ID,
		SaleNumber: saleNumber(s.SaleNumber),
		CreatedAt:  normalizeTime(s.CreatedAt),
		Status:     s.Status,
		Total:      s.Total,
		Cashier:    cashierRef(s.User, s.UserID),
		Customer:   customerRef(s.Customer),
		Checkout:   checkoutName(s.Checkout),
	}
}

// MapInvoiceListItems maps a page of sales in order.
func MapInvoiceListItems(sales []Sale) []InvoiceListItem {
	out := make([]InvoiceListItem, 0, len(sales))
	for _, s := range sales {
		out = append(out, MapInvoiceListItem(s))
	}
	return out
}

// MapInvoiceDetail flattens a sale with its items. Deleted items are skipped.
func MapInvoiceDetail(s Sale) InvoiceDetail {
	detail := InvoiceDetail{
		SaleNumber: saleNumber(s.SaleNumber),
		Status:     s.Status,
		CreatedAt:  normalizeTime(s.CreatedAt),
		Subtotal:   s.Subtotal,
		Tax:        s.Tax,
		Discount:   s.Discount,
		Total:      s.Total,
		Notes:      strings.TrimSpace(s.Notes),
		Cashier:    cashierRef(s.User, s.UserID),
		Customer:   customerRef(s.Customer),
		Checkout:   checkoutName(s.Checkout),
		Lines:      make([]InvoiceLine, 0, len(s.Items)),
	}
	for _, item := range s.Items {
		if item.DeletedAt != nil {
			continue
		}
		line := InvoiceLine{
			ProductID: item.ProductID,
			Name:      unnamedProduct,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
		if item.Product != nil {
			if name := strings.TrimSpace(item.Product.Name); name != "" {
				line.Name = name
			}
			line.Barcode = strings.TrimSpace(item.Product.Barcode)
		}
		detail.Lines = append(detail.Lines, line)
	}
	return detail
}

func saleNumber(raw string) string {
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}
	return missingSaleNumber
}

func cashierRef(u *User, fallbackID string) PartyRef {
	if u == nil {
		return PartyRef{ID: unknownCashierID, Name: unknownCashierName}
	}
	ref := PartyRef{ID: u.ID, Name: strings.TrimSpace(u.Name), Lastname: strings.TrimSpace(u.Lastname)}
	if ref.ID == "" {
		ref.ID = fallbackID
	}
	if ref.Name == "" {
		ref.Name = unnamedUser
	}
	return ref
}

func customerRef(c *Customer) *CustomerRef {
	if c == nil {
		return nil
	}
	name := strings.TrimSpace(c.Name)
	ruc := strings.TrimSpace(c.RUC)
	if name == "" && ruc == "" {
		return nil
	}
	if name == "" {
		name = unnamedUser
	}
	return &CustomerRef{Name: name, RUC: ruc}
}

func checkoutName(c *Checkout) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Name)
}

// normalizeTime maps the zero time to the Unix epoch and converts to UTC so
// view models never carry an unset timestamp.
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t.UTC()
}

func normalizeTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := normalizeTime(*t)
	return &v
}
