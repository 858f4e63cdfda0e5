package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/format"
	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

// InvoiceListFilters describes the filters shown above the invoice table.
type InvoiceListFilters struct {
	CashierName string
	Statuses    []pos.SaleStatus
	From        *time.Time
	To          *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
	Search      string
}

// InvoiceList is the input of the invoice list document.
type InvoiceList struct {
	Items      []pos.InvoiceListItem
	TotalCount int
	Page       int
	RangeFrom  int
	RangeTo    int
	Filters    InvoiceListFilters
}

// InvoiceListSummary is the numeric block of the invoice list.
type InvoiceListSummary struct {
	Count int
	Sum   decimal.Decimal
}

// SummarizeInvoices totals the listed invoices.
func SummarizeInvoices(items []pos.InvoiceListItem) InvoiceListSummary {
	sum := InvoiceListSummary{Count: len(items)}
	for _, it := range items {
		sum.Sum = sum.Sum.Add(it.Total)
	}
	return sum
}

func (b *Builder) invoiceListColumns() []pdf.Column[pos.InvoiceListItem] {
	f := b.fmt
	return []pdf.Column[pos.InvoiceListItem]{
		{Title: "Factura", Width: 60, Value: func(it pos.InvoiceListItem) string { return it.SaleNumber }},
		{Title: "Fecha", Width: 100, Value: func(it pos.InvoiceListItem) string { return f.DateTime(it.CreatedAt) }},
		{Title: "Cajero", Width: 100, Value: func(it pos.InvoiceListItem) string { return it.Cashier.FullName() }},
		{Title: "Cliente", Width: 95, Value: func(it pos.InvoiceListItem) string { return customerCell(it.Customer) }},
		{Title: "Estado", Width: 60, Value: func(it pos.InvoiceListItem) string { return f.Status(it.Status) }},
		{Title: "Total", Width: 75, Align: pdf.AlignRight, Value: func(it pos.InvoiceListItem) string { return f.Currency(it.Total) }},
	}
}

func customerCell(c *pos.CustomerRef) string {
	if c == nil {
		return "-"
	}
	parts := make([]string, 0, 2)
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if c.RUC != "" {
		parts = append(parts, "RUC: "+c.RUC)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "\n")
}

// InvoiceListDocument renders the filtered invoice list.
func (b *Builder) InvoiceListDocument(in InvoiceList) (Document, error) {
	now := b.now()
	s, c := b.begin("Reporte de facturas")

	sum := SummarizeInvoices(in.Items)
	page := in.Page
	if page < 1 {
		page = 1
	}
	from, to := in.RangeFrom, in.RangeTo
	if from == 0 && to == 0 && len(in.Items) > 0 {
		from, to = 1, len(in.Items)
	}
	total := in.TotalCount
	if total < sum.Count {
		total = sum.Count
	}
	c = pdf.Lines(s, c, pdf.BodyFont, []string{
		b.generatedLine(),
		fmt.Sprintf("Total de facturas: %s", b.fmt.Integer(total)),
		fmt.Sprintf("Suma de totales: %s", b.fmt.Currency(sum.Sum)),
		fmt.Sprintf("Pagina actual: %d", page),
		fmt.Sprintf("Rango visible: %d-%d", from, to),
	}, 2)

	c = pdf.Paragraph(s, c.Down(8), pdf.HeadingFont, "Filtros aplicados", pdf.AlignLeft, 4)
	filterLines := b.invoiceFilterLines(in.Filters)
	if len(filterLines) == 0 {
		filterLines = []string{"Sin filtros aplicados."}
	}
	c = pdf.Lines(s, c, pdf.BodyFont, filterLines, 2)

	c = pdf.Paragraph(s, c.Down(8), pdf.HeadingFont, "Detalle de facturas", pdf.AlignLeft, 6)
	if len(in.Items) == 0 {
		pdf.Paragraph(s, c, pdf.BodyFont, "No hay facturas para los filtros seleccionados.", pdf.AlignLeft, 0)
	} else {
		pdf.DrawTable(s, c, b.invoiceListColumns(), in.Items, pdf.DefaultTableStyle)
	}
	return finish(s, KindInvoiceList, "reporte-facturas-"+format.Timestamp(now)+".pdf")
}

func (b *Builder) invoiceFilterLines(f InvoiceListFilters) []string {
	var lines []string
	if f.CashierName != "" {
		lines = append(lines, "Cajero: "+f.CashierName)
	}
	if len(f.Statuses) > 0 {
		labels := make([]string, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			labels = append(labels, b.fmt.Status(st))
		}
		lines = append(lines, "Estados: "+strings.Join(labels, ", "))
	}
	switch {
	case f.From != nil && f.To != nil:
		lines = append(lines, fmt.Sprintf("Fechas: %s - %s", b.fmt.Date(*f.From), b.fmt.Date(*f.To)))
	case f.From != nil:
		lines = append(lines, "Fechas: desde "+b.fmt.Date(*f.From))
	case f.To != nil:
		lines = append(lines, "Fechas: hasta "+b.fmt.Date(*f.To))
	}
	if f.MinTotal != nil || f.MaxTotal != nil {
		low, high := "-", "-"
		if f.MinTotal != nil {
			low = b.fmt.Currency(*f.MinTotal)
		}
		if f.MaxTotal != nil {
			high = b.fmt.Currency(*f.MaxTotal)
		}
		lines = append(lines, fmt.Sprintf("Total entre: %s y %s", low, high))
	}
	if f.Search != "" {
		lines = append(lines, "Busqueda: "+f.Search)
	}
	return lines
}

func (b *Builder) invoiceLineColumns() []pdf.Column[pos.InvoiceLine] {
	f := b.fmt
	return []pdf.Column[pos.InvoiceLine]{
		{Title: "Producto", Width: 215, Value: func(l pos.InvoiceLine) string {
			if l.Barcode == "" {
				return l.Name
			}
			return l.Name + "\n" + l.Barcode
		}},
		{Title: "Cant.", Width: 60, Align: pdf.AlignRight, Value: func(l pos.InvoiceLine) string { return f.Quantity(l.Quantity) }},
		{Title: "Precio unit.", Width: 100, Align: pdf.AlignRight, Value: func(l pos.InvoiceLine) string { return f.Currency(l.UnitPrice) }},
		{Title: "Total", Width: 100, Align: pdf.AlignRight, Value: func(l pos.InvoiceLine) string { return f.Currency(l.Total) }},
	}
}

// InvoiceDocument renders a single invoice with its lines.
func (b *Builder) InvoiceDocument(d pos.InvoiceDetail) (Document, error) {
	s, c := b.begin("Factura " + d.SaleNumber)

	c = pdf.Lines(s, c, pdf.BodyFont, []string{
		"Fecha: " + b.fmt.DateTime(d.CreatedAt),
		"Estado: " + b.fmt.Status(d.Status),
		"Caja: " + orDash(d.Checkout),
		"Cajero: " + d.Cashier.FullName(),
	}, 2)

	customer := []string{"Consumidor final"}
	if d.Customer != nil {
		customer = []string{"Nombre: " + d.Customer.Name, "RUC: " + orDash(d.Customer.RUC)}
	}
	c = pdf.Paragraph(s, c.Down(8), pdf.HeadingFont, "Cliente", pdf.AlignLeft, 4)
	c = pdf.Lines(s, c, pdf.BodyFont, customer, 2)

	c = pdf.Summary(s, c.Down(8), "Resumen", []pdf.KeyValue{
		{Label: "Subtotal", Value: b.fmt.Currency(d.Subtotal)},
		{Label: "Descuento", Value: b.fmt.Currency(d.Discount)},
		{Label: "IVA incluido", Value: b.fmt.Currency(d.Tax)},
		{Label: "Total", Value: b.fmt.Currency(d.Total)},
		{Label: "Ítems", Value: b.fmt.Integer(len(d.Lines))},
	})

	c = pdf.DrawTable(s, c, b.invoiceLineColumns(), d.Lines, pdf.DefaultTableStyle)
	notes(s, c, "Notas", d.Notes)
	return finish(s, KindInvoice, "factura-"+fileSafe(d.SaleNumber)+".pdf")
}

func fileSafe(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
}
