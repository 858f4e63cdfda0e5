package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/format"
	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

// ProductSales is the input of the product report.
type ProductSales struct {
	Filters reports.FilterSet
	Rows    []reports.ProductTotalRow
}

// UserSales is the input of the cashier report.
type UserSales struct {
	Filters reports.FilterSet
	Rows    []reports.UserTotalRow
}

// DailySales is the input of the daily sales report.
type DailySales struct {
	Year  int
	Month int
	Rows  []reports.DailyTotalRow
}

func (b *Builder) dailyColumns() []pdf.Column[reports.DailyTotalRow] {
	f := b.fmt
	return []pdf.Column[reports.DailyTotalRow]{
		{Title: "Fecha", Width: 75, Value: func(r reports.DailyTotalRow) string { return b.dayLabel(r) }},
		{Title: "Ventas", Width: 50, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Integer(r.SaleCount) }},
		{Title: "Subtotal", Width: 80, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Currency(r.Subtotal) }},
		{Title: "IVA", Width: 70, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Currency(r.Tax) }},
		{Title: "Desc.", Width: 70, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Currency(r.Discount) }},
		{Title: "Total", Width: 85, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Currency(r.Total) }},
		{Title: "Ticket prom.", Width: 85, Align: pdf.AlignRight, Value: func(r reports.DailyTotalRow) string { return f.Currency(r.AverageTicket) }},
	}
}

func (b *Builder) dayLabel(r reports.DailyTotalRow) string {
	return b.fmt.Date(time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, b.fmt.Location()))
}

// DailySalesDocument renders a month of daily totals.
func (b *Builder) DailySalesDocument(in DailySales) (Document, error) {
	s, c := b.begin("Reporte de ventas diarias")
	sum := reports.SummarizeDaily(in.Rows)

	c = pdf.Lines(s, c, pdf.BodyFont, []string{
		b.generatedLine(),
		fmt.Sprintf("Periodo: %s %d", b.fmt.Month(time.Month(in.Month)), in.Year),
	}, 2)

	best := "-"
	if sum.BestDay != nil {
		best = b.dayLabel(*sum.BestDay) + " (" + b.fmt.Currency(sum.BestDay.Total) + ")"
	}
	c = pdf.Summary(s, c.Down(8), "Resumen", []pdf.KeyValue{
		{Label: "Total vendido", Value: b.fmt.Currency(sum.Total)},
		{Label: "Cantidad de ventas", Value: b.fmt.Integer(sum.SaleCount)},
		{Label: "Ticket promedio", Value: b.fmt.Currency(sum.AverageTicket)},
		{Label: "Mejor día", Value: best},
	})

	if len(in.Rows) == 0 {
		pdf.Paragraph(s, c, pdf.BodyFont, "No hay ventas en el periodo seleccionado.", pdf.AlignLeft, 0)
	} else {
		pdf.DrawTable(s, c, b.dailyColumns(), in.Rows, pdf.DefaultTableStyle)
	}
	return finish(s, KindDailySales, fmt.Sprintf("reporte-ventas-diarias-%04d-%02d.pdf", in.Year, in.Month))
}

func (b *Builder) productColumns() []pdf.Column[reports.ProductTotalRow] {
	f := b.fmt
	return []pdf.Column[reports.ProductTotalRow]{
		{Title: "Producto", Width: 200, Value: func(r reports.ProductTotalRow) string {
			name := "Producto sin nombre"
			if r.Name != nil && *r.Name != "" {
				name = *r.Name
			}
			if r.Barcode != nil && *r.Barcode != "" {
				return name + "\n" + *r.Barcode
			}
			return name
		}},
		{Title: "Cantidad", Width: 70, Align: pdf.AlignRight, Value: func(r reports.ProductTotalRow) string { return f.Quantity(r.Quantity) }},
		{Title: "Total", Width: 90, Align: pdf.AlignRight, Value: func(r reports.ProductTotalRow) string { return f.Currency(r.Total) }},
		{Title: "Precio prom.", Width: 80, Align: pdf.AlignRight, Value: func(r reports.ProductTotalRow) string { return f.Currency(r.AverageUnitPrice) }},
		{Title: "Última venta", Width: 75, Value: func(r reports.ProductTotalRow) string { return f.OptionalDateTime(r.LastSaleAt) }},
	}
}

// ProductSalesDocument renders the ranked product totals.
func (b *Builder) ProductSalesDocument(in ProductSales) (Document, error) {
	now := b.now()
	rows := in.Rows
	s, c := b.begin("Reporte de ventas por producto")
	sum := reports.SummarizeProducts(rows)

	c = pdf.Lines(s, c, pdf.BodyFont, []string{b.generatedLine()}, 2)
	c = b.salesFilters(s, c, in.Filters)
	c = pdf.Summary(s, c.Down(8), "Resumen", []pdf.KeyValue{
		{Label: "Productos", Value: b.fmt.Integer(sum.Products)},
		{Label: "Unidades vendidas", Value: b.fmt.Quantity(sum.Quantity)},
		{Label: "Monto total", Value: b.fmt.Currency(sum.Total)},
	})

	if len(rows) == 0 {
		pdf.Paragraph(s, c, pdf.BodyFont, "No hay productos vendidos para los filtros seleccionados.", pdf.AlignLeft, 0)
	} else {
		pdf.DrawTable(s, c, b.productColumns(), rows, pdf.DefaultTableStyle)
	}
	return finish(s, KindProductSales, "reporte-productos-"+format.Timestamp(now)+".pdf")
}

func (b *Builder) userColumns() []pdf.Column[reports.UserTotalRow] {
	f := b.fmt
	return []pdf.Column[reports.UserTotalRow]{
		{Title: "Cajero", Width: 190, Value: func(r reports.UserTotalRow) string {
			name := r.Name
			if r.Lastname != "" {
				name += " " + r.Lastname
			}
			if r.Email != nil && *r.Email != "" {
				return name + "\n" + *r.Email
			}
			return name
		}},
		{Title: "Ventas", Width: 60, Align: pdf.AlignRight, Value: func(r reports.UserTotalRow) string { return f.Integer(r.SaleCount) }},
		{Title: "Total", Width: 95, Align: pdf.AlignRight, Value: func(r reports.UserTotalRow) string { return f.Currency(r.Total) }},
		{Title: "Ticket prom.", Width: 85, Align: pdf.AlignRight, Value: func(r reports.UserTotalRow) string { return f.Currency(r.AverageTicket) }},
		{Title: "Última venta", Width: 85, Value: func(r reports.UserTotalRow) string { return f.OptionalDateTime(r.LastSaleAt) }},
	}
}

// UserSalesDocument renders the ranked cashier totals.
func (b *Builder) UserSalesDocument(in UserSales) (Document, error) {
	now := b.now()
	rows := in.Rows
	s, c := b.begin("Reporte de ventas por cajero")
	sum := reports.SummarizeUsers(rows)

	c = pdf.Lines(s, c, pdf.BodyFont, []string{b.generatedLine()}, 2)
	c = b.salesFilters(s, c, in.Filters)
	c = pdf.Summary(s, c.Down(8), "Resumen", []pdf.KeyValue{
		{Label: "Cajeros", Value: b.fmt.Integer(sum.Users)},
		{Label: "Ventas", Value: b.fmt.Integer(sum.SaleCount)},
		{Label: "Monto total", Value: b.fmt.Currency(sum.Total)},
	})

	if len(rows) == 0 {
		pdf.Paragraph(s, c, pdf.BodyFont, "No hay ventas por cajero para los filtros seleccionados.", pdf.AlignLeft, 0)
	} else {
		pdf.DrawTable(s, c, b.userColumns(), rows, pdf.DefaultTableStyle)
	}
	return finish(s, KindUserSales, "reporte-cajeros-"+format.Timestamp(now)+".pdf")
}

func (b *Builder) salesFilters(s pdf.Surface, c pdf.Cursor, f reports.FilterSet) pdf.Cursor {
	c = pdf.Paragraph(s, c.Down(8), pdf.HeadingFont, "Filtros aplicados", pdf.AlignLeft, 4)
	lines := b.salesFilterLines(f)
	if len(lines) == 0 {
		lines = []string{"Sin filtros aplicados."}
	}
	return pdf.Lines(s, c, pdf.BodyFont, lines, 2)
}

// salesFilterLines describes the filters a caller named. Dates are shown as
// the calendar days the normalizer compiles them to.
func (b *Builder) salesFilterLines(f reports.FilterSet) []string {
	p := reports.NewNormalizer(b.fmt.Location()).Normalize(f)
	var lines []string
	switch {
	case p.From != nil && p.To != nil:
		lines = append(lines, fmt.Sprintf("Periodo: %s - %s", b.fmt.Date(*p.From), b.fmt.Date(*p.To)))
	case p.From != nil:
		lines = append(lines, "Periodo: desde "+b.fmt.Date(*p.From))
	case p.To != nil:
		lines = append(lines, "Periodo: hasta "+b.fmt.Date(*p.To))
	}
	if named := pos.ParseStatuses(f.Statuses); len(named) > 0 {
		labels := make([]string, 0, len(named))
		for _, st := range named {
			labels = append(labels, b.fmt.Status(st))
		}
		lines = append(lines, "Estados: "+strings.Join(labels, ", "))
	}
	for _, entity := range []struct{ label, id string }{
		{"Caja", p.CheckoutID},
		{"Cajero", p.UserID},
		{"Cliente", p.CustomerID},
		{"Producto", p.ProductID},
	} {
		if entity.id != "" {
			lines = append(lines, entity.label+": "+entity.id)
		}
	}
	return lines
}
