package documents

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
	"github.com/odyssey-erp/odyssey-pos/internal/pos"
)

func (b *Builder) breakdownColumns() []pdf.Column[pos.PaymentBreakdown] {
	f := b.fmt
	return []pdf.Column[pos.PaymentBreakdown]{
		{Title: "Método", Width: 150, Value: func(r pos.PaymentBreakdown) string { return f.PaymentMethod(r.Method) }},
		{Title: "Ingresos", Width: 100, Align: pdf.AlignRight, Value: func(r pos.PaymentBreakdown) string { return f.Currency(r.Income) }},
		{Title: "Egresos", Width: 100, Align: pdf.AlignRight, Value: func(r pos.PaymentBreakdown) string { return f.Currency(r.Expense) }},
		{Title: "Neto", Width: 100, Align: pdf.AlignRight, Value: func(r pos.PaymentBreakdown) string { return f.Currency(r.Net) }},
		{Title: "Mov.", Width: 60, Align: pdf.AlignRight, Value: func(r pos.PaymentBreakdown) string { return f.Integer(r.Count) }},
	}
}

// CashRegisterDocument renders the close-out of a register session.
func (b *Builder) CashRegisterDocument(d pos.CashRegisterDetail) (Document, error) {
	s, c := b.begin("Cierre de caja")

	closedBy := "-"
	if d.ClosedBy != nil {
		closedBy = d.ClosedBy.FullName()
	}
	status := "Abierta"
	if d.Status == pos.RegisterClosed {
		status = "Cerrada"
	}
	c = pdf.Lines(s, c, pdf.BodyFont, []string{
		b.generatedLine(),
		"Caja: " + orDash(d.Checkout),
		"Estado: " + status,
		"Apertura: " + b.fmt.DateTime(d.OpenedAt) + " por " + d.OpenedBy.FullName(),
		"Cierre: " + b.fmt.OptionalDateTime(d.ClosedAt) + " por " + closedBy,
	}, 2)

	c = pdf.Summary(s, c.Down(8), "Resumen de caja", []pdf.KeyValue{
		{Label: "Efectivo inicial", Value: b.fmt.Currency(d.InitialCash)},
		{Label: "Total ventas", Value: b.fmt.Currency(d.TotalSales)},
		{Label: "Efectivo", Value: b.fmt.Currency(d.TotalCash)},
		{Label: "Tarjetas", Value: b.fmt.Currency(d.TotalCard)},
		{Label: "Otros medios", Value: b.fmt.Currency(d.TotalOther)},
		{Label: "Efectivo esperado", Value: b.fmt.Currency(d.ExpectedCash)},
		{Label: "Efectivo final", Value: b.optionalCurrency(d.FinalCash)},
		{Label: "Diferencia", Value: b.optionalCurrency(d.CashDifference)},
	})

	c = pdf.Paragraph(s, c, pdf.HeadingFont, "Movimientos por método de pago", pdf.AlignLeft, 6)
	if len(d.Breakdown) == 0 {
		c = pdf.Paragraph(s, c, pdf.BodyFont, "Sin movimientos registrados.", pdf.AlignLeft, 6)
	} else {
		c = pdf.DrawTable(s, c, b.breakdownColumns(), d.Breakdown, pdf.DefaultTableStyle)
	}
	c = notes(s, c, "Notas de apertura", d.OpeningNotes)
	notes(s, c, "Notas de cierre", d.ClosingNotes)
	return finish(s, KindCashRegister, "cierre-caja-"+fileSafe(d.ID)+".pdf")
}

func (b *Builder) optionalCurrency(v *decimal.Decimal) string {
	if v == nil {
		return "-"
	}
	return b.fmt.Currency(*v)
}
