// Package documents assembles the printable reports: invoice list, invoice
// detail, cash-register close-out and the daily, product and cashier sales
// reports. Each builder writes a header, a summary computed on its own, one
// table and optional notes, then serializes the pages.
package documents

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/format"
	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
)

// Kind names a document type.
type Kind string

const (
	KindInvoiceList  Kind = "invoice-list"
	KindInvoice      Kind = "invoice"
	KindCashRegister Kind = "cash-register"
	KindDailySales   Kind = "daily-sales"
	KindProductSales Kind = "product-sales"
	KindUserSales    Kind = "user-sales"
)

// Kinds lists every document type.
func Kinds() []Kind {
	return []Kind{KindInvoiceList, KindInvoice, KindCashRegister, KindDailySales, KindProductSales, KindUserSales}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

const ContentTypePDF = "application/pdf"

// Document is a finished buffer ready to be sent.
type Document struct {
	Kind        Kind   `json:"kind"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Pages       int    `json:"pages"`
	Body        []byte `json:"-"`
}

// SurfaceFactory opens a fresh drawing surface per document.
type SurfaceFactory func() pdf.Surface

// Builder renders documents with a shared formatter.
type Builder struct {
	fmt        *format.Formatter
	newSurface SurfaceFactory
	now        func() time.Time
}

// NewBuilder wires a formatter with a surface factory. A nil factory uses
// the fpdf A4 backend.
func NewBuilder(f *format.Formatter, factory SurfaceFactory) *Builder {
	if f == nil {
		f = format.MustDefault()
	}
	if factory == nil {
		factory = func() pdf.Surface { return pdf.NewA4() }
	}
	return &Builder{fmt: f, newSurface: factory, now: time.Now}
}

// WithNow overrides the builder clock for testing.
func (b *Builder) WithNow(fn func() time.Time) {
	if fn != nil {
		b.now = fn
	}
}

// Formatter exposes the shared formatter.
func (b *Builder) Formatter() *format.Formatter { return b.fmt }

func (b *Builder) begin(title string) (pdf.Surface, pdf.Cursor) {
	s := b.newSurface()
	c := pdf.Paragraph(s, pdf.Top(s), pdf.TitleFont, title, pdf.AlignCenter, 10)
	return s, c
}

func (b *Builder) generatedLine() string {
	return "Generado: " + b.fmt.DateTime(b.now())
}

func finish(s pdf.Surface, kind Kind, fileName string) (Document, error) {
	body, err := s.Output()
	if err != nil {
		return Document{}, fmt.Errorf("documents: render %s: %w", kind, err)
	}
	return Document{
		Kind:        kind,
		FileName:    fileName,
		ContentType: ContentTypePDF,
		Pages:       s.PageCount(),
		Body:        body,
	}, nil
}

func notes(s pdf.Surface, c pdf.Cursor, heading, text string) pdf.Cursor {
	if text == "" {
		return c
	}
	c = pdf.Paragraph(s, c.Down(6), pdf.HeadingFont, heading, pdf.AlignLeft, 4)
	return pdf.Paragraph(s, c, pdf.BodyFont, text, pdf.AlignLeft, 6)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
