package pdf_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
	"github.com/odyssey-erp/odyssey-pos/internal/pdf/pdftest"
)

var testPage = pdf.Page{Width: 400, Height: 200, MarginTop: 20, MarginRight: 20, MarginBottom: 20, MarginLeft: 20}

type item struct {
	Name  string
	Total int
}

var itemColumns = []pdf.Column[item]{
	{Title: "Nombre", Width: 200, Align: pdf.AlignLeft, Value: func(i item) string { return i.Name }},
	{Title: "Total", Width: 100, Align: pdf.AlignRight, Value: func(i item) string { return fmt.Sprint(i.Total) }},
}

func items(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{Name: fmt.Sprintf("row-%02d", i), Total: i}
	}
	return out
}

func TestDrawTablePageCountMatchesMeasuredHeight(t *testing.T) {
	// header: 10 + 2 + 4, rows: 10 + 6, usable after header: 180 - 36
	const rowHeight, usable = 16.0, 144.0
	for _, n := range []int{1, 9, 10, 18, 19, 40} {
		rec := pdftest.New(testPage, 10)
		pdf.DrawTable(rec, pdf.Top(rec), itemColumns, items(n), pdf.DefaultTableStyle)

		want := int(math.Ceil(float64(n) * rowHeight / usable))
		assert.Equal(t, want, rec.PageCount(), "rows=%d", n)
	}
}

func TestDrawTableRedrawsHeaderOnEveryPage(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	end := pdf.DrawTable(rec, pdf.Top(rec), itemColumns, items(20), pdf.DefaultTableStyle)

	require.Equal(t, 3, rec.PageCount())
	assert.Equal(t, 3, end.Page)
	for page := 1; page <= 3; page++ {
		texts := rec.Texts(page)
		require.GreaterOrEqual(t, len(texts), 2)
		assert.Equal(t, []string{"Nombre", "Total"}, texts[:2], "page %d starts with header", page)
	}
	for _, op := range rec.Ops() {
		if op.Kind == pdftest.OpText && op.Text == "Nombre" {
			assert.Equal(t, testPage.MarginTop, op.Y)
		}
	}
	assert.Len(t, rec.Texts(1), 2+2*9)
	assert.Len(t, rec.Texts(3), 2+2*2)
}

func TestDrawTableNonFinalPagesEndAtOverflowBoundary(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	pdf.DrawTable(rec, pdf.Top(rec), itemColumns, items(20), pdf.DefaultTableStyle)

	lastRule := map[int]float64{}
	for _, op := range rec.Lines() {
		lastRule[op.Page] = op.Y
	}
	// last row starts at 164, its text ends at 174 and its rule sits 2 below
	assert.Equal(t, 176.0, lastRule[1])
	assert.Equal(t, 176.0, lastRule[2])
	assert.Less(t, lastRule[3], 176.0)
}

func TestDrawTableSeparatorContract(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	end := pdf.DrawTable(rec, pdf.Top(rec), itemColumns, items(1), pdf.DefaultTableStyle)

	lines := rec.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, pdf.Stroke{Width: 0.5, Color: "#bbbbbb"}, lines[0].Stroke)
	assert.Equal(t, 32.0, lines[0].Y)
	assert.Equal(t, pdf.Stroke{Width: 0.3, Color: "#dddddd"}, lines[1].Stroke)
	assert.Equal(t, 48.0, lines[1].Y)
	// both rules run margin to margin even though the columns stop at 320
	for _, line := range lines {
		assert.Equal(t, 20.0, line.X)
		assert.Equal(t, 380.0, line.X2)
	}
	assert.Equal(t, 52.0, end.Y)
}

func TestDrawTableMeasuresEmbeddedLineBreaks(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	rows := []item{{Name: "Comercial SA\nRUC: 800-1", Total: 1}, {Name: "x", Total: 2}}
	pdf.DrawTable(rec, pdf.Top(rec), itemColumns, rows, pdf.DefaultTableStyle)

	var ys []float64
	for _, op := range rec.Ops() {
		if op.Kind == pdftest.OpText && op.Align == pdf.AlignRight && op.Text != "Total" {
			ys = append(ys, op.Y)
		}
	}
	require.Len(t, ys, 2)
	assert.Equal(t, 36.0, ys[0])
	assert.Equal(t, 36.0+20+6, ys[1])
}

func TestDrawTableWrapsAtFixedWidth(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	rec.CharWidth = 5
	rows := []item{{Name: strings.Repeat("a", 100), Total: 1}, {Name: "b", Total: 2}}
	end := pdf.DrawTable(rec, pdf.Top(rec), itemColumns, rows, pdf.DefaultTableStyle)

	// 100 runes * 5pt over a 200pt column wrap to 3 lines
	assert.Equal(t, 36.0+36+16, end.Y)
}

func TestDrawTableOversizedRowDoesNotLoop(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	huge := strings.Repeat("line\n", 29) + "line"
	rows := []item{{Name: "small"}, {Name: huge}, {Name: "after"}}

	end := pdf.DrawTable(rec, pdf.Top(rec), itemColumns, rows, pdf.DefaultTableStyle)

	assert.Equal(t, 3, rec.PageCount())
	assert.Contains(t, rec.Texts(2), huge)
	assert.Contains(t, rec.Texts(3), "after")
	assert.Equal(t, 3, end.Page)
}

func TestDrawTableWithoutRowsDrawsHeaderOnly(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	end := pdf.DrawTable(rec, pdf.Top(rec), itemColumns, nil, pdf.DefaultTableStyle)

	assert.Equal(t, []string{"Nombre", "Total"}, rec.Texts(0))
	assert.Equal(t, 36.0, end.Y)
	assert.Equal(t, 1, rec.PageCount())
}

func TestParagraphBreaksWhenBlockDoesNotFit(t *testing.T) {
	rec := pdftest.New(testPage, 10)
	c := pdf.Cursor{Page: 1, Y: 175}
	c = pdf.Paragraph(rec, c, pdf.BodyFont, "nota", pdf.AlignLeft, 2)

	assert.Equal(t, 2, rec.PageCount())
	assert.Equal(t, pdf.Cursor{Page: 2, Y: 32}, c)
}
