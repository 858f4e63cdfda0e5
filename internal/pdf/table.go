package pdf

// Column describes one table column. Value must depend only on the row so a
// row can be measured and drawn again after a page break.
type Column[T any] struct {
	Title string
	Width float64
	Align Align
	Value func(T) string
}

// TableStyle holds the fonts and separator rules of a table.
type TableStyle struct {
	HeaderFont Font
	BodyFont   Font
	HeaderRule Stroke
	RowRule    Stroke
}

// DefaultTableStyle is bold 10 pt headers over 10 pt rows with a heavier
// rule under the header.
var DefaultTableStyle = TableStyle{
	HeaderFont: Font{Family: "Helvetica", Style: "B", Size: 10},
	BodyFont:   Font{Family: "Helvetica", Size: 10},
	HeaderRule: Stroke{Width: 0.5, Color: "#bbbbbb"},
	RowRule:    Stroke{Width: 0.3, Color: "#dddddd"},
}

const (
	ruleOffset    = 2
	headerPadding = 4
	rowPadding    = 6
)

// DrawTable draws the header and every row, breaking to a new page with a
// repeated header whenever the next row would not fit. Each row is checked
// once: a row taller than a whole page is drawn anyway and overflows.
// Separator rules span the full content width, not just the columns.
func DrawTable[T any](s Surface, c Cursor, cols []Column[T], rows []T, style TableStyle) Cursor {
	if len(cols) == 0 {
		return c
	}
	page := s.Page()
	xs := make([]float64, len(cols))
	x := page.MarginLeft
	for i, col := range cols {
		xs[i] = x
		x += col.Width
	}
	right := page.Width - page.MarginRight

	c = drawHeader(s, c, cols, xs, right, style)
	cells := make([]string, len(cols))
	for _, row := range rows {
		s.SetFont(style.BodyFont)
		height := 0.0
		for i, col := range cols {
			cells[i] = cellText(col, row)
			if h := s.MeasureText(cells[i], col.Width); h > height {
				height = h
			}
		}
		if height+rowPadding > c.Remaining(page) {
			c = NewPage(s)
			c = drawHeader(s, c, cols, xs, right, style)
			s.SetFont(style.BodyFont)
		}
		for i, col := range cols {
			s.DrawText(xs[i], c.Y, col.Width, cells[i], col.Align)
		}
		bottom := c.Y + height
		s.DrawLine(page.MarginLeft, bottom+ruleOffset, right, bottom+ruleOffset, style.RowRule)
		c = Cursor{Page: c.Page, Y: bottom + rowPadding}
	}
	return c
}

func drawHeader[T any](s Surface, c Cursor, cols []Column[T], xs []float64, right float64, style TableStyle) Cursor {
	page := s.Page()
	s.SetFont(style.HeaderFont)
	height := 0.0
	for _, col := range cols {
		if h := s.MeasureText(col.Title, col.Width); h > height {
			height = h
		}
	}
	for i, col := range cols {
		s.DrawText(xs[i], c.Y, col.Width, col.Title, col.Align)
	}
	lineY := c.Y + height + ruleOffset
	s.DrawLine(page.MarginLeft, lineY, right, lineY, style.HeaderRule)
	return Cursor{Page: c.Page, Y: lineY + headerPadding}
}

func cellText[T any](col Column[T], row T) string {
	if col.Value == nil {
		return ""
	}
	return col.Value(row)
}

// TableWidth sums the column widths.
func TableWidth[T any](cols []Column[T]) float64 {
	total := 0.0
	for _, col := range cols {
		total += col.Width
	}
	return total
}
