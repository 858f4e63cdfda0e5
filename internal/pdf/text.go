package pdf

// Standard fonts used by every document.
var (
	TitleFont   = Font{Family: "Helvetica", Style: "B", Size: 18}
	HeadingFont = Font{Family: "Helvetica", Style: "B", Size: 12}
	BodyFont    = Font{Family: "Helvetica", Size: 10}
	SmallFont   = Font{Family: "Helvetica", Size: 9}
)

// Paragraph draws text across the content width and returns the cursor
// below it plus gap. A block that does not fit moves to a new page first.
func Paragraph(s Surface, c Cursor, f Font, text string, align Align, gap float64) Cursor {
	page := s.Page()
	s.SetFont(f)
	h := s.MeasureText(text, page.ContentWidth())
	if h > c.Remaining(page) && c.Y > page.MarginTop {
		c = NewPage(s)
		s.SetFont(f)
	}
	s.DrawText(page.MarginLeft, c.Y, page.ContentWidth(), text, align)
	return c.Down(h + gap)
}

// Lines draws each entry as its own paragraph.
func Lines(s Surface, c Cursor, f Font, lines []string, gap float64) Cursor {
	for _, line := range lines {
		c = Paragraph(s, c, f, line, AlignLeft, gap)
	}
	return c
}

// Gap moves the cursor down by dy.
func Gap(c Cursor, dy float64) Cursor {
	return c.Down(dy)
}

// KeyValue renders "label: value" pairs as lines.
type KeyValue struct {
	Label string
	Value string
}

// Summary draws a heading followed by label/value lines.
func Summary(s Surface, c Cursor, heading string, pairs []KeyValue) Cursor {
	c = Paragraph(s, c, HeadingFont, heading, AlignLeft, 4)
	for _, kv := range pairs {
		c = Paragraph(s, c, BodyFont, kv.Label+": "+kv.Value, AlignLeft, 2)
	}
	return c.Down(8)
}
