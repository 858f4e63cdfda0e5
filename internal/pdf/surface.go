// Package pdf lays out paginated documents on an abstract drawing surface.
// Layout code never reads position from the surface: the vertical position
// travels as an immutable Cursor returned by every drawing helper.
package pdf

// Align is the horizontal alignment of text inside its box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font selects a face; Style is "", "B", "I" or "BI".
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Stroke describes a rule line. Color is a #rrggbb hex string.
type Stroke struct {
	Width float64
	Color string
}

// Page is the geometry shared by every page of a document, in points.
type Page struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
}

// A4 is 595.28 x 841.89 pt with 40 pt margins.
var A4 = Page{Width: 595.28, Height: 841.89, MarginTop: 40, MarginRight: 40, MarginBottom: 40, MarginLeft: 40}

// ContentWidth is the usable width between the side margins.
func (p Page) ContentWidth() float64 { return p.Width - p.MarginLeft - p.MarginRight }

// Bottom is the lowest y that content may reach.
func (p Page) Bottom() float64 { return p.Height - p.MarginBottom }

// Surface is the drawing backend. Text wraps inside width and honours
// embedded line breaks; MeasureText must agree with what DrawText uses.
type Surface interface {
	Page() Page
	SetFont(f Font)
	MeasureText(text string, width float64) float64
	DrawText(x, y, width float64, text string, align Align)
	DrawLine(x1, y1, x2, y2 float64, s Stroke)
	AddPage()
	PageCount() int
	Output() ([]byte, error)
}

// Cursor is the layout position: current page number and y offset.
type Cursor struct {
	Page int
	Y    float64
}

// Top returns a cursor at the top margin of the surface's current page.
func Top(s Surface) Cursor {
	return Cursor{Page: s.PageCount(), Y: s.Page().MarginTop}
}

// Down returns c moved dy points lower.
func (c Cursor) Down(dy float64) Cursor {
	return Cursor{Page: c.Page, Y: c.Y + dy}
}

// Remaining is the vertical space left on the page below c.
func (c Cursor) Remaining(p Page) float64 {
	return p.Bottom() - c.Y
}

// NewPage starts a page on s and returns a cursor at its top margin.
func NewPage(s Surface) Cursor {
	s.AddPage()
	return Top(s)
}
