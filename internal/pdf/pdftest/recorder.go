// Package pdftest provides a measuring-only Surface that records drawing
// operations instead of producing a PDF.
package pdftest

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/odyssey-erp/odyssey-pos/internal/pdf"
)

// OpKind identifies a recorded operation.
type OpKind string

const (
	OpText OpKind = "text"
	OpLine OpKind = "line"
	OpPage OpKind = "page"
)

// Op is one recorded drawing call.
type Op struct {
	Kind   OpKind
	Page   int
	X, Y   float64
	X2, Y2 float64
	Width  float64
	Text   string
	Align  pdf.Align
	Font   pdf.Font
	Stroke pdf.Stroke
}

// Recorder measures text with a fixed line height. When CharWidth is set a
// line wraps once its rune count times CharWidth exceeds the box width.
type Recorder struct {
	Geometry   pdf.Page
	LineHeight float64
	CharWidth  float64

	font  pdf.Font
	pages int
	ops   []Op
}

// New returns a recorder with one open page.
func New(page pdf.Page, lineHeight float64) *Recorder {
	return &Recorder{Geometry: page, LineHeight: lineHeight, pages: 1}
}

func (r *Recorder) Page() pdf.Page { return r.Geometry }

func (r *Recorder) SetFont(f pdf.Font) { r.font = f }

func (r *Recorder) MeasureText(text string, width float64) float64 {
	return float64(r.lines(text, width)) * r.LineHeight
}

func (r *Recorder) lines(text string, width float64) int {
	total := 0
	for _, segment := range strings.Split(text, "\n") {
		n := 1
		if r.CharWidth > 0 && width > 0 {
			n = int(math.Ceil(float64(utf8.RuneCountInString(segment)) * r.CharWidth / width))
			if n < 1 {
				n = 1
			}
		}
		total += n
	}
	return total
}

func (r *Recorder) DrawText(x, y, width float64, text string, align pdf.Align) {
	r.ops = append(r.ops, Op{Kind: OpText, Page: r.pages, X: x, Y: y, Width: width, Text: text, Align: align, Font: r.font})
}

func (r *Recorder) DrawLine(x1, y1, x2, y2 float64, s pdf.Stroke) {
	r.ops = append(r.ops, Op{Kind: OpLine, Page: r.pages, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: s})
}

func (r *Recorder) AddPage() {
	r.pages++
	r.ops = append(r.ops, Op{Kind: OpPage, Page: r.pages})
}

func (r *Recorder) PageCount() int { return r.pages }

// Output returns a textual dump of the recorded text, one op per line.
func (r *Recorder) Output() ([]byte, error) {
	var b strings.Builder
	for _, op := range r.ops {
		switch op.Kind {
		case OpText:
			fmt.Fprintf(&b, "p%d text %.1f,%.1f %q\n", op.Page, op.X, op.Y, op.Text)
		case OpLine:
			fmt.Fprintf(&b, "p%d line %.1f %.2f %s\n", op.Page, op.Y, op.Stroke.Width, op.Stroke.Color)
		case OpPage:
			fmt.Fprintf(&b, "p%d page\n", op.Page)
		}
	}
	return []byte(b.String()), nil
}

// Ops returns every recorded operation.
func (r *Recorder) Ops() []Op { return r.ops }

// Texts returns the drawn strings, optionally restricted to one page.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText && (page == 0 || op.Page == page) {
			out = append(out, op.Text)
		}
	}
	return out
}

// Lines returns the drawn rules.
func (r *Recorder) Lines() []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == OpLine {
			out = append(out, op)
		}
	}
	return out
}

// Contains reports whether any drawn text contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, op := range r.ops {
		if op.Kind == OpText && strings.Contains(op.Text, substr) {
			return true
		}
	}
	return false
}

var _ pdf.Surface = (*Recorder)(nil)
