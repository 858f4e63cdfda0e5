package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
)

const lineSpacing = 1.2

// FPDF draws on a go-pdf/fpdf document. Text goes through the cp1252
// translator so Spanish accents render with the core fonts.
type FPDF struct {
	doc        *fpdf.Fpdf
	page       Page
	tr         func(string) string
	lineHeight float64
}

// NewFPDF starts a portrait document with one page of the given geometry.
// Automatic page breaks are disabled; pagination belongs to the layout code.
func NewFPDF(page Page) *FPDF {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	doc.SetMargins(page.MarginLeft, page.MarginTop, page.MarginRight)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCellMargin(0)
	doc.SetCreator("odyssey-pos", true)
	doc.AddPage()
	s := &FPDF{doc: doc, page: page, tr: doc.UnicodeTranslatorFromDescriptor("")}
	s.SetFont(BodyFont)
	return s
}

// NewA4 starts an A4 document.
func NewA4() *FPDF { return NewFPDF(A4) }

func (s *FPDF) Page() Page { return s.page }

func (s *FPDF) SetFont(f Font) {
	s.doc.SetFont(f.Family, f.Style, f.Size)
	s.lineHeight = f.Size * lineSpacing
}

func (s *FPDF) MeasureText(text string, width float64) float64 {
	lines := 0
	for _, segment := range strings.Split(text, "\n") {
		if segment == "" {
			lines++
			continue
		}
		n := len(s.doc.SplitText(s.tr(segment), width))
		if n == 0 {
			n = 1
		}
		lines += n
	}
	return float64(lines) * s.lineHeight
}

func (s *FPDF) DrawText(x, y, width float64, text string, align Align) {
	s.doc.SetXY(x, y)
	s.doc.MultiCell(width, s.lineHeight, s.tr(text), "", alignString(align), false)
}

func (s *FPDF) DrawLine(x1, y1, x2, y2 float64, stroke Stroke) {
	r, g, b := hexColor(stroke.Color)
	s.doc.SetDrawColor(r, g, b)
	s.doc.SetLineWidth(stroke.Width)
	s.doc.Line(x1, y1, x2, y2)
}

func (s *FPDF) AddPage() { s.doc.AddPage() }

func (s *FPDF) PageCount() int { return s.doc.PageCount() }

// Output serializes the document. It fails if any earlier call failed.
func (s *FPDF) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

func alignString(a Align) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	default:
		return "L"
	}
}

func hexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
