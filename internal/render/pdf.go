package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"go.fotopdf.dev/fotopdf/internal/layout"
)

// Metadata is written into the PDF info dictionary
type Metadata struct {
	Title   string
	Author  string
	Creator string
}

// PDFCanvas draws on an fpdf document
type PDFCanvas struct {
	pdf  *fpdf.Fpdf
	page layout.Page
}

// NewPDFCanvas creates an empty document with pages of size p
func NewPDFCanvas(p layout.Page, meta Metadata) *PDFCanvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: p.W, Ht: p.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	return &PDFCanvas{pdf: pdf, page: p}
}

func (c *PDFCanvas) AddFont(family string, ttf []byte) error {
	c.pdf.AddUTF8FontFromBytes(family, "", ttf)
	return c.pdf.Error()
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) SetFont(family string, size float64) {
	c.pdf.SetFont(family, "", size)
}

func (c *PDFCanvas) SetTextColor(col Color) {
	c.pdf.SetTextColor(col.R, col.G, col.B)
}

func (c *PDFCanvas) TextWidth(s string) float64 {
	return c.pdf.GetStringWidth(s)
}

// SplitText wraps at spaces like MultiCell. A word wider than width is
// broken where it overflows.
func (c *PDFCanvas) SplitText(s string, width float64) []string {
	if width <= 0 {
		return []string{s}
	}
	return c.pdf.SplitText(s, width)
}

// Text converts the baseline back to fpdf's top-left origin
func (c *PDFCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, c.page.FlipY(y, 0), s)
}

func (c *PDFCanvas) FillRect(r layout.Rect, col Color) {
	c.pdf.SetFillColor(col.R, col.G, col.B)
	c.pdf.Rect(r.X, c.page.FlipY(r.Y, r.H), r.W, r.H, "F")
}

func (c *PDFCanvas) RegisterImage(name string, jpeg []byte) error {
	c.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(jpeg))
	if err := c.pdf.Error(); err != nil {
		return fmt.Errorf("failed to embed %s: %w", name, err)
	}
	return nil
}

func (c *PDFCanvas) DrawImage(name string, r layout.Rect) {
	c.pdf.ImageOptions(name, r.X, c.page.FlipY(r.Y, r.H), r.W, r.H, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
}

// PageCount returns the number of pages added so far
func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

// Save writes the document to path and closes it
func (c *PDFCanvas) Save(path string) error {
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
