package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.fotopdf.dev/fotopdf/internal/layout"
)

// recordingCanvas keeps every drawing call. Glyphs are half the font size wide.
type recordingCanvas struct {
	fonts      []string
	pages      int
	size       float64
	color      Color
	texts      []drawnText
	rects      []drawnRect
	images     []drawnImage
	registered map[string]int
}

type drawnText struct {
	page  int
	x, y  float64
	text  string
	size  float64
	color Color
}

type drawnRect struct {
	page  int
	r     layout.Rect
	color Color
}

type drawnImage struct {
	page int
	name string
	r    layout.Rect
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{registered: make(map[string]int)}
}

func (c *recordingCanvas) AddFont(family string, ttf []byte) error {
	if len(ttf) == 0 {
		return fmt.Errorf("empty font %s", family)
	}
	c.fonts = append(c.fonts, family)
	return nil
}

func (c *recordingCanvas) AddPage() {
	c.pages++
}

func (c *recordingCanvas) SetFont(family string, size float64) {
	c.size = size
}

func (c *recordingCanvas) SetTextColor(col Color) {
	c.color = col
}

func (c *recordingCanvas) TextWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * c.size / 2
}

func (c *recordingCanvas) SplitText(s string, width float64) []string {
	return splitWords(c.TextWidth)(s, width)
}

// splitWords is a greedy splitter over measure that keeps words whole, so
// overlong words stay visible to the fit check
func splitWords(measure func(string) float64) func(string, float64) []string {
	return func(s string, width float64) []string {
		words := strings.Fields(s)
		if len(words) == 0 {
			return nil
		}
		var lines []string
		cur := words[0]
		for _, w := range words[1:] {
			if measure(cur+" "+w) <= width {
				cur += " " + w
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		return append(lines, cur)
	}
}

func (c *recordingCanvas) Text(x, y float64, s string) {
	c.texts = append(c.texts, drawnText{page: c.pages, x: x, y: y, text: s, size: c.size, color: c.color})
}

func (c *recordingCanvas) FillRect(r layout.Rect, col Color) {
	c.rects = append(c.rects, drawnRect{page: c.pages, r: r, color: col})
}

func (c *recordingCanvas) RegisterImage(name string, jpeg []byte) error {
	c.registered[name]++
	return nil
}

func (c *recordingCanvas) DrawImage(name string, r layout.Rect) {
	c.images = append(c.images, drawnImage{page: c.pages, name: name, r: r})
}

func (c *recordingCanvas) textsOn(page int) []drawnText {
	var out []drawnText
	for _, t := range c.texts {
		if t.page == page {
			out = append(out, t)
		}
	}
	return out
}
