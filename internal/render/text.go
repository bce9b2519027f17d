package render

import (
	"errors"
	"html"
	"regexp"
	"strings"

	"go.fotopdf.dev/fotopdf/internal/settings"
)

// Align is the horizontal alignment of paragraph lines
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// ErrTextDoesNotFit is returned when a paragraph is larger than its area
var ErrTextDoesNotFit = errors.New("text area too small for text")

var breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

// Line is one wrapped line of a paragraph
type Line struct {
	Words []string
	// Last marks the final line of a source paragraph, which is never justified
	Last bool
}

// Text joins the words with single spaces
func (l Line) Text() string {
	return strings.Join(l.Words, " ")
}

// Wrap breaks text into lines no wider than width using split, the canvas
// line splitter. Newlines and <br> tags force a break, other markup is
// dropped.
func Wrap(text string, width float64, split func(s string, width float64) []string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = breakPattern.ReplaceAllString(text, "\n")

	var lines []Line
	for _, para := range strings.Split(text, "\n") {
		clean := strings.Join(strings.Fields(html.UnescapeString(settings.CleanHTML(para))), " ")
		if clean == "" {
			lines = append(lines, Line{Last: true})
			continue
		}

		parts := split(clean, width)
		for i, part := range parts {
			lines = append(lines, Line{Words: strings.Fields(part), Last: i == len(parts)-1})
		}
	}

	// Trailing blank lines take no room
	for len(lines) > 0 && len(lines[len(lines)-1].Words) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Paragraph is a block of wrapped text spanning the page width minus
// FromSide on both sides
type Paragraph struct {
	Text      string
	Family    string
	Size      float64
	Interline float64
	FromSide  float64
	FromTop   float64 // <= 0 centers the block vertically
	Align     Align
	Color     Color
}

// drawParagraph wraps and draws p. Nothing is drawn when the text does not
// fit in the area below FromTop.
func (r *Renderer) drawParagraph(p Paragraph) error {
	r.c.SetFont(p.Family, p.Size)
	width := r.page.W - 2*p.FromSide
	lines := Wrap(p.Text, width, r.c.SplitText)
	if len(lines) == 0 {
		return nil
	}

	leading := p.Size + p.Interline
	height := float64(len(lines)) * leading
	available := r.page.H - p.FromTop
	if p.FromTop <= 0 {
		available = r.page.H
	}
	if width <= 0 || height > available {
		return ErrTextDoesNotFit
	}
	for _, l := range lines {
		if r.c.TextWidth(l.Text()) > width {
			return ErrTextDoesNotFit
		}
	}

	top := p.FromTop
	if p.FromTop <= 0 {
		top = (r.page.H - height) / 2
	}

	r.c.SetTextColor(p.Color)
	for i, l := range lines {
		if len(l.Words) == 0 {
			continue
		}
		baseline := r.page.FlipY(top+p.Size+float64(i)*leading, 0)
		r.drawLine(l, p.Align, p.FromSide, width, baseline)
	}
	return nil
}

func (r *Renderer) drawLine(l Line, align Align, left, width, baseline float64) {
	text := l.Text()
	lw := r.c.TextWidth(text)

	switch align {
	case AlignCenter:
		r.c.Text(left+(width-lw)/2, baseline, text)
	case AlignRight:
		r.c.Text(left+width-lw, baseline, text)
	case AlignJustify:
		if l.Last || len(l.Words) < 2 {
			r.c.Text(left, baseline, text)
			return
		}
		var wordsW float64
		for _, w := range l.Words {
			wordsW += r.c.TextWidth(w)
		}
		gap := (width - wordsW) / float64(len(l.Words)-1)
		x := left
		for _, w := range l.Words {
			r.c.Text(x, baseline, w)
			x += r.c.TextWidth(w) + gap
		}
	default:
		r.c.Text(left, baseline, text)
	}
}

// drawCenteredLine draws a single line centered horizontally with its
// baseline at fromTop + size
func (r *Renderer) drawCenteredLine(text, family string, size, fromTop float64, col Color) {
	text = strings.TrimSpace(html.UnescapeString(settings.CleanHTML(text)))
	if text == "" || size <= 0 {
		return
	}
	r.c.SetFont(family, size)
	r.c.SetTextColor(col)
	w := r.c.TextWidth(text)
	r.c.Text((r.page.W-w)/2, r.page.FlipY(fromTop+size, 0), text)
}
