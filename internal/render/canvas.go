// Package render draws the album pages.
//
// Page code measures positions from the top of the page, like the settings
// do, and converts them with layout.Page.FlipY before calling the Canvas,
// whose origin is the bottom-left corner as in PDF user space.
package render

import "go.fotopdf.dev/fotopdf/internal/layout"

// Color is an RGB color with 0-255 components
type Color struct {
	R, G, B int
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// TextColor returns Black or White
func TextColor(black bool) Color {
	if black {
		return Black
	}
	return White
}

// Canvas is the drawing surface. All coordinates are in points with the
// origin at the bottom-left corner of the page.
type Canvas interface {
	// AddFont registers a TrueType font under family
	AddFont(family string, ttf []byte) error
	AddPage()
	SetFont(family string, size float64)
	SetTextColor(c Color)
	// TextWidth measures s with the current font
	TextWidth(s string) float64
	// SplitText breaks s into lines no wider than width with the current font
	SplitText(s string, width float64) []string
	// Text draws s with its baseline starting at (x, y)
	Text(x, y float64, s string)
	FillRect(r layout.Rect, c Color)
	// RegisterImage stores a JPEG stream once under name
	RegisterImage(name string, jpeg []byte) error
	// DrawImage places a registered image in r
	DrawImage(name string, r layout.Rect)
}
