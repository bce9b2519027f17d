package layout

// Rect is an axis-aligned rectangle in points. Y grows downwards from the
// top edge of the page unless a function says otherwise.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Bottom returns the y coordinate of the lower edge
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Contains reports whether o lies inside r, allowing for float rounding
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-6
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Page holds the page size in points
type Page struct {
	W float64
	H float64
}

// Landscape A4 in points
var A4Landscape = Page{W: 841.8897637795277, H: 595.2755905511812}

// Bounds returns the whole page as a rect
func (p Page) Bounds() Rect {
	return Rect{W: p.W, H: p.H}
}

// FlipY converts the top edge of an element of height h, measured from the
// top of the page, into its bottom edge measured from the bottom of the page.
// Applying it twice returns the original value.
func (p Page) FlipY(y, h float64) float64 {
	return p.H - y - h
}

// HAlign is the horizontal alignment of a fitted image inside its rect
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
)

// VAlign is the vertical alignment of a fitted image inside its rect
type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
)

// FitImage scales an imgW x imgH image to the largest size that fits in r
// while keeping its aspect ratio, and positions it according to h and v.
func FitImage(r Rect, imgW, imgH float64, h HAlign, v VAlign) Rect {
	if imgW <= 0 || imgH <= 0 || r.W <= 0 || r.H <= 0 {
		return Rect{X: r.X, Y: r.Y}
	}

	var out Rect
	// Width is the limiting factor unless the scaled height overflows
	wRatio := r.W / imgW
	if wRatio*imgH <= r.H {
		out.W = r.W
		out.H = imgH * wRatio
	} else {
		hRatio := r.H / imgH
		out.W = imgW * hRatio
		out.H = r.H
	}

	switch h {
	case AlignLeft:
		out.X = r.X
	default:
		out.X = r.X + (r.W-out.W)/2
	}

	switch v {
	case AlignTop:
		out.Y = r.Y
	default:
		out.Y = r.Y + (r.H-out.H)/2
	}

	return out
}

// CoverByHeight scales an image to the full page height and centers it
// horizontally. Wide images overflow left and right and get clipped by the
// page edges.
func CoverByHeight(p Page, imgW, imgH float64) Rect {
	if imgW <= 0 || imgH <= 0 {
		return Rect{}
	}
	w := imgW * p.H / imgH
	return Rect{X: (p.W - w) / 2, Y: 0, W: w, H: p.H}
}
