package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrGridDoesNotFit is returned when neither the column-driven nor the
// row-driven sizing keeps the grid inside the page. The returned layout is
// still usable, it just touches or crosses the lateral margins.
var ErrGridDoesNotFit = errors.New("grid does not fit in page")

// GridConfig describes a contact sheet
type GridConfig struct {
	Rows             int
	Columns          int
	HorizontalMargin float64 // space between columns
	VerticalMargin   float64 // space between rows
	LateralMargin    float64 // minimum space around the block
	Ratio            float64 // width / height of each cell
}

// GridLayout is a centered block of equally sized cells
type GridLayout struct {
	Rows    int
	Columns int
	CellW   float64
	CellH   float64
	OriginX float64
	OriginY float64
	hGap    float64
	vGap    float64
}

// Size returns the number of cells
func (g GridLayout) Size() int {
	return g.Rows * g.Columns
}

// Cell returns the rect of the i-th cell in row-major order. Indexes past the
// last cell wrap onto a new sheet with the same geometry.
func (g GridLayout) Cell(i int) Rect {
	if g.Size() > 0 {
		i = i % g.Size()
	}
	col := i % g.Columns
	row := i / g.Columns
	return Rect{
		X: g.OriginX + float64(col)*(g.CellW+g.hGap),
		Y: g.OriginY + float64(row)*(g.CellH+g.vGap),
		W: g.CellW,
		H: g.CellH,
	}
}

// Grid sizes the cells so that the block fills the page width, falling back
// to filling the page height when the block would be too tall.
func Grid(p Page, cfg GridConfig) (GridLayout, error) {
	if cfg.Rows <= 0 || cfg.Columns <= 0 {
		return GridLayout{}, fmt.Errorf("invalid grid %dx%d", cfg.Rows, cfg.Columns)
	}
	if cfg.Ratio <= 0 {
		return GridLayout{}, fmt.Errorf("invalid fitting block ratio %v", cfg.Ratio)
	}

	r := float64(cfg.Rows)
	c := float64(cfg.Columns)

	var err error
	cellW := (p.W - 2*cfg.LateralMargin - (c-1)*cfg.HorizontalMargin) / c
	cellH := cellW / cfg.Ratio
	totalH := r*cellH + (r-1)*cfg.VerticalMargin + cfg.LateralMargin
	if totalH > p.H {
		// Too tall, size from the rows instead
		cellH = (p.H - 2*cfg.LateralMargin - (r-1)*cfg.VerticalMargin) / r
		cellW = cellH * cfg.Ratio
		totalW := c*cellW + (c-1)*cfg.HorizontalMargin + cfg.LateralMargin
		if totalW > p.W {
			err = ErrGridDoesNotFit
		}
	}
	if cellW <= 0 || cellH <= 0 {
		return GridLayout{}, fmt.Errorf("margins leave no room for cells: %w", ErrGridDoesNotFit)
	}

	blockW := c*cellW + (c-1)*cfg.HorizontalMargin
	blockH := r*cellH + (r-1)*cfg.VerticalMargin

	return GridLayout{
		Rows:    cfg.Rows,
		Columns: cfg.Columns,
		CellW:   cellW,
		CellH:   cellH,
		OriginX: (p.W - blockW) / 2,
		OriginY: (p.H - blockH) / 2,
		hGap:    cfg.HorizontalMargin,
		vGap:    cfg.VerticalMargin,
	}, err
}

// AutoGrid picks rows and columns for n images maximising the area each
// image gets on a single sheet.
func AutoGrid(p Page, n int, lateral, ratio float64) (rows, cols int) {
	if n <= 0 {
		return 1, 1
	}
	if ratio <= 0 {
		ratio = 1.5
	}

	best := -1.0
	for c := 1; c <= n; c++ {
		r := int(math.Ceil(float64(n) / float64(c)))
		byCols := math.Pow((p.W-2*lateral)/float64(c), 2) / ratio
		byRows := math.Pow((p.H-2*lateral)/float64(r), 2) * ratio
		area := math.Min(byCols, byRows)
		if area > best {
			best = area
			rows, cols = r, c
		}
	}
	return rows, cols
}
