package render

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/layout"
	"go.fotopdf.dev/fotopdf/internal/photos"
	"go.fotopdf.dev/fotopdf/internal/processing"
	"go.fotopdf.dev/fotopdf/internal/report"
	"go.fotopdf.dev/fotopdf/internal/settings"
)

// TextTooSmallMessage is reported when a paragraph is skipped
const TextTooSmallMessage = "text area too small for text. Try making the area larger or reducing the font size."

// ImagePreparer turns a photo into an embeddable JPEG
type ImagePreparer interface {
	Prepare(ph *photos.Photo) (*processing.Prepared, error)
}

// Renderer draws every section of the album on a Canvas
type Renderer struct {
	c      Canvas
	page   layout.Page
	s      *settings.Settings
	images ImagePreparer
	rep    report.Reporter

	embedded map[string]*processing.Prepared
	pages    int
}

// New creates a renderer for the page size of s
func New(c Canvas, s *settings.Settings, images ImagePreparer, rep report.Reporter) (*Renderer, error) {
	page, err := s.Page()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		c:        c,
		page:     page,
		s:        s,
		images:   images,
		rep:      rep,
		embedded: make(map[string]*processing.Prepared),
	}, nil
}

// Pages returns the number of pages drawn so far
func (r *Renderer) Pages() int {
	return r.pages
}

// Render draws the cover, description, photo, grid and final pages
func (r *Renderer) Render(list []*photos.Photo) error {
	if len(list) == 0 {
		return photos.ErrNoPhotos
	}
	if r.s.Cover.Show {
		if err := r.Cover(list); err != nil {
			return err
		}
	}
	if r.s.Description.Show {
		r.Description()
	}
	for _, ph := range list {
		if err := r.Photo(ph); err != nil {
			return err
		}
	}
	if err := r.Grid(list); err != nil {
		return err
	}
	if r.s.Final.Show {
		r.Final()
	}
	return nil
}

func (r *Renderer) addPage() {
	r.c.AddPage()
	r.pages++
}

// image registers the photo on first use and returns its pixel size
func (r *Renderer) image(ph *photos.Photo) (*processing.Prepared, error) {
	if img, ok := r.embedded[ph.Path]; ok {
		return img, nil
	}
	img, err := r.images.Prepare(ph)
	if err != nil {
		return nil, err
	}
	if err := r.c.RegisterImage(ph.Path, img.Data); err != nil {
		return nil, err
	}
	r.embedded[ph.Path] = img
	return img, nil
}

func (r *Renderer) drawImage(ph *photos.Photo, box layout.Rect) {
	r.c.DrawImage(ph.Path, layout.Rect{X: box.X, Y: r.page.FlipY(box.Y, box.H), W: box.W, H: box.H})
}

func (r *Renderer) paragraph(p Paragraph) {
	if err := r.drawParagraph(p); errors.Is(err, ErrTextDoesNotFit) {
		report.Warnf(r.rep, TextTooSmallMessage)
	}
}

// Cover draws the chosen photo at full page height with the title and author
// on top of it
func (r *Renderer) Cover(list []*photos.Photo) error {
	idx := int(r.s.Cover.UseImage)
	if idx < 1 || idx > len(list) {
		return fmt.Errorf("%w: use_image %d with %d photos", settings.ErrCoverImage, idx, len(list))
	}
	ph := list[idx-1]
	img, err := r.image(ph)
	if err != nil {
		return err
	}

	r.addPage()
	r.drawImage(ph, layout.CoverByHeight(r.page, float64(img.Width), float64(img.Height)))

	title := r.s.Cover.Title
	r.paragraph(Paragraph{
		Text:      r.s.Document.Title,
		Family:    FontTitle,
		Size:      title.Size.Float(),
		Interline: title.Interline.Float(),
		FromSide:  title.FromSide.Float(),
		FromTop:   title.FromTop.Float(),
		Align:     AlignCenter,
		Color:     TextColor(title.BlackText),
	})

	author := r.s.Cover.Author
	r.drawCenteredLine(r.s.Document.Author, FontAuthor, author.Size.Float(), author.FromTop.Float(), TextColor(author.BlackText))
	log.Debug().Str("photo", ph.Name).Msg("Cover page drawn")
	return nil
}

// Description draws the free text page
func (r *Renderer) Description() {
	d := r.s.Description
	r.addPage()
	r.paragraph(Paragraph{
		Text:      d.String,
		Family:    FontText,
		Size:      d.Size.Float(),
		Interline: d.Interline.Float(),
		FromSide:  d.FromSide.Float(),
		FromTop:   d.FromTop.Float(),
		Align:     AlignLeft,
		Color:     Black,
	})
}

// Photo draws one photo per page with its caption underneath
func (r *Renderer) Photo(ph *photos.Photo) error {
	if !ph.HasCaption() {
		report.Warnf(r.rep, "%q does not have a caption.", ph.Name)
	}
	img, err := r.image(ph)
	if err != nil {
		return err
	}

	cfg := r.s.Photos
	side, top, bottom := cfg.FromSide.Float(), cfg.FromTop.Float(), cfg.FromBottom.Float()
	area := layout.Rect{X: side, Y: top, W: r.page.W - 2*side, H: r.page.H - top - bottom}
	box := layout.FitImage(area, float64(img.Width), float64(img.Height), layout.AlignCenter, layout.AlignTop)

	r.addPage()
	r.drawImage(ph, box)
	if ph.HasCaption() {
		r.paragraph(Paragraph{
			Text:      ph.Caption,
			Family:    FontText,
			Size:      cfg.Size.Float(),
			Interline: cfg.Interline.Float(),
			FromSide:  side,
			FromTop:   box.Bottom() + cfg.Size.Float(),
			Align:     AlignLeft,
			Color:     Black,
		})
	}
	return nil
}

// Grid draws the contact sheet, adding sheets when there are more photos
// than cells
func (r *Renderer) Grid(list []*photos.Photo) error {
	g := r.s.Grid
	rows, cols := int(g.Rows), int(g.Columns)
	if rows <= 0 || cols <= 0 {
		rows, cols = layout.AutoGrid(r.page, len(list), g.LateralMargin.Float(), g.FittingBlockRatio.Float())
		log.Debug().Int("rows", rows).Int("columns", cols).Msg("Grid size picked automatically")
	}

	grid, err := layout.Grid(r.page, layout.GridConfig{
		Rows:             rows,
		Columns:          cols,
		HorizontalMargin: g.HorizontalMargin.Float(),
		VerticalMargin:   g.VerticalMargin.Float(),
		LateralMargin:    g.LateralMargin.Float(),
		Ratio:            g.FittingBlockRatio.Float(),
	})
	if err != nil {
		if !errors.Is(err, layout.ErrGridDoesNotFit) || grid.Size() == 0 {
			return fmt.Errorf("grid: %w", err)
		}
		report.Warnf(r.rep, "The grid does not fit in the page margins.")
	}

	for i, ph := range list {
		if i%grid.Size() == 0 {
			r.addPage()
			if g.BlackBackground {
				r.c.FillRect(r.page.Bounds(), Black)
			}
		}
		img, err := r.image(ph)
		if err != nil {
			return err
		}
		box := layout.FitImage(grid.Cell(i), float64(img.Width), float64(img.Height), layout.AlignCenter, layout.AlignMiddle)
		r.drawImage(ph, box)
	}
	return nil
}

// Final draws the closing page with the author contacts
func (r *Renderer) Final() {
	f := r.s.Final
	doc := r.s.Document
	r.addPage()
	for _, line := range []struct {
		text string
		cfg  settings.TextLine
	}{
		{doc.Author, f.Author},
		{doc.Website, f.Website},
		{doc.Email, f.Email},
		{doc.Phone, f.Phone},
		{doc.Disclaimer, f.Disclaimer},
	} {
		if line.cfg.Show {
			r.drawCenteredLine(line.text, FontText, line.cfg.Size.Float(), line.cfg.FromTop.Float(), Black)
		}
	}
}
