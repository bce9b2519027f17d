package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"go.fotopdf.dev/fotopdf/internal/layout"
	"go.fotopdf.dev/fotopdf/internal/util"
)

// File names looked up in an album folder, in order
const (
	JSONFile = "settings.json"
	YAMLFile = "settings.yaml"
)

var (
	// ErrPageFormat is returned for a document format other than A4 or custom
	ErrPageFormat = errors.New("wrong slide format")
	// ErrCoverImage is returned when cover.use_image points outside the photo list
	ErrCoverImage = errors.New("cover image out of range")
)

// Document holds the album identity and the page format
type Document struct {
	Format     string `json:"format" yaml:"format"` // "A4" (landscape) or "custom"
	Width      Num    `json:"width" yaml:"width"`
	Height     Num    `json:"height" yaml:"height"`
	Title      string `json:"title" yaml:"title"`
	Author     string `json:"author" yaml:"author"`
	Suffix     string `json:"suffix" yaml:"suffix"`
	Website    string `json:"website" yaml:"website"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone" yaml:"phone"`
	Disclaimer string `json:"disclaimer" yaml:"disclaimer"`
}

// Fonts holds TrueType font paths per role
type Fonts struct {
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Text   string `json:"text" yaml:"text"`
}

// TextBlock places a wrapped paragraph
type TextBlock struct {
	Size      Num  `json:"size" yaml:"size"`
	Interline Num  `json:"interline" yaml:"interline"`
	FromSide  Num  `json:"from_side" yaml:"from_side"`
	FromTop   Num  `json:"from_top" yaml:"from_top"`
	BlackText bool `json:"black_text" yaml:"black_text"`
}

// TextLine places a single centered line
type TextLine struct {
	Show      bool `json:"show" yaml:"show"`
	Size      Num  `json:"size" yaml:"size"`
	FromTop   Num  `json:"from_top" yaml:"from_top"`
	BlackText bool `json:"black_text" yaml:"black_text"`
}

// Cover is the first page
type Cover struct {
	Show     bool      `json:"show" yaml:"show"`
	UseImage Int       `json:"use_image" yaml:"use_image"` // 1-based
	Title    TextBlock `json:"title" yaml:"title"`
	Author   TextLine  `json:"author" yaml:"author"`
}

// Description is the free text page after the cover
type Description struct {
	Show      bool   `json:"show" yaml:"show"`
	String    string `json:"string" yaml:"string"`
	Size      Num    `json:"size" yaml:"size"`
	Interline Num    `json:"interline" yaml:"interline"`
	FromSide  Num    `json:"from_side" yaml:"from_side"`
	FromTop   Num    `json:"from_top" yaml:"from_top"`
}

// Photos configures the one-photo-per-page section
type Photos struct {
	Size       Num `json:"size" yaml:"size"`
	Interline  Num `json:"interline" yaml:"interline"`
	FromSide   Num `json:"from_side" yaml:"from_side"`
	FromTop    Num `json:"from_top" yaml:"from_top"`
	FromBottom Num `json:"from_bottom" yaml:"from_bottom"`
	// MaxPixels caps the long edge of embedded images, 0 keeps originals
	MaxPixels Int `json:"max_pixels,omitempty" yaml:"max_pixels,omitempty"`
	// Quality is the JPEG quality used when an image has to be re-encoded
	Quality Int `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// Grid configures the contact sheet
type Grid struct {
	Rows              Int  `json:"rows" yaml:"rows"`       // <= 0 picks automatically
	Columns           Int  `json:"columns" yaml:"columns"` // <= 0 picks automatically
	HorizontalMargin  Num  `json:"horizontal_margin" yaml:"horizontal_margin"`
	VerticalMargin    Num  `json:"vertical_margin" yaml:"vertical_margin"`
	LateralMargin     Num  `json:"lateral_margin" yaml:"lateral_margin"`
	FittingBlockRatio Num  `json:"fitting_block_ratio" yaml:"fitting_block_ratio"`
	BlackBackground   bool `json:"black_background" yaml:"black_background"`
}

// Final is the closing credits page
type Final struct {
	Show       bool     `json:"show" yaml:"show"`
	Author     TextLine `json:"author" yaml:"author"`
	Website    TextLine `json:"website" yaml:"website"`
	Email      TextLine `json:"email" yaml:"email"`
	Phone      TextLine `json:"phone" yaml:"phone"`
	Disclaimer TextLine `json:"disclaimer" yaml:"disclaimer"`
}

// Output selects the post-processor
type Output struct {
	Compressor string `json:"compressor,omitempty" yaml:"compressor,omitempty"` // auto, ghostscript, pdfcpu, none
	Quality    string `json:"quality,omitempty" yaml:"quality,omitempty"`       // default, prepress, printer, ebook, screen
}

// Settings is the whole album configuration
type Settings struct {
	Document    Document    `json:"document" yaml:"document"`
	Fonts       Fonts       `json:"fonts" yaml:"fonts"`
	Cover       Cover       `json:"cover" yaml:"cover"`
	Description Description `json:"description" yaml:"description"`
	Photos      Photos      `json:"photos" yaml:"photos"`
	Grid        Grid        `json:"grid" yaml:"grid"`
	Final       Final       `json:"final" yaml:"final"`
	Output      Output      `json:"output,omitempty" yaml:"output,omitempty"`

	// Dir is the folder the settings were loaded from
	Dir string `json:"-" yaml:"-"`
}

// Page returns the page size in points
func (s *Settings) Page() (layout.Page, error) {
	switch s.Document.Format {
	case "A4":
		return layout.A4Landscape, nil
	case "custom":
		w, h := s.Document.Width.Float(), s.Document.Height.Float()
		if w <= 0 || h <= 0 {
			return layout.Page{}, fmt.Errorf("%w: custom size %vx%v", ErrPageFormat, w, h)
		}
		// Integer points, as the page box is declared in whole units
		return layout.Page{W: float64(int(w)), H: float64(int(h))}, nil
	default:
		return layout.Page{}, fmt.Errorf("%w: %q", ErrPageFormat, s.Document.Format)
	}
}

// Validate checks the settings that would otherwise fail halfway through
// the rendering
func (s *Settings) Validate() error {
	if _, err := s.Page(); err != nil {
		return err
	}
	if s.Cover.Show && s.Cover.UseImage < 1 {
		return fmt.Errorf("%w: use_image must be 1 or more, got %d", ErrCoverImage, s.Cover.UseImage)
	}
	if s.Grid.FittingBlockRatio <= 0 {
		return fmt.Errorf("grid: fitting_block_ratio must be positive")
	}
	sizes := map[string]Num{"photos.size": s.Photos.Size}
	if s.Cover.Show {
		sizes["cover.title.size"] = s.Cover.Title.Size
		sizes["cover.author.size"] = s.Cover.Author.Size
	}
	if s.Description.Show {
		sizes["description.size"] = s.Description.Size
	}
	for name, size := range sizes {
		if size <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

var tagPattern = regexp.MustCompile(`<.*?>`)

// CleanHTML strips markup tags from s
func CleanHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

var unsafeFilename = strings.NewReplacer("/", "-", "\\", "-", ":", "-")

// OutputName returns "<title>, <author>[, <suffix>].pdf" with markup removed
func (s *Settings) OutputName() string {
	parts := []string{CleanHTML(s.Document.Title), CleanHTML(s.Document.Author)}
	if suffix := CleanHTML(s.Document.Suffix); suffix != "" {
		parts = append(parts, suffix)
	}
	return unsafeFilename.Replace(strings.Join(parts, ", ")) + ".pdf"
}

// Find returns the settings file of dir, or "" when there is none
func Find(dir string) string {
	for _, name := range []string{JSONFile, YAMLFile, "settings.yml"} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the settings file at path
func Load(path string) (*Settings, error) {
	s := &Settings{}
	if err := util.LoadConfig(path, s); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	s.Dir = filepath.Dir(path)
	log.Debug().Str("path", path).Str("format", s.Document.Format).Msg("Settings loaded")
	return s, nil
}

// WriteDefault writes the bundled default settings.json into dir
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, JSONFile)
	if err := os.WriteFile(path, DefaultJSON(), 0644); err != nil {
		return "", fmt.Errorf("failed to write default settings: %w", err)
	}
	return path, nil
}

// WriteDefaultYAML writes the default settings as settings.yaml into dir
func WriteDefaultYAML(dir string) (string, error) {
	s, err := Default()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, YAMLFile)
	if err := util.SaveYAML(path, s); err != nil {
		return "", fmt.Errorf("failed to write default settings: %w", err)
	}
	return path, nil
}

// ResolveFont finds a font file. Relative paths are tried against the
// settings folder, the executable folder and the working directory.
func (s *Settings) ResolveFont(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return path, err
		}
		return path, nil
	}

	var candidates []string
	if s.Dir != "" {
		candidates = append(candidates, filepath.Join(s.Dir, path))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, path))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	if len(candidates) == 0 {
		return path, os.ErrNotExist
	}
	// Report the last location tried
	return candidates[len(candidates)-1], os.ErrNotExist
}
