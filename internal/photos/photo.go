package photos

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "github.com/chai2010/webp" // Register WebP decoder
	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPhotos is returned when a folder has no supported image
var ErrNoPhotos = errors.New("no image found in folder")

// supportedExts maps extensions to whether the file can be embedded as is
var supportedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  false,
	".webp": false,
}

// Photo is one image of the album
type Photo struct {
	Name        string
	Path        string
	Width       int // displayed width, orientation applied
	Height      int // displayed height, orientation applied
	Caption     string
	Orientation int // EXIF orientation, 1 when unknown
	IsJPEG      bool
}

// HasCaption reports whether the photo carries an ImageDescription
func (p *Photo) HasCaption() bool {
	return p.Caption != ""
}

// Rotated reports whether the pixels need rotating or flipping before display
func (p *Photo) Rotated() bool {
	return p.Orientation > 1 && p.Orientation <= 8
}

// IsSupported reports whether name has an extension Scan picks up
func IsSupported(name string) bool {
	_, ok := supportedExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan lists the supported images of dir in natural order and reads their
// size and caption
func Scan(dir string) ([]*Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !IsSupported(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, ErrNoPhotos
	}
	SortNatural(names)

	photos := make([]*Photo, 0, len(names))
	for _, name := range names {
		p, err := Read(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}

	log.Debug().Str("dir", dir).Int("count", len(photos)).Msg("Photos scanned")
	return photos, nil
}

// Read loads the metadata of a single image
func Read(path string) (*Photo, error) {
	name := filepath.Base(path)
	p := &Photo{
		Name:        name,
		Path:        path,
		Orientation: 1,
		IsJPEG:      supportedExts[strings.ToLower(filepath.Ext(name))],
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	p.Width, p.Height = cfg.Width, cfg.Height

	if p.IsJPEG {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind %s: %w", name, err)
		}
		readExif(f, p)
	}

	// Orientations 5 to 8 swap the axes
	if p.Orientation >= 5 && p.Orientation <= 8 {
		p.Width, p.Height = p.Height, p.Width
	}

	return p, nil
}

// readExif fills caption and orientation. Missing or broken EXIF data is not
// an error: the photo just has no caption.
func readExif(r io.Reader, p *Photo) {
	x, err := exif.Decode(r)
	if err != nil {
		log.Debug().Err(err).Str("photo", p.Name).Msg("No EXIF data")
		return
	}

	if tag, err := x.Get(exif.ImageDescription); err == nil {
		if s, err := tag.StringVal(); err == nil {
			p.Caption = decodeText(s)
		}
	}

	if tag, err := x.Get(exif.Orientation); err == nil {
		if o, err := tag.Int(0); err == nil && o >= 1 && o <= 8 {
			p.Orientation = o
		}
	}
}

// decodeText turns an EXIF ASCII value into UTF-8. Many tools write accented
// characters as Latin-1 bytes even though the field is declared ASCII.
func decodeText(s string) string {
	s = strings.TrimRight(s, "\x00")
	if !utf8.ValidString(s) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().String(s); err == nil {
			s = decoded
		}
	}
	return strings.TrimSpace(s)
}
