package processing

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"io"

	_ "github.com/chai2010/webp" // Register WebP decoder
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/photos"
)

// ImageSource abstracts the reading of an image
type ImageSource interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// ProcessConfig holds configuration for the processor
type ProcessConfig struct {
	MaxPixels int  // longest edge after downscaling, 0 keeps the original size
	Quality   int  // JPEG quality of converted images
	Force     bool // Ignore cached variants
}

// Prepared is an image ready to be embedded in the PDF
type Prepared struct {
	Data   []byte
	Width  int
	Height int
}

// Processor turns photos into JPEG streams the PDF writer can embed
type Processor struct {
	Config ProcessConfig
	dst    *Destination
}

// NewProcessor creates a new processor caching into dst. A nil dst disables the cache.
func NewProcessor(config ProcessConfig, dst *Destination) *Processor {
	if config.Quality <= 0 || config.Quality > 100 {
		config.Quality = 90
	}
	if config.MaxPixels < 0 {
		config.MaxPixels = 0
	}
	return &Processor{Config: config, dst: dst}
}

// ComputeHash computes a SHA256 hash of the image source content
func (p *Processor) ComputeHash(src ImageSource) (string, error) {
	reader, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open source for hashing: %w", err)
	}
	defer reader.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", fmt.Errorf("failed to compute hash: %w", err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// NeedsConversion reports whether the photo cannot be embedded as is
func (p *Processor) NeedsConversion(ph *photos.Photo) bool {
	if !ph.IsJPEG || ph.Rotated() {
		return true
	}
	return p.Config.MaxPixels > 0 && max(ph.Width, ph.Height) > p.Config.MaxPixels
}

func (p *Processor) variant() string {
	if p.Config.MaxPixels == 0 {
		return fmt.Sprintf("full-q%d", p.Config.Quality)
	}
	return fmt.Sprintf("%dpx-q%d", p.Config.MaxPixels, p.Config.Quality)
}

// Prepare returns the JPEG bytes for a photo: the original file when it can be
// embedded directly, a converted and cached copy otherwise
func (p *Processor) Prepare(ph *photos.Photo) (*Prepared, error) {
	src := &FileSource{Path: ph.Path}

	if !p.NeedsConversion(ph) {
		reader, err := src.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", ph.Name, err)
		}
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ph.Name, err)
		}
		return &Prepared{Data: data, Width: ph.Width, Height: ph.Height}, nil
	}

	// 1. Compute Hash
	hash, err := p.ComputeHash(src)
	if err != nil {
		return nil, err
	}
	hashID := hash[:12]
	variant := p.variant()

	// 2. Reuse the cached variant unless forced
	if p.dst != nil && !p.Config.Force && p.dst.VariantExists(hashID, variant) {
		data, err := p.dst.ReadVariant(hashID, variant)
		if err == nil {
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
				log.Debug().Str("photo", ph.Name).Str("variant", variant).Msg("Using cached variant")
				return &Prepared{Data: data, Width: cfg.Width, Height: cfg.Height}, nil
			}
		}
		log.Warn().Err(err).Str("photo", ph.Name).Msg("Cached variant unreadable, converting again")
	}

	// 3. Decode Image
	reader, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open source for decoding: %w", err)
	}
	defer reader.Close()

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ph.Name, err)
	}

	// 4. Flatten transparency and downscale
	if !ph.IsJPEG {
		img = flatten(img)
	}
	if p.Config.MaxPixels > 0 {
		img = imaging.Fit(img, p.Config.MaxPixels, p.Config.MaxPixels, imaging.Lanczos)
	}

	// 5. Encode and cache
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Config.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if p.dst != nil {
		if err := p.saveVariant(buf.Bytes(), hashID, variant); err != nil {
			log.Warn().Err(err).Str("photo", ph.Name).Msg("Failed to cache converted photo")
		}
	}

	b := img.Bounds()
	log.Debug().Str("photo", ph.Name).Int("width", b.Dx()).Int("height", b.Dy()).Msg("Photo converted")
	return &Prepared{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// flatten draws img over a white background so transparent areas do not turn black
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// saveVariant saves a converted image to the cache directory
func (p *Processor) saveVariant(data []byte, hashID, variant string) error {
	writer, err := p.dst.CreateVariant(hashID, variant)
	if err != nil {
		return fmt.Errorf("failed to create variant file: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write variant file: %w", err)
	}
	return writer.Close()
}
