// Package compress rewrites the generated PDF into its final, smaller form.
package compress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"
)

// Compressor names accepted in the output settings
const (
	Auto        = "auto"
	Ghostscript = "ghostscript"
	PDFCPU      = "pdfcpu"
	None        = "none"
)

// ErrUnknownCompressor is returned for a compressor name not listed above
var ErrUnknownCompressor = errors.New("unknown compressor")

// ErrPageCount is returned when the optimized file lost pages
var ErrPageCount = errors.New("page count changed during optimization")

// qualities maps output quality names to Ghostscript PDFSETTINGS presets
var qualities = map[string]string{
	"default":  "/default",
	"prepress": "/prepress",
	"printer":  "/printer",
	"ebook":    "/ebook",
	"screen":   "/screen",
}

// Optimizer writes an optimized copy of src to dst
type Optimizer interface {
	Name() string
	Optimize(ctx context.Context, src, dst string) error
}

// New returns the optimizer for name. Auto picks Ghostscript when the gs
// binary is on PATH and falls back to pdfcpu.
func New(name, quality string) (Optimizer, error) {
	if quality == "" {
		quality = "default"
	}
	preset, ok := qualities[strings.ToLower(quality)]
	if !ok {
		return nil, fmt.Errorf("unknown output quality %q", quality)
	}

	switch strings.ToLower(name) {
	case "", Auto:
		if path, err := exec.LookPath("gs"); err == nil {
			return &GhostscriptOptimizer{Binary: path, Preset: preset}, nil
		}
		log.Debug().Msg("Ghostscript not found, using pdfcpu")
		return &PDFCPUOptimizer{}, nil
	case Ghostscript:
		return &GhostscriptOptimizer{Binary: "gs", Preset: preset}, nil
	case PDFCPU:
		return &PDFCPUOptimizer{}, nil
	case None:
		return &RenameOptimizer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompressor, name)
	}
}

// GhostscriptOptimizer runs the pdfwrite device of an external gs binary
type GhostscriptOptimizer struct {
	Binary string
	Preset string
}

func (g *GhostscriptOptimizer) Name() string {
	return Ghostscript
}

// Args returns the gs command line without the binary
func (g *GhostscriptOptimizer) Args(src, dst string) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + g.Preset,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-dColorAccuracy=2",
		"-dProcessColorModel=/DeviceRGB",
		"-sOutputFile=" + dst,
		src,
	}
}

func (g *GhostscriptOptimizer) Optimize(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, g.Binary, g.Args(src, dst)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ghostscript failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// PDFCPUOptimizer optimizes in process
type PDFCPUOptimizer struct{}

func (p *PDFCPUOptimizer) Name() string {
	return PDFCPU
}

func (p *PDFCPUOptimizer) Optimize(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.OptimizeFile(src, dst, nil); err != nil {
		return fmt.Errorf("pdfcpu optimize failed: %w", err)
	}
	return nil
}

// RenameOptimizer moves the file into place unchanged
type RenameOptimizer struct{}

func (r *RenameOptimizer) Name() string {
	return None
}

func (r *RenameOptimizer) Optimize(ctx context.Context, src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move PDF: %w", err)
	}
	return nil
}

// Run optimizes src into dst, removes src and checks that dst still has
// wantPages pages. It returns the size of dst in bytes.
func Run(ctx context.Context, o Optimizer, src, dst string, wantPages int) (int64, error) {
	logger := log.With().Str("optimizer", o.Name()).Str("output", dst).Logger()
	logger.Debug().Msg("Optimizing PDF")

	if err := o.Optimize(ctx, src, dst); err != nil {
		return 0, err
	}
	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("file", src).Msg("Failed to remove temporary PDF")
	}

	pages, err := api.PageCountFile(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to read optimized PDF: %w", err)
	}
	if wantPages > 0 && pages != wantPages {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrPageCount, pages, wantPages)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	logger.Debug().Int("pages", pages).Int64("bytes", info.Size()).Msg("PDF optimized")
	return info.Size(), nil
}
