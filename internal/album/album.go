// Package album runs the whole folder to PDF pipeline.
package album

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/compress"
	"go.fotopdf.dev/fotopdf/internal/photos"
	"go.fotopdf.dev/fotopdf/internal/processing"
	"go.fotopdf.dev/fotopdf/internal/render"
	"go.fotopdf.dev/fotopdf/internal/report"
	"go.fotopdf.dev/fotopdf/internal/settings"
	"go.fotopdf.dev/fotopdf/internal/uploader"
)

// Status lines shown to the user
const (
	MsgReady         = "Drag folder here"
	MsgAgain         = "Drag another folder to create a new one."
	MsgInvalidInput  = "Invalid file or folder."
	MsgWrongFormat   = "Wrong slide format."
	MsgNoImages      = "No image found in folder."
	MsgDefaultConfig = "Cannot find settings.json in folder. Creating a default one that will need to be customized."
)

// TempName is the unoptimized PDF written next to the photos
const TempName = "tmp.pdf"

// ErrInvalidInput is returned when the input is neither a file nor a folder
var ErrInvalidInput = errors.New("invalid file or folder")

// Options tune a single run
type Options struct {
	// Compressor overrides output.compressor from the settings
	Compressor string
	// Force converts photos again even when a cached copy exists
	Force bool
	// Creator is written in the PDF metadata
	Creator string
	// Uploader publishes the finished PDF when set
	Uploader uploader.Uploader
	Upload   uploader.UploadOptions
}

// Result describes a created album
type Result struct {
	Folder string
	Output string
	Photos int
	Pages  int
	Bytes  int64
	URL    string
}

// MB returns the size in megabytes as shown in the status header
func (r *Result) MB() float64 {
	return float64(r.Bytes) / 1e6
}

// ResolveFolder returns the absolute folder for input. A file resolves to the
// folder containing it.
func ResolveFolder(input string) (string, error) {
	if input == "" {
		return "", ErrInvalidInput
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

// Create builds the album for the folder of input, reporting progress on rep
func Create(ctx context.Context, input string, opts Options, rep report.Reporter) (*Result, error) {
	start := time.Now()

	folder, err := ResolveFolder(input)
	if err != nil {
		rep.Header(MsgInvalidInput)
		return nil, err
	}

	rep.Header(MsgReady)
	rep.Reset()
	logger := log.With().Str("folder", folder).Logger()

	s, err := loadSettings(folder, rep)
	if err != nil {
		report.Errorf(rep, "%v", err)
		return nil, err
	}

	page, err := s.Page()
	if err != nil {
		report.Errorf(rep, MsgWrongFormat)
		return nil, err
	}
	if err := s.Validate(); err != nil {
		report.Errorf(rep, "Invalid settings: %v.", err)
		return nil, err
	}

	res := &Result{Folder: folder, Output: filepath.Join(folder, s.OutputName())}
	tmp := filepath.Join(folder, TempName)

	creator := opts.Creator
	if creator == "" {
		creator = "fotopdf"
	}
	canvas := render.NewPDFCanvas(page, render.Metadata{
		Title:   settings.CleanHTML(s.Document.Title),
		Author:  settings.CleanHTML(s.Document.Author),
		Creator: creator,
	})
	if err := render.LoadFonts(canvas, s); err != nil {
		var fe *render.FontError
		if errors.As(err, &fe) {
			report.Errorf(rep, "Cannot find %s, looking in %s", fe.Family, fe.Path)
		} else {
			report.Errorf(rep, "%v", err)
		}
		return nil, err
	}

	list, err := photos.Scan(folder)
	if err != nil {
		if errors.Is(err, photos.ErrNoPhotos) {
			rep.Reset()
			report.Errorf(rep, MsgNoImages)
		} else {
			report.Errorf(rep, "%v", err)
		}
		return nil, err
	}
	res.Photos = len(list)
	report.Infof(rep, "Creating PDF with images in %q.", folder)
	logger.Info().Int("photos", len(list)).Msg("Creating album")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processor := processing.NewProcessor(processing.ProcessConfig{
		MaxPixels: int(s.Photos.MaxPixels),
		Quality:   int(s.Photos.Quality),
		Force:     opts.Force,
	}, processing.NewDestination(folder))

	renderer, err := render.New(canvas, s, processor, rep)
	if err != nil {
		report.Errorf(rep, "%v", err)
		return nil, err
	}
	if err := renderer.Render(list); err != nil {
		report.Errorf(rep, "%v", err)
		return nil, err
	}
	res.Pages = renderer.Pages()

	if err := canvas.Save(tmp); err != nil {
		report.Errorf(rep, "%v", err)
		return nil, err
	}

	compressor := s.Output.Compressor
	if opts.Compressor != "" {
		compressor = opts.Compressor
	}
	optimizer, err := compress.New(compressor, s.Output.Quality)
	if err == nil {
		res.Bytes, err = compress.Run(ctx, optimizer, tmp, res.Output, res.Pages)
	}
	if err != nil {
		os.Remove(tmp)
		report.Errorf(rep, "%v", err)
		return nil, err
	}

	rep.Header(fmt.Sprintf("Created (%.1fMB)!", res.MB()))
	report.Infof(rep, MsgAgain)
	logger.Info().
		Str("output", res.Output).
		Int("pages", res.Pages).
		Int64("bytes", res.Bytes).
		Dur("elapsed", time.Since(start)).
		Msg("Album created")

	if opts.Uploader != nil {
		url, err := uploader.Publish(ctx, opts.Uploader, res.Output, opts.Upload)
		if err != nil {
			report.Errorf(rep, "Upload failed: %v", err)
			return res, err
		}
		res.URL = url
		report.Infof(rep, "Published to %s", url)
	}

	return res, nil
}

// loadSettings reads the folder settings, writing the defaults first when
// the folder has none
func loadSettings(folder string, rep report.Reporter) (*settings.Settings, error) {
	path := settings.Find(folder)
	if path == "" {
		report.Warnf(rep, MsgDefaultConfig)
		var err error
		if path, err = settings.WriteDefault(folder); err != nil {
			return nil, err
		}
	}
	return settings.Load(path)
}
