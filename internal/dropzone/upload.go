package dropzone

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/album"
	"go.fotopdf.dev/fotopdf/internal/photos"
	"go.fotopdf.dev/fotopdf/internal/processing"
	"go.fotopdf.dev/fotopdf/internal/settings"
)

// Form fields of an upload
const (
	FieldPhotos   = "photos"
	FieldSettings = "settings"
)

// handleUpload stores the dropped photos in a fresh folder and runs the pipeline on it
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. Parse form
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		NewResponseWriter(w).ErrorResponse(r, s.renderer, "Invalid form data", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[FieldPhotos]
	if len(files) == 0 {
		NewResponseWriter(w).ErrorResponse(r, s.renderer, album.MsgInvalidInput, http.StatusBadRequest)
		return
	}

	// 2. Save to <workdir>/<uuid>/
	dir := filepath.Join(s.cfg.WorkDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		NewResponseWriter(w).ErrorResponse(r, s.renderer, fmt.Sprintf("Failed to create directory: %v", err), http.StatusInternalServerError)
		return
	}

	saved := 0
	for _, header := range files {
		ok, err := saveImage(header, dir)
		if err != nil {
			os.RemoveAll(dir)
			NewResponseWriter(w).ErrorResponse(r, s.renderer, fmt.Sprintf("Failed to save file: %v", err), http.StatusInternalServerError)
			return
		}
		if ok {
			saved++
		}
	}

	if headers := r.MultipartForm.File[FieldSettings]; len(headers) > 0 {
		if err := saveSettings(headers[0], dir); err != nil {
			os.RemoveAll(dir)
			NewResponseWriter(w).ErrorResponse(r, s.renderer, err.Error(), http.StatusBadRequest)
			return
		}
	}

	log.Info().Str("folder", dir).Int("photos", saved).Int("skipped", len(files)-saved).Msg("Upload stored")

	// 3. Run the pipeline, it reports missing photos itself
	s.createAlbum(w, r, "upload", dir)
}

// saveImage copies an uploaded photo into dir. Files that are not images of a
// supported type are skipped.
func saveImage(header *multipart.FileHeader, dir string) (bool, error) {
	src := &processing.MultipartFileSource{Header: header}
	name := src.Name()
	if strings.HasPrefix(name, ".") || !photos.IsSupported(name) {
		log.Debug().Str("file", name).Msg("Skipping unsupported upload")
		return false, nil
	}

	f, err := header.Open()
	if err != nil {
		return false, err
	}
	mtype, err := mimetype.DetectReader(f)
	f.Close()
	if err != nil {
		return false, err
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		log.Warn().Str("file", name).Str("type", mtype.String()).Msg("Upload is not an image")
		return false, nil
	}

	_, err = processing.SaveTo(src, dir)
	return err == nil, err
}

// saveSettings stores an uploaded settings file under the name the pipeline looks for
func saveSettings(header *multipart.FileHeader, dir string) error {
	target := settings.JSONFile
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".yaml", ".yml":
		target = settings.YAMLFile
	case ".json":
	default:
		return fmt.Errorf("settings must be a .json or .yaml file")
	}

	src := &processing.MultipartFileSource{Header: header}
	path, err := processing.SaveTo(src, dir)
	if err != nil {
		return err
	}
	if filepath.Base(path) != target {
		return os.Rename(path, filepath.Join(dir, target))
	}
	return nil
}
