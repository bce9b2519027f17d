// Package dropzone serves the local web page where photo folders are dropped
// to be turned into albums.
package dropzone

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/album"
	"go.fotopdf.dev/fotopdf/internal/metrics"
	"go.fotopdf.dev/fotopdf/internal/report"
)

// DefaultAddr keeps the drop zone on this machine
const DefaultAddr = "localhost:8080"

// Config holds the server settings
type Config struct {
	// WorkDir receives one folder per uploaded album
	WorkDir string
	// MaxUploadMB caps the multipart body of an upload
	MaxUploadMB int64
	// KeepAlbums is how many created albums stay downloadable. Older uploaded
	// folders are deleted.
	KeepAlbums int
	// Album is passed to every run
	Album album.Options
	// LocalPaths enables POST /api/albums/path, which writes into any folder
	// the user can write to. Only turn it on for a loopback address.
	LocalPaths bool
}

// IsLoopback reports whether addr ("host:port") only accepts connections
// from this machine
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// MsgPathsDisabled answers path requests on a server reachable from the network
const MsgPathsDisabled = "Creating albums from local folders is only available on localhost."

// Server represents the drop zone HTTP server
type Server struct {
	templates *template.Template
	renderer  *TemplateRenderer
	staticFS  fs.FS
	cfg       Config

	// run serializes album creation, like the single window it replaces
	run sync.Mutex

	mu     sync.RWMutex
	albums map[string]albumEntry
	order  []string // ids, oldest first
}

// albumEntry is a downloadable album. uploadDir is set when the photos were
// uploaded and the folder belongs to the server.
type albumEntry struct {
	output    string
	uploadDir string
}

// NewServer creates a new drop zone server
func NewServer(templatesFS, staticFS fs.FS, cfg Config) (*Server, error) {
	log.Debug().Msg("Loading templates")

	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/dropzone/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	log.Info().Int("templates", len(tmpl.Templates())).Msg("Templates loaded")

	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(os.TempDir(), "fotopdf")
	}
	if err := os.MkdirAll(cfg.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 512
	}
	if cfg.KeepAlbums <= 0 {
		cfg.KeepAlbums = 20
	}

	metrics.Init()

	return &Server{
		templates: tmpl,
		renderer:  NewTemplateRenderer(tmpl),
		staticFS:  staticFS,
		cfg:       cfg,
		albums:    make(map[string]albumEntry),
	}, nil
}

// RegisterRoutes registers all HTTP routes
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	subFS, _ := fs.Sub(s.staticFS, "static/dropzone")
	mux.Handle("/static/dropzone/", http.StripPrefix("/static/dropzone/",
		http.FileServer(http.FS(subFS))))

	mux.HandleFunc("/api/albums", s.handleUpload)
	mux.HandleFunc("/api/albums/path", s.handlePath)
	mux.HandleFunc("/albums/", s.handleDownload)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/", s.handleIndex)
}

// handleIndex shows the drop page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]interface{}{
		"Status": &Status{Header: album.MsgReady, Lines: []report.Line{}, Level: report.LevelInfo},
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Error().Err(err).Msg("Template execution failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handlePath runs the pipeline on a folder, or the folder of a file, on this machine
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.cfg.LocalPaths {
		NewResponseWriter(w).ErrorResponse(r, s.renderer, MsgPathsDisabled, http.StatusForbidden)
		return
	}

	path := strings.TrimSpace(r.FormValue("path"))
	if _, err := album.ResolveFolder(path); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("Rejected drop")
		NewResponseWriter(w).ErrorResponse(r, s.renderer, album.MsgInvalidInput, http.StatusBadRequest)
		return
	}

	s.createAlbum(w, r, "path", path)
}

// createAlbum runs the pipeline and writes the status
func (s *Server) createAlbum(w http.ResponseWriter, r *http.Request, source, folder string) {
	s.run.Lock()
	defer s.run.Unlock()

	start := time.Now()
	rec := report.NewRecorder()
	rep := report.Tee{rec, report.NewLogReporter()}

	res, err := album.Create(r.Context(), folder, s.cfg.Album, rep)
	st := &Status{
		Header: rec.HeaderText(),
		Lines:  rec.Lines(),
		Level:  rec.Worst(),
	}

	result := "created"
	switch {
	case err != nil && res == nil:
		result = "error"
	case st.Level != report.LevelInfo:
		result = strings.ToLower(string(st.Level))
	}
	metrics.ObserveAlbum(source, result, time.Since(start))

	var uploadDir string
	if source == "upload" {
		uploadDir = folder
	}
	if res != nil {
		id := uuid.NewString()
		s.remember(id, albumEntry{output: res.Output, uploadDir: uploadDir})

		st.ID = id
		st.Download = fmt.Sprintf("/albums/%s/%s", id, url.PathEscape(filepath.Base(res.Output)))
		st.URL = res.URL
		metrics.ObserveOutput(res.Photos, res.Bytes)
	}
	if err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("Album not created")
	}
	if res == nil && uploadDir != "" {
		os.RemoveAll(uploadDir)
	}

	NewResponseWriter(w).Toast(ToastFor(st.Level, res != nil), st.Header)
	s.renderer.RenderStatus(w, r, http.StatusOK, st)
}

// handleDownload serves a created PDF as /albums/<id>/<file>
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/albums/"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	entry, ok := s.albums[parts[0]]
	s.mu.RUnlock()
	output := entry.output
	if !ok || filepath.Base(output) != parts[1] {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", parts[1]))
	http.ServeFile(w, r, output)
}

// remember makes an album downloadable, forgetting the oldest ones beyond
// KeepAlbums
func (s *Server) remember(id string, e albumEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums[id] = e
	s.order = append(s.order, id)
	for len(s.order) > s.cfg.KeepAlbums {
		oldest := s.order[0]
		s.order = s.order[1:]
		s.forget(oldest)
	}
}

// forget drops an album and its uploaded folder. Callers hold mu.
func (s *Server) forget(id string) {
	e := s.albums[id]
	delete(s.albums, id)
	if e.uploadDir == "" {
		return
	}
	if err := os.RemoveAll(e.uploadDir); err != nil {
		log.Warn().Err(err).Str("folder", e.uploadDir).Msg("Failed to remove upload")
		return
	}
	log.Debug().Str("folder", e.uploadDir).Msg("Upload removed")
}

// Cleanup removes every uploaded folder still held by the server
func (s *Server) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		s.forget(id)
	}
	s.order = nil
}

// Serve listens on addr until ctx is cancelled
func (s *Server) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", addr).
			Str("workDir", s.cfg.WorkDir).
			Msg("Drop zone listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down drop zone")
		err := srv.Shutdown(shutdownCtx)
		s.Cleanup()
		return err
	}
}
