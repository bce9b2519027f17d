package album

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"go.fotopdf.dev/fotopdf/internal/photos"
	"go.fotopdf.dev/fotopdf/internal/phototest"
	"go.fotopdf.dev/fotopdf/internal/render"
	"go.fotopdf.dev/fotopdf/internal/report"
	"go.fotopdf.dev/fotopdf/internal/settings"
	"go.fotopdf.dev/fotopdf/internal/uploader"
	"go.fotopdf.dev/fotopdf/internal/util"
)

func albumFolder(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= n; i++ {
		opts := phototest.Options{Caption: "Photo"}
		if i == 2 {
			opts = phototest.Options{Width: 40, Height: 60}
		}
		phototest.WriteJPEG(t, dir, strings.Repeat("x", i)+".jpg", opts)
	}
	return dir
}

func TestCreate(t *testing.T) {
	dir := albumFolder(t, 3)
	rec := report.NewRecorder()

	res, err := Create(context.Background(), dir, Options{Compressor: "none"}, rec)
	if err != nil {
		t.Fatalf("Create failed: %v\n%s", err, rec.Text())
	}

	if res.Output != filepath.Join(dir, "Album title, Author name.pdf") {
		t.Errorf("output = %q", res.Output)
	}
	if res.Photos != 3 || res.Pages != 7 {
		t.Errorf("photos = %d pages = %d, want 3 and 7", res.Photos, res.Pages)
	}
	n, err := api.PageCountFile(res.Output)
	if err != nil || n != 7 {
		t.Errorf("page count = %d (%v), want 7", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, TempName)); !os.IsNotExist(err) {
		t.Error("tmp.pdf was not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, settings.JSONFile)); err != nil {
		t.Errorf("default settings were not written: %v", err)
	}

	if !regexp.MustCompile(`^Created \(\d+\.\dMB\)!$`).MatchString(rec.HeaderText()) {
		t.Errorf("header = %q", rec.HeaderText())
	}
	want := []report.Line{
		{Level: report.LevelWarning, Message: MsgDefaultConfig},
		{Level: report.LevelInfo, Message: `Creating PDF with images in "` + dir + `".`},
		{Level: report.LevelWarning, Message: `"xx.jpg" does not have a caption.`},
		{Level: report.LevelInfo, Message: MsgAgain},
	}
	got := rec.Lines()
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCreate_FromFileInput(t *testing.T) {
	dir := albumFolder(t, 2)
	if _, err := settings.WriteDefault(dir); err != nil {
		t.Fatal(err)
	}
	rec := report.NewRecorder()

	res, err := Create(context.Background(), filepath.Join(dir, "x.jpg"), Options{Compressor: "pdfcpu"}, rec)
	if err != nil {
		t.Fatalf("Create failed: %v\n%s", err, rec.Text())
	}
	if res.Folder != dir {
		t.Errorf("folder = %q, want %q", res.Folder, dir)
	}
	if res.Bytes == 0 || res.MB() <= 0 {
		t.Errorf("size not reported: %d", res.Bytes)
	}
	for _, l := range rec.Lines() {
		if l.Message == MsgDefaultConfig {
			t.Error("existing settings should not be replaced")
		}
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing input",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no photos",
			setup:   func(t *testing.T) string { return t.TempDir() },
			wantErr: photos.ErrNoPhotos,
			wantMsg: "Error: " + MsgNoImages,
		},
		{
			name: "wrong format",
			setup: func(t *testing.T) string {
				dir := albumFolder(t, 1)
				writeSettings(t, dir, func(s *settings.Settings) { s.Document.Format = "Letter" })
				return dir
			},
			wantErr: settings.ErrPageFormat,
			wantMsg: "Error: " + MsgWrongFormat,
		},
		{
			name: "missing font",
			setup: func(t *testing.T) string {
				dir := albumFolder(t, 1)
				writeSettings(t, dir, func(s *settings.Settings) { s.Fonts.Title = "fonts/missing.ttf" })
				return dir
			},
			wantErr: render.ErrFontNotFound,
			wantMsg: "Error: Cannot find font_title, looking in ",
		},
		{
			name: "cover out of range",
			setup: func(t *testing.T) string {
				dir := albumFolder(t, 1)
				writeSettings(t, dir, func(s *settings.Settings) { s.Cover.UseImage = 4 })
				return dir
			},
			wantErr: settings.ErrCoverImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := report.NewRecorder()
			_, err := Create(context.Background(), tt.setup(t), Options{Compressor: "none"}, rec)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if rec.Worst() != report.LevelError && tt.wantErr != ErrInvalidInput {
				t.Errorf("no error line reported: %q", rec.Text())
			}
			if tt.wantMsg != "" && !strings.Contains(rec.Text(), tt.wantMsg) {
				t.Errorf("report %q does not contain %q", rec.Text(), tt.wantMsg)
			}
		})
	}
}

func TestCreate_InvalidInputHeader(t *testing.T) {
	rec := report.NewRecorder()
	if _, err := Create(context.Background(), "", Options{}, rec); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if rec.HeaderText() != MsgInvalidInput {
		t.Errorf("header = %q", rec.HeaderText())
	}
}

type memUploader struct {
	keys []string
}

func (m *memUploader) Upload(ctx context.Context, key string, content io.Reader, contentType string) error {
	m.keys = append(m.keys, key)
	return nil
}

func (m *memUploader) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (m *memUploader) GetURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestCreate_Publish(t *testing.T) {
	dir := albumFolder(t, 1)
	u := &memUploader{}
	rec := report.NewRecorder()

	res, err := Create(context.Background(), dir, Options{
		Compressor: "none",
		Uploader:   u,
		Upload:     uploader.UploadOptions{Prefix: "albums"},
	}, rec)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(u.keys) != 1 || u.keys[0] != "albums/Album title, Author name.pdf" {
		t.Errorf("uploaded keys = %v", u.keys)
	}
	if res.URL != "https://cdn.example.com/albums/Album title, Author name.pdf" {
		t.Errorf("url = %q", res.URL)
	}
	if !strings.Contains(rec.Text(), "Published to "+res.URL) {
		t.Errorf("publish not reported: %q", rec.Text())
	}
}

func writeSettings(t *testing.T, dir string, edit func(s *settings.Settings)) {
	t.Helper()
	s, err := settings.Default()
	if err != nil {
		t.Fatal(err)
	}
	edit(s)
	if err := util.SaveYAML(filepath.Join(dir, settings.YAMLFile), s); err != nil {
		t.Fatal(err)
	}
}
