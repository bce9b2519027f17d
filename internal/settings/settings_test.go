package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.fotopdf.dev/fotopdf/internal/layout"
)

func TestDefault_IsValid(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default settings do not validate: %v", err)
	}
	p, err := s.Page()
	if err != nil {
		t.Fatal(err)
	}
	if p != layout.A4Landscape {
		t.Errorf("default page = %+v, want landscape A4", p)
	}
}

func TestNum_AcceptsStrings(t *testing.T) {
	var v struct {
		A Num `json:"a"`
		B Num `json:"b"`
		C Num `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 16, "b": "24", "c": " 1.5 "}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.A != 16 || v.B != 24 || v.C != 1.5 {
		t.Errorf("got %v %v %v", v.A, v.B, v.C)
	}
	if v.C.Int() != 1 {
		t.Errorf("Int() = %d, want 1", v.C.Int())
	}

	if err := json.Unmarshal([]byte(`{"a": "sixteen"}`), &v); err == nil {
		t.Error("expected error for non numeric string")
	}

	var counts struct {
		Rows    Int `json:"rows"`
		Columns Int `json:"columns"`
		Quality Int `json:"quality"`
	}
	if err := json.Unmarshal([]byte(`{"rows": "4", "columns": 6, "quality": "85.0"}`), &counts); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if counts.Rows != 4 || counts.Columns != 6 || counts.Quality != 85 {
		t.Errorf("got %+v", counts)
	}
	if err := json.Unmarshal([]byte(`{"rows": "four"}`), &counts); err == nil {
		t.Error("expected error for non numeric string")
	}
}

func TestLoad_QuotedIntegers(t *testing.T) {
	dir := t.TempDir()
	data := strings.NewReplacer(
		`"rows": 4`, `"rows": "4"`,
		`"columns": 6`, `"columns": "6"`,
		`"use_image": 1`, `"use_image": "1"`,
		`"max_pixels": 0`, `"max_pixels": "2000"`,
		`"quality": 90`, `"quality": "80"`,
	).Replace(string(DefaultJSON()))
	path := filepath.Join(dir, JSONFile)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Grid.Rows != 4 || s.Grid.Columns != 6 || s.Cover.UseImage != 1 {
		t.Errorf("grid %+v, use_image %d", s.Grid, s.Cover.UseImage)
	}
	if s.Photos.MaxPixels != 2000 || s.Photos.Quality != 80 {
		t.Errorf("photos %+v", s.Photos)
	}

	yamlPath := filepath.Join(dir, "quoted-counts.yaml")
	if err := os.WriteFile(yamlPath, []byte("grid:\n  rows: \"3\"\n  columns: '5'\n"), 0644); err != nil {
		t.Fatal(err)
	}
	s, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Grid.Rows != 3 || s.Grid.Columns != 5 {
		t.Errorf("grid %+v", s.Grid)
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		want    layout.Page
		wantErr bool
	}{
		{name: "A4", doc: Document{Format: "A4"}, want: layout.A4Landscape},
		{name: "custom", doc: Document{Format: "custom", Width: 1024.7, Height: 768}, want: layout.Page{W: 1024, H: 768}},
		{name: "custom without size", doc: Document{Format: "custom"}, wantErr: true},
		{name: "unknown", doc: Document{Format: "Letter"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settings{Document: tt.doc}
			got, err := s.Page()
			if tt.wantErr {
				if !errors.Is(err, ErrPageFormat) {
					t.Errorf("expected ErrPageFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Page() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		doc  Document
		want string
	}{
		{Document{Title: "Iceland", Author: "Jane Doe"}, "Iceland, Jane Doe.pdf"},
		{Document{Title: "<b>Iceland</b> 2021", Author: "Jane <i>Doe</i>", Suffix: "web"}, "Iceland 2021, Jane Doe, web.pdf"},
		{Document{Title: "A/B", Author: "C"}, "A-B, C.pdf"},
	}
	for _, tt := range tests {
		s := &Settings{Document: tt.doc}
		if got := s.OutputName(); got != tt.want {
			t.Errorf("OutputName() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	s, _ := Default()
	s.Cover.UseImage = 0
	if err := s.Validate(); !errors.Is(err, ErrCoverImage) {
		t.Errorf("expected ErrCoverImage, got %v", err)
	}

	s, _ = Default()
	s.Grid.FittingBlockRatio = 0
	if err := s.Validate(); err == nil {
		t.Error("expected error for zero ratio")
	}

	s, _ = Default()
	s.Description.Show = false
	s.Description.Size = 0
	if err := s.Validate(); err != nil {
		t.Errorf("hidden description should not need a size: %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	if Find(dir) != "" {
		t.Fatal("empty folder should have no settings")
	}

	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatal(err)
	}
	if Find(dir) != path {
		t.Errorf("Find() = %q, want %q", Find(dir), path)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Dir != dir {
		t.Errorf("Dir = %q, want %q", s.Dir, dir)
	}
	if s.Grid.Rows != 4 || s.Grid.FittingBlockRatio != 1.5 {
		t.Errorf("unexpected grid %+v", s.Grid)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefaultYAML(dir)
	if err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def, _ := Default()
	if s.Document.Title != def.Document.Title || s.Photos.Size != def.Photos.Size {
		t.Errorf("YAML round trip lost values: %+v", s.Document)
	}

	quoted := []byte("document:\n  format: custom\n  width: \"800\"\n  height: 600\n")
	if err := os.WriteFile(filepath.Join(dir, "quoted.yaml"), quoted, 0644); err != nil {
		t.Fatal(err)
	}
	s, err = Load(filepath.Join(dir, "quoted.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p, _ := s.Page(); p.W != 800 || p.H != 600 {
		t.Errorf("Page() = %+v", p)
	}
}

func TestResolveFont(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "fonts", "title.ttf")
	if err := os.MkdirAll(filepath.Dir(font), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(font, []byte("ttf"), 0644); err != nil {
		t.Fatal(err)
	}

	s := &Settings{Dir: dir}
	got, err := s.ResolveFont("fonts/title.ttf")
	if err != nil || got != font {
		t.Errorf("ResolveFont() = %q, %v", got, err)
	}

	if _, err := s.ResolveFont("fonts/missing.ttf"); err == nil {
		t.Error("expected error for missing font")
	}

	if got, err := s.ResolveFont(""); got != "" || err != nil {
		t.Errorf("empty font path should resolve to nothing, got %q %v", got, err)
	}
}
