package processing

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads a photo from disk
type FileSource struct {
	Path string
}

func (f *FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f *FileSource) Name() string {
	return filepath.Base(f.Path)
}

// MultipartFileSource reads a photo dropped on the web page
type MultipartFileSource struct {
	Header *multipart.FileHeader
}

func (m *MultipartFileSource) Open() (io.ReadCloser, error) {
	return m.Header.Open()
}

// Name strips any directory the browser sent along with the file name
func (m *MultipartFileSource) Name() string {
	return filepath.Base(filepath.Clean("/" + filepath.ToSlash(m.Header.Filename)))
}

// SaveTo copies src into dir and returns the new path. Dropped folders can
// hold the same name twice in different subfolders, later copies get a
// numeric suffix ("a.jpg", "a-2.jpg").
func SaveTo(src ImageSource, dir string) (string, error) {
	in, err := src.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	name := src.Name()
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, candidate)

		out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			os.Remove(path)
			return "", err
		}
		return path, out.Close()
	}
}
