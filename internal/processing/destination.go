package processing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CacheDirName is the hidden folder next to the photos holding converted copies
const CacheDirName = ".fotopdf-cache"

// Destination stores converted JPEG variants as {Dir}/{hashID}-{variant}.jpg
type Destination struct {
	Dir string
}

// NewDestination returns the cache destination for a photo folder
func NewDestination(photoDir string) *Destination {
	return &Destination{Dir: filepath.Join(photoDir, CacheDirName)}
}

func (d *Destination) path(hashID, variant string) string {
	return filepath.Join(d.Dir, fmt.Sprintf("%s-%s.jpg", hashID, variant))
}

// CreateVariant creates the cache file for a variant
func (d *Destination) CreateVariant(hashID, variant string) (io.WriteCloser, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return os.Create(d.path(hashID, variant))
}

// VariantExists checks if a variant file exists
func (d *Destination) VariantExists(hashID, variant string) bool {
	_, err := os.Stat(d.path(hashID, variant))
	return err == nil
}

// ReadVariant returns the bytes of a cached variant
func (d *Destination) ReadVariant(hashID, variant string) ([]byte, error) {
	return os.ReadFile(d.path(hashID, variant))
}
