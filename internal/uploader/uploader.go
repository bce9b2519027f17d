package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyPublished is returned when the key exists and Force is not set
var ErrAlreadyPublished = errors.New("album already published")

// Uploader is a remote store for finished albums
type Uploader interface {
	Upload(ctx context.Context, key string, content io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	// GetURL returns the public address of key
	GetURL(key string) string
}

// UploadOptions tune Publish
type UploadOptions struct {
	// Force replaces an album already published under the same key
	Force bool
	// Prefix is joined in front of the file name, e.g. "albums/2024"
	Prefix string
	// ContentType skips detection when set
	ContentType string
}

// Key returns the remote key of a local file
func (o UploadOptions) Key(file string) string {
	return path.Join(o.Prefix, filepath.Base(file))
}

// Publish uploads a finished album and returns its public URL
func Publish(ctx context.Context, u Uploader, file string, opts UploadOptions) (string, error) {
	key := opts.Key(file)

	if !opts.Force {
		exists, err := u.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			return u.GetURL(key), fmt.Errorf("%w: %s", ErrAlreadyPublished, key)
		}
	}

	contentType := opts.ContentType
	if contentType == "" {
		mtype, err := mimetype.DetectFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to detect content type: %w", err)
		}
		contentType = mtype.String()
	}

	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	if err := u.Upload(ctx, key, f, contentType); err != nil {
		return "", err
	}

	url := u.GetURL(key)
	log.Info().Str("key", key).Str("url", url).Msg("Album published")
	return url, nil
}
