package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// albumCacheControl lets browsers and CDNs keep a published album for a day
const albumCacheControl = "public, max-age=86400"

// S3Uploader publishes albums to S3-compatible storage (AWS S3, Cloudflare R2, MinIO)
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// S3Config describes the bucket albums are published to
type S3Config struct {
	// Endpoint of an S3-compatible service, empty for AWS
	Endpoint string
	// Region of the bucket, "auto" for R2
	Region string
	Bucket string

	// Credentials, read from FOTOPDF_S3_* or AWS_* variables when empty
	AccessKeyID     string
	SecretAccessKey string

	// BaseURL is the public address of the bucket, e.g. https://albums.example.com
	BaseURL string
}

// credentials fills missing keys from the environment
func (c S3Config) credentials() (string, string, error) {
	id := c.AccessKeyID
	if id == "" {
		id = firstEnv("FOTOPDF_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	}
	secret := c.SecretAccessKey
	if secret == "" {
		secret = firstEnv("FOTOPDF_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	}
	if id == "" || secret == "" {
		return "", "", errors.New("missing credentials: set FOTOPDF_S3_ACCESS_KEY_ID and FOTOPDF_S3_SECRET_ACCESS_KEY (or the AWS_ equivalents)")
	}
	return id, secret, nil
}

// publicBase returns BaseURL, or the address the service serves the bucket on
func (c S3Config) publicBase() string {
	switch {
	case c.BaseURL != "":
		return strings.TrimRight(c.BaseURL, "/")
	case c.Endpoint != "":
		return strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
	}
}

// NewS3Uploader creates the S3 client for cfg
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("missing bucket name")
	}
	id, secret, err := cfg.credentials()
	if err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // R2 and MinIO
		}
	})

	u := &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: cfg.publicBase()}
	log.Debug().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("endpoint", cfg.Endpoint).
		Str("baseURL", u.baseURL).
		Msg("S3 uploader ready")
	return u, nil
}

// Upload stores an album under key. Browsers open it inline under its own
// file name.
func (u *S3Uploader) Upload(ctx context.Context, key string, content io.Reader, contentType string) error {
	disposition := mime.FormatMediaType("inline", map[string]string{"filename": path.Base(key)})

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(u.bucket),
		Key:                aws.String(key),
		Body:               content,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(disposition),
		CacheControl:       aws.String(albumCacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	log.Debug().Str("key", key).Str("contentType", contentType).Msg("Album uploaded")
	return nil
}

// Exists reports whether key is already in the bucket
func (u *S3Uploader) Exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NotFound
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up %s: %w", key, err)
	}
}

// GetURL returns the public address of key. Album names contain spaces and
// commas, so every segment is escaped.
func (u *S3Uploader) GetURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return u.baseURL + "/" + strings.Join(segments, "/")
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
