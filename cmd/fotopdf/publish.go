package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.fotopdf.dev/fotopdf/internal/uploader"
)

// S3 flags shared by create and publish
var (
	uploadBucket   string
	uploadRegion   string
	uploadEndpoint string
	uploadBaseURL  string
	uploadPrefix   string
	uploadForce    bool
)

func addUploadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&uploadBucket, "bucket", "b", "", "Bucket to publish to (env FOTOPDF_S3_BUCKET)")
	cmd.Flags().StringVarP(&uploadRegion, "region", "r", "", "Bucket region, \"auto\" for R2 (env FOTOPDF_S3_REGION)")
	cmd.Flags().StringVar(&uploadEndpoint, "endpoint", "", "S3-compatible endpoint URL (env FOTOPDF_S3_ENDPOINT)")
	cmd.Flags().StringVar(&uploadBaseURL, "base-url", "", "Public base URL of the bucket (env FOTOPDF_S3_BASE_URL)")
	cmd.Flags().StringVar(&uploadPrefix, "prefix", "", "Key prefix, e.g. albums/ (env FOTOPDF_S3_PREFIX)")
	cmd.Flags().BoolVar(&uploadForce, "overwrite", false, "Overwrite an album already published under the same key")
}

// uploadConfig merges the flags with their environment defaults
func uploadConfig() (uploader.S3Config, uploader.UploadOptions) {
	cfg := uploader.S3Config{
		Bucket:   envOr(uploadBucket, "FOTOPDF_S3_BUCKET"),
		Region:   envOr(uploadRegion, "FOTOPDF_S3_REGION", "AWS_REGION"),
		Endpoint: envOr(uploadEndpoint, "FOTOPDF_S3_ENDPOINT"),
		BaseURL:  envOr(uploadBaseURL, "FOTOPDF_S3_BASE_URL"),
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}
	opts := uploader.UploadOptions{
		Force:  uploadForce,
		Prefix: envOr(uploadPrefix, "FOTOPDF_S3_PREFIX"),
	}
	return cfg, opts
}

var publishCmd = &cobra.Command{
	Use:   "publish <pdf>",
	Short: "Upload a created album to S3-compatible storage",
	Long: `Upload a PDF album to S3-compatible storage (AWS S3, Cloudflare R2, MinIO).

Credentials are read from environment variables:
  - FOTOPDF_S3_ACCESS_KEY_ID / AWS_ACCESS_KEY_ID
  - FOTOPDF_S3_SECRET_ACCESS_KEY / AWS_SECRET_ACCESS_KEY

Example usage:
  fotopdf publish "Iceland, Jane Doe.pdf" -b albums -r auto --endpoint https://account-id.r2.cloudflarestorage.com
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, opts := uploadConfig()
		ul, err := uploader.NewS3Uploader(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize uploader: %w", err)
		}

		url, err := uploader.Publish(ctx, ul, args[0], opts)
		if errors.Is(err, uploader.ErrAlreadyPublished) {
			log.Warn().Str("url", url).Msg("Album already published, use --overwrite to replace it")
			return err
		}
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

func init() {
	addUploadFlags(publishCmd)
	rootCmd.AddCommand(publishCmd)
}
