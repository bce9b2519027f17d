package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.fotopdf.dev/fotopdf/internal/album"
	"go.fotopdf.dev/fotopdf/internal/compress"
	"go.fotopdf.dev/fotopdf/internal/report"
	"go.fotopdf.dev/fotopdf/internal/uploader"
)

var (
	createCompressor string
	createForce      bool
)

var createCmd = &cobra.Command{
	Use:   "create <folder-or-file>",
	Short: "Create the PDF album of a photo folder",
	Long: `Create the PDF album of a photo folder. A file argument stands for the folder
that contains it. When the folder has no settings file a default settings.json
is written there first.

The album is optionally published when a bucket is given (see "fotopdf publish").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts := album.Options{
			Compressor: createCompressor,
			Force:      createForce,
			Creator:    "fotopdf " + version,
		}

		cfg, uploadOpts := uploadConfig()
		if cfg.Bucket != "" {
			ul, err := uploader.NewS3Uploader(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize uploader: %w", err)
			}
			opts.Uploader = ul
			opts.Upload = uploadOpts
		}

		res, err := album.Create(ctx, args[0], opts, report.NewLogReporter())
		if err != nil {
			return err
		}

		log.Info().
			Str("output", res.Output).
			Int("photos", res.Photos).
			Int("pages", res.Pages).
			Str("size", fmt.Sprintf("%.1fMB", res.MB())).
			Msg("Done")
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createCompressor, "compressor", "c", "",
		fmt.Sprintf("Override output.compressor (%s, %s, %s, %s)", compress.Auto, compress.Ghostscript, compress.PDFCPU, compress.None))
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "Convert photos again even if cached copies exist")
	addUploadFlags(createCmd)
	rootCmd.AddCommand(createCmd)
}
