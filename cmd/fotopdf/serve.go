package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.fotopdf.dev/fotopdf/assets"
	"go.fotopdf.dev/fotopdf/internal/album"
	"go.fotopdf.dev/fotopdf/internal/dropzone"
)

var (
	serveAddr       string
	serveWorkDir    string
	serveMaxUpload  int64
	serveCompressor string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the drop zone web page",
	Long: `Start a local web page where photo folders are dropped to be turned into albums.
Uploaded folders are stored under the work directory, local folders can be
given by path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr := listenAddr()
		localPaths := dropzone.IsLoopback(addr)
		if !localPaths {
			log.Warn().Str("address", addr).Msg("Listening beyond localhost, creating albums from local folders is disabled")
		}
		maxUpload := serveMaxUpload
		if v := envOr("", "FOTOPDF_MAX_UPLOAD_MB"); v != "" && maxUpload == 0 {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid FOTOPDF_MAX_UPLOAD_MB %q: %w", v, err)
			}
			maxUpload = n
		}

		log.Info().Msg("Starting drop zone")
		srv, err := dropzone.NewServer(assets.TemplatesFS, assets.StaticFS, dropzone.Config{
			WorkDir:     envOr(serveWorkDir, "FOTOPDF_WORKDIR"),
			MaxUploadMB: maxUpload,
			Album: album.Options{
				Compressor: serveCompressor,
				Creator:    "fotopdf " + version,
			},
			LocalPaths: localPaths,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		log.Info().Str("address", "http://"+addr).Msg("Open the drop zone in a browser")
		return srv.Serve(ctx, addr)
	},
}

// listenAddr returns the --addr flag, FOTOPDF_ADDR or the localhost default
func listenAddr() string {
	if addr := envOr(serveAddr, "FOTOPDF_ADDR"); addr != "" {
		return addr
	}
	return dropzone.DefaultAddr
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Address to listen on (env FOTOPDF_ADDR, default "+dropzone.DefaultAddr+")")
	serveCmd.Flags().StringVarP(&serveWorkDir, "workdir", "w", "", "Folder receiving uploads (env FOTOPDF_WORKDIR, default a temp folder)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload-mb", 0, "Largest accepted upload in MB (env FOTOPDF_MAX_UPLOAD_MB, default 512)")
	serveCmd.Flags().StringVarP(&serveCompressor, "compressor", "c", "", "Override output.compressor for every album")
	rootCmd.AddCommand(serveCmd)
}
