package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.fotopdf.dev/fotopdf/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fotopdf",
	Short: "Photo folder to PDF album",
	Long: `Turn a folder of photos into a landscape PDF album: a cover, a description
page, one page per photo with its EXIF caption, a contact sheet and a credits
page. Page layout is read from settings.json (or settings.yaml) in the folder.`,
	SilenceUsage: true,
}

var (
	envFile string
	debug   bool
	logFile string

	logCloser io.Closer
)

func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to .env file to load before running commands")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file, rotated")

	// Load .env file if provided and set up logging before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file '%s': %w", envFile, err)
			}
		}

		if logFile == "" {
			logFile = os.Getenv("FOTOPDF_LOG_FILE")
		}
		closer, err := logger.Setup(logger.Options{Debug: debug, File: logFile, MaxBackups: 3, MaxAgeDays: 28})
		if err != nil {
			return err
		}
		logCloser = closer
		log.Debug().Str("command", cmd.Name()).Msg("Logging ready")
		return nil
	}
}

// envOr returns v, or the first non empty environment variable of keys
func envOr(v string, keys ...string) string {
	if v != "" {
		return v
	}
	for _, k := range keys {
		if e := os.Getenv(k); e != "" {
			return e
		}
	}
	return ""
}
