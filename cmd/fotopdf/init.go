package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"go.fotopdf.dev/fotopdf/internal/settings"
)

var initYAML bool

var initCmd = &cobra.Command{
	Use:   "init [folder]",
	Short: "Write the default settings into a photo folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("%s is not a folder", dir)
		}
		if existing := settings.Find(dir); existing != "" {
			return fmt.Errorf("settings already exist: %s", existing)
		}

		write := settings.WriteDefault
		if initYAML {
			write = settings.WriteDefaultYAML
		}
		path, err := write(dir)
		if err != nil {
			return err
		}
		log.Info().Str("settings", path).Msg("Default settings written, customize them before creating the album")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initYAML, "yaml", false, "Write settings.yaml instead of settings.json")
	rootCmd.AddCommand(initCmd)
}
