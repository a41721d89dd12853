package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/tallyreview/internal/config"
	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tallyreview",
	Short: "Extract, review and correct tally sheets",
	Long: `Extracts tables from scanned or exported tally sheets, validates them
against column rules and writes corrected XLSX, CSV and Tally XML files.

Run "tallyreview serve" for the review UI and API, or use validate and
convert directly on a file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Overload lets a local .env win over the shell environment.
		envLoaded := godotenv.Overload() == nil

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		slog.Debug("configuration loaded", "env_file", envLoaded)

		if cfg.Rules.PresetsFile != "" {
			n, err := core.LoadPresetFile(cfg.Rules.PresetsFile)
			if err != nil {
				return fmt.Errorf("load presets: %w", err)
			}
			slog.Info("presets loaded", "file", cfg.Rules.PresetsFile, "count", n)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
