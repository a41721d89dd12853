package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/export"
	"github.com/spf13/cobra"
)

var (
	convertOut     string
	convertFormats string
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Extract a file and write XLSX, CSV and Tally XML",
	Long: `Extracts the table from FILE and writes one output per format to
--out, named after the input file.

Examples:
  tallyreview convert daybook.pdf --out exports
  tallyreview convert statement.xlsx --formats csv,xml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formats, err := core.ParseExportFormats(convertFormats)
		if err != nil {
			return err
		}
		table, err := extractFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(table.Rows) == 0 {
			return core.ErrNoTables
		}

		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		files, err := export.New().Export(cmd.Context(), convertOut, base, table, formats)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, f := range formats {
			fmt.Fprintf(out, "%-4s %s\n", f, files[f])
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", ".", "output directory")
	convertCmd.Flags().StringVar(&convertFormats, "formats", "", "comma-separated formats: xlsx,csv,xml (default: all)")
	rootCmd.AddCommand(convertCmd)
}
