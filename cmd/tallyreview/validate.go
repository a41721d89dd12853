package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/JonMunkholm/tallyreview/internal/core"
	"github.com/JonMunkholm/tallyreview/internal/extract"
	"github.com/spf13/cobra"
)

// errInvalid makes the process exit non-zero once violations are printed.
var errInvalid = errors.New("validation failed")

var (
	validateRules  string
	validatePreset string
	validateJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Extract a file and report rule violations",
	Long: `Extracts the table from FILE and validates it against a rule set.
Rules come from --rules (a rules JSON export), --preset, or the
configured default preset, in that order.

Exits with status 1 when any violation is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := extractFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rules, err := selectRules(validateRules, validatePreset)
		if err != nil {
			return err
		}

		violations := core.Validate(table, rules)
		out := cmd.OutOrStdout()
		if validateJSON {
			err = writeViolationsJSON(out, args[0], table, violations)
		} else {
			err = writeViolations(out, args[0], table, violations)
		}
		if err != nil {
			return err
		}

		if len(violations) > 0 {
			cmd.SilenceErrors = true
			return errInvalid
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateRules, "rules", "", "rules JSON file")
	validateCmd.Flags().StringVar(&validatePreset, "preset", "", "rule preset name (default: SESSION_DEFAULT_PRESET)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print violations as JSON")
	rootCmd.AddCommand(validateCmd)
}

// extractFile reads path and extracts its table with the configured tools.
func extractFile(ctx context.Context, path string) (*core.TableData, error) {
	if _, err := core.CheckUploadName(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Upload.Timeout)
	defer cancel()

	ext, err := extract.New(cfg.Extract).Extract(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return ext.Table(), nil
}

func selectRules(rulesFile, preset string) (core.Rules, error) {
	if rulesFile != "" {
		data, err := os.ReadFile(rulesFile)
		if err != nil {
			return nil, fmt.Errorf("read rules: %w", err)
		}
		return core.ImportRules(data)
	}
	if preset == "" {
		preset = cfg.Session.DefaultPreset
	}
	return core.PresetRules(preset)
}

func writeViolations(w io.Writer, name string, table *core.TableData, violations []core.ValidationError) error {
	if len(violations) == 0 {
		_, err := fmt.Fprintf(w, "%s: %d rows, no violations\n", name, len(table.Rows))
		return err
	}

	fmt.Fprintf(w, "%s: %d rows, %d violations\n\n", name, len(table.Rows), len(violations))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCOLUMN\tTYPE\tMESSAGE")
	for _, v := range violations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.RowID, v.ColumnKey, v.Type, v.Message)
	}
	return tw.Flush()
}

func writeViolationsJSON(w io.Writer, name string, table *core.TableData, violations []core.ValidationError) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		File   string                 `json:"file"`
		Rows   int                    `json:"rows"`
		Valid  bool                   `json:"valid"`
		Errors []core.ValidationError `json:"errors"`
	}{name, len(table.Rows), len(violations) == 0, violations})
}
