package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/tallyreview/internal/store"
	"github.com/spf13/cobra"
)

var changesCmd = &cobra.Command{
	Use:   "changes FILE_ID",
	Short: "List saved cell edits for a file from the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled() {
			return errors.New("DATABASE_URL is not set")
		}

		ctx := cmd.Context()
		pool, err := store.OpenPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		records, err := store.NewPostgresChangeLog(pool).ListChanges(ctx, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SAVED\tEDITED\tROW\tCOLUMN\tOLD\tNEW")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%q\t%q\n",
				r.SavedAt.Local().Format(time.DateTime),
				r.EditedAt.Local().Format(time.DateTime),
				r.RowID, r.ColumnKey, r.OldValue, r.NewValue,
			)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
}
