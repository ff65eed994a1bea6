package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikejump/internal/stats"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in an artifacts directory, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("artifacts-dir")
			if dir == "" {
				return fmt.Errorf("--artifacts-dir is required")
			}
			index, err := stats.ListRunIndex(dir)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), index)
			}
			w := cmd.OutOrStdout()
			if len(index) == 0 {
				_, err := fmt.Fprintln(w, "no runs recorded")
				return err
			}
			for _, e := range index {
				when := e.CreatedAtUTC
				if t, err := time.Parse(time.RFC3339Nano, e.CreatedAtUTC); err == nil {
					when = humanize.Time(t)
				}
				fmt.Fprintf(w, "%s  %s  roster %d  sessions %d  best %s  %s\n",
					e.RunID, e.Scape, e.RosterSize, e.Iterations, humanize.Comma(int64(e.BestHighScore)), when)
			}
			return nil
		},
	}
	cmd.Flags().String("artifacts-dir", "", "Directory written by run --artifacts-dir")
	return cmd
}
