package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikejump/internal/storage"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored session records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer storage.CloseIfSupported(store)

			runID, _ := cmd.Flags().GetString("run")
			records, err := store.ListSessionRecords(cmd.Context(), runID)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			w := cmd.OutOrStdout()
			if len(records) == 0 {
				_, err := fmt.Fprintln(w, "no sessions recorded")
				return err
			}
			for _, r := range records {
				fmt.Fprintf(w, "%s  run %s #%d  high score %s  ticks %s  roster %d  %s\n",
					r.ID, r.RunID, r.Iteration,
					humanize.Comma(int64(r.HighScore)), humanize.Comma(int64(r.Ticks)),
					r.RosterSize, humanize.Time(r.CreatedAt))
			}
			return nil
		},
	}
	cmd.Flags().String("run", "", "Only list sessions of this run")
	return cmd
}
