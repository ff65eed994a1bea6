package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikejump/internal/model"
	"spikejump/internal/scapeid"
	"spikejump/internal/storage"
)

func newBestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "best [scape]",
		Short: "Show the best recorded high score",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := scapeid.SpikeJump
			if len(args) == 1 {
				name = scapeid.Normalize(args[0])
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer storage.CloseIfSupported(store)

			summary, ok, err := store.GetScapeSummary(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no summary recorded for scape %s", name)
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: best high score %s in session %s (fitness %.2f)\n",
				summary.Name, humanize.Comma(int64(summary.BestHighScore)), summary.BestSessionID, summary.BestFitness)

			champion, ok, err := championGenome(cmd.Context(), store, summary.BestSessionID)
			if err != nil || !ok {
				return err
			}
			_, err = fmt.Fprintf(w, "champion %s\n", describeGenome(champion))
			return err
		},
	}
}

// championGenome loads the genome of the fittest agent in a session.
func championGenome(ctx context.Context, store storage.Store, sessionID string) (model.Genome, bool, error) {
	if sessionID == "" {
		return model.Genome{}, false, nil
	}
	record, ok, err := store.GetSessionRecord(ctx, sessionID)
	if err != nil || !ok || len(record.Agents) == 0 {
		return model.Genome{}, false, err
	}
	best := record.Agents[0]
	for _, a := range record.Agents[1:] {
		if a.Fitness > best.Fitness {
			best = a
		}
	}
	return store.GetGenome(ctx, best.GenomeID)
}
