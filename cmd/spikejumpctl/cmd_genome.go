package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spikejump/internal/model"
	"spikejump/internal/storage"
)

func newGenomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genome <id>",
		Short: "Show a stored policy genome",
		Args:  cobra.ExactArgs(1),
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

			genome, ok, err := store.GetGenome(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("genome not found: %s", args[0])
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), genome)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), describeGenome(genome))
			return err
		},
	}
}

func describeGenome(g model.Genome) string {
	enabled := 0
	for _, s := range g.Synapses {
		if s.Enabled {
			enabled++
		}
	}
	return fmt.Sprintf("%s: %d neurons, %d synapses (%d enabled), sensors [%s], actuators [%s]",
		g.ID, len(g.Neurons), len(g.Synapses), enabled,
		strings.Join(g.SensorIDs, " "), strings.Join(g.ActuatorIDs, " "))
}
