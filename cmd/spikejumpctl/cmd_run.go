package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spikejump/internal/config"
	"spikejump/internal/genotype"
	"spikejump/internal/platform"
	"spikejump/internal/scapeid"
	"spikejump/internal/stats"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run spike-jump sessions with randomly constructed jumpers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			p, cleanup, err := startPolis(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			runID, _ := cmd.Flags().GetString("run-id")
			result, err := p.RunSpikeJump(cmd.Context(), runConfig(cfg, runID))
			if err != nil {
				return err
			}

			if dir, _ := cmd.Flags().GetString("artifacts-dir"); dir != "" {
				runDir, err := writeArtifacts(dir, cfg, result)
				if err != nil {
					return fmt.Errorf("write artifacts: %w", err)
				}
				logger.Info("artifacts written", "dir", runDir)
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printRunResult(cmd.OutOrStdout(), result)
		},
	}
	addSessionFlags(cmd)
	cmd.Flags().Int("iterations", 0, "Number of sessions to run")
	cmd.Flags().String("run-id", "", "Run id (defaults to a new UUID)")
	cmd.Flags().String("artifacts-dir", "", "Write run artifacts under this directory")
	return cmd
}

func writeArtifacts(baseDir string, cfg *config.Config, result platform.RunResult) (string, error) {
	runDir, err := stats.WriteRunArtifacts(baseDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:         result.RunID,
			Scape:         scapeid.SpikeJump,
			LaneWidth:     cfg.LaneWidth,
			LaneHeight:    cfg.LaneHeight,
			ObstacleCount: cfg.ObstacleCount,
			RosterSize:    cfg.RosterSize,
			MaxTicks:      cfg.MaxTicks,
			Iterations:    cfg.Iterations,
			Seed:          cfg.Seed,
			Morphology:    cfg.Morphology,
			HiddenNeurons: cfg.HiddenNeurons,
		},
		Sessions: result.Sessions,
		Summary:  stats.SummarizeHighScores(result.Sessions),
	})
	if err != nil {
		return "", err
	}
	err = stats.AppendRunIndex(baseDir, stats.RunIndexEntry{
		RunID:         result.RunID,
		Scape:         scapeid.SpikeJump,
		RosterSize:    cfg.RosterSize,
		Iterations:    cfg.Iterations,
		Seed:          cfg.Seed,
		BestHighScore: result.BestHighScore,
		CreatedAtUTC:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	return runDir, err
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("roster", 0, "Jumpers per session")
	cmd.Flags().Int("obstacles", 0, "Spikes per batch")
	cmd.Flags().Int("max-ticks", 0, "Tick cap per session (0 keeps the configured value)")
	cmd.Flags().Int64("seed", 0, "Base random seed")
	cmd.Flags().String("morphology", "", "Sensor profile: default or range")
	cmd.Flags().Int("hidden", -1, "Hidden neurons per policy")
}

// applyRunFlags overrides config values only for flags set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("roster") {
		cfg.RosterSize, _ = flags.GetInt("roster")
	}
	if flags.Changed("obstacles") {
		cfg.ObstacleCount, _ = flags.GetInt("obstacles")
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks, _ = flags.GetInt("max-ticks")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("morphology") {
		cfg.Morphology, _ = flags.GetString("morphology")
	}
	if flags.Changed("hidden") {
		cfg.HiddenNeurons, _ = flags.GetInt("hidden")
	}
	if flags.Lookup("iterations") != nil && flags.Changed("iterations") {
		cfg.Iterations, _ = flags.GetInt("iterations")
	}
}

func runConfig(cfg *config.Config, runID string) platform.RunConfig {
	construct := genotype.DefaultConstructConstraint()
	construct.Morphology = cfg.Morphology
	construct.HiddenNeurons = cfg.HiddenNeurons
	return platform.RunConfig{
		RunID:      runID,
		Session:    cfg.SpikeJump(),
		Iterations: cfg.Iterations,
		Construct:  construct,
	}
}

func printRunResult(w io.Writer, result platform.RunResult) error {
	fmt.Fprintf(w, "run %s\n", result.RunID)
	for _, s := range result.Sessions {
		truncated := ""
		if s.Truncated {
			truncated = " (truncated)"
		}
		fmt.Fprintf(w, "  #%d  high score %s  ticks %s  recycles %d%s\n",
			s.Iteration, humanize.Comma(int64(s.HighScore)), humanize.Comma(int64(s.Ticks)), s.Recycles, truncated)
	}
	_, err := fmt.Fprintf(w, "best high score %s (session %s, fitness %.2f)\n",
		humanize.Comma(int64(result.BestHighScore)), result.BestSessionID, result.BestFitness)
	return err
}
