package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"spikejump/internal/render"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run one session and draw it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)
			cfg.Iterations = 1
			if err := cfg.Validate(); err != nil {
				return err
			}
			fps, _ := cmd.Flags().GetInt("fps")
			if fps <= 0 {
				return fmt.Errorf("fps must be > 0, got %d", fps)
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go quitOnKey(screen, cancel)

			// Logs would tear the screen; only errors reach stderr after Fini.
			p, cleanup, err := startPolis(ctx, cfg, newLogger(cfg, io.Discard))
			if err != nil {
				return err
			}
			defer cleanup()

			run := runConfig(cfg, "")
			run.Sink = render.NewTerminalSink(screen, render.WithFrameDelay(time.Second/time.Duration(fps)))
			result, err := p.RunSpikeJump(ctx, run)
			if err != nil && ctx.Err() == nil {
				return err
			}
			screen.Fini()
			if len(result.Sessions) == 0 {
				return nil
			}
			return printRunResult(cmd.OutOrStdout(), result)
		},
	}
	addSessionFlags(cmd)
	cmd.Flags().Int("fps", 30, "Frames drawn per second")
	return cmd
}

// quitOnKey cancels the session on Escape, q or Ctrl-C.
func quitOnKey(screen tcell.Screen, cancel context.CancelFunc) {
	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				cancel()
				return
			}
		}
	}
}
