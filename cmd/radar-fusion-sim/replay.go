package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayConfig    string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a fused track log file",
	Long:  "replay feeds fused track rows from a JSONL log back into GreptimeDB or STDOUT, keeping their original spacing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, err := config.Load(replayConfig, "")
		if err != nil {
			return err
		}
		log := logging.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

		writers, cleanup, err := newWriters(cfg, writerOptions{PrintOnly: replayPrintOnly, Colorize: isTerminal(os.Stdout)}, log)
		if err != nil {
			return err
		}
		defer cleanup()
		if writers.Tracks == nil {
			return fmt.Errorf("no track writer configured")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		n, err := sim.ReplayLogFile(logging.NewContext(ctx, log), replayInput, writers.Tracks, replaySpeed)
		log.Info("replay finished", "rows", n)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to fused track log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to GreptimeDB")
	replayCmd.Flags().StringVar(&replayConfig, "config", "", "Path to simulation configuration YAML for the GreptimeDB settings")
	replayCmd.MarkFlagRequired("input")
}
