package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"radar-fusion-sim/internal/admin"
	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/metrics"
	"radar-fusion-sim/internal/observability"
	"radar-fusion-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simLogFile    string
	simTUI        bool
	simAppLog     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time radar fusion simulator",
	Long:  "simulate runs the sensor network and fusion engine, exporting fused tracks, node status, tick state and events.",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML (empty for defaults)")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "", "Path to a CUE schema overriding the embedded one")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export fused tracks as JSONL; nodes, events and state go to sibling files")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render the radar scope in the terminal")
	simulateCmd.Flags().StringVar(&simAppLog, "app-log", "", "Write application logs to this file (default stderr, discarded with --tui)")
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// logOutput picks where slog writes. The scope owns the terminal, so its
// logs go to a file or nowhere.
func logOutput(path string, tui bool) (io.Writer, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	if tui {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(simConfigPath, simSchemaPath)
	if err != nil {
		return err
	}
	if simTUI && !isTerminal(os.Stdout) {
		return fmt.Errorf("--tui requires a terminal")
	}

	out, closeLog, err := logOutput(simAppLog, simTUI)
	if err != nil {
		return err
	}
	defer closeLog()
	log := logging.NewLogger(out, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.NewContext(ctx, log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return err
		}
		gatherer = prometheus.DefaultGatherer
	}

	var scope *sim.ScopeUI
	var extra []sim.Writers
	if simTUI {
		scope = sim.NewScopeUI(cfg)
		defer scope.Close()
		extra = append(extra, scope.Writers())
	}

	writers, cleanup, err := newWriters(cfg, writerOptions{
		PrintOnly: simPrintOnly,
		LogFile:   simLogFile,
		Colorize:  isTerminal(os.Stdout),
		Quiet:     simTUI,
	}, log, extra...)
	if err != nil {
		return err
	}
	defer cleanup()

	simulator, err := sim.NewSimulator(cfg, writers, nil, nil)
	if err != nil {
		return err
	}
	if scope != nil {
		scope.SetSource(simulator.Snapshot)
	}

	if cfg.Admin.Address != "" {
		srv := admin.NewServer(simulator, gatherer)
		if scope != nil {
			scope.SetAdminStatus(true)
		}
		go func() {
			if err := srv.Start(ctx, cfg.Admin.Address); err != nil {
				log.Error("admin server failed", "err", err)
				if scope != nil {
					scope.SetAdminStatus(false)
				}
			}
		}()
	}

	simulator.Run(ctx)
	log.Info("radar simulation stopped")
	return nil
}
