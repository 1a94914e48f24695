package main

import (
	"log/slog"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/sim"
)

type writerOptions struct {
	// PrintOnly forces STDOUT output even when GreptimeDB is configured.
	PrintOnly bool
	// LogFile enables the JSONL export next to the primary sink.
	LogFile  string
	Colorize bool
	// Quiet drops the STDOUT sink, e.g. while the scope owns the terminal.
	Quiet bool
}

// newWriters sets up the row sinks from flags and config. It returns the
// combined writers and a cleanup function closing any files.
func newWriters(cfg *config.SimulationConfig, opts writerOptions, log *slog.Logger, extra ...sim.Writers) (sim.Writers, func(), error) {
	cleanup := func() {}

	base, err := baseWriters(cfg, opts, log)
	if err != nil {
		return sim.Writers{}, nil, err
	}
	var parts []sim.Writers
	if base != (sim.Writers{}) {
		parts = append(parts, base)
	}
	parts = append(parts, extra...)

	if opts.LogFile != "" {
		fw, err := sim.NewFileWriter(sim.PathsFor(opts.LogFile))
		if err != nil {
			return sim.Writers{}, nil, err
		}
		parts = append(parts, fw.Writers())
		cleanup = func() {
			if err := fw.Close(); err != nil {
				log.Error("close log files", "err", err)
			}
		}
	}

	switch len(parts) {
	case 0:
		return sim.Writers{}, cleanup, nil
	case 1:
		return parts[0], cleanup, nil
	}
	return sim.NewMultiWriter(parts...).Writers(), cleanup, nil
}

// baseWriters chooses GreptimeDB when an endpoint is configured, STDOUT otherwise.
func baseWriters(cfg *config.SimulationConfig, opts writerOptions, log *slog.Logger) (sim.Writers, error) {
	if opts.PrintOnly || cfg.Greptime.Endpoint == "" {
		if opts.Quiet {
			return sim.Writers{}, nil
		}
		log.Info("print-only mode: rows will be printed to STDOUT")
		return sim.NewStdoutWriter(cfg, opts.Colorize).Writers(), nil
	}
	w, err := sim.NewGreptimeDBWriter(cfg.Greptime.Endpoint, cfg.Greptime.Database, log)
	if err != nil {
		return sim.Writers{}, err
	}
	log.Info("writing to GreptimeDB", "endpoint", cfg.Greptime.Endpoint, "database", cfg.Greptime.Database)
	return w.Writers(), nil
}
