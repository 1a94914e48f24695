// Writer implementation printing human-friendly, colorized rows to STDOUT
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorGray    = "\x1b[90m"
)

// StdoutWriter prints tracks and events using ANSI colors. Without colorize
// it falls back to JSON lines. Node rows are only printed as JSON; they would
// flood a terminal every tick.
type StdoutWriter struct {
	cfg      *config.SimulationConfig
	out      io.Writer
	colorize bool
	json     *JSONStdoutWriter
	once     sync.Once
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter(cfg *config.SimulationConfig, colorize bool) *StdoutWriter {
	return &StdoutWriter{cfg: cfg, out: os.Stdout, colorize: colorize}
}

// Writers exposes the streams printed by w.
func (w *StdoutWriter) Writers() Writers {
	ws := Writers{Tracks: w, Events: w, State: w}
	if !w.colorize {
		ws.Nodes = w.jsonWriter()
	}
	return ws
}

func (w *StdoutWriter) jsonWriter() *JSONStdoutWriter {
	if w.json == nil {
		w.json = &JSONStdoutWriter{out: w.out}
	}
	return w.json
}

func iffColor(iff string) string {
	switch iff {
	case "hostile":
		return colorRed
	case "friendly":
		return colorGreen
	case "civilian":
		return colorCyan
	}
	return colorYellow
}

func (w *StdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Site:\t%s\n", w.cfg.SiteID)
	fmt.Fprintf(tw, "Scenario:\t%s\n", w.cfg.Scenario)
	fmt.Fprintf(tw, "Nodes (LR/MR/SR):\t%d/%d/%d\n", w.cfg.Network.LongRange, w.cfg.Network.MediumRange, w.cfg.Network.ShortRange)
	fmt.Fprintf(tw, "Node Failure Probability:\t%.2f\n", w.cfg.Network.FailureProbability)
	fmt.Fprintf(tw, "Correlation Threshold:\t%.2f\n", w.cfg.Fusion.CorrelationThreshold)
	fmt.Fprintf(tw, "Enrichment:\t%t\n", w.cfg.Fusion.Enrichment)
	fmt.Fprintf(tw, "Detection Interval:\t%s\n", w.cfg.Intervals.Detection)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteTrack outputs a fused track in colorized format.
func (w *StdoutWriter) WriteTrack(row telemetry.FusedTrackRow) error {
	if !w.colorize {
		return w.jsonWriter().WriteTrack(row)
	}
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%strack=%s%s ", iffColor(row.IFF), row.TrackID, colorReset)
	fmt.Fprintf(w.out, "%sclass=%s%s ", colorWhite, row.Classification, colorReset)
	fmt.Fprintf(w.out, "%sbrg=%.1f%s ", colorCyan, row.Bearing, colorReset)
	fmt.Fprintf(w.out, "%sdist=%.1fkm%s ", colorYellow, row.Distance, colorReset)
	fmt.Fprintf(w.out, "%salt=%.0fm%s ", colorMagenta, row.Altitude, colorReset)
	fmt.Fprintf(w.out, "%sspd=%.0f%s ", colorYellow, row.Speed, colorReset)
	fmt.Fprintf(w.out, "%ssrc=%d%s ", colorBlue, row.NumSources, colorReset)
	fmt.Fprintf(w.out, "%sq=%.2f%s", colorGreen, row.FusionQuality, colorReset)
	if row.Recommendation != "" {
		fmt.Fprintf(w.out, " %s%s%s", colorMagenta, row.Recommendation, colorReset)
	}
	if row.Anomalous {
		fmt.Fprintf(w.out, " %s%s%s", colorRed, row.AnomalyType, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvent outputs an event in colorized format.
func (w *StdoutWriter) WriteEvent(row telemetry.EventRow) error {
	if !w.colorize {
		return w.jsonWriter().WriteEvent(row)
	}
	w.once.Do(w.printOverview)

	col := colorBlue
	subject := row.ContactID
	switch row.EventType {
	case telemetry.EventNodeTransition:
		subject = fmt.Sprintf("%s %s->%s", row.NodeID, row.From, row.To)
		if row.To == "offline" {
			col = colorRed
		} else if row.To == "online" {
			col = colorGreen
		} else {
			col = colorYellow
		}
	case telemetry.EventContactNeutralized:
		col = colorGreen
	case telemetry.EventContactSpawned:
		col = colorMagenta
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sEVENT %s%s %s", colorGray, row.Timestamp.Format(time.RFC3339), colorReset, col, row.EventType, colorReset, subject)
	if row.Detail != "" {
		fmt.Fprintf(w.out, " %s(%s)%s", colorGray, row.Detail, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteState outputs a one-line tick summary.
func (w *StdoutWriter) WriteState(row telemetry.TickStateRow) error {
	if !w.colorize {
		return w.jsonWriter().WriteState(row)
	}
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%sTICK %d%s %scontacts=%d%s %shostile=%d%s %sdet=%d%s %sfused=%d%s %sq=%.2f%s %snodes=%d(%.0f%%)%s\n",
		colorBlue, row.Tick, colorReset,
		colorWhite, row.Contacts, colorReset,
		colorRed, row.Hostile, colorReset,
		colorCyan, row.Detections, colorReset,
		colorGreen, row.FusedContacts, colorReset,
		colorYellow, row.AvgFusionQuality, colorReset,
		colorMagenta, row.OnlineNodes, row.CoveragePct, colorReset)
	return nil
}
