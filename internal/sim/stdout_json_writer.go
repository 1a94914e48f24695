package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"radar-fusion-sim/internal/telemetry"
)

// JSONStdoutWriter prints every row as one JSON line.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Writers exposes the writer on every stream.
func (w *JSONStdoutWriter) Writers() Writers {
	return Writers{Tracks: w, Nodes: w, Events: w, State: w}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteTrack outputs a fused track row.
func (w *JSONStdoutWriter) WriteTrack(row telemetry.FusedTrackRow) error { return w.emit(row) }

// WriteNode outputs a node status row.
func (w *JSONStdoutWriter) WriteNode(row telemetry.NodeStatusRow) error { return w.emit(row) }

// WriteEvent outputs an event.
func (w *JSONStdoutWriter) WriteEvent(row telemetry.EventRow) error { return w.emit(row) }

// WriteState outputs a tick state row.
func (w *JSONStdoutWriter) WriteState(row telemetry.TickStateRow) error { return w.emit(row) }
