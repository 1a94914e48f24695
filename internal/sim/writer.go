package sim

import "radar-fusion-sim/internal/telemetry"

// TrackWriter receives fused track rows.
type TrackWriter interface {
	WriteTrack(telemetry.FusedTrackRow) error
}

// Optional: track writers may support batch mode.
type batchTrackWriter interface {
	WriteTracks([]telemetry.FusedTrackRow) error
}

// NodeWriter receives node status rows.
type NodeWriter interface {
	WriteNode(telemetry.NodeStatusRow) error
}

type batchNodeWriter interface {
	WriteNodes([]telemetry.NodeStatusRow) error
}

// EventWriter receives simulator events.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// StateWriter receives per-tick state rows.
type StateWriter interface {
	WriteState(telemetry.TickStateRow) error
}

type batchStateWriter interface {
	WriteStates([]telemetry.TickStateRow) error
}

// Writers groups the sinks of one simulator. Nil fields are skipped.
type Writers struct {
	Tracks TrackWriter
	Nodes  NodeWriter
	Events EventWriter
	State  StateWriter
}

func writeTracks(w TrackWriter, rows []telemetry.FusedTrackRow) error {
	if w == nil || len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchTrackWriter); ok {
		return bw.WriteTracks(rows)
	}
	for _, r := range rows {
		if err := w.WriteTrack(r); err != nil {
			return err
		}
	}
	return nil
}

func writeNodes(w NodeWriter, rows []telemetry.NodeStatusRow) error {
	if w == nil || len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchNodeWriter); ok {
		return bw.WriteNodes(rows)
	}
	for _, r := range rows {
		if err := w.WriteNode(r); err != nil {
			return err
		}
	}
	return nil
}

func writeEvents(w EventWriter, rows []telemetry.EventRow) error {
	if w == nil || len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchEventWriter); ok {
		return bw.WriteEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteEvent(r); err != nil {
			return err
		}
	}
	return nil
}

func writeStates(w StateWriter, rows []telemetry.TickStateRow) error {
	if w == nil || len(rows) == 0 {
		return nil
	}
	if bw, ok := w.(batchStateWriter); ok {
		return bw.WriteStates(rows)
	}
	for _, r := range rows {
		if err := w.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}
