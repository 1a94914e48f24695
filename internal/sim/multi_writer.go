package sim

import (
	"errors"

	"radar-fusion-sim/internal/telemetry"
)

// MultiWriter fans rows out to several writers per stream. Every writer sees
// every row; the errors are joined.
type MultiWriter struct {
	tracks []TrackWriter
	nodes  []NodeWriter
	events []EventWriter
	states []StateWriter
}

// NewMultiWriter builds a MultiWriter over the non-nil members of ws.
func NewMultiWriter(ws ...Writers) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w.Tracks != nil {
			mw.tracks = append(mw.tracks, w.Tracks)
		}
		if w.Nodes != nil {
			mw.nodes = append(mw.nodes, w.Nodes)
		}
		if w.Events != nil {
			mw.events = append(mw.events, w.Events)
		}
		if w.State != nil {
			mw.states = append(mw.states, w.State)
		}
	}
	return mw
}

// Writers exposes the MultiWriter on every stream.
func (mw *MultiWriter) Writers() Writers {
	return Writers{Tracks: mw, Nodes: mw, Events: mw, State: mw}
}

// WriteTrack sends a track row to all track writers.
func (mw *MultiWriter) WriteTrack(row telemetry.FusedTrackRow) error {
	return mw.WriteTracks([]telemetry.FusedTrackRow{row})
}

// WriteTracks sends rows to all track writers, using batch mode if supported.
func (mw *MultiWriter) WriteTracks(rows []telemetry.FusedTrackRow) error {
	var errs []error
	for _, w := range mw.tracks {
		errs = append(errs, writeTracks(w, rows))
	}
	return errors.Join(errs...)
}

// WriteNode sends a node row to all node writers.
func (mw *MultiWriter) WriteNode(row telemetry.NodeStatusRow) error {
	return mw.WriteNodes([]telemetry.NodeStatusRow{row})
}

// WriteNodes sends rows to all node writers, using batch mode if supported.
func (mw *MultiWriter) WriteNodes(rows []telemetry.NodeStatusRow) error {
	var errs []error
	for _, w := range mw.nodes {
		errs = append(errs, writeNodes(w, rows))
	}
	return errors.Join(errs...)
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	return mw.WriteEvents([]telemetry.EventRow{row})
}

// WriteEvents sends events to all event writers, using batch mode if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.events {
		errs = append(errs, writeEvents(w, rows))
	}
	return errors.Join(errs...)
}

// WriteState sends a state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.TickStateRow) error {
	return mw.WriteStates([]telemetry.TickStateRow{row})
}

// WriteStates sends rows to all state writers, using batch mode if supported.
func (mw *MultiWriter) WriteStates(rows []telemetry.TickStateRow) error {
	var errs []error
	for _, w := range mw.states {
		errs = append(errs, writeStates(w, rows))
	}
	return errors.Join(errs...)
}
