package sim

import (
	"errors"
	"testing"

	"radar-fusion-sim/internal/telemetry"
)

// collectWriter records every row it receives, on every stream.
type collectWriter struct {
	tracks []telemetry.FusedTrackRow
	nodes  []telemetry.NodeStatusRow
	events []telemetry.EventRow
	states []telemetry.TickStateRow
}

func (c *collectWriter) WriteTrack(r telemetry.FusedTrackRow) error {
	c.tracks = append(c.tracks, r)
	return nil
}

func (c *collectWriter) WriteNode(r telemetry.NodeStatusRow) error {
	c.nodes = append(c.nodes, r)
	return nil
}

func (c *collectWriter) WriteEvent(r telemetry.EventRow) error {
	c.events = append(c.events, r)
	return nil
}

func (c *collectWriter) WriteState(r telemetry.TickStateRow) error {
	c.states = append(c.states, r)
	return nil
}

func (c *collectWriter) Writers() Writers {
	return Writers{Tracks: c, Nodes: c, Events: c, State: c}
}

// batchCollector only counts batch calls.
type batchCollector struct {
	collectWriter
	batches int
}

func (b *batchCollector) WriteTracks(rows []telemetry.FusedTrackRow) error {
	b.batches++
	b.tracks = append(b.tracks, rows...)
	return nil
}

type failingWriter struct{}

func (failingWriter) WriteEvent(telemetry.EventRow) error { return errors.New("sink down") }

func TestMultiWriterFanOut(t *testing.T) {
	a := &collectWriter{}
	b := &batchCollector{}
	mw := NewMultiWriter(a.Writers(), Writers{Tracks: b})

	rows := []telemetry.FusedTrackRow{{TrackID: "HST-01"}, {TrackID: "CIV-02"}}
	if err := mw.WriteTracks(rows); err != nil {
		t.Fatalf("WriteTracks: %v", err)
	}
	if len(a.tracks) != 2 || len(b.tracks) != 2 {
		t.Fatalf("tracks not fanned out: %d/%d", len(a.tracks), len(b.tracks))
	}
	if b.batches != 1 {
		t.Fatalf("batch writer used %d batch calls, want 1", b.batches)
	}

	if err := mw.WriteNode(telemetry.NodeStatusRow{NodeID: "LR-01"}); err != nil {
		t.Fatalf("WriteNode: %v", err)
	}
	if err := mw.WriteState(telemetry.TickStateRow{Tick: 1}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	if len(a.nodes) != 1 || len(a.states) != 1 || len(b.nodes) != 0 {
		t.Fatalf("unexpected routing: a=%+v b=%+v", a, b)
	}
}

func TestMultiWriterContinuesAfterError(t *testing.T) {
	good := &collectWriter{}
	mw := NewMultiWriter(Writers{Events: failingWriter{}}, Writers{Events: good})
	err := mw.WriteEvent(telemetry.EventRow{EventType: telemetry.EventContactSpawned})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(good.events) != 1 {
		t.Fatalf("second writer skipped after failure")
	}
}
