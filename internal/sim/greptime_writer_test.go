package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"radar-fusion-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
	calls int
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterTracks(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.FusedTrackRow{
		{SiteID: "s1", TrackID: "HST-01", Distance: 42.5, NumSources: 3, SourceNodes: "LR-01,MR-05,SR-17", Anomalous: true, Timestamp: ts},
		{SiteID: "s1", TrackID: "CIV-02", Timestamp: ts},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, trackTable: "fused_tracks"}
	if err := w.WriteTracks(rows); err != nil {
		t.Fatalf("WriteTracks: %v", err)
	}
	if m.calls != 1 || m.table == nil {
		t.Fatalf("expected one batched write, got %d", m.calls)
	}

	schema := m.table.GetRows().Schema
	if len(schema) != len(trackColumns)+1 {
		t.Fatalf("schema length = %d, want %d", len(schema), len(trackColumns)+1)
	}
	if schema[1].ColumnName != "track_id" || schema[1].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("track_id column = %+v", schema[1])
	}
	if schema[14].Datatype != gpb.ColumnDataType_INT64 {
		t.Fatalf("num_sources type = %v", schema[14].Datatype)
	}
	if last := schema[len(schema)-1]; last.SemanticType != gpb.SemanticType_TIMESTAMP {
		t.Fatalf("last column should be the time index, got %+v", last)
	}

	got := m.table.GetRows().Rows
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if v := got[0].Values[15].GetStringValue(); v != "LR-01,MR-05,SR-17" {
		t.Fatalf("source_nodes = %q", v)
	}
	if v := got[0].Values[7].GetF64Value(); v != 42.5 {
		t.Fatalf("distance = %v", v)
	}
	if !got[0].Values[19].GetBoolValue() {
		t.Fatalf("anomalous flag lost")
	}
}

func TestGreptimeWriterEventsAndState(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "sim_events", stateTable: "tick_state"}

	ev := telemetry.EventRow{SiteID: "s1", EventType: telemetry.EventNodeTransition, NodeID: "MR-04", From: "online", To: "offline", Timestamp: time.Unix(1, 0)}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	vals := m.table.GetRows().Rows[0].Values
	if vals[1].GetStringValue() != telemetry.EventNodeTransition || vals[6].GetStringValue() != "offline" {
		t.Fatalf("unexpected event values: %v", vals)
	}

	if err := w.WriteState(telemetry.TickStateRow{SiteID: "s1", Tick: 9, FusedContacts: 4, Timestamp: time.Unix(2, 0)}); err != nil {
		t.Fatalf("WriteState: %v", err)
	}
	vals = m.table.GetRows().Rows[0].Values
	if vals[1].GetI64Value() != 9 || vals[6].GetI64Value() != 4 {
		t.Fatalf("unexpected state values: %v", vals)
	}
}

func TestGreptimeWriterNodesAndErrors(t *testing.T) {
	m := &mockGreptimeClient{err: errors.New("unavailable")}
	w := &GreptimeDBWriter{client: m, nodeTable: "node_status"}
	if err := w.WriteNode(telemetry.NodeStatusRow{SiteID: "s1", NodeID: "LR-01", IsMaster: true}); err == nil {
		t.Fatalf("expected client error to propagate")
	}
	if err := w.WriteNodes(nil); err != nil || m.calls != 1 {
		t.Fatalf("empty batch should not hit the client: err=%v calls=%d", err, m.calls)
	}
}

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{"greptime:4001", "greptime", 4001, false},
		{"localhost", "localhost", defaultGreptimePort, false},
		{"db:abc", "", 0, true},
		{"", "", 0, true},
	}
	for _, tc := range cases {
		host, port, err := splitEndpoint(tc.in)
		if (err != nil) != tc.err {
			t.Fatalf("%q: err = %v", tc.in, err)
		}
		if !tc.err && (host != tc.host || port != tc.port) {
			t.Fatalf("%q: got %s:%d", tc.in, host, port)
		}
	}
}
