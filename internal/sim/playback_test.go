package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"radar-fusion-sim/internal/telemetry"
)

func encodeTracks(t *testing.T, rows []telemetry.FusedTrackRow) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return &buf
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.FusedTrackRow{
		{SiteID: "s1", TrackID: "HST-01", Timestamp: time.Unix(0, 0)},
		{SiteID: "s1", TrackID: "CIV-02", Timestamp: time.Unix(0, 0)},
		{SiteID: "s1", TrackID: "HST-01", Timestamp: time.Unix(3, 0)},
	}
	cw := &collectWriter{}
	n, err := ReplayLog(context.Background(), encodeTracks(t, rows), cw, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != len(rows) || len(cw.tracks) != len(rows) {
		t.Fatalf("expected %d rows, got %d/%d", len(rows), n, len(cw.tracks))
	}
	for i, r := range rows {
		if cw.tracks[i].TrackID != r.TrackID {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.tracks[i], r)
		}
	}
}

func TestReplayLogSpeed(t *testing.T) {
	rows := []telemetry.FusedTrackRow{
		{TrackID: "a", Timestamp: time.Unix(0, 0)},
		{TrackID: "b", Timestamp: time.Unix(0, int64(200*time.Millisecond))},
	}
	start := time.Now()
	if _, err := ReplayLog(context.Background(), encodeTracks(t, rows), &collectWriter{}, 10); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if el := time.Since(start); el < 15*time.Millisecond || el > time.Second {
		t.Fatalf("elapsed %v outside expected range for 10x playback", el)
	}
}

func TestReplayLogCancelled(t *testing.T) {
	rows := []telemetry.FusedTrackRow{
		{TrackID: "a", Timestamp: time.Unix(0, 0)},
		{TrackID: "b", Timestamp: time.Unix(3600, 0)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cw := &collectWriter{}
	n, err := ReplayLog(ctx, encodeTracks(t, rows), cw, 1)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected first row before cancellation, got %d", n)
	}
}

func TestReplayLogBadInput(t *testing.T) {
	if _, err := ReplayLog(context.Background(), strings.NewReader("{not json"), &collectWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := ReplayLogFile(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"), &collectWriter{}, 0); err == nil {
		t.Fatalf("expected open error")
	}
}
