package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/network"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}
}

func TestObserveTick(t *testing.T) {
	before := testutil.ToFloat64(ticksTotal)
	ObserveTick(2 * time.Millisecond)
	ObserveTick(-time.Second)
	if got := testutil.ToFloat64(ticksTotal) - before; got != 2 {
		t.Fatalf("ticks delta = %v, want 2", got)
	}
}

func TestGauges(t *testing.T) {
	SetContacts(3, 5, 0, 1)
	if got := testutil.ToFloat64(contactsGauge.WithLabelValues("civilian")); got != 5 {
		t.Fatalf("civilian contacts = %v, want 5", got)
	}

	SetFusion(fusion.Stats{FusedContacts: 7, Detections: 19, AvgFusionQuality: 0.61, AnomaliesDetected: 2})
	if got := testutil.ToFloat64(fusedGauge); got != 7 {
		t.Fatalf("fused = %v, want 7", got)
	}
	if got := testutil.ToFloat64(fusionQualityGauge); got != 0.61 {
		t.Fatalf("quality = %v, want 0.61", got)
	}

	SetNetwork(network.Coverage{OnlineNodes: 20, DegradedNodes: 6, OfflineNodes: 3, CoveragePct: 68.9})
	if got := testutil.ToFloat64(nodesGauge.WithLabelValues("offline")); got != 3 {
		t.Fatalf("offline nodes = %v, want 3", got)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(transitionsTotal.WithLabelValues("degraded"))
	ObserveTransition(network.Transition{NodeID: "SR-20", From: network.StatusOnline, To: network.StatusDegraded})
	if got := testutil.ToFloat64(transitionsTotal.WithLabelValues("degraded")) - before; got != 1 {
		t.Fatalf("transition delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(eventsTotal.WithLabelValues("contact_spawned"))
	ObserveEvent("contact_spawned")
	if got := testutil.ToFloat64(eventsTotal.WithLabelValues("contact_spawned")) - before; got != 1 {
		t.Fatalf("event delta = %v, want 1", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ObserveWriteError("tracks")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "radar_fusion_write_errors_total") {
		t.Fatalf("metrics output missing collector: %s", rec.Body.String())
	}
}
