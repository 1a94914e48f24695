// Package metrics exposes Prometheus collectors for the simulator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/network"
)

const namespace = "radar_fusion"

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Detection ticks completed.",
	})

	tickDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_seconds",
		Help:      "Wall time spent in one detection tick.",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})

	contactsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "contacts",
		Help:      "Ground-truth contacts by IFF status.",
	}, []string{"iff"})

	detectionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "detections",
		Help:      "Detections fed into the last fusion cycle.",
	})

	fusedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fused_contacts",
		Help:      "Fused contacts produced by the last fusion cycle.",
	})

	fusionQualityGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fusion_quality_avg",
		Help:      "Mean fusion quality of the last cycle.",
	})

	anomaliesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "anomalies",
		Help:      "Anomalous fused contacts in the last cycle.",
	})

	nodesGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "nodes",
		Help:      "Sensor nodes by status.",
	}, []string{"status"})

	coverageGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "coverage_percent",
		Help:      "Share of nodes online.",
	})

	transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "node_transitions_total",
		Help:      "Node status changes by target status.",
	}, []string{"to"})

	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Simulation events by type.",
	}, []string{"type"})

	writeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_errors_total",
		Help:      "Writer failures by stream.",
	}, []string{"stream"})
)

// Register attaches the simulator collectors to reg.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		ticksTotal,
		tickDurationSeconds,
		contactsGauge,
		detectionsGauge,
		fusedGauge,
		fusionQualityGauge,
		anomaliesGauge,
		nodesGauge,
		coverageGauge,
		transitionsTotal,
		eventsTotal,
		writeErrorsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTick records one completed tick.
func ObserveTick(d time.Duration) {
	ticksTotal.Inc()
	if d < 0 {
		d = 0
	}
	tickDurationSeconds.Observe(d.Seconds())
}

// SetContacts publishes the contact population by IFF status.
func SetContacts(hostile, civilian, friendly, unknown int) {
	contactsGauge.WithLabelValues("hostile").Set(float64(hostile))
	contactsGauge.WithLabelValues("civilian").Set(float64(civilian))
	contactsGauge.WithLabelValues("friendly").Set(float64(friendly))
	contactsGauge.WithLabelValues("unknown").Set(float64(unknown))
}

// SetFusion publishes the statistics of a fusion cycle.
func SetFusion(st fusion.Stats) {
	detectionsGauge.Set(float64(st.Detections))
	fusedGauge.Set(float64(st.FusedContacts))
	fusionQualityGauge.Set(st.AvgFusionQuality)
	anomaliesGauge.Set(float64(st.AnomaliesDetected))
}

// SetNetwork publishes node counts and coverage.
func SetNetwork(c network.Coverage) {
	nodesGauge.WithLabelValues(string(network.StatusOnline)).Set(float64(c.OnlineNodes))
	nodesGauge.WithLabelValues(string(network.StatusDegraded)).Set(float64(c.DegradedNodes))
	nodesGauge.WithLabelValues(string(network.StatusOffline)).Set(float64(c.OfflineNodes))
	coverageGauge.Set(c.CoveragePct)
}

// ObserveTransition counts a node status change.
func ObserveTransition(t network.Transition) {
	transitionsTotal.WithLabelValues(string(t.To)).Inc()
}

// ObserveEvent counts a simulation event.
func ObserveEvent(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

// ObserveWriteError counts a writer failure on stream.
func ObserveWriteError(stream string) {
	writeErrorsTotal.WithLabelValues(stream).Inc()
}

// Handler exposes the collectors gathered by g, or the default registry when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
