package fusion

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gonum.org/v1/gonum/stat"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/network"
)

var tracer = otel.Tracer("radar-fusion-sim/fusion")

// Config tunes the engine.
type Config struct {
	CorrelationThreshold float64
	// IncludeDegraded also fuses detections from degraded nodes.
	IncludeDegraded bool
}

// DefaultConfig returns the standard threshold with online-only fusion.
func DefaultConfig() Config {
	return Config{CorrelationThreshold: DefaultCorrelationThreshold}
}

// Sensors is the part of the sensor network the engine drives.
type Sensors interface {
	DistributeContactsToNodes(contacts []*contact.Contact)
	Nodes() []*network.Node
	// Now is the sensor clock; it stamps each cycle.
	Now() time.Time
}

// Result is one published fusion cycle. It is never modified after publish.
type Result struct {
	CycleID    string
	Timestamp  time.Time
	Contacts   []FusedContact
	Detections []TaggedDetection
	Stats      Stats
}

// Engine correlates per-node detections into fused contacts. FuseMultiNodeData
// must be called from a single goroutine; FusedContacts, Last and Stats may be
// called concurrently with it.
type Engine struct {
	cfg     Config
	sensors Sensors
	enrich  Enrichers
	rand    *rand.Rand
	last    atomic.Pointer[Result]
}

// NewEngine creates an engine fed by sensors.
func NewEngine(cfg Config, sensors Sensors, enrich Enrichers, rng *rand.Rand) *Engine {
	if cfg.CorrelationThreshold <= 0 {
		cfg.CorrelationThreshold = DefaultCorrelationThreshold
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e := &Engine{cfg: cfg, sensors: sensors, enrich: enrich, rand: rng}
	e.last.Store(&Result{Contacts: []FusedContact{}, Detections: []TaggedDetection{}})
	return e
}

// FuseMultiNodeData redistributes contacts to the sensors, correlates the
// resulting detections, enriches each fused contact and publishes the cycle.
func (e *Engine) FuseMultiNodeData(ctx context.Context, contacts []*contact.Contact) []FusedContact {
	ctx, span := tracer.Start(ctx, "fusion.cycle")
	defer span.End()
	log := logging.FromContext(ctx)

	e.sensors.DistributeContactsToNodes(contacts)
	dets := e.collect()
	clusters := Correlate(dets, e.cfg.CorrelationThreshold)

	cycleID := e.newCycleID()
	fused := make([]FusedContact, 0, len(clusters))
	for _, cl := range clusters {
		fc := FuseCluster(cl)
		fc.Metadata.CycleID = cycleID
		e.applyEnrichment(&fc)
		fused = append(fused, fc)
	}

	res := &Result{
		CycleID:    cycleID,
		Timestamp:  e.sensors.Now(),
		Contacts:   fused,
		Detections: dets,
		Stats:      computeStats(fused, len(dets)),
	}
	e.last.Store(res)

	span.SetAttributes(
		attribute.Int("fusion.contacts_in", len(contacts)),
		attribute.Int("fusion.detections", len(dets)),
		attribute.Int("fusion.fused", len(fused)),
	)
	log.Debug("fusion cycle", "cycle_id", cycleID, "detections", len(dets), "fused", len(fused))
	return fused
}

func (e *Engine) collect() []TaggedDetection {
	dets := []TaggedDetection{}
	for _, node := range e.sensors.Nodes() {
		if node.Status != network.StatusOnline && !(e.cfg.IncludeDegraded && node.Status == network.StatusDegraded) {
			continue
		}
		for _, d := range node.LocalContacts {
			dets = append(dets, TaggedDetection{Detection: d, NodeID: node.ID, NodeTier: node.Tier})
		}
	}
	return dets
}

func (e *Engine) applyEnrichment(fc *FusedContact) {
	if e.enrich.Classifier != nil {
		r := e.enrich.Classifier.Classify(&fc.Contact)
		fc.MLClassification = &r
	}
	if e.enrich.Predictor != nil && len(fc.TrackHistory) > 3 {
		if p, ok := e.enrich.Predictor.Predict(&fc.Contact); ok {
			fc.TrajectoryPrediction = &p
		}
	}
	if e.enrich.Anomaly != nil {
		r := e.enrich.Anomaly.Detect(&fc.Contact)
		fc.AnomalyDetection = &r
	}
}

func (e *Engine) newCycleID() string {
	id, err := uuid.NewRandomFromReader(e.rand)
	if err != nil {
		return ""
	}
	return id.String()
}

// Last returns the last published cycle.
func (e *Engine) Last() *Result { return e.last.Load() }

// FusedContacts returns the fused contacts of the last cycle. Callers must
// not modify the returned slice.
func (e *Engine) FusedContacts() []FusedContact { return e.last.Load().Contacts }

// Stats returns the statistics of the last cycle.
func (e *Engine) Stats() Stats { return e.last.Load().Stats }

// Conflicts compares detections of the same ground-truth contact from the
// last cycle and reports the discrepant pairs.
func (e *Engine) Conflicts() []Conflict {
	byContact := map[string][]TaggedDetection{}
	var order []string
	for _, d := range e.last.Load().Detections {
		if _, ok := byContact[d.ID]; !ok {
			order = append(order, d.ID)
		}
		byContact[d.ID] = append(byContact[d.ID], d)
	}
	out := []Conflict{}
	for _, id := range order {
		out = append(out, ResolveConflicts(byContact[id])...)
	}
	return out
}

func computeStats(fused []FusedContact, detections int) Stats {
	st := Stats{FusedContacts: len(fused), Detections: detections}
	if len(fused) == 0 {
		return st
	}
	sources := make([]float64, len(fused))
	quality := make([]float64, len(fused))
	for i, fc := range fused {
		sources[i] = float64(fc.Metadata.NumSources)
		quality[i] = fc.Metadata.FusionQuality
		if fc.MLClassification != nil {
			st.MLEnhanced++
		}
		if fc.TrajectoryPrediction != nil {
			st.TrajectoryPredicted++
		}
		if fc.AnomalyDetection != nil && fc.AnomalyDetection.IsAnomalous {
			st.AnomaliesDetected++
		}
	}
	st.AvgSourcesPerContact = stat.Mean(sources, nil)
	st.AvgFusionQuality = stat.Mean(quality, nil)
	return st
}
