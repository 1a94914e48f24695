// Package enrich scores fused contacts with cheap heuristics: a threat
// classification, a velocity-extrapolated trajectory and an anomaly score.
package enrich

import (
	"math"
	"math/rand"
	"time"

	"radar-fusion-sim/internal/fusion"
)

// Engine implements fusion.Classifier, fusion.TrajectoryPredictor and
// fusion.AnomalyDetector. It is not safe for concurrent use.
type Engine struct {
	randFloat func() float64
}

var (
	_ fusion.Classifier          = (*Engine)(nil)
	_ fusion.TrajectoryPredictor = (*Engine)(nil)
	_ fusion.AnomalyDetector     = (*Engine)(nil)
)

// New returns an engine drawing its noise from rng. A nil rng is seeded from
// the clock.
func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{randFloat: rng.Float64}
}

// Enrichers wires e into every fusion enrichment slot.
func (e *Engine) Enrichers() fusion.Enrichers {
	return fusion.Enrichers{Classifier: e, Predictor: e, Anomaly: e}
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

// signedDelta returns b-a folded into (-180,180].
func signedDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
