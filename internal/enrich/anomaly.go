package enrich

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/fusion"
)

// Anomaly types reported by Detect.
const (
	AnomalyNormal    = "NORMAL"
	AnomalyStealth   = "STEALTH_SIGNATURE"
	AnomalyWeak      = "WEAK_SIGNAL"
	AnomalyEvasive   = "EVASIVE_MANEUVERS"
	AnomalyBehaviour = "UNUSUAL_BEHAVIOR"
)

const anomalyThreshold = 0.7

// Detect scores how far a contact's normalized features sit from the
// midpoint. Scores above 0.7 are anomalous.
func (e *Engine) Detect(c *contact.Contact) fusion.AnomalyResult {
	features := []float64{
		c.RCS / 1000,
		c.Speed / 3000,
		0, // no electronic countermeasures in the model
		c.SignalStrength,
		behaviourScore(c),
	}
	dev := make([]float64, len(features))
	for i, f := range features {
		dev[i] = math.Abs(f - 0.5)
	}
	score := math.Min(1, stat.Mean(dev, nil)*2+e.randFloat()*0.1)

	return fusion.AnomalyResult{
		IsAnomalous: score > anomalyThreshold,
		AnomalyType: anomalyType(score, c),
		Score:       score,
		Confidence:  math.Abs(score-0.5) * 2,
	}
}

// behaviourScore penalizes speed and altitude that do not fit the profile
// and erratic bearing changes.
func behaviourScore(c *contact.Contact) float64 {
	score := 0.0
	switch c.ClassData.Type {
	case "UAV":
		if c.Speed > 300 {
			score += 0.3
		}
	case "Aircraft":
		if c.Altitude < 500 {
			score += 0.2
		}
	}
	if h := c.TrackHistory; len(h) > 5 {
		changes := make([]float64, len(h)-1)
		for i := 1; i < len(h); i++ {
			changes[i-1] = math.Abs(signedDelta(h[i-1].Bearing, h[i].Bearing))
		}
		if stat.Mean(changes, nil) > 30 {
			score += 0.2
		}
	}
	return math.Min(score, 1)
}

func anomalyType(score float64, c *contact.Contact) string {
	switch {
	case score < 0.3:
		return AnomalyNormal
	case c.RCS < 1 && c.Speed > 500:
		return AnomalyStealth
	case c.SignalStrength < 0.4:
		return AnomalyWeak
	}
	if h := c.TrackHistory; len(h) > 3 {
		if math.Abs(signedDelta(h[len(h)-3].Bearing, h[len(h)-1].Bearing)) > 90 {
			return AnomalyEvasive
		}
	}
	return AnomalyBehaviour
}
