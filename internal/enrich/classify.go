package enrich

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/fusion"
)

// Recommendations returned by Classify, strongest first.
const (
	HighConfidenceThreat = "HIGH_CONFIDENCE_THREAT"
	ProbableThreat       = "PROBABLE_THREAT"
	MonitorClosely       = "MONITOR_CLOSELY"
	LowThreat            = "LOW_THREAT"
	LikelyBenign         = "LIKELY_BENIGN"
)

// weights for rcs, speed, altitude, doppler, signal strength and proximity
var featureWeights = []float64{0.2, 0.3, 0.1, 0.15, 0.15, 0.1}

// Classify blends a weighted feature score (70%) with a phase score (30%).
func (e *Engine) Classify(c *contact.Contact) fusion.ClassificationResult {
	threat := e.featureScore(c)
	q := quantumScore(c.RCS, c.Speed)
	combined := threat*0.7 + q*0.3
	return fusion.ClassificationResult{
		Confidence:        combined,
		ThreatProbability: threat,
		QuantumScore:      q,
		Recommendation:    recommendation(combined),
	}
}

func (e *Engine) featureScore(c *contact.Contact) float64 {
	features := []float64{
		c.RCS / 1000,
		c.Speed / 3000,
		c.Altitude / 15000,
		doppler(c.Speed, c.Heading, c.Bearing) / 500,
		c.SignalStrength,
		1 - c.Distance/10000,
	}
	noise := (e.randFloat() - 0.5) * 0.1
	return clamp(floats.Dot(featureWeights, features)+noise, 0.1, 0.99)
}

// doppler is the radial speed in m/s seen from the sensor.
func doppler(speedKmh, headingDeg, bearingDeg float64) float64 {
	rel := (headingDeg - bearingDeg) * math.Pi / 180
	return speedKmh / 3.6 * math.Abs(math.Cos(rel))
}

// quantumScore maps rcs and speed onto [0,1] through sin(θ+φ).
func quantumScore(rcs, speed float64) float64 {
	phi := math.Pi * rcs / 100
	theta := math.Pi * speed / 1000
	return (math.Cos(phi)*math.Sin(theta) + math.Sin(phi)*math.Cos(theta) + 1) / 2
}

func recommendation(score float64) string {
	switch {
	case score > 0.85:
		return HighConfidenceThreat
	case score > 0.7:
		return ProbableThreat
	case score > 0.5:
		return MonitorClosely
	case score > 0.3:
		return LowThreat
	}
	return LikelyBenign
}
