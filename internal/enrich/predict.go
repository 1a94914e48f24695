package enrich

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/fusion"
)

// Threat levels derived from the last predicted distance.
const (
	ThreatCritical = "CRITICAL"
	ThreatHigh     = "HIGH"
	ThreatMedium   = "MEDIUM"
)

const (
	predictionWindow  = 10 // history samples used for the velocity estimate
	predictionStep    = 5  // seconds
	predictionHorizon = 30 // seconds
)

// Predict extrapolates the average radial and angular velocity of the most
// recent history samples 5 to 30 seconds ahead. Each point is measured from
// the current position. It reports false when the
// history has fewer than three samples or no usable time steps.
func (e *Engine) Predict(c *contact.Contact) (fusion.TrajectoryPrediction, bool) {
	h := c.TrackHistory
	if len(h) < 3 {
		return fusion.TrajectoryPrediction{}, false
	}
	if len(h) > predictionWindow {
		h = h[len(h)-predictionWindow:]
	}

	var closing, turning []float64
	for i := 1; i < len(h); i++ {
		dt := h[i].Time.Sub(h[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		closing = append(closing, (h[i-1].Distance-h[i].Distance)/dt)
		turning = append(turning, signedDelta(h[i-1].Bearing, h[i].Bearing)/dt)
	}
	if len(closing) == 0 {
		return fusion.TrajectoryPrediction{}, false
	}
	avgClosing := stat.Mean(closing, nil)
	avgTurning := stat.Mean(turning, nil)

	var dist float64
	preds := make([]fusion.PredictedPosition, 0, predictionHorizon/predictionStep)
	for t := predictionStep; t <= predictionHorizon; t += predictionStep {
		s := float64(t)
		dist = math.Max(0, c.Distance-avgClosing*s)
		bearing := contact.WrapBearing(c.Bearing + avgTurning*s)
		preds = append(preds, fusion.PredictedPosition{
			SecondsAhead: s,
			Distance:     dist,
			Bearing:      bearing,
			Confidence:   math.Max(0.4, 0.95-s/100),
		})
	}

	return fusion.TrajectoryPrediction{
		Predictions:     preds,
		InterceptWindow: interceptWindow(preds),
		ThreatLevel:     threatLevel(dist),
	}, true
}

// interceptWindow centres a ±5 s window on the first prediction between 50
// and 200 km.
func interceptWindow(preds []fusion.PredictedPosition) *fusion.InterceptWindow {
	for _, p := range preds {
		if p.Distance > 50 && p.Distance < 200 {
			return &fusion.InterceptWindow{
				Start:    p.SecondsAhead - predictionStep,
				End:      p.SecondsAhead + predictionStep,
				Distance: p.Distance,
			}
		}
	}
	return nil
}

func threatLevel(distanceKM float64) string {
	switch {
	case distanceKM < 100:
		return ThreatCritical
	case distanceKM < 300:
		return ThreatHigh
	}
	return ThreatMedium
}
