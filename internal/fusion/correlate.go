package fusion

import (
	"math"

	"radar-fusion-sim/internal/contact"
)

// DefaultCorrelationThreshold is the minimum score for two detections to join a cluster.
const DefaultCorrelationThreshold = 0.85

// Correlation scores how likely a and b are the same object. The base score
// is in [0,1]; the quantum correlation of both contacts adds up to 0.1.
func Correlation(a, b *contact.Contact) float64 {
	distance := math.Max(0, 1-math.Abs(a.Distance-b.Distance)/100)
	bearing := math.Max(0, 1-angularDiff(a.Bearing, b.Bearing)/30)
	speed := math.Max(0, 1-math.Abs(a.Speed-b.Speed)/200)

	rcs := 0.0
	if m := math.Max(a.RCS, b.RCS); m > 0 {
		rcs = math.Max(0, 1-math.Abs(a.RCS-b.RCS)/m)
	}

	quantum := (a.QuantumCorrelation + b.QuantumCorrelation) / 2 * 0.1

	score := distance*0.4 + bearing*0.3 + speed*0.2 + rcs*0.1 + quantum
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// angularDiff returns the smallest angle between two bearings, in [0,180].
func angularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Correlate clusters detections greedily in list order. Each unclaimed
// detection seeds a cluster and claims every later unclaimed detection whose
// correlation with the seed is at least threshold. Every detection ends up in
// exactly one cluster.
func Correlate(dets []TaggedDetection, threshold float64) [][]TaggedDetection {
	clusters := [][]TaggedDetection{}
	processed := make([]bool, len(dets))
	for i := range dets {
		if processed[i] {
			continue
		}
		processed[i] = true
		cluster := []TaggedDetection{dets[i]}
		for j := i + 1; j < len(dets); j++ {
			if processed[j] {
				continue
			}
			if Correlation(&dets[i].Contact, &dets[j].Contact) >= threshold {
				cluster = append(cluster, dets[j])
				processed[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}
