package fusion

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/network"
)

// measurement quality assumed for detections that do not carry one
const defaultMeasurementQuality = 0.8

// FuseCluster merges a cluster into one contact. It panics on an empty
// cluster; Correlate never produces one.
func FuseCluster(cluster []TaggedDetection) FusedContact {
	if len(cluster) == 0 {
		panic("fusion: empty cluster")
	}

	weights := make([]float64, len(cluster))
	for i, d := range cluster {
		w := d.MeasurementQuality
		if w <= 0 || math.IsNaN(w) {
			w = 1
		}
		weights[i] = w
	}
	total := floats.Sum(weights)
	for i := range weights {
		weights[i] /= total
	}

	field := func(get func(*contact.Contact) float64) float64 {
		vals := make([]float64, len(cluster))
		for i := range cluster {
			vals[i] = get(&cluster[i].Contact)
		}
		return floats.Dot(weights, vals)
	}

	base := cluster[0].Contact.Clone()
	fused := FusedContact{Contact: *base, SourceContactID: base.ID}
	fused.Distance = field(func(c *contact.Contact) float64 { return c.Distance })
	fused.Speed = field(func(c *contact.Contact) float64 { return c.Speed })
	fused.RCS = field(func(c *contact.Contact) float64 { return c.RCS })
	fused.Altitude = field(func(c *contact.Contact) float64 { return c.Altitude })
	fused.SignalStrength = field(func(c *contact.Contact) float64 { return c.SignalStrength })
	fused.TrackQuality = field(func(c *contact.Contact) float64 { return c.TrackQuality })

	// bearings are averaged as offsets from the first member so 359 and 1 fuse to 0
	b0 := base.Bearing
	offset := field(func(c *contact.Contact) float64 { return signedDiff(c.Bearing, b0) })
	fused.Bearing = contact.WrapBearing(b0 + offset)

	nodes := make([]string, len(cluster))
	ts := cluster[0].Timestamp
	for i, d := range cluster {
		nodes[i] = d.NodeID
		if d.Timestamp.After(ts) {
			ts = d.Timestamp
		}
	}
	fused.Metadata = Metadata{
		SourceNodes:     nodes,
		NumSources:      len(cluster),
		FusionQuality:   FusionQuality(cluster),
		FusionTimestamp: ts,
	}
	return fused
}

// signedDiff returns b-ref folded into (-180,180].
func signedDiff(b, ref float64) float64 {
	d := math.Mod(b-ref, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// FusionQuality blends source count, mean measurement quality and tier
// diversity 0.4/0.4/0.2. The result is clamped to [0,1]; an empty cluster scores 0.
func FusionQuality(cluster []TaggedDetection) float64 {
	if len(cluster) == 0 {
		return 0
	}
	sources := math.Min(1, float64(len(cluster))/5)

	qualities := make([]float64, len(cluster))
	tiers := map[network.Tier]struct{}{}
	for i, d := range cluster {
		q := d.MeasurementQuality
		if q <= 0 || math.IsNaN(q) {
			q = defaultMeasurementQuality
		}
		qualities[i] = q
		tiers[d.NodeTier] = struct{}{}
	}
	avgQuality := floats.Sum(qualities) / float64(len(qualities))
	diversity := float64(len(tiers)) / float64(len(network.Tiers))

	q := sources*0.4 + avgQuality*0.4 + diversity*0.2
	return math.Max(0, math.Min(1, q))
}
