package fusion

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/network"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func det(id, node string, tier network.Tier, quality float64, c contact.Contact) TaggedDetection {
	c.ID = id
	return TaggedDetection{
		Detection: network.Detection{
			Contact:            c,
			SourceNode:         node,
			SourceTier:         tier,
			MeasurementQuality: quality,
			Reliability:        0.9,
			Timestamp:          epoch,
		},
		NodeID:   node,
		NodeTier: tier,
	}
}

func randomContact(r *rand.Rand) contact.Contact {
	return contact.Contact{
		Bearing:  r.Float64() * 360,
		Distance: r.Float64() * 2000,
		Speed:    r.Float64() * 1500,
		RCS:      r.Float64() * 100,
	}
}

func TestCorrelationSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		a, b := randomContact(r), randomContact(r)
		assert.Equal(t, Correlation(&a, &b), Correlation(&b, &a))
	}
}

func TestCorrelationIdentical(t *testing.T) {
	c := contact.Contact{Bearing: 42, Distance: 80, Speed: 150, RCS: 0.01}
	assert.InDelta(t, 1.0, Correlation(&c, &c), 1e-12)

	zero := contact.Contact{Bearing: 10, Distance: 5}
	assert.InDelta(t, 0.9, Correlation(&zero, &zero), 1e-12, "rcs term is zero when both cross-sections are zero")
}

func TestCorrelationBearingWrap(t *testing.T) {
	a := contact.Contact{Bearing: 359, Distance: 50, Speed: 100, RCS: 1}
	b := contact.Contact{Bearing: 1, Distance: 50, Speed: 100, RCS: 1}
	assert.InDelta(t, 0.4+0.3*(1-2.0/30)+0.2+0.1, Correlation(&a, &b), 1e-9)
}

func TestCorrelationQuantumBonus(t *testing.T) {
	a := contact.Contact{Bearing: 10, Distance: 50, Speed: 100, RCS: 1, QuantumCorrelation: 1}
	b := a
	assert.InDelta(t, 1.1, Correlation(&a, &b), 1e-12)
}

func TestCorrelateCoversEveryDetection(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var dets []TaggedDetection
	for i := 0; i < 120; i++ {
		dets = append(dets, det("T-01", "SR-01", network.ShortRange, r.Float64(), randomContact(r)))
		dets[i].Timestamp = epoch.Add(time.Duration(i) * time.Millisecond)
	}
	clusters := Correlate(dets, DefaultCorrelationThreshold)

	seen := map[time.Time]int{}
	total := 0
	for _, cl := range clusters {
		require.NotEmpty(t, cl)
		for _, d := range cl {
			seen[d.Timestamp]++
			total++
		}
	}
	assert.Equal(t, len(dets), total)
	for ts, n := range seen {
		assert.Equal(t, 1, n, "detection %v", ts)
	}
}

func TestCorrelateGroupsMatchingDetections(t *testing.T) {
	target := contact.Contact{Bearing: 90, Distance: 60, Speed: 120, RCS: 0.01}
	other := contact.Contact{Bearing: 270, Distance: 900, Speed: 800, RCS: 50}
	dets := []TaggedDetection{
		det("T-01", "SR-20", network.ShortRange, 0.9, target),
		det("C-02", "MR-05", network.MediumRange, 0.8, other),
		det("T-01", "SR-21", network.ShortRange, 0.7, target),
	}
	clusters := Correlate(dets, DefaultCorrelationThreshold)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0], 2)
	assert.Equal(t, "SR-20", clusters[0][0].NodeID)
	assert.Equal(t, "SR-21", clusters[0][1].NodeID)
	assert.Len(t, clusters[1], 1)
}

func TestCorrelateEmpty(t *testing.T) {
	clusters := Correlate(nil, DefaultCorrelationThreshold)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestFuseSingletonIsExact(t *testing.T) {
	c := contact.Contact{
		Classification: contact.LoiteringMunition,
		IFF:            contact.IFFHostile,
		Severity:       contact.SeverityCritical,
		Threat:         true,
		Bearing:        123.4,
		Distance:       17.25,
		Altitude:       812,
		Speed:          143,
		Heading:        200,
		RCS:            0.03,
		SignalStrength: 0.71,
		TrackQuality:   0.99,
		FirstDetected:  epoch,
		LastUpdate:     epoch,
		TrackHistory:   []contact.TrackPoint{{Bearing: 123, Distance: 18, Time: epoch}},
	}
	d := det("T-01", "SR-15", network.ShortRange, 0.93, c)
	fc := FuseCluster([]TaggedDetection{d})

	if diff := cmp.Diff(d.Contact, fc.Contact); diff != "" {
		t.Fatalf("fused contact mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, fc.Metadata.NumSources)
	assert.Equal(t, []string{"SR-15"}, fc.Metadata.SourceNodes)
	assert.Equal(t, "T-01", fc.SourceContactID)
	assert.Equal(t, epoch, fc.Metadata.FusionTimestamp)

	fc.TrackHistory[0].Distance = 99
	assert.Equal(t, 18.0, d.TrackHistory[0].Distance, "fused history must not alias the detection")
}

func TestFuseWeightsByQuality(t *testing.T) {
	a := det("T-01", "SR-01", network.ShortRange, 0.9, contact.Contact{Bearing: 10, Distance: 10, Speed: 100, RCS: 1})
	b := det("T-01", "MR-02", network.MediumRange, 0.3, contact.Contact{Bearing: 20, Distance: 30, Speed: 200, RCS: 3})
	b.Timestamp = epoch.Add(time.Second)

	fc := FuseCluster([]TaggedDetection{a, b})
	assert.InDelta(t, 15, fc.Distance, 1e-9)
	assert.InDelta(t, 125, fc.Speed, 1e-9)
	assert.InDelta(t, 1.5, fc.RCS, 1e-9)
	assert.InDelta(t, 12.5, fc.Bearing, 1e-9)
	assert.Equal(t, []string{"SR-01", "MR-02"}, fc.Metadata.SourceNodes)
	assert.Equal(t, epoch.Add(time.Second), fc.Metadata.FusionTimestamp)
}

func TestFuseBearingAcrossNorth(t *testing.T) {
	a := det("T-01", "SR-01", network.ShortRange, 0.5, contact.Contact{Bearing: 359, Distance: 10})
	b := det("T-01", "SR-02", network.ShortRange, 0.5, contact.Contact{Bearing: 1, Distance: 10})
	fc := FuseCluster([]TaggedDetection{a, b})
	assert.InDelta(t, 0, fc.Bearing, 1e-9)
}

func TestFuseMissingQualityFallsBackToEqualWeights(t *testing.T) {
	a := det("T-01", "SR-01", network.ShortRange, 0, contact.Contact{Distance: 10})
	b := det("T-01", "SR-02", network.ShortRange, 0, contact.Contact{Distance: 20})
	fc := FuseCluster([]TaggedDetection{a, b})
	assert.InDelta(t, 15, fc.Distance, 1e-9)
}

func TestFuseEmptyClusterPanics(t *testing.T) {
	assert.PanicsWithValue(t, "fusion: empty cluster", func() { FuseCluster(nil) })
}

func TestFusionQuality(t *testing.T) {
	assert.Equal(t, 0.0, FusionQuality(nil))

	single := []TaggedDetection{det("T-01", "SR-01", network.ShortRange, 0.9, contact.Contact{})}
	assert.InDelta(t, 0.2*0.4+0.9*0.4+(1.0/3)*0.2, FusionQuality(single), 1e-9)

	var full []TaggedDetection
	for i, tier := range []network.Tier{network.LongRange, network.MediumRange, network.ShortRange, network.ShortRange, network.ShortRange, network.ShortRange} {
		full = append(full, det("T-01", tier.Prefix()+string(rune('0'+i)), tier, 1, contact.Contact{}))
	}
	assert.InDelta(t, 1.0, FusionQuality(full), 1e-9)

	noQuality := []TaggedDetection{det("T-01", "SR-01", network.ShortRange, 0, contact.Contact{})}
	assert.InDelta(t, 0.2*0.4+0.8*0.4+(1.0/3)*0.2, FusionQuality(noQuality), 1e-9)

	r := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		n := 1 + r.Intn(8)
		var cl []TaggedDetection
		for j := 0; j < n; j++ {
			tier := network.Tiers[r.Intn(len(network.Tiers))]
			cl = append(cl, det("X", "N", tier, r.Float64(), contact.Contact{}))
		}
		q := FusionQuality(cl)
		assert.GreaterOrEqual(t, q, 0.0)
		assert.LessOrEqual(t, q, 1.0)
	}
}

func TestResolveConflicts(t *testing.T) {
	a := det("T-01", "SR-01", network.ShortRange, 0.9, contact.Contact{Distance: 10, Speed: 100})
	b := det("T-01", "MR-02", network.MediumRange, 0.5, contact.Contact{Distance: 70, Speed: 100})
	c := det("T-01", "LR-03", network.LongRange, 0.95, contact.Contact{Distance: 15, Speed: 250})
	c.Reliability = 0.95

	conflicts := ResolveConflicts([]TaggedDetection{a, b, c})
	require.Len(t, conflicts, 3)

	assert.Equal(t, ConflictDistance, conflicts[0].Type)
	assert.Equal(t, "SR-01", conflicts[0].Resolution.NodeID)

	assert.Equal(t, ConflictSpeed, conflicts[1].Type)
	assert.Equal(t, "LR-03", conflicts[1].Resolution.NodeID)

	assert.Equal(t, ConflictDistance, conflicts[2].Type, "distance wins when both fields disagree")
	assert.Equal(t, "LR-03", conflicts[2].Resolution.NodeID)

	assert.Empty(t, ResolveConflicts([]TaggedDetection{a}))
}
