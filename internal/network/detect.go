package network

import (
	"time"

	"radar-fusion-sim/internal/contact"
)

// DistributeContactsToNodes replaces every node's local detections with the
// contacts it picks up this tick. Offline nodes and nodes whose band excludes
// a contact never detect it.
func (n *Network) DistributeContactsToNodes(contacts []*contact.Contact) {
	now := n.now()
	for _, node := range n.nodes {
		node.LocalContacts = []Detection{}
	}

	for _, c := range contacts {
		for _, node := range n.nodes {
			if node.Status == StatusOffline || !node.InRange(c.Distance) {
				continue
			}
			if n.rand.Float64() < detectionProbability(node, c.Distance) {
				node.LocalContacts = append(node.LocalContacts, n.measure(c, node, now))
			}
		}
	}

	for _, node := range n.nodes {
		node.Metrics.ContactsTracked = len(node.LocalContacts)
		node.Metrics.LastUpdate = now
	}
}

func detectionProbability(node *Node, distanceKM float64) float64 {
	if node.Config.MaxRangeKM <= 0 {
		return 0
	}
	return node.Metrics.SignalQuality / 100 * (1 - distanceKM/node.Config.MaxRangeKM)
}

// measure applies noise scaled by the node's signal quality.
func (n *Network) measure(c *contact.Contact, node *Node, now time.Time) Detection {
	quality := node.Metrics.SignalQuality / 100
	noise := (1 - quality) * 0.1

	d := Detection{
		Contact:            *c.Clone(),
		SourceNode:         node.ID,
		SourceTier:         node.Tier,
		MeasurementQuality: quality,
		Reliability:        node.Config.Reliability,
		Timestamp:          now,
	}
	d.Distance = c.Distance * (1 + (n.rand.Float64()-0.5)*noise)
	d.Bearing = contact.WrapBearing(c.Bearing + (n.rand.Float64()-0.5)*noise*10)
	d.RCS = c.RCS * (1 + (n.rand.Float64()-0.5)*noise)
	return d
}
