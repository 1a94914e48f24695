package network

import (
	"math"
	"time"
)

const (
	offlineFactor      = 0.3
	recoverProbability = 0.4
	partialRecovery    = 0.1
)

// SimulateNodeFailures advances each non-master node's status by one step.
//
// online degrades with the node's failure probability. degraded goes offline
// with failure*0.3; otherwise a second draw recovers it with probability 0.4.
// offline partially recovers to degraded with probability 0.1.
func (n *Network) SimulateNodeFailures() []Transition {
	var out []Transition
	for _, node := range n.nodes {
		if node.IsMaster {
			continue
		}
		from := node.Status
		switch node.Status {
		case StatusOnline:
			if n.rand.Float64() < node.FailureProbability {
				node.Status = StatusDegraded
			}
		case StatusDegraded:
			if n.rand.Float64() < node.FailureProbability*offlineFactor {
				node.Status = StatusOffline
				node.Metrics.SignalQuality = 0
			} else if n.rand.Float64() < recoverProbability {
				node.Status = StatusOnline
			}
		case StatusOffline:
			if n.rand.Float64() < partialRecovery {
				node.Status = StatusDegraded
			}
		}
		if node.Status != from {
			out = append(out, Transition{NodeID: node.ID, Tier: node.Tier, From: from, To: node.Status})
		}
	}
	return out
}

// UpdateNodeMetrics random-walks cpu load and signal quality and adds elapsed
// to the uptime of every node that is not offline.
func (n *Network) UpdateNodeMetrics(elapsed time.Duration) {
	now := n.now()
	for _, node := range n.nodes {
		m := &node.Metrics
		m.CPULoad = clamp(m.CPULoad+(n.rand.Float64()-0.5)*20, 10, 100)

		switch node.Status {
		case StatusOnline:
			m.SignalQuality = clamp(m.SignalQuality+(n.rand.Float64()-0.3)*5, 70, 100)
		case StatusDegraded:
			m.SignalQuality = clamp(m.SignalQuality+(n.rand.Float64()-0.5)*10, 30, 70)
		default:
			m.SignalQuality = 0
		}

		if node.Status != StatusOffline {
			m.UptimeSeconds += elapsed.Seconds()
		}
		m.LastUpdate = now
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
