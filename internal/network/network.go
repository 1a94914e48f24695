package network

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config sizes the network.
type Config struct {
	LongRangeCount     int
	MediumRangeCount   int
	ShortRangeCount    int
	FailureProbability float64
	// Tiers overrides the default coverage bands when set.
	Tiers map[Tier]TierConfig
}

// DefaultConfig returns the standard 4/10/15 topology.
func DefaultConfig() Config {
	return Config{
		LongRangeCount:     4,
		MediumRangeCount:   10,
		ShortRangeCount:    15,
		FailureProbability: 0.02,
	}
}

// Network owns the fixed set of sensor nodes. It is not safe for concurrent
// use; readers should use Snapshot.
type Network struct {
	nodes []*Node
	rand  *rand.Rand
	now   func() time.Time
}

// New builds the node topology. Node 0 becomes the master and starts online.
func New(cfg Config, rng *rand.Rand, now func() time.Time) (*Network, error) {
	if cfg.LongRangeCount < 0 || cfg.MediumRangeCount < 0 || cfg.ShortRangeCount < 0 {
		return nil, fmt.Errorf("negative node count")
	}
	if cfg.LongRangeCount+cfg.MediumRangeCount+cfg.ShortRangeCount == 0 {
		return nil, fmt.Errorf("network needs at least one node")
	}
	if cfg.FailureProbability < 0 || cfg.FailureProbability > 1 {
		return nil, fmt.Errorf("failure probability %v outside [0,1]", cfg.FailureProbability)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	tiers := DefaultTierConfigs()
	for t, tc := range cfg.Tiers {
		tiers[t] = tc
	}

	n := &Network{rand: rng, now: now}
	counts := map[Tier]int{
		LongRange:   cfg.LongRangeCount,
		MediumRange: cfg.MediumRangeCount,
		ShortRange:  cfg.ShortRangeCount,
	}
	seq := 1
	for _, t := range Tiers {
		for i := 0; i < counts[t]; i++ {
			n.nodes = append(n.nodes, n.newNode(fmt.Sprintf("%s-%02d", t.Prefix(), seq), t, tiers[t], cfg.FailureProbability))
			seq++
		}
	}
	master := n.nodes[0]
	master.IsMaster = true
	master.Status = StatusOnline
	return n, nil
}

func (n *Network) newNode(id string, t Tier, tc TierConfig, failure float64) *Node {
	status := StatusDegraded
	if n.rand.Float64() > 0.05 {
		status = StatusOnline
	}
	return &Node{
		ID:     id,
		Tier:   t,
		Config: tc,
		Status: status,
		Location: Location{
			Lat:       (n.rand.Float64() - 0.5) * 180,
			Lon:       (n.rand.Float64() - 0.5) * 360,
			Elevation: math.Floor(n.rand.Float64() * 500),
		},
		Metrics: Metrics{
			CPULoad:       n.rand.Float64() * 100,
			SignalQuality: 70 + n.rand.Float64()*30,
			UptimeSeconds: n.rand.Float64() * 86400,
			DataRate:      int(math.Floor(n.rand.Float64()*1000)) + 500,
			LastUpdate:    n.now(),
		},
		LocalContacts:      []Detection{},
		FailureProbability: failure,
	}
}

// Nodes returns every node in creation order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, len(n.nodes))
	copy(out, n.nodes)
	return out
}

// NodeByID returns the node with id.
func (n *Network) NodeByID(id string) (*Node, error) {
	for _, node := range n.nodes {
		if node.ID == id {
			return node, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
}

// OnlineNodes returns nodes whose status is online.
func (n *Network) OnlineNodes() []*Node {
	out := []*Node{}
	for _, node := range n.nodes {
		if node.Status == StatusOnline {
			out = append(out, node)
		}
	}
	return out
}

// NodesByTier returns the nodes of tier t.
func (n *Network) NodesByTier(t Tier) []*Node {
	out := []*Node{}
	for _, node := range n.nodes {
		if node.Tier == t {
			out = append(out, node)
		}
	}
	return out
}

// Now reads the network clock.
func (n *Network) Now() time.Time { return n.now() }

// Master returns the master fusion node.
func (n *Network) Master() *Node { return n.nodes[0] }

// SetStatus overrides a node's status. The master node can only be set online.
func (n *Network) SetStatus(id string, st Status) (Transition, error) {
	node, err := n.NodeByID(id)
	if err != nil {
		return Transition{}, err
	}
	if node.IsMaster && st != StatusOnline {
		return Transition{}, fmt.Errorf("%w: %s", ErrMasterPinned, id)
	}
	tr := Transition{NodeID: node.ID, Tier: node.Tier, From: node.Status, To: st}
	node.Status = st
	if st == StatusOffline {
		node.Metrics.SignalQuality = 0
		node.LocalContacts = []Detection{}
		node.Metrics.ContactsTracked = 0
	}
	return tr, nil
}

// Snapshot returns value copies of every node.
func (n *Network) Snapshot() []NodeState {
	out := make([]NodeState, len(n.nodes))
	for i, node := range n.nodes {
		out[i] = node.State()
	}
	return out
}
