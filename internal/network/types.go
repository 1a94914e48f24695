package network

import (
	"errors"
	"fmt"
	"time"

	"radar-fusion-sim/internal/contact"
)

var (
	// ErrUnknownNode is returned when a node id is not part of the network.
	ErrUnknownNode = errors.New("unknown node")
	// ErrMasterPinned is returned when an operator tries to take the master node off-line.
	ErrMasterPinned = errors.New("master node must stay online")
)

// Tier is the range class of a sensor node.
type Tier string

const (
	LongRange   Tier = "long-range"
	MediumRange Tier = "medium-range"
	ShortRange  Tier = "short-range"
)

// Tiers lists the tiers in creation order.
var Tiers = []Tier{LongRange, MediumRange, ShortRange}

// Prefix returns the node id prefix for the tier.
func (t Tier) Prefix() string {
	switch t {
	case LongRange:
		return "LR"
	case MediumRange:
		return "MR"
	}
	return "SR"
}

// TierConfig is the immutable configuration shared by nodes of one tier.
type TierConfig struct {
	MinRangeKM  float64       `json:"min_range_km"`
	MaxRangeKM  float64       `json:"max_range_km"`
	UpdateRate  time.Duration `json:"update_rate"`
	Reliability float64       `json:"reliability"`
	Location    string        `json:"location"`
}

// DefaultTierConfigs returns the standard coverage bands.
func DefaultTierConfigs() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		LongRange:   {MinRangeKM: 1000, MaxRangeKM: 10000, UpdateRate: 10 * time.Second, Reliability: 0.95, Location: "strategic"},
		MediumRange: {MinRangeKM: 100, MaxRangeKM: 1000, UpdateRate: 3 * time.Second, Reliability: 0.92, Location: "regional"},
		ShortRange:  {MinRangeKM: 1, MaxRangeKM: 100, UpdateRate: time.Second, Reliability: 0.90, Location: "tactical"},
	}
}

// Status is the health state of a node.
type Status string

const (
	StatusOnline   Status = "online"
	StatusDegraded Status = "degraded"
	StatusOffline  Status = "offline"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOnline, StatusDegraded, StatusOffline:
		return st, nil
	}
	return "", fmt.Errorf("unknown node status %q", s)
}

// Location is the simulated geographic position of a node.
type Location struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
}

// Metrics are the stochastic performance figures of a node.
type Metrics struct {
	CPULoad         float64   `json:"cpu_load"`
	SignalQuality   float64   `json:"signal_quality"`
	ContactsTracked int       `json:"contacts_tracked"`
	UptimeSeconds   float64   `json:"uptime_s"`
	DataRate        int       `json:"data_rate_kbps"`
	LastUpdate      time.Time `json:"last_update"`
}

// Node is a simulated sensor.
type Node struct {
	ID                 string
	Tier               Tier
	Config             TierConfig
	Status             Status
	Location           Location
	Metrics            Metrics
	LocalContacts      []Detection
	FailureProbability float64
	IsMaster           bool
}

// Detection is a noise-perturbed copy of a contact as seen by one node.
type Detection struct {
	contact.Contact
	SourceNode         string    `json:"source_node"`
	SourceTier         Tier      `json:"source_tier"`
	MeasurementQuality float64   `json:"measurement_quality"`
	Reliability        float64   `json:"reliability"`
	Timestamp          time.Time `json:"timestamp"`
}

// Transition records a node status change.
type Transition struct {
	NodeID string `json:"node_id"`
	Tier   Tier   `json:"tier"`
	From   Status `json:"from"`
	To     Status `json:"to"`
}

// NodeState is a value copy of a node without its detections.
type NodeState struct {
	ID              string   `json:"id"`
	Tier            Tier     `json:"tier"`
	Status          Status   `json:"status"`
	IsMaster        bool     `json:"is_master"`
	MinRangeKM      float64  `json:"min_range_km"`
	MaxRangeKM      float64  `json:"max_range_km"`
	Reliability     float64  `json:"reliability"`
	Location        Location `json:"location"`
	Metrics         Metrics  `json:"metrics"`
	LocalDetections int      `json:"local_detections"`
}

// State returns a value copy of n.
func (n *Node) State() NodeState {
	return NodeState{
		ID:              n.ID,
		Tier:            n.Tier,
		Status:          n.Status,
		IsMaster:        n.IsMaster,
		MinRangeKM:      n.Config.MinRangeKM,
		MaxRangeKM:      n.Config.MaxRangeKM,
		Reliability:     n.Config.Reliability,
		Location:        n.Location,
		Metrics:         n.Metrics,
		LocalDetections: len(n.LocalContacts),
	}
}

// InRange reports whether distanceKM falls inside the node's coverage band.
func (n *Node) InRange(distanceKM float64) bool {
	return distanceKM >= n.Config.MinRangeKM && distanceKM <= n.Config.MaxRangeKM
}
