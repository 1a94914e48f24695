// Telemetry rows written to the sinks, with greptime column roles
package telemetry

import (
	"os"
	"time"
)

// FusedTrackRow is one fused contact of one fusion cycle.
type FusedTrackRow struct {
	SiteID            string    `json:"site_id"`  // TAG
	TrackID           string    `json:"track_id"` // TAG
	CycleID           string    `json:"cycle_id"`
	Classification    string    `json:"classification"`
	IFF               string    `json:"iff_status"`
	Severity          string    `json:"severity"`
	Bearing           float64   `json:"bearing"`
	Distance          float64   `json:"distance"`
	Altitude          float64   `json:"altitude"`
	Speed             float64   `json:"speed"`
	Heading           float64   `json:"heading"`
	RCS               float64   `json:"rcs"`
	SignalStrength    float64   `json:"signal_strength"`
	TrackQuality      float64   `json:"track_quality"`
	NumSources        int       `json:"num_sources"`
	SourceNodes       string    `json:"source_nodes"` // comma separated
	FusionQuality     float64   `json:"fusion_quality"`
	ThreatProbability float64   `json:"threat_probability"`
	Recommendation    string    `json:"recommendation,omitempty"`
	Anomalous         bool      `json:"anomalous"`
	AnomalyType       string    `json:"anomaly_type,omitempty"`
	Timestamp         time.Time `json:"ts"` // TIME INDEX
}

// NodeStatusRow is the health of one sensor node at a tick.
type NodeStatusRow struct {
	SiteID          string    `json:"site_id"` // TAG
	NodeID          string    `json:"node_id"` // TAG
	Tier            string    `json:"tier"`
	Status          string    `json:"status"`
	IsMaster        bool      `json:"is_master"`
	CPULoad         float64   `json:"cpu_load"`
	SignalQuality   float64   `json:"signal_quality"`
	LocalDetections int       `json:"local_detections"`
	DataRate        int       `json:"data_rate_kbps"`
	Timestamp       time.Time `json:"ts"`
}

// TickStateRow summarizes one detection tick.
type TickStateRow struct {
	SiteID           string    `json:"site_id"`
	Tick             uint64    `json:"tick"`
	CycleID          string    `json:"cycle_id"`
	Contacts         int       `json:"contacts"`
	Hostile          int       `json:"hostile"`
	Detections       int       `json:"detections"`
	FusedContacts    int       `json:"fused_contacts"`
	AvgFusionQuality float64   `json:"avg_fusion_quality"`
	Anomalies        int       `json:"anomalies"`
	OnlineNodes      int       `json:"online_nodes"`
	CoveragePct      float64   `json:"coverage_pct"`
	LatencyMS        int       `json:"network_latency_ms"`
	Timestamp        time.Time `json:"ts"`
}

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. Each can be overridden through
// the environment.
var (
	FusedTrackTableName = tableName("FUSED_TRACK_TABLE", "fused_tracks")
	NodeStatusTableName = tableName("NODE_STATUS_TABLE", "node_status")
	EventTableName      = tableName("SIM_EVENT_TABLE", "sim_events")
	TickStateTableName  = tableName("TICK_STATE_TABLE", "tick_state")
)

func (FusedTrackRow) TableName() string { return FusedTrackTableName }
func (NodeStatusRow) TableName() string { return NodeStatusTableName }
func (TickStateRow) TableName() string  { return TickStateTableName }
