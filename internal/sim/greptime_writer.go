package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"radar-fusion-sim/internal/telemetry"
)

const (
	defaultGreptimePort  = 4001
	greptimeWriteTimeout = 5 * time.Second
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes rows to GreptimeDB via the ingester client, one
// table per stream.
type GreptimeDBWriter struct {
	client     greptimeClient
	log        *slog.Logger
	trackTable string
	nodeTable  string
	eventTable string
	stateTable string
}

// NewGreptimeDBWriter connects to endpoint (host or host:port) and database.
// Table names come from telemetry's table name variables.
func NewGreptimeDBWriter(endpoint, database string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{
		client:     client,
		log:        log,
		trackTable: telemetry.FusedTrackTableName,
		nodeTable:  telemetry.NodeStatusTableName,
		eventTable: telemetry.EventTableName,
		stateTable: telemetry.TickStateTableName,
	}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptime endpoint %q: bad port: %w", endpoint, err)
	}
	return host, port, nil
}

// Writers exposes the writer on every stream.
func (w *GreptimeDBWriter) Writers() Writers {
	return Writers{Tracks: w, Nodes: w, Events: w, State: w}
}

type columnKind int

const (
	tagColumn columnKind = iota
	fieldColumn
)

type column struct {
	name string
	kind columnKind
	typ  types.ColumnType
}

// newTable declares cols followed by the ts time index.
func newTable(name string, cols []column) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.kind == tagColumn {
			err = tbl.AddTagColumn(c.name, c.typ)
		} else {
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, c.name, err)
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) write(name string, tbl *table.Table, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger().Error("greptime write failed", "table", name, "err", err)
		return err
	}
	w.logger().Debug("greptime write", "table", name, "rows", n)
	return nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

var trackColumns = []column{
	{"site_id", tagColumn, types.STRING},
	{"track_id", tagColumn, types.STRING},
	{"cycle_id", fieldColumn, types.STRING},
	{"classification", fieldColumn, types.STRING},
	{"iff_status", fieldColumn, types.STRING},
	{"severity", fieldColumn, types.STRING},
	{"bearing", fieldColumn, types.FLOAT64},
	{"distance", fieldColumn, types.FLOAT64},
	{"altitude", fieldColumn, types.FLOAT64},
	{"speed", fieldColumn, types.FLOAT64},
	{"heading", fieldColumn, types.FLOAT64},
	{"rcs", fieldColumn, types.FLOAT64},
	{"signal_strength", fieldColumn, types.FLOAT64},
	{"track_quality", fieldColumn, types.FLOAT64},
	{"num_sources", fieldColumn, types.INT64},
	{"source_nodes", fieldColumn, types.STRING},
	{"fusion_quality", fieldColumn, types.FLOAT64},
	{"threat_probability", fieldColumn, types.FLOAT64},
	{"recommendation", fieldColumn, types.STRING},
	{"anomalous", fieldColumn, types.BOOLEAN},
	{"anomaly_type", fieldColumn, types.STRING},
}

// WriteTrack inserts a single fused track row.
func (w *GreptimeDBWriter) WriteTrack(row telemetry.FusedTrackRow) error {
	return w.WriteTracks([]telemetry.FusedTrackRow{row})
}

// WriteTracks inserts fused track rows in one request.
func (w *GreptimeDBWriter) WriteTracks(rows []telemetry.FusedTrackRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.trackTable, trackColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		err := tbl.AddRow(r.SiteID, r.TrackID, r.CycleID, r.Classification, r.IFF, r.Severity,
			r.Bearing, r.Distance, r.Altitude, r.Speed, r.Heading, r.RCS, r.SignalStrength, r.TrackQuality,
			int64(r.NumSources), r.SourceNodes, r.FusionQuality, r.ThreatProbability, r.Recommendation,
			r.Anomalous, r.AnomalyType, r.Timestamp)
		if err != nil {
			return err
		}
	}
	return w.write(w.trackTable, tbl, len(rows))
}

var nodeColumns = []column{
	{"site_id", tagColumn, types.STRING},
	{"node_id", tagColumn, types.STRING},
	{"tier", fieldColumn, types.STRING},
	{"status", fieldColumn, types.STRING},
	{"is_master", fieldColumn, types.BOOLEAN},
	{"cpu_load", fieldColumn, types.FLOAT64},
	{"signal_quality", fieldColumn, types.FLOAT64},
	{"local_detections", fieldColumn, types.INT64},
	{"data_rate_kbps", fieldColumn, types.INT64},
}

// WriteNode inserts a single node status row.
func (w *GreptimeDBWriter) WriteNode(row telemetry.NodeStatusRow) error {
	return w.WriteNodes([]telemetry.NodeStatusRow{row})
}

// WriteNodes inserts node status rows in one request.
func (w *GreptimeDBWriter) WriteNodes(rows []telemetry.NodeStatusRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.nodeTable, nodeColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SiteID, r.NodeID, r.Tier, r.Status, r.IsMaster, r.CPULoad, r.SignalQuality,
			int64(r.LocalDetections), int64(r.DataRate), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.nodeTable, tbl, len(rows))
}

var eventColumns = []column{
	{"site_id", tagColumn, types.STRING},
	{"event_type", tagColumn, types.STRING},
	{"event_id", fieldColumn, types.STRING},
	{"node_id", fieldColumn, types.STRING},
	{"contact_id", fieldColumn, types.STRING},
	{"from_status", fieldColumn, types.STRING},
	{"to_status", fieldColumn, types.STRING},
	{"detail", fieldColumn, types.STRING},
}

// WriteEvent inserts a single event.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{row})
}

// WriteEvents inserts events in one request.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.eventTable, eventColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SiteID, r.EventType, r.EventID, r.NodeID, r.ContactID, r.From, r.To, r.Detail, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.eventTable, tbl, len(rows))
}

var stateColumns = []column{
	{"site_id", tagColumn, types.STRING},
	{"tick", fieldColumn, types.INT64},
	{"cycle_id", fieldColumn, types.STRING},
	{"contacts", fieldColumn, types.INT64},
	{"hostile", fieldColumn, types.INT64},
	{"detections", fieldColumn, types.INT64},
	{"fused_contacts", fieldColumn, types.INT64},
	{"avg_fusion_quality", fieldColumn, types.FLOAT64},
	{"anomalies", fieldColumn, types.INT64},
	{"online_nodes", fieldColumn, types.INT64},
	{"coverage_pct", fieldColumn, types.FLOAT64},
	{"network_latency_ms", fieldColumn, types.INT64},
}

// WriteState inserts a single tick state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.TickStateRow) error {
	return w.WriteStates([]telemetry.TickStateRow{row})
}

// WriteStates inserts tick state rows in one request.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.TickStateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := newTable(w.stateTable, stateColumns)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.SiteID, int64(r.Tick), r.CycleID, int64(r.Contacts), int64(r.Hostile),
			int64(r.Detections), int64(r.FusedContacts), r.AvgFusionQuality, int64(r.Anomalies),
			int64(r.OnlineNodes), r.CoveragePct, int64(r.LatencyMS), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(w.stateTable, tbl, len(rows))
}
