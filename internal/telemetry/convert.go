package telemetry

import (
	"fmt"
	"strings"
	"time"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/network"
)

// FusedTrackRows flattens a fusion cycle into one row per fused contact.
func FusedTrackRows(siteID string, res *fusion.Result) []FusedTrackRow {
	if res == nil || len(res.Contacts) == 0 {
		return nil
	}
	rows := make([]FusedTrackRow, 0, len(res.Contacts))
	for _, fc := range res.Contacts {
		row := FusedTrackRow{
			SiteID:         siteID,
			TrackID:        fc.ID,
			CycleID:        res.CycleID,
			Classification: string(fc.Classification),
			IFF:            string(fc.IFF),
			Severity:       string(fc.Severity),
			Bearing:        fc.Bearing,
			Distance:       fc.Distance,
			Altitude:       fc.Altitude,
			Speed:          fc.Speed,
			Heading:        fc.Heading,
			RCS:            fc.RCS,
			SignalStrength: fc.SignalStrength,
			TrackQuality:   fc.TrackQuality,
			NumSources:     fc.Metadata.NumSources,
			SourceNodes:    strings.Join(fc.Metadata.SourceNodes, ","),
			FusionQuality:  fc.Metadata.FusionQuality,
			Timestamp:      res.Timestamp,
		}
		if ml := fc.MLClassification; ml != nil {
			row.ThreatProbability = ml.ThreatProbability
			row.Recommendation = ml.Recommendation
		}
		if an := fc.AnomalyDetection; an != nil {
			row.Anomalous = an.IsAnomalous
			row.AnomalyType = an.AnomalyType
		}
		rows = append(rows, row)
	}
	return rows
}

// NodeStatusRows converts node snapshots into status rows stamped with ts.
func NodeStatusRows(siteID string, nodes []network.NodeState, ts time.Time) []NodeStatusRow {
	rows := make([]NodeStatusRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, NodeStatusRow{
			SiteID:          siteID,
			NodeID:          n.ID,
			Tier:            string(n.Tier),
			Status:          string(n.Status),
			IsMaster:        n.IsMaster,
			CPULoad:         n.Metrics.CPULoad,
			SignalQuality:   n.Metrics.SignalQuality,
			LocalDetections: n.LocalDetections,
			DataRate:        n.Metrics.DataRate,
			Timestamp:       ts,
		})
	}
	return rows
}

// TransitionEvent describes a node status change.
func TransitionEvent(siteID, eventID string, t network.Transition, ts time.Time) EventRow {
	return EventRow{
		EventID:   eventID,
		SiteID:    siteID,
		EventType: EventNodeTransition,
		NodeID:    t.NodeID,
		From:      string(t.From),
		To:        string(t.To),
		Detail:    string(t.Tier),
		Timestamp: ts,
	}
}

// ContactEvent describes a contact entering or leaving the airspace.
func ContactEvent(siteID, eventID, eventType string, c *contact.Contact, ts time.Time) EventRow {
	return EventRow{
		EventID:   eventID,
		SiteID:    siteID,
		EventType: eventType,
		ContactID: c.ID,
		Detail:    fmt.Sprintf("%s %s at %.1fkm", c.IFF, c.Classification, c.Distance),
		Timestamp: ts,
	}
}
