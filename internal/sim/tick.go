package sim

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/metrics"
	"radar-fusion-sim/internal/telemetry"
)

// Tick advances the simulation by one detection interval: contacts move,
// node metrics drift, nodes may fail or recover, the fusion engine runs,
// new contacts may appear and close contacts may be removed. The resulting
// rows are written and a new snapshot is published.
func (s *Simulator) Tick(ctx context.Context) *Snapshot {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "sim.tick")
	defer span.End()
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	elapsed := s.cfg.Intervals.Detection
	if !s.lastTick.IsZero() {
		elapsed = now.Sub(s.lastTick)
	}
	s.lastTick = now
	s.tick++

	s.contacts.UpdateContactPositions()
	s.network.UpdateNodeMetrics(elapsed)

	var events []telemetry.EventRow
	if s.rand.Float64() < s.cfg.FailureCheckProbability {
		for _, tr := range s.network.SimulateNodeFailures() {
			log.Info("node status changed", "node_id", tr.NodeID, "tier", tr.Tier, "from", tr.From, "to", tr.To)
			events = append(events, telemetry.TransitionEvent(s.siteID, s.newID(), tr, now))
			if s.metrics {
				metrics.ObserveTransition(tr)
			}
		}
	}

	s.fusion.FuseMultiNodeData(ctx, s.contacts.AllContacts())
	res := s.fusion.Last()

	if ev, ok := s.maybeSpawn(now); ok {
		log.Info("new contact detected", "contact_id", ev.ContactID, "detail", ev.Detail)
		events = append(events, ev)
	}
	for _, ev := range s.removeClose(now) {
		log.Info("contact removed", "contact_id", ev.ContactID, "event", ev.EventType)
		events = append(events, ev)
	}

	snap := s.publishLocked(now, events)

	s.report(ctx, "tracks", writeTracks(s.writers.Tracks, telemetry.FusedTrackRows(s.siteID, res)))
	s.report(ctx, "nodes", writeNodes(s.writers.Nodes, telemetry.NodeStatusRows(s.siteID, snap.Nodes, now)))
	s.emitEvents(ctx, events)
	s.report(ctx, "state", writeStates(s.writers.State, []telemetry.TickStateRow{stateRow(s.siteID, snap)}))

	if s.metrics {
		metrics.ObserveTick(time.Since(start))
	}
	span.SetAttributes(
		attribute.Int64("sim.tick", int64(snap.Tick)),
		attribute.Int("sim.contacts", snap.ContactStats.Total),
		attribute.Int("sim.fused", snap.Fusion.FusedContacts),
		attribute.Int("sim.events", len(events)),
	)
	log.Debug("tick", "tick", snap.Tick, "contacts", snap.ContactStats.Total, "fused", snap.Fusion.FusedContacts, "online_nodes", snap.Network.OnlineNodes)
	return snap
}

// maybeSpawn occasionally adds a contact while the population is small.
func (s *Simulator) maybeSpawn(now time.Time) (telemetry.EventRow, bool) {
	t := s.cfg.Tracks
	n := s.contacts.Len()
	if n >= t.SpawnBelow {
		return telemetry.EventRow{}, false
	}
	if limit := s.contacts.MaxContacts(); limit > 0 && n >= limit {
		return telemetry.EventRow{}, false
	}
	if s.rand.Float64() >= t.SpawnProbability {
		return telemetry.EventRow{}, false
	}
	class := contact.Classifications[s.rand.Intn(len(contact.Classifications))]
	c, err := s.contacts.CreateContact(class)
	if err != nil {
		return telemetry.EventRow{}, false
	}
	s.contacts.AddContact(c)
	return telemetry.ContactEvent(s.siteID, s.newID(), telemetry.EventContactSpawned, c, now), true
}

// removeClose drops contacts inside the neutralization range with the
// configured probability. Threats are neutralized, the rest depart.
func (s *Simulator) removeClose(now time.Time) []telemetry.EventRow {
	t := s.cfg.Tracks
	var events []telemetry.EventRow
	for _, c := range s.contacts.AllContacts() {
		if c.Distance >= t.NeutralizeRangeKM || s.rand.Float64() >= t.NeutralizeProbability {
			continue
		}
		s.contacts.RemoveContact(c.ID)
		typ := telemetry.EventContactDeparted
		if c.Threat {
			typ = telemetry.EventContactNeutralized
		}
		events = append(events, telemetry.ContactEvent(s.siteID, s.newID(), typ, c, now))
	}
	return events
}

func stateRow(siteID string, snap *Snapshot) telemetry.TickStateRow {
	return telemetry.TickStateRow{
		SiteID:           siteID,
		Tick:             snap.Tick,
		CycleID:          snap.CycleID,
		Contacts:         snap.ContactStats.Total,
		Hostile:          snap.ContactStats.Hostile,
		Detections:       snap.Fusion.Detections,
		FusedContacts:    snap.Fusion.FusedContacts,
		AvgFusionQuality: snap.Fusion.AvgFusionQuality,
		Anomalies:        snap.Fusion.AnomaliesDetected,
		OnlineNodes:      snap.Network.OnlineNodes,
		CoveragePct:      snap.Network.CoveragePct,
		LatencyMS:        snap.Network.NetworkLatencyMS,
		Timestamp:        snap.Time,
	}
}
