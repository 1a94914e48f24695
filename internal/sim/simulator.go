// Simulator orchestrating contacts, sensor nodes and fusion ticks
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"radar-fusion-sim/internal/config"
	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/enrich"
	"radar-fusion-sim/internal/fusion"
	"radar-fusion-sim/internal/logging"
	"radar-fusion-sim/internal/metrics"
	"radar-fusion-sim/internal/network"
	"radar-fusion-sim/internal/scenario"
	"radar-fusion-sim/internal/telemetry"
)

const maxRecentEvents = 50

var tracer = otel.Tracer("radar-fusion-sim/sim")

// Snapshot is the state of the simulation after a tick or an operator
// command. A published snapshot is never mutated.
type Snapshot struct {
	Tick         uint64                `json:"tick"`
	Time         time.Time             `json:"time"`
	CycleID      string                `json:"cycle_id"`
	RadarMode    contact.RadarMode     `json:"radar_mode"`
	Contacts     []*contact.Contact    `json:"contacts"`
	Fused        []fusion.FusedContact `json:"fused"`
	Nodes        []network.NodeState   `json:"nodes"`
	ContactStats contact.Stats         `json:"contact_stats"`
	Network      network.Stats         `json:"network"`
	Fusion       fusion.Stats          `json:"fusion"`
	Events       []telemetry.EventRow  `json:"events"`
}

// Simulator owns the contact population, the sensor network and the fusion
// engine, and drives them from a single tick goroutine.
type Simulator struct {
	cfg      *config.SimulationConfig
	siteID   string
	contacts *contact.System
	network  *network.Network
	fusion   *fusion.Engine
	writers  Writers
	rand     *rand.Rand
	now      func() time.Time
	metrics  bool

	mu       sync.Mutex
	tick     uint64
	lastTick time.Time
	recent   []telemetry.EventRow
	snap     atomic.Pointer[Snapshot]
}

// NewSimulator builds the simulation described by cfg and generates the
// configured scenario. A nil rng is seeded from cfg.Seed, or from the clock
// when the seed is 0. A nil now uses time.Now.
func NewSimulator(cfg *config.SimulationConfig, w Writers, rng *rand.Rand, now func() time.Time) (*Simulator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	catalog := scenario.BuiltIn()
	if cfg.ScenarioFile != "" {
		if err := catalog.LoadInto(cfg.ScenarioFile); err != nil {
			return nil, fmt.Errorf("load scenarios: %w", err)
		}
	}

	cs := contact.NewSystem(contact.Options{
		TrackHistoryMax:     cfg.Tracks.HistoryMax,
		TrackSampleInterval: cfg.Tracks.SampleInterval,
		MaxContacts:         cfg.Tracks.MaxContacts,
		Catalog:             catalog,
	}, rng, now)

	net, err := network.New(network.Config{
		LongRangeCount:     cfg.Network.LongRange,
		MediumRangeCount:   cfg.Network.MediumRange,
		ShortRangeCount:    cfg.Network.ShortRange,
		FailureProbability: cfg.Network.FailureProbability,
	}, rng, now)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}

	var enrichers fusion.Enrichers
	if cfg.Fusion.Enrichment {
		enrichers = enrich.New(rng).Enrichers()
	}
	eng := fusion.NewEngine(fusion.Config{
		CorrelationThreshold: cfg.Fusion.CorrelationThreshold,
		IncludeDegraded:      cfg.Fusion.IncludeDegraded,
	}, net, enrichers, rng)

	s := &Simulator{
		cfg:      cfg,
		siteID:   cfg.SiteID,
		contacts: cs,
		network:  net,
		fusion:   eng,
		writers:  w,
		rand:     rng,
		now:      now,
		metrics:  cfg.Metrics.Enabled,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.Scenario != "" {
		if _, err := s.generateLocked(context.Background(), cfg.Scenario); err != nil {
			return nil, err
		}
	} else {
		s.publishLocked(now(), nil)
	}
	return s, nil
}

// Config returns the configuration the simulator was built from.
func (s *Simulator) Config() *config.SimulationConfig { return s.cfg }

// Snapshot returns the last published snapshot. It never blocks on a tick.
func (s *Simulator) Snapshot() *Snapshot { return s.snap.Load() }

// Scenarios lists the scenario names the simulator can generate.
func (s *Simulator) Scenarios() []string { return s.contacts.Catalog().Names() }

// Conflicts reports measurement conflicts of the last fusion cycle.
func (s *Simulator) Conflicts() []fusion.Conflict { return s.fusion.Conflicts() }

// Run drives detection ticks and metric refreshes until ctx is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	interval := s.cfg.Intervals.Detection
	if interval <= 0 {
		interval = config.Default().Intervals.Detection
	}
	log.Info("starting simulator", "site_id", s.siteID, "tick_interval", interval, "nodes", len(s.Snapshot().Nodes))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var metricsC <-chan time.Time
	if s.metrics && s.cfg.Intervals.Metrics > 0 {
		mt := time.NewTicker(s.cfg.Intervals.Metrics)
		defer mt.Stop()
		metricsC = mt.C
	}

	for {
		select {
		case <-ticker.C:
			s.Tick(ctx)
		case <-metricsC:
			s.publishMetrics()
		case <-ctx.Done():
			log.Info("stopping simulator", "ticks", s.Snapshot().Tick)
			return
		}
	}
}

func (s *Simulator) publishMetrics() {
	snap := s.Snapshot()
	st := snap.ContactStats
	metrics.SetContacts(st.Hostile, st.Civilian, st.Friendly, st.Unknown)
	metrics.SetNetwork(snap.Network.Coverage)
	metrics.SetFusion(snap.Fusion)
}

// newID draws an event id from the simulator's random source so seeded runs
// are reproducible.
func (s *Simulator) newID() string {
	id, err := uuid.NewRandomFromReader(s.rand)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// publishLocked records events and stores a fresh snapshot. s.mu must be held.
func (s *Simulator) publishLocked(now time.Time, events []telemetry.EventRow) *Snapshot {
	s.recent = append(s.recent, events...)
	if over := len(s.recent) - maxRecentEvents; over > 0 {
		s.recent = append(s.recent[:0:0], s.recent[over:]...)
	}

	live := s.contacts.AllContacts()
	contacts := make([]*contact.Contact, len(live))
	for i, c := range live {
		contacts[i] = c.Clone()
	}
	res := s.fusion.Last()
	snap := &Snapshot{
		Tick:         s.tick,
		Time:         now,
		CycleID:      res.CycleID,
		RadarMode:    s.contacts.RadarMode(),
		Contacts:     contacts,
		Fused:        res.Contacts,
		Nodes:        s.network.Snapshot(),
		ContactStats: s.contacts.ContactStats(),
		Network:      s.network.NetworkStats(),
		Fusion:       res.Stats,
		Events:       append([]telemetry.EventRow(nil), s.recent...),
	}
	s.snap.Store(snap)
	return snap
}

// report logs and counts a writer failure. Failures never abort a tick.
func (s *Simulator) report(ctx context.Context, stream string, err error) {
	if err == nil {
		return
	}
	logging.FromContext(ctx).Error("write failed", "stream", stream, "err", err)
	if s.metrics {
		metrics.ObserveWriteError(stream)
	}
}

func (s *Simulator) emitEvents(ctx context.Context, events []telemetry.EventRow) {
	if s.metrics {
		for _, ev := range events {
			metrics.ObserveEvent(ev.EventType)
		}
	}
	s.report(ctx, "events", writeEvents(s.writers.Events, events))
}

// GenerateScenario replaces the contact population with the named scenario
// and returns the number of contacts created.
func (s *Simulator) GenerateScenario(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateLocked(ctx, name)
}

func (s *Simulator) generateLocked(ctx context.Context, name string) (int, error) {
	created, err := s.contacts.GenerateScenario(name)
	if err != nil {
		return 0, err
	}
	now := s.now()
	ev := telemetry.EventRow{
		EventID:   s.newID(),
		SiteID:    s.siteID,
		EventType: telemetry.EventScenarioGenerated,
		Detail:    fmt.Sprintf("%s: %d contacts", name, len(created)),
		Timestamp: now,
	}
	// the published fused set must describe the new population
	s.fusion.FuseMultiNodeData(ctx, s.contacts.AllContacts())
	s.publishLocked(now, []telemetry.EventRow{ev})
	s.emitEvents(ctx, []telemetry.EventRow{ev})
	logging.FromContext(ctx).Info("scenario generated", "scenario", name, "contacts", len(created))
	return len(created), nil
}

// SetNodeStatus applies an operator status override to a node.
func (s *Simulator) SetNodeStatus(ctx context.Context, id string, status network.Status) (network.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, err := s.network.SetStatus(id, status)
	if err != nil {
		return tr, err
	}
	now := s.now()
	var events []telemetry.EventRow
	if tr.From != tr.To {
		events = append(events, telemetry.TransitionEvent(s.siteID, s.newID(), tr, now))
		if s.metrics {
			metrics.ObserveTransition(tr)
		}
		logging.FromContext(ctx).Info("node status set", "node_id", tr.NodeID, "from", tr.From, "to", tr.To)
		s.fusion.FuseMultiNodeData(ctx, s.contacts.AllContacts())
	}
	s.publishLocked(now, events)
	s.emitEvents(ctx, events)
	return tr, nil
}

// SetRadarMode switches the operating mode of the radar.
func (s *Simulator) SetRadarMode(mode contact.RadarMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts.SetRadarMode(mode)
	s.publishLocked(s.now(), nil)
}
