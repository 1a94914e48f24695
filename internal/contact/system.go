package contact

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"radar-fusion-sim/internal/scenario"
)

const (
	// DefaultTrackHistoryMax bounds the number of samples kept per contact.
	DefaultTrackHistoryMax = 20
	// DefaultTrackSampleInterval is the minimum spacing between history samples.
	DefaultTrackSampleInterval = 3 * time.Second
	// DefaultMaxContacts caps the contact population.
	DefaultMaxContacts = 300

	// kilometres moved per tick per km/h of speed
	approachDivisor = 1200
	// non-hostile contacts never come closer than this
	minCivilianDistanceKM = 0.5
	initialTrackQuality   = 0.99
)

// Options tunes the contact system.
type Options struct {
	TrackHistoryMax     int
	TrackSampleInterval time.Duration
	MaxContacts         int
	Catalog             *scenario.Catalog
}

// DefaultOptions returns the standard options with the built-in scenarios.
func DefaultOptions() Options {
	return Options{
		TrackHistoryMax:     DefaultTrackHistoryMax,
		TrackSampleInterval: DefaultTrackSampleInterval,
		MaxContacts:         DefaultMaxContacts,
		Catalog:             scenario.BuiltIn(),
	}
}

// System owns the ground-truth contact population. It is not safe for
// concurrent use; the simulator serializes access.
type System struct {
	opts     Options
	rand     *rand.Rand
	now      func() time.Time
	contacts []*Contact
	nextID   int
	mode     RadarMode
}

// NewSystem creates an empty contact system. A nil rng or clock falls back to
// a time-seeded source and time.Now.
func NewSystem(opts Options, rng *rand.Rand, now func() time.Time) *System {
	if opts.TrackHistoryMax <= 0 {
		opts.TrackHistoryMax = DefaultTrackHistoryMax
	}
	if opts.TrackSampleInterval <= 0 {
		opts.TrackSampleInterval = DefaultTrackSampleInterval
	}
	if opts.Catalog == nil {
		opts.Catalog = scenario.BuiltIn()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &System{opts: opts, rand: rng, now: now, nextID: 1, mode: ModeSurveillance}
}

// Catalog returns the scenario catalog used by GenerateScenario.
func (s *System) Catalog() *scenario.Catalog { return s.opts.Catalog }

// GenerateScenario replaces all contacts with a population drawn from the
// named scenario. The existing contacts are untouched when the name or any
// classification in the scenario is unknown.
func (s *System) GenerateScenario(name string) ([]*Contact, error) {
	sc, err := s.opts.Catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	for _, g := range sc.Groups {
		for _, key := range g.Classifications {
			if _, err := ParseClassification(key); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
		}
	}

	s.contacts = nil
	s.nextID = 1
	for _, g := range sc.Groups {
		n := g.Size(s.rand)
		for i := 0; i < n; i++ {
			if s.opts.MaxContacts > 0 && len(s.contacts) >= s.opts.MaxContacts {
				break
			}
			c, err := s.CreateContact(Classification(g.Pick(s.rand)))
			if err != nil {
				return nil, err
			}
			s.contacts = append(s.contacts, c)
		}
	}
	out := make([]*Contact, len(s.contacts))
	copy(out, s.contacts)
	return out, nil
}

// CreateContact builds a new contact of class c. It does not add it to the system.
func (s *System) CreateContact(c Classification) (*Contact, error) {
	p, err := c.Profile()
	if err != nil {
		return nil, err
	}

	distance := p.MinRangeKM + s.rand.Float64()*(p.MaxRangeKM-p.MinRangeKM)
	bearing := math.Floor(s.rand.Float64() * 360)
	speed := math.Floor(p.MaxSpeedKmh * (0.8 + s.rand.Float64()*0.4))

	severity := SeverityLow
	if p.Category == CategoryHostile {
		severity = SeverityHigh
		if c == LoiteringMunition || c == FixedWingStealth {
			severity = SeverityCritical
		}
	}

	iff := p.Category.IFF()
	now := s.now()
	ct := &Contact{
		ID:             fmt.Sprintf("%s-%02d", iff.IDPrefix(), s.nextID),
		Classification: c,
		ClassData:      p,
		IFF:            iff,
		Severity:       severity,
		Threat:         p.Category == CategoryHostile,
		MicroDoppler:   p.MicroDoppler,
		Confidence:     p.BaseConfidence,
		Bearing:        bearing,
		Distance:       distance,
		Altitude:       math.Floor(s.rand.Float64() * 10000),
		Speed:          speed,
		Heading:        math.Floor(s.rand.Float64() * 360),
		RCS:            p.RCS,
		SignalStrength: math.Max(0.1, 1-distance/500),
		TrackQuality:   initialTrackQuality,
		FirstDetected:  now,
		LastUpdate:     now,
		TrackHistory:   []TrackPoint{},
	}
	s.nextID++
	ct.Trajectory = s.trajectory(ct, now)
	return ct, nil
}

func (s *System) trajectory(c *Contact, now time.Time) Trajectory {
	tti := float64(NoImpactMinutes)
	if c.Speed > 0 {
		tti = c.Distance / c.Speed * 60
	}
	prob := 0.0
	if c.Threat {
		prob = s.rand.Float64() * 100
	}
	return Trajectory{
		TimeToImpactMin: tti,
		EstimatedImpact: now.Add(time.Duration(tti * float64(time.Minute))),
		Probability:     prob,
	}
}

// UpdateContactPositions advances every contact by one tick.
func (s *System) UpdateContactPositions() {
	now := s.now()
	for _, c := range s.contacts {
		s.sampleHistory(c, now)

		if c.Threat {
			c.Distance = math.Max(c.Distance-c.Speed/approachDivisor, 0)
		} else {
			move := (s.rand.Float64() - 0.3) * (c.Speed / approachDivisor)
			c.Distance = math.Max(c.Distance+move, minCivilianDistanceKM)
		}
		c.Bearing = WrapBearing(c.Bearing + s.rand.Float64()*2 - 1)

		c.Trajectory = s.trajectory(c, now)
		c.LastUpdate = now

		if c.Threat {
			if c.Distance < 200 && c.Severity != SeverityCritical {
				c.Severity = SeverityHigh
			}
			if c.Distance < 100 {
				c.Severity = SeverityCritical
			}
		}
	}
}

func (s *System) sampleHistory(c *Contact, now time.Time) {
	if n := len(c.TrackHistory); n > 0 && now.Sub(c.TrackHistory[n-1].Time) < s.opts.TrackSampleInterval {
		return
	}
	c.TrackHistory = append(c.TrackHistory, TrackPoint{Bearing: c.Bearing, Distance: c.Distance, Time: now})
	if over := len(c.TrackHistory) - s.opts.TrackHistoryMax; over > 0 {
		c.TrackHistory = append(c.TrackHistory[:0:0], c.TrackHistory[over:]...)
	}
}

// AddContact appends c to the population.
func (s *System) AddContact(c *Contact) {
	s.contacts = append(s.contacts, c)
}

// RemoveContact drops the contact with id. Unknown ids are ignored.
func (s *System) RemoveContact(id string) {
	kept := s.contacts[:0]
	for _, c := range s.contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(s.contacts); i++ {
		s.contacts[i] = nil
	}
	s.contacts = kept
}

// Len returns the number of contacts.
func (s *System) Len() int { return len(s.contacts) }

// MaxContacts returns the configured population cap, 0 meaning unlimited.
func (s *System) MaxContacts() int { return s.opts.MaxContacts }

// SetRadarMode switches the radar operating mode.
func (s *System) SetRadarMode(m RadarMode) { s.mode = m }

// RadarMode returns the current radar operating mode.
func (s *System) RadarMode() RadarMode { return s.mode }
