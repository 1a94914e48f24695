package contact

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"radar-fusion-sim/internal/scenario"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestSystem(seed int64) (*System, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewSystem(DefaultOptions(), rand.New(rand.NewSource(seed)), clk.Now), clk
}

func TestGenerateSwarmScenario(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s, _ := newTestSystem(seed)
		contacts, err := s.GenerateScenario("swarm")
		if err != nil {
			t.Fatalf("GenerateScenario: %v", err)
		}
		var stealth, munitions, clutter int
		for _, c := range contacts {
			switch c.Classification {
			case FixedWingStealth:
				stealth++
				if !c.Threat {
					t.Fatalf("stealth contact %s not a threat", c.ID)
				}
			case LoiteringMunition:
				munitions++
				if !c.Threat {
					t.Fatalf("munition contact %s not a threat", c.ID)
				}
			case Avian, CivilianHelo:
				clutter++
			default:
				t.Fatalf("unexpected classification %s", c.Classification)
			}
		}
		if stealth != 1 || munitions != 50 {
			t.Fatalf("seed %d: got %d stealth, %d munitions", seed, stealth, munitions)
		}
		if clutter < 20 || clutter > 30 {
			t.Fatalf("seed %d: clutter %d outside [20,30]", seed, clutter)
		}
		if s.Len() != len(contacts) {
			t.Fatalf("Len %d != generated %d", s.Len(), len(contacts))
		}
	}
}

func TestGenerateMixedScenario(t *testing.T) {
	s, _ := newTestSystem(3)
	contacts, err := s.GenerateScenario("mixed")
	if err != nil {
		t.Fatalf("GenerateScenario: %v", err)
	}
	if len(contacts) < 50 || len(contacts) > 100 {
		t.Fatalf("mixed produced %d contacts", len(contacts))
	}
	allowed := map[Classification]bool{Avian: true, RotaryUAV: true, CommercialAirliner: true, FighterJet: true}
	for _, c := range contacts {
		if !allowed[c.Classification] {
			t.Fatalf("unexpected classification %s in mixed", c.Classification)
		}
	}
}

func TestGenerateScenarioResetsIDs(t *testing.T) {
	s, _ := newTestSystem(4)
	if _, err := s.GenerateScenario("mixed"); err != nil {
		t.Fatal(err)
	}
	contacts, err := s.GenerateScenario("swarm")
	if err != nil {
		t.Fatal(err)
	}
	if contacts[0].ID != "T-01" {
		t.Fatalf("first id = %s, want T-01", contacts[0].ID)
	}
	if contacts[1].ID != "T-02" {
		t.Fatalf("second id = %s, want T-02", contacts[1].ID)
	}
}

func TestGenerateScenarioUnknownKeepsContacts(t *testing.T) {
	s, _ := newTestSystem(5)
	if _, err := s.GenerateScenario("swarm"); err != nil {
		t.Fatal(err)
	}
	before := s.Len()
	_, err := s.GenerateScenario("nope")
	if !errors.Is(err, scenario.ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
	if s.Len() != before {
		t.Fatalf("contacts changed after failed generation")
	}
}

func TestGenerateScenarioRejectsBadClassification(t *testing.T) {
	cat := scenario.NewCatalog()
	if err := cat.Add(scenario.Scenario{Name: "bad", Groups: []scenario.Group{{Classifications: []string{"zeppelin"}, Count: 1}}}); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Catalog = cat
	s := NewSystem(opts, rand.New(rand.NewSource(1)), nil)
	if _, err := s.GenerateScenario("bad"); !errors.Is(err, ErrUnknownClassification) {
		t.Fatalf("expected ErrUnknownClassification, got %v", err)
	}
}

func TestCreateContactUnknownClassification(t *testing.T) {
	s, _ := newTestSystem(1)
	c, err := s.CreateContact("zeppelin")
	if !errors.Is(err, ErrUnknownClassification) {
		t.Fatalf("expected ErrUnknownClassification, got %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil contact on error")
	}
}

func TestCreateContactRanges(t *testing.T) {
	s, clk := newTestSystem(11)
	for _, cl := range Classifications {
		p, _ := cl.Profile()
		for i := 0; i < 50; i++ {
			c, err := s.CreateContact(cl)
			if err != nil {
				t.Fatalf("CreateContact(%s): %v", cl, err)
			}
			if c.Distance < p.MinRangeKM || c.Distance > p.MaxRangeKM {
				t.Fatalf("%s distance %.2f outside band", cl, c.Distance)
			}
			if c.Bearing < 0 || c.Bearing >= 360 {
				t.Fatalf("bearing %.2f out of range", c.Bearing)
			}
			if c.Speed < p.MaxSpeedKmh*0.8-1 || c.Speed > p.MaxSpeedKmh*1.2 {
				t.Fatalf("%s speed %.2f outside band", cl, c.Speed)
			}
			if c.Altitude < 0 || c.Altitude >= 10000 {
				t.Fatalf("altitude %.2f out of range", c.Altitude)
			}
			if c.SignalStrength < 0.1 || c.SignalStrength > 1 {
				t.Fatalf("signal %.3f out of range", c.SignalStrength)
			}
			if c.RCS != p.RCS || c.MicroDoppler != p.MicroDoppler {
				t.Fatalf("profile fields not copied for %s", cl)
			}
			if !c.FirstDetected.Equal(clk.Now()) {
				t.Fatalf("first detected not stamped from clock")
			}
		}
	}
}

func TestCreateContactSeverityAndPrefix(t *testing.T) {
	s, _ := newTestSystem(2)
	cases := []struct {
		cl       Classification
		severity Severity
		prefix   string
	}{
		{LoiteringMunition, SeverityCritical, "T-"},
		{FixedWingStealth, SeverityCritical, "T-"},
		{RotaryUAV, SeverityHigh, "T-"},
		{FighterJet, SeverityHigh, "T-"},
		{Avian, SeverityLow, "C-"},
		{CommercialAirliner, SeverityLow, "C-"},
	}
	for _, tc := range cases {
		c, err := s.CreateContact(tc.cl)
		if err != nil {
			t.Fatal(err)
		}
		if c.Severity != tc.severity {
			t.Errorf("%s severity = %s, want %s", tc.cl, c.Severity, tc.severity)
		}
		if !strings.HasPrefix(c.ID, tc.prefix) {
			t.Errorf("%s id %s missing prefix %s", tc.cl, c.ID, tc.prefix)
		}
	}
}

func TestTrajectoryStationary(t *testing.T) {
	s, _ := newTestSystem(2)
	c, _ := s.CreateContact(RotaryUAV)
	c.Speed = 0
	tr := s.trajectory(c, time.Now())
	if tr.TimeToImpactMin != NoImpactMinutes {
		t.Fatalf("time to impact = %v, want %v", tr.TimeToImpactMin, NoImpactMinutes)
	}
}

func TestUpdateContactPositionsInvariants(t *testing.T) {
	s, clk := newTestSystem(9)
	if _, err := s.GenerateScenario("mixed"); err != nil {
		t.Fatal(err)
	}
	critical := map[string]bool{}
	for tick := 0; tick < 400; tick++ {
		clk.Advance(3 * time.Second)
		s.UpdateContactPositions()
		for _, c := range s.AllContacts() {
			if len(c.TrackHistory) > DefaultTrackHistoryMax {
				t.Fatalf("history length %d exceeds max", len(c.TrackHistory))
			}
			if c.Distance < 0 {
				t.Fatalf("negative distance %.3f", c.Distance)
			}
			if !c.Threat && c.Distance < minCivilianDistanceKM {
				t.Fatalf("non-hostile %s closer than floor: %.3f", c.ID, c.Distance)
			}
			if c.Bearing < 0 || c.Bearing >= 360 {
				t.Fatalf("bearing %.3f not wrapped", c.Bearing)
			}
			if critical[c.ID] && c.Severity != SeverityCritical {
				t.Fatalf("contact %s de-escalated to %s", c.ID, c.Severity)
			}
			if c.Severity == SeverityCritical {
				critical[c.ID] = true
			}
		}
	}
}

func TestHistorySamplingThrottled(t *testing.T) {
	s, clk := newTestSystem(1)
	c, _ := s.CreateContact(Avian)
	s.AddContact(c)
	s.UpdateContactPositions()
	clk.Advance(time.Second)
	s.UpdateContactPositions()
	if got := len(c.TrackHistory); got != 1 {
		t.Fatalf("history after 1s = %d, want 1", got)
	}
	clk.Advance(2 * time.Second)
	s.UpdateContactPositions()
	if got := len(c.TrackHistory); got != 2 {
		t.Fatalf("history after 3s = %d, want 2", got)
	}
}

func TestEscalation(t *testing.T) {
	s, _ := newTestSystem(1)
	c, _ := s.CreateContact(FighterJet)
	c.Severity = SeverityLow
	c.Distance = 150
	s.AddContact(c)
	s.UpdateContactPositions()
	if c.Severity != SeverityHigh {
		t.Fatalf("severity at %.1f km = %s, want high", c.Distance, c.Severity)
	}
	c.Distance = 99
	s.UpdateContactPositions()
	if c.Severity != SeverityCritical {
		t.Fatalf("severity = %s, want critical", c.Severity)
	}
	c.Distance = 500
	s.UpdateContactPositions()
	if c.Severity != SeverityCritical {
		t.Fatalf("critical contact de-escalated to %s", c.Severity)
	}
}

func TestHostileDistanceFloor(t *testing.T) {
	s, _ := newTestSystem(1)
	c, _ := s.CreateContact(FighterJet)
	c.Distance = 0.5
	s.AddContact(c)
	s.UpdateContactPositions()
	if c.Distance != 0 {
		t.Fatalf("distance = %v, want 0", c.Distance)
	}
}
