package contact

import (
	"testing"
	"time"
)

func TestAllContactsOrdering(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		s, clk := newTestSystem(seed)
		if _, err := s.GenerateScenario("tension"); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 30; i++ {
			clk.Advance(3 * time.Second)
			s.UpdateContactPositions()
		}
		all := s.AllContacts()
		seenNonHostile := false
		for i, c := range all {
			if !c.Threat {
				seenNonHostile = true
			} else if seenNonHostile {
				t.Fatalf("hostile %s after non-hostile", c.ID)
			}
			if i == 0 {
				continue
			}
			prev := all[i-1]
			if prev.Threat && c.Threat {
				if prev.Severity.Rank() > c.Severity.Rank() {
					t.Fatalf("severity order broken: %s(%s) before %s(%s)", prev.ID, prev.Severity, c.ID, c.Severity)
				}
				if prev.Severity == c.Severity && prev.Distance > c.Distance {
					t.Fatalf("distance order broken among %s hostiles", c.Severity)
				}
			}
			if !prev.Threat && !c.Threat && prev.Distance > c.Distance {
				t.Fatalf("non-hostile distance order broken: %.2f before %.2f", prev.Distance, c.Distance)
			}
		}
	}
}

func TestSeverityRank(t *testing.T) {
	if !(SeverityCritical.Rank() < SeverityHigh.Rank() &&
		SeverityHigh.Rank() < SeverityMedium.Rank() &&
		SeverityMedium.Rank() < SeverityLow.Rank()) {
		t.Fatalf("unexpected rank order")
	}
}

func TestFilters(t *testing.T) {
	s, _ := newTestSystem(6)
	for _, cl := range []Classification{Avian, FighterJet, LoiteringMunition, CommercialAirliner} {
		c, err := s.CreateContact(cl)
		if err != nil {
			t.Fatal(err)
		}
		s.AddContact(c)
	}
	unknown, _ := s.CreateContact(Avian)
	unknown.IFF = IFFUnknown
	s.AddContact(unknown)

	if got := len(s.HostileContacts()); got != 2 {
		t.Errorf("hostile = %d, want 2", got)
	}
	if got := len(s.CivilianContacts()); got != 2 {
		t.Errorf("civilian = %d, want 2", got)
	}
	if got := len(s.UnknownContacts()); got != 1 {
		t.Errorf("unknown = %d, want 1", got)
	}
	if got := s.FriendlyContacts(); got == nil || len(got) != 0 {
		t.Errorf("friendly = %v, want empty slice", got)
	}
	if got := len(s.CriticalThreats()); got != 1 {
		t.Errorf("critical = %d, want 1", got)
	}
	if got := len(s.ContactsInRange(0, 10000)); got != 5 {
		t.Errorf("in range = %d, want 5", got)
	}

	st := s.ContactStats()
	if st.Total != 5 || st.Hostile != 2 || st.Civilian != 2 || st.Unknown != 1 || st.Critical != 1 || st.Tracked != 0 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestRemoveContact(t *testing.T) {
	s, _ := newTestSystem(7)
	if _, err := s.GenerateScenario("swarm"); err != nil {
		t.Fatal(err)
	}
	n := s.Len()
	s.RemoveContact("does-not-exist")
	if s.Len() != n {
		t.Fatalf("removing unknown id changed length")
	}
	s.RemoveContact("T-01")
	if s.Len() != n-1 {
		t.Fatalf("len = %d, want %d", s.Len(), n-1)
	}
	if s.ContactByID("T-01") != nil {
		t.Fatalf("T-01 still present")
	}
}

func TestEmptySystem(t *testing.T) {
	s, _ := newTestSystem(1)
	if got := s.AllContacts(); len(got) != 0 {
		t.Fatalf("expected no contacts")
	}
	if st := s.ContactStats(); st != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", st)
	}
	s.UpdateContactPositions()
}

func TestClone(t *testing.T) {
	s, _ := newTestSystem(1)
	c, _ := s.CreateContact(Avian)
	c.TrackHistory = append(c.TrackHistory, TrackPoint{Distance: 3})
	cp := c.Clone()
	cp.TrackHistory[0].Distance = 9
	if c.TrackHistory[0].Distance != 3 {
		t.Fatalf("clone shares history with source")
	}
}

func TestWrapBearing(t *testing.T) {
	cases := map[float64]float64{-1: 359, 360: 0, 725: 5, 0: 0}
	for in, want := range cases {
		if got := WrapBearing(in); got != want {
			t.Errorf("WrapBearing(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseRadarMode(t *testing.T) {
	if _, err := ParseRadarMode("tracking"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseRadarMode("jamming"); err == nil {
		t.Fatal("expected error")
	}
}
