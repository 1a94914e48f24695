package contact

import "sort"

// AllContacts returns the contacts ordered for display: hostiles first,
// hostiles by severity rank then distance, everything else by distance.
func (s *System) AllContacts() []*Contact {
	out := make([]*Contact, len(s.contacts))
	copy(out, s.contacts)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Less reports whether a sorts before b in display order.
func Less(a, b *Contact) bool {
	if a.Threat != b.Threat {
		return a.Threat
	}
	if a.Threat {
		if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
			return ra < rb
		}
	}
	return a.Distance < b.Distance
}

// ContactByID returns the contact with id, or nil.
func (s *System) ContactByID(id string) *Contact {
	for _, c := range s.contacts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ContactsInRange returns contacts with distance in [minKM, maxKM].
func (s *System) ContactsInRange(minKM, maxKM float64) []*Contact {
	return s.filter(func(c *Contact) bool { return c.Distance >= minKM && c.Distance <= maxKM })
}

// HostileContacts returns contacts identified as hostile.
func (s *System) HostileContacts() []*Contact { return s.byIFF(IFFHostile) }

// FriendlyContacts returns contacts identified as friendly.
func (s *System) FriendlyContacts() []*Contact { return s.byIFF(IFFFriendly) }

// CivilianContacts returns contacts identified as civilian.
func (s *System) CivilianContacts() []*Contact { return s.byIFF(IFFCivilian) }

// UnknownContacts returns contacts without a positive identification.
func (s *System) UnknownContacts() []*Contact { return s.byIFF(IFFUnknown) }

// CriticalThreats returns contacts at critical severity.
func (s *System) CriticalThreats() []*Contact {
	return s.filter(func(c *Contact) bool { return c.Severity == SeverityCritical })
}

// ContactStats aggregates the population.
func (s *System) ContactStats() Stats {
	st := Stats{Total: len(s.contacts)}
	for _, c := range s.contacts {
		switch c.IFF {
		case IFFHostile:
			st.Hostile++
		case IFFFriendly:
			st.Friendly++
		case IFFCivilian:
			st.Civilian++
		case IFFUnknown:
			st.Unknown++
		}
		if c.Severity == SeverityCritical {
			st.Critical++
		}
		if len(c.TrackHistory) > 0 {
			st.Tracked++
		}
	}
	return st
}

func (s *System) byIFF(iff IFF) []*Contact {
	return s.filter(func(c *Contact) bool { return c.IFF == iff })
}

func (s *System) filter(keep func(*Contact) bool) []*Contact {
	out := []*Contact{}
	for _, c := range s.contacts {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
