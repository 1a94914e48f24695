package contact

import (
	"errors"
	"fmt"
)

// ErrUnknownClassification is returned for classification keys outside the profile table.
var ErrUnknownClassification = errors.New("unknown classification")

// Classification identifies a contact type.
type Classification string

const (
	Avian              Classification = "avian"
	RotaryUAV          Classification = "rotaryUAV"
	FixedWingStealth   Classification = "fixedWingStealth"
	LoiteringMunition  Classification = "loiteringMunition"
	CivilianHelo       Classification = "civilianHelo"
	CommercialAirliner Classification = "commercialAirliner"
	FighterJet         Classification = "fighterJet"
)

// Classifications lists every known classification.
var Classifications = []Classification{
	Avian, RotaryUAV, FixedWingStealth, LoiteringMunition,
	CivilianHelo, CommercialAirliner, FighterJet,
}

// ParseClassification converts a key into a Classification.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if _, err := c.Profile(); err != nil {
		return "", err
	}
	return c, nil
}

// Category is the coarse allegiance of a profile.
type Category string

const (
	CategoryHostile  Category = "hostile"
	CategoryCivilian Category = "civilian"
	CategoryFriendly Category = "friendly"
)

// IFF is the identification friend-or-foe status of a contact.
type IFF string

const (
	IFFHostile  IFF = "hostile"
	IFFCivilian IFF = "civilian"
	IFFFriendly IFF = "friendly"
	IFFUnknown  IFF = "unknown"
)

// IFF derives the identification status from the category.
func (c Category) IFF() IFF {
	switch c {
	case CategoryHostile:
		return IFFHostile
	case CategoryCivilian:
		return IFFCivilian
	case CategoryFriendly:
		return IFFFriendly
	}
	return IFFUnknown
}

// IDPrefix returns the contact id prefix for an IFF status.
func (i IFF) IDPrefix() string {
	switch i {
	case IFFHostile:
		return "T"
	case IFFCivilian:
		return "C"
	}
	return "U"
}

// Severity is the threat severity of a contact.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities with critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	}
	return 3
}

// Profile holds the static parameters of a classification.
type Profile struct {
	Category       Category `json:"category"`
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Icon           string   `json:"icon"`
	BaseConfidence float64  `json:"confidence"`
	MinRangeKM     float64  `json:"min_range_km"`
	MaxRangeKM     float64  `json:"max_range_km"`
	MaxSpeedKmh    float64  `json:"max_speed_kmh"`
	RCS            float64  `json:"rcs"`
	MicroDoppler   string   `json:"micro_doppler"`
}

// Profile returns the static profile for c.
func (c Classification) Profile() (Profile, error) {
	switch c {
	case Avian:
		return Profile{
			Category: CategoryCivilian, Type: "Biological", Name: "Avian (Biological)", Icon: "🕊️",
			BaseConfidence: 0.998, MinRangeKM: 1, MaxRangeKM: 15, MaxSpeedKmh: 40, RCS: 0.01,
			MicroDoppler: "Flapping wing oscillation (irregular)",
		}, nil
	case RotaryUAV:
		return Profile{
			Category: CategoryHostile, Type: "UAV", Name: "Rotary UAV (Quad)", Icon: "🚁",
			BaseConfidence: 0.994, MinRangeKM: 2, MaxRangeKM: 25, MaxSpeedKmh: 80, RCS: 0.1,
			MicroDoppler: "High-frequency harmonics, rigid body",
		}, nil
	case FixedWingStealth:
		return Profile{
			Category: CategoryHostile, Type: "Aircraft", Name: "Fixed Wing (Stealth)", Icon: "✈️",
			BaseConfidence: 0.972, MinRangeKM: 50, MaxRangeKM: 400, MaxSpeedKmh: 950, RCS: 0.001,
			MicroDoppler: "Low-RCS, specific JEM signature",
		}, nil
	case LoiteringMunition:
		return Profile{
			Category: CategoryHostile, Type: "Munition", Name: "Loitering Munition", Icon: "💣",
			BaseConfidence: 0.989, MinRangeKM: 5, MaxRangeKM: 60, MaxSpeedKmh: 180, RCS: 0.05,
			MicroDoppler: "Propeller modulation + Dive profile",
		}, nil
	case CivilianHelo:
		return Profile{
			Category: CategoryCivilian, Type: "Aircraft", Name: "Civilian Helicopter", Icon: "🚁",
			BaseConfidence: 0.95, MinRangeKM: 3, MaxRangeKM: 60, MaxSpeedKmh: 250, RCS: 6,
			MicroDoppler: "Main rotor flash, 350 RPM",
		}, nil
	case CommercialAirliner:
		return Profile{
			Category: CategoryCivilian, Type: "Aircraft", Name: "Commercial Airliner", Icon: "✈️",
			BaseConfidence: 0.98, MinRangeKM: 100, MaxRangeKM: 900, MaxSpeedKmh: 900, RCS: 40,
			MicroDoppler: "Dual-spool turbofan modulation",
		}, nil
	case FighterJet:
		return Profile{
			Category: CategoryHostile, Type: "Aircraft", Name: "Fighter Jet", Icon: "✈️",
			BaseConfidence: 0.90, MinRangeKM: 100, MaxRangeKM: 800, MaxSpeedKmh: 2200, RCS: 5,
			MicroDoppler: "Jet Turbine Modulation (JEM)",
		}, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownClassification, string(c))
}

// RadarMode is the operating mode of the radar.
type RadarMode string

const (
	ModeSurveillance RadarMode = "surveillance"
	ModeTracking     RadarMode = "tracking"
	ModeEngagement   RadarMode = "engagement"
)

// ParseRadarMode validates a radar mode string.
func ParseRadarMode(s string) (RadarMode, error) {
	switch m := RadarMode(s); m {
	case ModeSurveillance, ModeTracking, ModeEngagement:
		return m, nil
	}
	return "", fmt.Errorf("unknown radar mode %q", s)
}
