package contact

import (
	"math"
	"time"
)

// NoImpactMinutes is the time-to-impact reported for a stationary contact.
const NoImpactMinutes = 999

// TrackPoint is one sampled position in a contact's history.
type TrackPoint struct {
	Bearing  float64   `json:"bearing"`
	Distance float64   `json:"distance"`
	Time     time.Time `json:"time"`
}

// Trajectory is the time-to-impact estimate of a contact.
type Trajectory struct {
	TimeToImpactMin float64   `json:"time_to_impact_min"`
	EstimatedImpact time.Time `json:"estimated_impact"`
	Probability     float64   `json:"probability"`
}

// Contact is a simulated object in the airspace. Distance is in km,
// altitude in meters and speed in km/h.
type Contact struct {
	ID                 string         `json:"id"`
	Classification     Classification `json:"classification"`
	ClassData          Profile        `json:"class_data"`
	IFF                IFF            `json:"iff_status"`
	Severity           Severity       `json:"severity"`
	Threat             bool           `json:"threat"`
	MicroDoppler       string         `json:"micro_doppler"`
	Confidence         float64        `json:"confidence"`
	Bearing            float64        `json:"bearing"`
	Distance           float64        `json:"distance"`
	Altitude           float64        `json:"altitude"`
	Speed              float64        `json:"speed"`
	Heading            float64        `json:"heading"`
	RCS                float64        `json:"rcs"`
	SignalStrength     float64        `json:"signal_strength"`
	TrackQuality       float64        `json:"track_quality"`
	QuantumCorrelation float64        `json:"quantum_correlation,omitempty"`
	FirstDetected      time.Time      `json:"first_detected"`
	LastUpdate         time.Time      `json:"last_update"`
	Trajectory         Trajectory     `json:"trajectory"`
	TrackHistory       []TrackPoint   `json:"track_history"`
}

// Clone returns a copy of c that shares no slices with it.
func (c *Contact) Clone() *Contact {
	cp := *c
	if c.TrackHistory != nil {
		cp.TrackHistory = make([]TrackPoint, len(c.TrackHistory))
		copy(cp.TrackHistory, c.TrackHistory)
	}
	return &cp
}

// Stats aggregates contact counts.
type Stats struct {
	Total    int `json:"total"`
	Hostile  int `json:"hostile"`
	Friendly int `json:"friendly"`
	Civilian int `json:"civilian"`
	Unknown  int `json:"unknown"`
	Critical int `json:"critical"`
	Tracked  int `json:"tracked"`
}

// WrapBearing normalizes degrees into [0,360).
func WrapBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}
