package fusion

import "math"

// ConflictType names the field two detections disagree on.
type ConflictType string

const (
	ConflictDistance ConflictType = "distance"
	ConflictSpeed    ConflictType = "speed"
)

const (
	distanceConflictKM = 50
	speedConflictKmh   = 100
)

// Conflict is a pair of detections whose measurements disagree.
type Conflict struct {
	First      TaggedDetection `json:"first"`
	Second     TaggedDetection `json:"second"`
	Type       ConflictType    `json:"type"`
	Resolution TaggedDetection `json:"resolution"`
}

// ResolveConflicts checks every pair of detections for a distance gap over
// 50 km or a speed gap over 100 km/h. Each conflict is resolved in favour of
// the detection with the higher reliability times measurement quality; ties go
// to the second detection.
func ResolveConflicts(dets []TaggedDetection) []Conflict {
	out := []Conflict{}
	for i := range dets {
		for j := i + 1; j < len(dets); j++ {
			a, b := dets[i], dets[j]
			distance := math.Abs(a.Distance-b.Distance) > distanceConflictKM
			speed := math.Abs(a.Speed-b.Speed) > speedConflictKmh
			if !distance && !speed {
				continue
			}
			c := Conflict{First: a, Second: b, Type: ConflictSpeed, Resolution: b}
			if distance {
				c.Type = ConflictDistance
			}
			if a.Reliability*a.MeasurementQuality > b.Reliability*b.MeasurementQuality {
				c.Resolution = a
			}
			out = append(out, c)
		}
	}
	return out
}
