package telemetry

import "time"

// Event types emitted by the simulator.
const (
	EventNodeTransition     = "node_transition"
	EventContactSpawned     = "contact_spawned"
	EventContactNeutralized = "contact_neutralized"
	EventContactDeparted    = "contact_departed"
	EventScenarioGenerated  = "scenario_generated"
)

// EventRow is a fire-and-forget simulator event.
type EventRow struct {
	EventID   string    `json:"event_id"`
	SiteID    string    `json:"site_id"`
	EventType string    `json:"event_type"`
	NodeID    string    `json:"node_id,omitempty"`
	ContactID string    `json:"contact_id,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"ts"`
}

func (EventRow) TableName() string { return EventTableName }
