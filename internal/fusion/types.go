package fusion

import (
	"time"

	"radar-fusion-sim/internal/contact"
	"radar-fusion-sim/internal/network"
)

// TaggedDetection is a node detection tagged with the node that produced it.
type TaggedDetection struct {
	network.Detection
	NodeID   string       `json:"node_id"`
	NodeTier network.Tier `json:"node_tier"`
}

// Metadata describes how a fused contact was produced.
type Metadata struct {
	SourceNodes     []string  `json:"source_nodes"`
	NumSources      int       `json:"num_sources"`
	FusionQuality   float64   `json:"fusion_quality"`
	FusionTimestamp time.Time `json:"fusion_timestamp"`
	CycleID         string    `json:"cycle_id,omitempty"`
}

// FusedContact is the best estimate of one physical contact for a cycle.
// Identity comes from the first cluster member; kinematic and radar fields
// are quality-weighted means. SourceContactID refers to the ground-truth
// contact by id only.
type FusedContact struct {
	contact.Contact
	SourceContactID      string                `json:"source_contact_id"`
	Metadata             Metadata              `json:"fusion_metadata"`
	MLClassification     *ClassificationResult `json:"ml_classification,omitempty"`
	TrajectoryPrediction *TrajectoryPrediction `json:"trajectory_prediction,omitempty"`
	AnomalyDetection     *AnomalyResult        `json:"anomaly_detection,omitempty"`
}

// ClassificationResult is produced by a Classifier.
type ClassificationResult struct {
	Confidence        float64 `json:"classification_confidence"`
	ThreatProbability float64 `json:"threat_probability"`
	QuantumScore      float64 `json:"quantum_score"`
	Recommendation    string  `json:"recommendation"`
}

// PredictedPosition is one extrapolated point of a trajectory.
type PredictedPosition struct {
	SecondsAhead float64 `json:"t"`
	Distance     float64 `json:"distance"`
	Bearing      float64 `json:"bearing"`
	Confidence   float64 `json:"confidence"`
}

// InterceptWindow is the time range, in seconds ahead, best suited for an intercept.
type InterceptWindow struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Distance float64 `json:"distance"`
}

// TrajectoryPrediction is produced by a TrajectoryPredictor.
type TrajectoryPrediction struct {
	Predictions     []PredictedPosition `json:"predictions"`
	InterceptWindow *InterceptWindow    `json:"intercept_window,omitempty"`
	ThreatLevel     string              `json:"threat_level"`
}

// AnomalyResult is produced by an AnomalyDetector.
type AnomalyResult struct {
	IsAnomalous bool    `json:"is_anomalous"`
	AnomalyType string  `json:"anomaly_type"`
	Score       float64 `json:"anomaly_score"`
	Confidence  float64 `json:"confidence"`
}

// Classifier scores a fused contact.
type Classifier interface {
	Classify(c *contact.Contact) ClassificationResult
}

// TrajectoryPredictor extrapolates a contact's track. It is only called for
// contacts with more than three history samples; ok=false means no prediction.
type TrajectoryPredictor interface {
	Predict(c *contact.Contact) (p TrajectoryPrediction, ok bool)
}

// AnomalyDetector flags unusual contacts.
type AnomalyDetector interface {
	Detect(c *contact.Contact) AnomalyResult
}

// Enrichers groups the optional enrichment collaborators. Any may be nil.
type Enrichers struct {
	Classifier Classifier
	Predictor  TrajectoryPredictor
	Anomaly    AnomalyDetector
}

// Stats summarizes the last fusion cycle.
type Stats struct {
	FusedContacts        int     `json:"fused_contacts"`
	Detections           int     `json:"detections"`
	AvgSourcesPerContact float64 `json:"avg_sources_per_contact"`
	AvgFusionQuality     float64 `json:"avg_fusion_quality"`
	MLEnhanced           int     `json:"ml_enhanced"`
	TrajectoryPredicted  int     `json:"trajectory_predicted"`
	AnomaliesDetected    int     `json:"anomalies_detected"`
}
