package records

import (
	"encoding/json"
	"time"
)

// Kind categorizes an ingested intelligence record.
type Kind string

const (
	KindThreatReport       Kind = "threat_report"
	KindSummaryReport      Kind = "summary_report"
	KindClassifierAnalysis Kind = "classifier_analysis"

	// KindOther is the fallback for forward-compatible record shapes the
	// engine does not recognize. Such records are still searchable via the
	// generic extractor.
	KindOther Kind = "other"
)

// Record is one ingested intelligence item. Records are append-only: they
// are never mutated or deleted after creation, which is what makes the
// cached embedding safe to reuse across index rebuilds.
type Record struct {
	ID             string          `json:"id"`
	Owner          string          `json:"owner"` // empty means globally visible
	Kind           Kind            `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
	SearchableText string          `json:"searchable_text"`
	Embedding      []float32       `json:"embedding,omitempty"` // nil until lazily computed
	Source         string          `json:"source"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ThreatReport is a user-authored report of a specific threat.
type ThreatReport struct {
	Title           string   `json:"title"`
	ThreatType      string   `json:"threat_type"`
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// SummaryReport is a user-authored roll-up report over a period or topic.
type SummaryReport struct {
	Title            string   `json:"title"`
	SummaryType      string   `json:"summary_type"`
	ExecutiveSummary string   `json:"executive_summary"`
	KeyFindings      []string `json:"key_findings,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
}

// ClassifierAnalysis is the output of the upstream text classification model
// for one analyzed text, stored together with the text itself.
type ClassifierAnalysis struct {
	Text           string             `json:"text"`
	PredictedClass string             `json:"predicted_class"`
	ThreatLabel    string             `json:"threat_label,omitempty"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities,omitempty"`
}
