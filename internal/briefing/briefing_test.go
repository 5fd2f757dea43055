package briefing

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hazemfarra/argus/internal/index"
	"github.com/hazemfarra/argus/internal/records"
)

func threatResult(t *testing.T, owner string, score float64, report records.ThreatReport) index.Result {
	t.Helper()
	payload, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return index.Result{
		Record: records.Record{
			ID:             "r-" + report.Title,
			Owner:          owner,
			Kind:           records.KindThreatReport,
			Payload:        payload,
			SearchableText: records.SearchableText(records.KindThreatReport, payload),
			CreatedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Score: score,
	}
}

func TestAssembleEmptyReturnsSentinel(t *testing.T) {
	if got := Assemble(nil, 3); got != NoContext {
		t.Errorf("Assemble(nil) = %q, want the sentinel", got)
	}
	if got := Assemble([]index.Result{}, 3); got != NoContext {
		t.Errorf("Assemble(empty) = %q, want the sentinel", got)
	}
}

func TestAssembleBlockContents(t *testing.T) {
	res := threatResult(t, "alice", 0.8372, records.ThreatReport{
		Title:       "Network Intrusion",
		ThreatType:  "intrusion",
		Severity:    "high",
		Description: "Unauthorized access on the perimeter firewall",
	})

	got := Assemble([]index.Result{res}, 3)

	for _, want := range []string{
		"=== INTELLIGENCE CONTEXT START ===",
		"=== INTELLIGENCE CONTEXT END ===",
		"Record 1: threat_report (relevance 0.84)",
		"Owner: alice",
		"Recorded: 2026-08-01T12:00:00Z",
		"Title: Network Intrusion",
		"Severity: high",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
}

func TestAssembleSharedOwnerLabel(t *testing.T) {
	res := threatResult(t, "", 0.5, records.ThreatReport{Title: "Advisory", Description: "d"})

	got := Assemble([]index.Result{res}, 3)
	if !strings.Contains(got, "Owner: shared") {
		t.Errorf("ownerless record should render as shared:\n%s", got)
	}
}

func TestAssembleRespectsMaxRecords(t *testing.T) {
	var results []index.Result
	for _, title := range []string{"A", "B", "C", "D"} {
		results = append(results, threatResult(t, "", 0.5, records.ThreatReport{Title: title, Description: "d"}))
	}

	got := Assemble(results, 2)
	if !strings.Contains(got, "Record 2:") {
		t.Errorf("expected 2 records:\n%s", got)
	}
	if strings.Contains(got, "Record 3:") {
		t.Errorf("more than maxRecords rendered:\n%s", got)
	}
}

func TestAssembleFieldTruncation(t *testing.T) {
	res := threatResult(t, "", 0.9, records.ThreatReport{
		Title:       "Long",
		Description: strings.Repeat("y", 1000),
	})

	got := Assemble([]index.Result{res}, 1)
	if strings.Contains(got, strings.Repeat("y", fieldCap+1)) {
		t.Errorf("description not truncated to field cap:\n%s", got)
	}
	if !strings.Contains(got, "...") {
		t.Errorf("truncated field missing ellipsis:\n%s", got)
	}
}

func TestAssembleFieldTruncationKeepsValidUTF8(t *testing.T) {
	// 3-byte runes ensure the field cap lands mid-rune unless the cut backs
	// off to a boundary.
	res := threatResult(t, "", 0.9, records.ThreatReport{
		Title:       "Unicode",
		Description: strings.Repeat("威", 200),
	})

	got := Assemble([]index.Result{res}, 1)
	if !utf8.ValidString(got) {
		t.Error("assembled context contains invalid UTF-8")
	}
}

func TestSummarizeClassifierAnalysis(t *testing.T) {
	payload, err := json.Marshal(records.ClassifierAnalysis{
		Text:           "free crypto giveaway click now",
		PredictedClass: "Scam/Fraud",
		Confidence:     0.97,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	lines := summarize(records.Record{
		Kind:    records.KindClassifierAnalysis,
		Payload: payload,
	})

	joined := strings.Join(lines, "\n")
	for _, want := range []string{"Predicted Class: Scam/Fraud", "Confidence: 0.97", "Analyzed Text: free crypto"} {
		if !strings.Contains(joined, want) {
			t.Errorf("classifier summary missing %q:\n%s", want, joined)
		}
	}
}

func TestSummarizeUnknownKindFallsBack(t *testing.T) {
	lines := summarize(records.Record{
		Kind:           records.KindOther,
		Payload:        json.RawMessage(`{"field":"value"}`),
		SearchableText: "field: value",
	})

	if len(lines) != 1 || !strings.Contains(lines[0], "field: value") {
		t.Errorf("fallback summary = %v, want searchable text", lines)
	}
}
