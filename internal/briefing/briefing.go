// Package briefing renders ranked retrieval results into a bounded context
// block for an LLM-backed chat handler.
package briefing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazemfarra/argus/internal/index"
	"github.com/hazemfarra/argus/internal/records"
)

// NoContext is the sentinel returned when retrieval produced nothing
// relevant. Callers compare against it to decide whether to disclose
// "context used: no" to the end user; it is a load-bearing contract, not a
// cosmetic message.
const NoContext = "No relevant intelligence context found."

const (
	contextHeader = "=== INTELLIGENCE CONTEXT START ==="
	contextFooter = "=== INTELLIGENCE CONTEXT END ==="

	// fieldCap re-truncates per-record fields tighter than ingestion-time
	// extraction, since several blocks must fit one context budget.
	fieldCap = 250

	defaultMaxRecords = 3
)

// Assemble formats up to maxRecords ranked results as a delimited context
// block. An empty result list yields the NoContext sentinel.
func Assemble(results []index.Result, maxRecords int) string {
	if len(results) == 0 {
		return NoContext
	}
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	if len(results) > maxRecords {
		results = results[:maxRecords]
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	sb.WriteString("\n")

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Record %d: %s (relevance %.2f) ---\n", i+1, r.Record.Kind, r.Score)

		owner := r.Record.Owner
		if owner == "" {
			owner = "shared"
		}
		fmt.Fprintf(&sb, "Owner: %s\n", owner)
		if !r.Record.CreatedAt.IsZero() {
			fmt.Fprintf(&sb, "Recorded: %s\n", r.Record.CreatedAt.UTC().Format(time.RFC3339))
		}

		for _, line := range summarize(r.Record) {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(contextFooter)
	return sb.String()
}

// summarize selects the same fields as ingestion-time extraction, but with
// the tighter per-field cap.
func summarize(rec records.Record) []string {
	switch rec.Kind {
	case records.KindThreatReport:
		var r records.ThreatReport
		if err := json.Unmarshal(rec.Payload, &r); err == nil {
			var lines []string
			lines = appendField(lines, "Title", r.Title)
			lines = appendField(lines, "Threat Type", r.ThreatType)
			lines = appendField(lines, "Severity", r.Severity)
			lines = appendField(lines, "Description", r.Description)
			for i, rr := range r.Recommendations {
				if i >= 3 {
					break
				}
				lines = appendField(lines, "Recommendation", rr)
			}
			if len(lines) > 0 {
				return lines
			}
		}
	case records.KindSummaryReport:
		var r records.SummaryReport
		if err := json.Unmarshal(rec.Payload, &r); err == nil {
			var lines []string
			lines = appendField(lines, "Title", r.Title)
			lines = appendField(lines, "Summary Type", r.SummaryType)
			lines = appendField(lines, "Executive Summary", r.ExecutiveSummary)
			for i, f := range r.KeyFindings {
				if i >= 5 {
					break
				}
				lines = appendField(lines, "Key Finding", f)
			}
			if len(lines) > 0 {
				return lines
			}
		}
	case records.KindClassifierAnalysis:
		var r records.ClassifierAnalysis
		if err := json.Unmarshal(rec.Payload, &r); err == nil {
			var lines []string
			lines = appendField(lines, "Analyzed Text", r.Text)
			lines = appendField(lines, "Predicted Class", r.PredictedClass)
			lines = appendField(lines, "Threat Type", r.ThreatLabel)
			if r.Confidence > 0 {
				lines = appendField(lines, "Confidence", fmt.Sprintf("%.2f", r.Confidence))
			}
			if len(lines) > 0 {
				return lines
			}
		}
	}

	// Unknown kinds and unreadable payloads fall back to the derived
	// searchable text, which always exists.
	return appendField(nil, "Summary", rec.SearchableText)
}

func appendField(lines []string, key, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return lines
	}
	if len(value) > fieldCap {
		cut := fieldCap
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut] + "..."
	}
	return append(lines, key+": "+value)
}
