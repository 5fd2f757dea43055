package records

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// maxSearchableLen caps the derived searchable text so embedding cost
	// and downstream context size stay bounded.
	maxSearchableLen = 1500

	// classifierTextCap limits how much of the analyzed text is carried
	// into the searchable representation of a classifier result.
	classifierTextCap = 200

	fragmentSep = " | "
)

// SearchableText derives the denormalized string that is embedded and
// matched against for a record of the given kind. It never returns an empty
// string for a non-empty payload: if the kind-specific extraction finds none
// of the fields it expects, it falls back to the generic scalar extractor so
// the record remains searchable to some degree.
func SearchableText(kind Kind, payload json.RawMessage) string {
	var text string
	switch kind {
	case KindThreatReport:
		var r ThreatReport
		if err := json.Unmarshal(payload, &r); err == nil {
			text = threatReportText(r)
		}
	case KindSummaryReport:
		var r SummaryReport
		if err := json.Unmarshal(payload, &r); err == nil {
			text = summaryReportText(r)
		}
	case KindClassifierAnalysis:
		var r ClassifierAnalysis
		if err := json.Unmarshal(payload, &r); err == nil {
			text = classifierAnalysisText(r)
		}
	}

	if text == "" {
		text = genericText(payload)
	}
	return truncate(text, maxSearchableLen)
}

func threatReportText(r ThreatReport) string {
	var frags []string
	frags = appendFragment(frags, "Title", r.Title)
	frags = appendFragment(frags, "Threat Type", r.ThreatType)
	frags = appendFragment(frags, "Severity", r.Severity)
	frags = appendFragment(frags, "Description", r.Description)
	for i, rec := range r.Recommendations {
		if i >= 3 {
			break
		}
		frags = appendFragment(frags, "Recommendation", rec)
	}
	return strings.Join(frags, fragmentSep)
}

func summaryReportText(r SummaryReport) string {
	var frags []string
	frags = appendFragment(frags, "Title", r.Title)
	frags = appendFragment(frags, "Summary Type", r.SummaryType)
	frags = appendFragment(frags, "Executive Summary", r.ExecutiveSummary)
	for i, f := range r.KeyFindings {
		if i >= 5 {
			break
		}
		frags = appendFragment(frags, "Key Finding", f)
	}
	for i, rec := range r.Recommendations {
		if i >= 3 {
			break
		}
		frags = appendFragment(frags, "Recommendation", rec)
	}
	return strings.Join(frags, fragmentSep)
}

func classifierAnalysisText(r ClassifierAnalysis) string {
	var frags []string
	frags = appendFragment(frags, "Text", truncate(r.Text, classifierTextCap))
	frags = appendFragment(frags, "Predicted Class", r.PredictedClass)
	frags = appendFragment(frags, "Threat Type", r.ThreatLabel)
	if r.Confidence > 0 {
		frags = appendFragment(frags, "Confidence", fmt.Sprintf("%.2f", r.Confidence))
	}
	return strings.Join(frags, fragmentSep)
}

// genericText stringifies every scalar payload field as a "key: value"
// fragment, in sorted key order for determinism. Nested objects and arrays
// are skipped.
func genericText(payload json.RawMessage) string {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var frags []string
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			frags = appendFragment(frags, k, truncate(v, 300))
		case float64:
			frags = appendFragment(frags, k, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			frags = appendFragment(frags, k, fmt.Sprintf("%t", v))
		}
	}
	return strings.Join(frags, fragmentSep)
}

func appendFragment(frags []string, key, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return frags
	}
	return append(frags, key+": "+value)
}

// truncate cuts s to at most max bytes, backing off to a rune boundary so a
// multi-byte character is never split into invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
