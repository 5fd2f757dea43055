package index

import (
	"context"
	"sort"

	"github.com/hazemfarra/argus/internal/records"
)

// Result pairs a record with its similarity score against a query.
type Result struct {
	Record records.Record
	Score  float64
}

// Stats describes the current contents of an index. VectorCount lower than
// RecordCount means some records could not be embedded in the last refresh
// and will be retried on the next one.
type Stats struct {
	RecordCount int
	VectorCount int
	Kinds       map[records.Kind]int
	Owners      []string
}

// Index is a searchable semantic view over the record store. The store
// remains the source of truth: Refresh rebuilds the index wholesale from a
// full scan, which keeps consistency trivial at the target scale. A future
// implementation can swap in an incremental structure behind this same
// contract.
type Index interface {
	// Refresh rebuilds the index from the record store. It is invoked at
	// startup and after every ingest. Embedding failures for individual
	// records degrade that record's availability for the cycle; a store
	// failure aborts the whole refresh.
	Refresh(ctx context.Context) error

	// Search ranks records by cosine similarity against the query.
	// When owner is non-empty, results are limited to that owner's records
	// plus globally visible ones. An empty result is a valid, expected
	// outcome when nothing clears the threshold.
	Search(ctx context.Context, query, owner string, topK int, threshold float64) ([]Result, error)

	// Stats reports record and vector counts for operational introspection.
	Stats() Stats
}

const defaultTopK = 5

// rank sorts candidates by score descending, breaking ties in favor of the
// most recently created record, then returns the first topK entries whose
// score exceeds threshold.
func rank(candidates []Result, topK int, threshold float64) []Result {
	if topK <= 0 {
		topK = defaultTopK
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Record.CreatedAt.After(candidates[j].Record.CreatedAt)
	})

	var out []Result
	for _, c := range candidates {
		if c.Score <= threshold {
			// Candidates are sorted, so nothing after this clears the bar
			// either.
			break
		}
		out = append(out, c)
		if len(out) == topK {
			break
		}
	}
	return out
}

// visibleTo reports whether a record is in scope for the given owner filter.
// Records with an empty owner are shared and visible to everyone.
func visibleTo(rec records.Record, owner string) bool {
	return owner == "" || rec.Owner == "" || rec.Owner == owner
}

// statsFor computes Stats over a record list and its vector set.
func statsFor(recs []records.Record, hasVector func(id string) bool) Stats {
	st := Stats{
		RecordCount: len(recs),
		Kinds:       make(map[records.Kind]int),
	}
	owners := make(map[string]struct{})
	for _, r := range recs {
		st.Kinds[r.Kind]++
		if hasVector(r.ID) {
			st.VectorCount++
		}
		if r.Owner != "" {
			owners[r.Owner] = struct{}{}
		}
	}
	for o := range owners {
		st.Owners = append(st.Owners, o)
	}
	sort.Strings(st.Owners)
	return st
}
