package index

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/hazemfarra/argus/internal/embeddings"
	"github.com/hazemfarra/argus/internal/records"
)

const chromemCollection = "intel"

// ChromemIndex is an alternate Index implementation backed by chromem-go.
// It honors the same contract as Cache: the record store stays the source of
// truth, every refresh rebuilds the collection wholesale, and computed
// embeddings are written back to the store. What changes is the scan itself,
// which chromem parallelizes internally.
type ChromemIndex struct {
	store    *records.Store
	embedder embeddings.Embedder

	mu         sync.RWMutex
	collection *chromem.Collection
	recs       []records.Record
	byID       map[string]records.Record
	embedded   map[string]bool
}

// NewChromemIndex creates an empty chromem-backed index. Call Refresh before
// the first search.
func NewChromemIndex(store *records.Store, embedder embeddings.Embedder) *ChromemIndex {
	return &ChromemIndex{
		store:    store,
		embedder: embedder,
		byID:     make(map[string]records.Record),
		embedded: make(map[string]bool),
	}
}

// Refresh re-reads the record store into a freshly built collection and
// atomically swaps it in, so in-flight searches finish against the previous
// one. Vectors are computed here (with store write-back) rather than left to
// chromem, to preserve the persisted-embedding invariant.
func (c *ChromemIndex) Refresh(ctx context.Context) error {
	recs, err := c.store.All(ctx)
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(chromemCollection, nil, embeddings.ToChromemFunc(c.embedder))
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	byID := make(map[string]records.Record, len(recs))
	embedded := make(map[string]bool, len(recs))
	var docs []chromem.Document

	for i := range recs {
		rec := &recs[i]
		byID[rec.ID] = *rec

		vec := rec.Embedding
		if len(vec) == 0 {
			vec, err = embeddings.EmbedOne(ctx, c.embedder, rec.SearchableText)
			if err != nil || len(vec) == 0 {
				log.Printf("index: embedding record %s failed, skipping this cycle: %v", rec.ID, err)
				continue
			}
			if err := c.store.SetEmbedding(ctx, rec.ID, vec); err != nil {
				return fmt.Errorf("rebuilding index: %w", err)
			}
			rec.Embedding = vec
		}

		embedded[rec.ID] = true
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Content:   rec.SearchableText,
			Embedding: vec,
			Metadata: map[string]string{
				"owner": rec.Owner,
				"kind":  string(rec.Kind),
			},
		})
	}

	if len(docs) > 0 {
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return fmt.Errorf("adding documents: %w", err)
		}
	}

	c.mu.Lock()
	c.collection = col
	c.recs = recs
	c.byID = byID
	c.embedded = embedded
	c.mu.Unlock()
	return nil
}

// Search queries the full collection, then applies owner scoping, the
// similarity threshold, and recency tie-breaking on top of chromem's raw
// ranking. Owner filtering cannot be pushed into a chromem where clause
// because shared records (empty owner) must stay visible to every scope.
func (c *ChromemIndex) Search(ctx context.Context, query, owner string, topK int, threshold float64) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	c.mu.RLock()
	col := c.collection
	byID := c.byID
	c.mu.RUnlock()

	if col == nil || col.Count() == 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size; ask for everything
	// and rank locally.
	raw, err := col.Query(ctx, query, col.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var candidates []Result
	for _, r := range raw {
		rec, ok := byID[r.ID]
		if !ok || !visibleTo(rec, owner) {
			continue
		}
		candidates = append(candidates, Result{Record: rec, Score: float64(r.Similarity)})
	}

	return rank(candidates, topK, threshold), nil
}

// Stats reports counts over the current snapshot.
func (c *ChromemIndex) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return statsFor(c.recs, func(id string) bool {
		return c.embedded[id]
	})
}
