package index

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/hazemfarra/argus/internal/embeddings"
	"github.com/hazemfarra/argus/internal/records"
)

// Cache is the default Index implementation: an in-memory embedding cache
// over the record store, searched with a flat linear cosine scan. The
// rebuild-vs-search race is handled with a RWMutex; a refresh constructs the
// new record list and vector map off to the side and publishes them under
// the write lock, so in-flight searches always see a consistent snapshot.
type Cache struct {
	store    *records.Store
	embedder embeddings.Embedder

	mu      sync.RWMutex
	recs    []records.Record
	vectors map[string][]float32
}

// NewCache creates an empty cache. Call Refresh before the first search.
func NewCache(store *records.Store, embedder embeddings.Embedder) *Cache {
	return &Cache{
		store:    store,
		embedder: embedder,
		vectors:  make(map[string][]float32),
	}
}

// Refresh re-reads the full record store, loading persisted embeddings and
// lazily computing missing ones. Computed vectors are written back to the
// store so the next rebuild skips the model call. A record whose embedding
// fails is logged and left out of the vector map for this cycle; it will be
// retried on the next refresh.
func (c *Cache) Refresh(ctx context.Context) error {
	recs, err := c.store.All(ctx)
	if err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}

	vectors := make(map[string][]float32, len(recs))
	for i := range recs {
		rec := &recs[i]
		if len(rec.Embedding) > 0 {
			vectors[rec.ID] = rec.Embedding
			continue
		}

		vec, err := embeddings.EmbedOne(ctx, c.embedder, rec.SearchableText)
		if err != nil || len(vec) == 0 {
			log.Printf("index: embedding record %s failed, skipping this cycle: %v", rec.ID, err)
			continue
		}
		if err := c.store.SetEmbedding(ctx, rec.ID, vec); err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		rec.Embedding = vec
		vectors[rec.ID] = vec
	}

	c.mu.Lock()
	c.recs = recs
	c.vectors = vectors
	c.mu.Unlock()
	return nil
}

// Search embeds the query with the same pinned model used for records and
// scores every in-scope cached record. Records without a vector are skipped
// entirely rather than scored as zero, so an embedding gap can never
// masquerade as a "worst match".
func (c *Cache) Search(ctx context.Context, query, owner string, topK int, threshold float64) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	qvec, err := embeddings.EmbedOne(ctx, c.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	c.mu.RLock()
	recs := c.recs
	vectors := c.vectors
	c.mu.RUnlock()

	var candidates []Result
	for _, rec := range recs {
		if !visibleTo(rec, owner) {
			continue
		}
		vec, ok := vectors[rec.ID]
		if !ok {
			continue
		}
		candidates = append(candidates, Result{Record: rec, Score: cosine(qvec, vec)})
	}

	return rank(candidates, topK, threshold), nil
}

// Stats reports counts over the current snapshot.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return statsFor(c.recs, func(id string) bool {
		_, ok := c.vectors[id]
		return ok
	})
}

// cosine computes the cosine similarity of two vectors, in [-1, 1].
// Mismatched dimensions or a zero vector score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
