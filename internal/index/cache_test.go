package index

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazemfarra/argus/internal/db"
	"github.com/hazemfarra/argus/internal/records"
)

func unmarshalPayload(rec records.Record, v any) error {
	return json.Unmarshal(rec.Payload, v)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return parsed
}

// mockEmbedder returns deterministic bag-of-words embeddings: each lowercased
// token is hashed into a vector position, so texts sharing words produce
// similar vectors. Vectors are L2-normalized.
type mockEmbedder struct {
	dims int

	mu     sync.Mutex
	calls  int
	failOn string // return an error for texts containing this substring
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls += len(texts)
	failOn := m.failOn
	m.mu.Unlock()

	results := make([][]float32, len(texts))
	for i, text := range texts {
		if failOn != "" && strings.Contains(text, failOn) {
			return nil, fmt.Errorf("mock embedder: refusing text containing %q", failOn)
		}
		results[i] = m.tokenVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbedder) tokenVector(text string) []float32 {
	vec := make([]float32, m.dims)
	clean := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, text)

	for _, tok := range strings.Fields(strings.ToLower(clean)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%m.dims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func setupIndexDeps(t *testing.T) (*records.Store, *mockEmbedder) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return records.NewStore(database), newMockEmbedder(128)
}

func setupCache(t *testing.T) (*Cache, *records.Store, *mockEmbedder) {
	t.Helper()
	store, embedder := setupIndexDeps(t)
	return NewCache(store, embedder), store, embedder
}

func appendThreat(t *testing.T, store *records.Store, owner, title, description string) *records.Record {
	t.Helper()
	rec, err := store.Append(context.Background(), owner, records.KindThreatReport, records.ThreatReport{
		Title:       title,
		ThreatType:  "generic",
		Severity:    "high",
		Description: description,
	}, "test")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return rec
}

func TestRefreshConvergence(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "alice", "Network Intrusion", "unauthorized network access")
	appendThreat(t, store, "alice", "Phishing Campaign", "credential harvesting emails")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	st := cache.Stats()
	if st.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", st.RecordCount)
	}
	if st.VectorCount != 2 {
		t.Errorf("VectorCount = %d, want 2", st.VectorCount)
	}

	// Vectors must have been persisted back to the store.
	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	for _, rec := range all {
		if len(rec.Embedding) == 0 {
			t.Errorf("record %s: embedding not persisted", rec.ID)
		}
	}
}

func TestRefreshSkipsRecomputation(t *testing.T) {
	cache, store, embedder := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "", "Ransomware Detection", "ransomware encrypting file servers")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	after := embedder.callCount()

	// A second cache over the same store must load the persisted vector
	// rather than re-embed.
	second := NewCache(store, embedder)
	if err := second.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if got := embedder.callCount(); got != after {
		t.Errorf("expected no new embed calls on warm rebuild, got %d extra", got-after)
	}
	if st := second.Stats(); st.VectorCount != 1 {
		t.Errorf("VectorCount = %d, want 1", st.VectorCount)
	}
}

func TestRefreshSurvivesSingleEmbeddingFailure(t *testing.T) {
	cache, store, embedder := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "", "Good Record", "perfectly embeddable content")
	appendThreat(t, store, "", "Poison Record", "UNEMBEDDABLE marker content")
	embedder.failOn = "UNEMBEDDABLE"

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh should not abort on a single record failure: %v", err)
	}

	st := cache.Stats()
	if st.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", st.RecordCount)
	}
	if st.VectorCount != 1 {
		t.Errorf("VectorCount = %d, want 1 (the failing record is skipped)", st.VectorCount)
	}

	// The failing record must be skipped in search, never scored as zero.
	results, err := cache.Search(ctx, "marker content", "", 10, -2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if strings.Contains(r.Record.SearchableText, "UNEMBEDDABLE") {
			t.Error("record without vector appeared in results")
		}
	}

	// Once the provider recovers, the next refresh fills the gap.
	embedder.failOn = ""
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("recovery Refresh: %v", err)
	}
	if st := cache.Stats(); st.VectorCount != 2 {
		t.Errorf("after recovery VectorCount = %d, want 2", st.VectorCount)
	}
}

func TestSearchRanking(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "", "Network Intrusion", "unauthorized network access breach detected on core switches")
	appendThreat(t, store, "", "Phishing Campaign", "credential harvesting emails targeting security teams")
	appendThreat(t, store, "", "Ransomware Detection", "ransomware encrypting file servers across the network")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	results, err := cache.Search(ctx, "network security breach", "", 2, 0.1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	var first records.ThreatReport
	if err := unmarshalPayload(results[0].Record, &first); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if first.Title != "Network Intrusion" {
		t.Errorf("top result = %q, want Network Intrusion", first.Title)
	}

	for i, r := range results {
		if r.Score < -1 || r.Score > 1 {
			t.Errorf("result %d score %v outside [-1, 1]", i, r.Score)
		}
		if r.Score <= 0.1 {
			t.Errorf("result %d score %v does not clear threshold", i, r.Score)
		}
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
}

func TestSelfSimilarityIsMaximal(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	target := appendThreat(t, store, "", "Exact Match", "watering hole compromise of vendor portal")
	appendThreat(t, store, "", "Unrelated", "expired tls certificate on mail gateway")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	results, err := cache.Search(ctx, target.SearchableText, "", 10, -2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Record.ID != target.ID {
		t.Errorf("verbatim text did not rank its own record first")
	}
	for _, r := range results[1:] {
		if r.Score > results[0].Score {
			t.Errorf("self-similarity %v not maximal (other scored %v)", results[0].Score, r.Score)
		}
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "", "A", "malware beaconing to command server")
	appendThreat(t, store, "", "B", "malware dropper in email attachment")
	appendThreat(t, store, "", "C", "defaced public website banner")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	prev := math.MaxInt
	for _, threshold := range []float64{-1, 0, 0.1, 0.3, 0.6, 0.9} {
		results, err := cache.Search(ctx, "malware infection", "", 10, threshold)
		if err != nil {
			t.Fatalf("Search(threshold=%v): %v", threshold, err)
		}
		if len(results) > prev {
			t.Errorf("raising threshold to %v increased result count %d -> %d", threshold, prev, len(results))
		}
		prev = len(results)
	}
}

func TestOwnerScoping(t *testing.T) {
	cache, store, _ := setupCache(t)
	ctx := context.Background()

	appendThreat(t, store, "alice", "Alice Report", "malware sighting in subsidiary network")
	appendThreat(t, store, "bob", "Bob Report", "malware sighting in production network")
	appendThreat(t, store, "", "Shared Report", "malware advisory from national cert")

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	results, err := cache.Search(ctx, "malware sighting network", "alice", 10, -2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results for alice")
	}
	for _, r := range results {
		if r.Record.Owner == "bob" {
			t.Error("alice's search returned bob's record")
		}
	}

	// The shared (ownerless) record stays visible to scoped searches.
	var sawShared bool
	for _, r := range results {
		if r.Record.Owner == "" {
			sawShared = true
		}
	}
	if !sawShared {
		t.Error("shared record missing from scoped search")
	}

	// Unscoped search sees everything.
	all, err := cache.Search(ctx, "malware sighting network", "", 10, -2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unscoped search returned %d records, want 3", len(all))
	}
}

func TestSearchEmptyCache(t *testing.T) {
	cache, _, _ := setupCache(t)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	results, err := cache.Search(context.Background(), "anything at all", "", 5, 0.1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results from empty cache, got %d", len(results))
	}
}

func TestRankRecencyTieBreak(t *testing.T) {
	older := records.Record{ID: "old", CreatedAt: mustTime(t, "2026-01-01T00:00:00Z")}
	newer := records.Record{ID: "new", CreatedAt: mustTime(t, "2026-06-01T00:00:00Z")}

	ranked := rank([]Result{
		{Record: older, Score: 0.5},
		{Record: newer, Score: 0.5},
	}, 2, 0.1)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked results, got %d", len(ranked))
	}
	if ranked[0].Record.ID != "new" {
		t.Errorf("equal scores should prefer the newer record, got %q first", ranked[0].Record.ID)
	}
}

func TestCosineBounds(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{-1, 0, 0}

	if got := cosine(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine(a, a) = %v, want 1", got)
	}
	if got := cosine(a, b); math.Abs(got+1) > 1e-9 {
		t.Errorf("cosine(a, -a) = %v, want -1", got)
	}
	if got := cosine(a, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched dimensions = %v, want 0", got)
	}
	if got := cosine(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("zero vector = %v, want 0", got)
	}
}
