package embeddings

import "context"

// Embedder turns intelligence record text into fixed-dimension dense vectors.
//
// Implementations must be deterministic for a fixed model version and must
// return results in input order. A provider failure is surfaced as an error,
// never as a degenerate vector: a silently bad vector would corrupt
// similarity rankings without any observable symptom.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name identifies the embedding model. The retrieval index pins the
	// model for its lifetime; mixing vectors from different models silently
	// corrupts rankings.
	Name() string
}

// EmbedOne is a convenience wrapper for embedding a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	return vecs[0], nil
}
