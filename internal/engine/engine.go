// Package engine ties the record store, semantic index, briefing assembler
// and conversation log together behind a single façade. Callers (CLI, HTTP
// server, MCP tools) go through the engine rather than the individual
// packages so the ingest-then-refresh and search-then-assemble sequences stay
// in one place.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hazemfarra/argus/internal/briefing"
	"github.com/hazemfarra/argus/internal/convlog"
	"github.com/hazemfarra/argus/internal/index"
	"github.com/hazemfarra/argus/internal/llm"
	"github.com/hazemfarra/argus/internal/records"
)

// Options tunes retrieval and answering. Zero values fall back to defaults.
type Options struct {
	// TopK is the maximum number of records a search may return.
	TopK int
	// Threshold is the minimum similarity a record must exceed to be
	// considered relevant.
	Threshold float64
	// MaxContextRecords caps how many search hits make it into an
	// assembled context block.
	MaxContextRecords int
	// Provider answers questions when set. Without one, Answer returns an
	// error but every other operation works normally.
	Provider llm.Provider
	// Model overrides the provider's default chat model.
	Model string
}

const (
	defaultTopK              = 5
	defaultThreshold         = 0.1
	defaultMaxContextRecords = 3
)

// Engine is the top-level entry point for ingest, retrieval and answering.
type Engine struct {
	store *records.Store
	idx   index.Index
	log   *convlog.Store
	opts  Options
}

// New creates an engine over the given store, index and conversation log.
func New(store *records.Store, idx index.Index, convLog *convlog.Store, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	if opts.MaxContextRecords <= 0 {
		opts.MaxContextRecords = defaultMaxContextRecords
	}
	return &Engine{store: store, idx: idx, log: convLog, opts: opts}
}

// Refresh rebuilds the semantic index from the record store. It is called at
// startup and after every ingest.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.idx.Refresh(ctx)
}

// IngestThreatReport stores a threat report and refreshes the index so the
// report is searchable immediately.
func (e *Engine) IngestThreatReport(ctx context.Context, owner string, report records.ThreatReport, source string) (*records.Record, error) {
	rec, err := e.store.Append(ctx, owner, records.KindThreatReport, report, source)
	if err != nil {
		return nil, fmt.Errorf("failed to store threat report: %w", err)
	}
	if err := e.idx.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh index after ingest: %w", err)
	}
	return rec, nil
}

// IngestSummaryReport stores a summary report and refreshes the index.
func (e *Engine) IngestSummaryReport(ctx context.Context, owner string, report records.SummaryReport, source string) (*records.Record, error) {
	rec, err := e.store.Append(ctx, owner, records.KindSummaryReport, report, source)
	if err != nil {
		return nil, fmt.Errorf("failed to store summary report: %w", err)
	}
	if err := e.idx.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh index after ingest: %w", err)
	}
	return rec, nil
}

// IngestClassifierResult stores a classifier analysis unless the prediction
// is benign. Benign classifications carry no intelligence value and would
// only dilute retrieval, so they are dropped here rather than at every call
// site. The returned record is nil when the result was suppressed.
func (e *Engine) IngestClassifierResult(ctx context.Context, owner string, analysis records.ClassifierAnalysis, source string) (*records.Record, error) {
	if Suppressed(analysis) {
		return nil, nil
	}
	rec, err := e.store.Append(ctx, owner, records.KindClassifierAnalysis, analysis, source)
	if err != nil {
		return nil, fmt.Errorf("failed to store classifier analysis: %w", err)
	}
	if err := e.idx.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh index after ingest: %w", err)
	}
	return rec, nil
}

// Suppressed reports whether a classifier analysis is dropped at ingestion.
// Exported so ingest surfaces that batch writes around the store (such as
// bulk import) apply the same policy as IngestClassifierResult.
func Suppressed(analysis records.ClassifierAnalysis) bool {
	return isBenign(analysis.PredictedClass) || isBenign(analysis.ThreatLabel)
}

// isBenign reports whether a classifier label marks the input as harmless.
// Classifiers emit compound labels like "Non-threat/Neutral", so this is a
// substring match, not an exact one.
func isBenign(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return strings.Contains(l, "non-threat") || strings.Contains(l, "neutral")
}

// Search runs a scoped similarity search with the engine's retrieval
// settings.
func (e *Engine) Search(ctx context.Context, query, owner string) ([]index.Result, error) {
	return e.idx.Search(ctx, query, owner, e.opts.TopK, e.opts.Threshold)
}

// GetContext searches for records relevant to the query and assembles them
// into a context block, along with the number of records used. A failed
// search degrades to the no-context sentinel instead of failing the query
// path; the caller's question should still get answered, just without
// retrieved intelligence.
func (e *Engine) GetContext(ctx context.Context, query, owner string) (string, int) {
	results, err := e.idx.Search(ctx, query, owner, e.opts.TopK, e.opts.Threshold)
	if err != nil {
		log.Printf("context search failed, continuing without context: %v", err)
		return briefing.NoContext, 0
	}
	if len(results) > e.opts.MaxContextRecords {
		results = results[:e.opts.MaxContextRecords]
	}
	return briefing.Assemble(results, e.opts.MaxContextRecords), len(results)
}

// Answer responds to a question grounded in retrieved intelligence context
// and logs the exchange. It requires a configured llm.Provider.
func (e *Engine) Answer(ctx context.Context, owner, question string) (string, error) {
	if e.opts.Provider == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	contextBlock, hits := e.GetContext(ctx, question, owner)
	contextUsed := contextBlock != briefing.NoContext

	systemPrompt := "You are a threat intelligence analyst assistant. " +
		"Answer the question using the intelligence context when it is relevant. " +
		"If the context does not cover the question, say so rather than guessing."
	userPrompt := question
	if contextUsed {
		userPrompt = contextBlock + "\n\n" + question
	}

	resp, err := e.opts.Provider.Complete(ctx, llm.CompletionRequest{
		Model: e.opts.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if err := e.log.Record(ctx, convlog.Exchange{
		Owner:       owner,
		Query:       question,
		Response:    resp.Content,
		Context:     contextBlock,
		ContextUsed: contextUsed,
		Hits:        hits,
	}); err != nil {
		// The answer is already in hand; losing the log entry should not
		// fail the request.
		log.Printf("failed to record exchange: %v", err)
	}

	return resp.Content, nil
}

// LogExchange records a query/response pair produced outside the engine's
// own Answer path, such as an external agent reporting back.
func (e *Engine) LogExchange(ctx context.Context, ex convlog.Exchange) error {
	return e.log.Record(ctx, ex)
}

// History returns an owner's past exchanges in chronological order.
func (e *Engine) History(ctx context.Context, owner string, limit int) ([]convlog.Exchange, error) {
	return e.log.History(ctx, owner, limit)
}

// Status reports the current index contents.
func (e *Engine) Status() index.Stats {
	return e.idx.Stats()
}
