// Package convlog keeps the durable, append-only record of conversational
// exchanges: one entry per query/response cycle, including the retrieval
// context that grounded the answer. Entries are never updated or deleted.
package convlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazemfarra/argus/internal/db"
)

// Exchange is one logged conversational turn. Context is empty and
// ContextUsed false when retrieval found nothing relevant.
type Exchange struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	Context     string    `json:"context,omitempty"`
	ContextUsed bool      `json:"context_used"`
	Hits        int       `json:"hits"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store provides append and read-back over the exchanges table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record appends an exchange. If e.ID is empty a UUID is generated; if
// e.CreatedAt is zero the current time is used. An exchange without context
// is stored with a NULL context column.
func (s *Store) Record(ctx context.Context, e Exchange) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var contextCol sql.NullString
	if e.ContextUsed && e.Context != "" {
		contextCol = sql.NullString{String: e.Context, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, owner, query, response, context, hits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Owner, e.Query, e.Response, contextCol, e.Hits,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting exchange: %w", err)
	}
	return nil
}

// History returns the most recent limit exchanges for an owner, oldest
// first, ready for replay into a conversational context window.
func (s *Store) History(ctx context.Context, owner string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, query, response, context, hits, created_at
		FROM exchanges
		WHERE owner = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exchanges: %w", err)
	}
	defer rows.Close()

	var newest []Exchange
	for rows.Next() {
		var (
			e          Exchange
			contextCol sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.Owner, &e.Query, &e.Response, &contextCol, &e.Hits, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange row: %w", err)
		}
		if contextCol.Valid {
			e.Context = contextCol.String
			e.ContextUsed = true
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of exchange %s: %w", e.ID, err)
		}
		e.CreatedAt = t
		newest = append(newest, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest, nil
}
