package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazemfarra/argus/internal/db"
)

// Store persists intelligence records. It is the single source of truth for
// the retrieval index: the in-memory embedding cache can always be rebuilt
// from a full scan of this table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Append derives the searchable text for the payload, assigns an ID and
// timestamp, and persists the record. Payloads whose kind-specific fields are
// missing still get a generic searchable representation, so nothing ingested
// is silently unsearchable.
func (s *Store) Append(ctx context.Context, owner string, kind Kind, payload any, source string) (*Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	rec := &Record{
		ID:             uuid.New().String(),
		Owner:          owner,
		Kind:           kind,
		Payload:        raw,
		SearchableText: SearchableText(kind, raw),
		Source:         source,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, owner, kind, payload, searchable_text, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Owner,
		string(rec.Kind),
		string(rec.Payload),
		rec.SearchableText,
		rec.Source,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}
	return rec, nil
}

// All returns every record in insertion order. It is used for index rebuilds
// and is a full table scan; at the target scale of tens of thousands of rows
// that is cheap enough to run on every refresh.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner, kind, payload, searchable_text, embedding, source, created_at
		FROM records ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec       Record
			kind      string
			payload   string
			embedding sql.NullString
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Owner, &kind, &payload, &rec.SearchableText, &embedding, &rec.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}

		rec.Kind = Kind(kind)
		rec.Payload = json.RawMessage(payload)
		// Every row is written with an RFC3339Nano timestamp; one that does
		// not parse means the table is corrupt, not a value to default.
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of record %s: %w", rec.ID, err)
		}
		rec.CreatedAt = t
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
				// A corrupt persisted vector is treated as absent; the
				// cache will recompute it on the next rebuild.
				rec.Embedding = nil
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SetEmbedding persists a lazily computed embedding back onto the record so
// later rebuilds skip recomputation. The vector must be the embedding of the
// record's current searchable text; since records are append-only, the text
// never changes after insertion.
func (s *Store) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	encoded, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE records SET embedding = ? WHERE id = ?",
		string(encoded), id,
	)
	if err != nil {
		return fmt.Errorf("persisting embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}
