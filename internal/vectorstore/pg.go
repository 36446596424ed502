package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists embeddings in Postgres. Vectors live in a float4 array
// column; similarity is ranked client-side, which is adequate for the corpus
// sizes a single pipeline run produces.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore builds a store over an existing pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the vector table when missing.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chunk_vectors (
			id         TEXT PRIMARY KEY,
			chunk_type TEXT NOT NULL,
			text       TEXT NOT NULL,
			metadata   JSONB,
			embedding  FLOAT4[] NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("vectorstore: ensure schema: %w", err)
	}
	return nil
}

// Upsert implements Store.
func (s *PGStore) Upsert(ctx context.Context, records []Record) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO chunk_vectors (id, chunk_type, text, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				chunk_type = EXCLUDED.chunk_type,
				text       = EXCLUDED.text,
				metadata   = EXCLUDED.metadata,
				embedding  = EXCLUDED.embedding`,
			r.ID, r.ChunkType, r.Text, r.Metadata, r.Embedding)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("vectorstore: upsert: %w", err)
		}
	}
	return nil
}

// Search implements Store. All rows are loaded and ranked in memory.
func (s *PGStore) Search(ctx context.Context, query []float32, limit int) ([]Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, chunk_type, text, metadata, embedding FROM chunk_vectors`)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}
	defer rows.Close()

	mem := NewMemoryStore()
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ChunkType, &r.Text, &r.Metadata, &r.Embedding); err != nil {
			return nil, fmt.Errorf("vectorstore: scan row: %w", err)
		}
		if err := mem.Upsert(ctx, []Record{r}); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: search rows: %w", err)
	}
	return mem.Search(ctx, query, limit)
}

// Close implements Store. The pool is shared, so closing the store does not
// close it.
func (s *PGStore) Close() {}
