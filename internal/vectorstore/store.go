// Package vectorstore persists chunk embeddings and answers nearest-neighbor
// queries. Two implementations: an in-memory store for tests and single-node
// runs, and a Postgres store for durable deployments. Ranking is cosine
// similarity in both.
package vectorstore

import (
	"context"
	"math"
)

// Record is one stored chunk embedding.
type Record struct {
	ID        string            `json:"id"`
	ChunkType string            `json:"chunk_type"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding"`
}

// Match is a search hit with its cosine similarity score.
type Match struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}

// Store persists embeddings and serves similarity search.
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, query []float32, limit int) ([]Match, error)
	Close()
}

// cosine computes cosine similarity. Mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
