package chunk

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinpipe/clinpipe/internal/model"
)

// OperationalChunker emits one chunk per claim (with its nested transactions)
// plus one chunk per top-level transaction collection.
type OperationalChunker struct{}

// Name implements Chunker.
func (OperationalChunker) Name() string { return "operational" }

// Chunk implements Chunker.
func (c OperationalChunker) Chunk(content any) ([]Chunk, error) {
	graph, ok := content.(*model.OperationalContent)
	if !ok {
		return nil, fmt.Errorf("chunk: operational chunker got %T", content)
	}
	if !graph.Deidentified {
		return nil, ErrNotDeidentified
	}

	var chunks []Chunk
	add := func(chunkType string, v any, meta map[string]string) error {
		text, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("chunk: encode %s: %w", chunkType, err)
		}
		chunks = append(chunks, Chunk{
			ID:       uuid.NewString(),
			Type:     chunkType,
			Text:     string(text),
			Metadata: meta,
		})
		return nil
	}

	base := map[string]string{"transaction_type": graph.TransactionType}
	for i := range graph.Claims {
		claim := &graph.Claims[i]
		meta := map[string]string{
			"transaction_type": graph.TransactionType,
			"claim_id":         claim.ClaimID,
			"patient_id":       claim.PatientID,
		}
		if err := add("claim", claim, meta); err != nil {
			return nil, err
		}
	}

	collections := []struct {
		chunkType string
		v         any
		n         int
	}{
		{"charges", graph.Charges, len(graph.Charges)},
		{"payments", graph.Payments, len(graph.Payments)},
		{"adjustments", graph.Adjustments, len(graph.Adjustments)},
		{"prior_authorizations", graph.PriorAuthorizations, len(graph.PriorAuthorizations)},
		{"drgs", graph.DRGs, len(graph.DRGs)},
	}
	for _, col := range collections {
		if col.n == 0 {
			continue
		}
		if err := add(col.chunkType, col.v, base); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}
