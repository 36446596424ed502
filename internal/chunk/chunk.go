// Package chunk splits de-identified content graphs into retrieval-sized
// chunks for embedding and vector search. Chunkers refuse graphs that have
// not passed de-identification.
package chunk

import "fmt"

// Chunk is one embeddable unit of content.
type Chunk struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Chunker turns one content graph into chunks.
type Chunker interface {
	Name() string
	Chunk(content any) ([]Chunk, error)
}

// ErrNotDeidentified is returned when a graph reaches a chunker without the
// deidentified flag set.
var ErrNotDeidentified = fmt.Errorf("chunk: content has not been de-identified")
