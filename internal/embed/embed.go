// Package embed produces fixed-dimension vectors for chunks. The built-in
// embedder is a deterministic feature-hashing model: no external service, no
// weights, stable output for identical input. A learned model sits behind the
// same interface when one is available.
package embed

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimension is the vector width used when none is configured.
const DefaultDimension = 256

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(text string) ([]float32, error)
}

// HashingEmbedder is a term-frequency embedder over FNV-hashed tokens with
// L2 normalization. Deterministic and dependency-free.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder builds a hashing embedder of the given dimension.
func NewHashingEmbedder(dim int) (*HashingEmbedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embed: dimension must be positive, got %d", dim)
	}
	return &HashingEmbedder{dim: dim}, nil
}

// Name implements Embedder.
func (e *HashingEmbedder) Name() string { return "feature-hashing" }

// Dimension implements Embedder.
func (e *HashingEmbedder) Dimension() int { return e.dim }

// Embed implements Embedder. Empty input yields the zero vector.
func (e *HashingEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// tokenize lower-cases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
