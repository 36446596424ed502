package pipeline

import (
	"context"
	"fmt"

	"github.com/clinpipe/clinpipe/internal/audit"
	"github.com/clinpipe/clinpipe/internal/chunk"
	"github.com/clinpipe/clinpipe/internal/deid"
	"github.com/clinpipe/clinpipe/internal/embed"
	"github.com/clinpipe/clinpipe/internal/ingest"
	"github.com/clinpipe/clinpipe/internal/model"
	"github.com/clinpipe/clinpipe/internal/vectorstore"
)

// IngestStage normalizes a raw document into the canonical graph.
type IngestStage struct {
	router *ingest.Router
}

// NewIngestStage wraps a format router.
func NewIngestStage(router *ingest.Router) *IngestStage {
	return &IngestStage{router: router}
}

func (s *IngestStage) Name() string { return "ingest" }

func (s *IngestStage) Run(_ context.Context, _ *Context, input any) (any, error) {
	data, ok := input.([]byte)
	if !ok {
		return nil, fmt.Errorf("ingest stage: expected []byte, got %T", input)
	}
	return s.router.Normalize(data)
}

// DeidStage de-identifies the graph and feeds the run tracker.
type DeidStage struct {
	engine *deid.Engine
}

// NewDeidStage wraps a configured engine.
func NewDeidStage(engine *deid.Engine) *DeidStage {
	return &DeidStage{engine: engine}
}

func (s *DeidStage) Name() string { return "deid" }

func (s *DeidStage) Run(_ context.Context, pc *Context, input any) (any, error) {
	if pc.Tracker == nil {
		pc.Tracker = audit.NewTracker(string(s.engine.Policy().Method))
	}
	out, stats, err := s.engine.Process(input)
	if err != nil {
		pc.Tracker.RecordFailure()
		return nil, err
	}
	pc.Tracker.Record(*stats)
	return out, nil
}

// ChunkStage splits the de-identified graph into chunks.
type ChunkStage struct {
	clinical    chunk.ClinicalChunker
	operational chunk.OperationalChunker
}

// NewChunkStage builds a stage handling both graph types.
func NewChunkStage() *ChunkStage {
	return &ChunkStage{}
}

func (s *ChunkStage) Name() string { return "chunk" }

func (s *ChunkStage) Run(_ context.Context, _ *Context, input any) (any, error) {
	switch input.(type) {
	case *model.ClinicalContent:
		return s.clinical.Chunk(input)
	case *model.OperationalContent:
		return s.operational.Chunk(input)
	default:
		return nil, fmt.Errorf("chunk stage: unsupported input %T", input)
	}
}

// EmbedStage turns chunks into store records with embeddings.
type EmbedStage struct {
	embedder embed.Embedder
}

// NewEmbedStage wraps an embedder.
func NewEmbedStage(embedder embed.Embedder) *EmbedStage {
	return &EmbedStage{embedder: embedder}
}

func (s *EmbedStage) Name() string { return "embed" }

func (s *EmbedStage) Run(_ context.Context, _ *Context, input any) (any, error) {
	chunks, ok := input.([]chunk.Chunk)
	if !ok {
		return nil, fmt.Errorf("embed stage: expected []chunk.Chunk, got %T", input)
	}
	records := make([]vectorstore.Record, 0, len(chunks))
	for _, c := range chunks {
		vec, err := s.embedder.Embed(c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		records = append(records, vectorstore.Record{
			ID:        c.ID,
			ChunkType: c.Type,
			Text:      c.Text,
			Metadata:  c.Metadata,
			Embedding: vec,
		})
	}
	return records, nil
}

// StoreStage upserts records into the vector store and passes them through.
type StoreStage struct {
	store vectorstore.Store
}

// NewStoreStage wraps a store.
func NewStoreStage(store vectorstore.Store) *StoreStage {
	return &StoreStage{store: store}
}

func (s *StoreStage) Name() string { return "store" }

func (s *StoreStage) Run(ctx context.Context, _ *Context, input any) (any, error) {
	records, ok := input.([]vectorstore.Record)
	if !ok {
		return nil, fmt.Errorf("store stage: expected []vectorstore.Record, got %T", input)
	}
	if err := s.store.Upsert(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}
