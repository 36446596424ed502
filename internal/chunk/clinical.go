package chunk

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinpipe/clinpipe/internal/model"
)

// noteSplitThreshold is the note length above which the note is split into
// one chunk per paragraph.
const noteSplitThreshold = 2000

// ClinicalChunker emits one chunk per populated entity collection plus one or
// more chunks per clinical note.
type ClinicalChunker struct{}

// Name implements Chunker.
func (ClinicalChunker) Name() string { return "clinical" }

// Chunk implements Chunker.
func (c ClinicalChunker) Chunk(content any) ([]Chunk, error) {
	graph, ok := content.(*model.ClinicalContent)
	if !ok {
		return nil, fmt.Errorf("chunk: clinical chunker got %T", content)
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

	meta := map[string]string{}
	if graph.Patient != nil {
		meta["patient_id"] = graph.Patient.ID
		if err := add("patient", graph.Patient, meta); err != nil {
			return nil, err
		}
	}
	if graph.Encounter != nil {
		if err := add("encounter", graph.Encounter, meta); err != nil {
			return nil, err
		}
	}
	collections := []struct {
		chunkType string
		v         any
		n         int
	}{
		{"allergies", graph.Allergies, len(graph.Allergies)},
		{"immunizations", graph.Immunizations, len(graph.Immunizations)},
		{"diagnoses", graph.Diagnoses, len(graph.Diagnoses)},
		{"problem_list", graph.ProblemList, len(graph.ProblemList)},
		{"medications", graph.Medications, len(graph.Medications)},
		{"imaging", graph.Imaging, len(graph.Imaging)},
		{"labs", graph.Labs, len(graph.Labs)},
	}
	for _, col := range collections {
		if col.n == 0 {
			continue
		}
		if err := add(col.chunkType, col.v, meta); err != nil {
			return nil, err
		}
	}

	for i := range graph.Notes {
		chunks = append(chunks, noteChunks(&graph.Notes[i], meta)...)
	}
	return chunks, nil
}

// noteChunks emits the note as a single text chunk, or one chunk per
// paragraph when the note is long.
func noteChunks(note *model.Note, base map[string]string) []Chunk {
	meta := map[string]string{"note_type": note.NoteTypeCode}
	for k, v := range base {
		meta[k] = v
	}

	if len(note.Text) <= noteSplitThreshold {
		return []Chunk{{
			ID:       uuid.NewString(),
			Type:     "note",
			Text:     note.Text,
			Metadata: meta,
		}}
	}

	var out []Chunk
	for _, para := range strings.Split(note.Text, "\n\n") {
		if para = strings.TrimSpace(para); para == "" {
			continue
		}
		out = append(out, Chunk{
			ID:       uuid.NewString(),
			Type:     "note",
			Text:     para,
			Metadata: meta,
		})
	}
	return out
}
