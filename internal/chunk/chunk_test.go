package chunk

import (
	"strings"
	"testing"

	"github.com/clinpipe/clinpipe/internal/model"
)

func TestClinicalChunker(t *testing.T) {
	graph := &model.ClinicalContent{
		Patient:   &model.Patient{ID: "DEID_abc"},
		Encounter: &model.Encounter{ID: "DEID_ID_def"},
		Medications: []model.Medication{
			{Name: "Metformin 500mg"},
		},
		Notes: []model.Note{
			{NoteTypeCode: "PN", Text: "Short progress note."},
		},
		Deidentified: true,
	}

	chunks, err := ClinicalChunker{}.Chunk(graph)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	types := map[string]int{}
	for _, c := range chunks {
		if c.ID == "" {
			t.Error("chunk without id")
		}
		types[c.Type]++
	}
	for _, want := range []string{"patient", "encounter", "medications", "note"} {
		if types[want] != 1 {
			t.Errorf("want one %s chunk, got %d (all: %v)", want, types[want], types)
		}
	}
	if types["labs"] != 0 {
		t.Errorf("empty collection should not produce a chunk: %v", types)
	}

	for _, c := range chunks {
		if c.Type == "note" {
			if c.Text != "Short progress note." {
				t.Errorf("note text = %q", c.Text)
			}
			if c.Metadata["patient_id"] != "DEID_abc" {
				t.Errorf("note metadata = %v", c.Metadata)
			}
		}
	}
}

func TestClinicalChunkerSplitsLongNotes(t *testing.T) {
	para := strings.Repeat("sentence ", 200) // ~1800 chars per paragraph
	graph := &model.ClinicalContent{
		Notes:        []model.Note{{Text: para + "\n\n" + para}},
		Deidentified: true,
	}

	chunks, err := ClinicalChunker{}.Chunk(graph)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("want 2 paragraph chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if strings.Contains(c.Text, "\n\n") {
			t.Error("paragraph chunk still contains a separator")
		}
	}
}

func TestClinicalChunkerRefusesRawContent(t *testing.T) {
	if _, err := (ClinicalChunker{}).Chunk(&model.ClinicalContent{}); err != ErrNotDeidentified {
		t.Errorf("err = %v, want ErrNotDeidentified", err)
	}
	if _, err := (ClinicalChunker{}).Chunk("wrong type"); err == nil {
		t.Error("wrong content type accepted")
	}
}

func TestOperationalChunker(t *testing.T) {
	graph := &model.OperationalContent{
		TransactionType: "837",
		Claims: []model.Claim{
			{ClaimID: "DEID_ID_c1", PatientID: "DEID_p1", Charges: []model.Charge{{ChargeID: "DEID_ID_ch1"}}},
			{ClaimID: "DEID_ID_c2", PatientID: "DEID_p1"},
		},
		Payments:     []model.Payment{{PaymentID: "DEID_ID_pay1"}},
		Deidentified: true,
	}

	chunks, err := OperationalChunker{}.Chunk(graph)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	var claims, payments int
	for _, c := range chunks {
		switch c.Type {
		case "claim":
			claims++
			if c.Metadata["claim_id"] == "DEID_ID_c1" && !strings.Contains(c.Text, "DEID_ID_ch1") {
				t.Error("claim chunk should embed nested charges")
			}
		case "payments":
			payments++
		}
	}
	if claims != 2 || payments != 1 {
		t.Errorf("claims = %d payments = %d", claims, payments)
	}
}

func TestOperationalChunkerRefusesRawContent(t *testing.T) {
	if _, err := (OperationalChunker{}).Chunk(&model.OperationalContent{}); err != ErrNotDeidentified {
		t.Errorf("err = %v, want ErrNotDeidentified", err)
	}
}
