package hl7v2

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/ingest"
)

// segment builds a pipe-delimited segment with values at the given 1-based
// field positions, so tests do not have to hand-count pipes.
func segment(name string, width int, fields map[int]string) string {
	out := make([]string, width)
	for i, v := range fields {
		out[i-1] = v
	}
	return name + "|" + strings.Join(out, "|")
}

func testNormalizer() *Normalizer {
	n := NewNormalizer(zerolog.Nop())
	n.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return n
}

func TestNormalizeADT(t *testing.T) {
	pv1 := segment("PV1", 45, map[int]string{
		1:  "1",
		2:  "I",
		3:  "MED^101^A",
		7:  "1234^DOE^JOHN",
		8:  "5678^ROE^RICHARD",
		19: "V100123",
		44: "202305150800",
		45: "202305151630",
	})
	raw := adtMessage + "\r" + pv1

	content, err := testNormalizer().Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	p := content.Patient
	if p == nil {
		t.Fatal("patient not mapped")
	}
	if p.ID != "12345" {
		t.Errorf("patient id = %q", p.ID)
	}
	if p.DOBYear != 1980 || p.Over90 {
		t.Errorf("dob_year = %d over90 = %v", p.DOBYear, p.Over90)
	}
	if p.Gender != "F" {
		t.Errorf("gender = %q", p.Gender)
	}
	if p.GeographicArea != "NEW YORK, NY, USA" {
		t.Errorf("geographic_area = %q", p.GeographicArea)
	}
	if p.Identifiers["MR"] != "12345" || p.Identifiers["SS"] != "999551111" {
		t.Errorf("identifiers = %v", p.Identifiers)
	}

	e := content.Encounter
	if e == nil {
		t.Fatal("encounter not mapped")
	}
	if e.ID != "V100123" || e.EncounterType != "I" || e.Location != "MED" {
		t.Errorf("encounter = %+v", e)
	}
	if e.AdmitDate != "202305150800" || e.DischargeDate != "202305151630" {
		t.Errorf("encounter dates = %q / %q", e.AdmitDate, e.DischargeDate)
	}
	if e.PatientID != "12345" {
		t.Errorf("encounter patient_id = %q", e.PatientID)
	}
	if len(e.Providers) != 2 {
		t.Fatalf("want 2 providers, got %d", len(e.Providers))
	}
	for _, pr := range e.Providers {
		if pr.TypeCode == "ATND" && (pr.ID != "1234" || pr.Name != "JOHN DOE") {
			t.Errorf("attending = %+v", pr)
		}
	}

	if len(content.Allergies) != 1 || content.Allergies[0].Substance != "Penicillin" {
		t.Errorf("allergies = %+v", content.Allergies)
	}
	if len(content.Diagnoses) != 1 {
		t.Fatalf("diagnoses = %+v", content.Diagnoses)
	}
	dx := content.Diagnoses[0]
	if dx.Code != "E11.9" || dx.CodingMethod != "ICD-10" || dx.OnsetDate != "20230101" {
		t.Errorf("diagnosis = %+v", dx)
	}
}

func TestNormalizeORU(t *testing.T) {
	obr := segment("OBR", 22, map[int]string{
		1:  "1",
		3:  "LAB123",
		4:  "80048^Basic Metabolic Panel^CPT",
		7:  "202305140800",
		16: "2001^SMITH^A",
		22: "202305151030",
	})
	raw := "MSH|^~\\&|LAB|HOSP|||20230515||ORU^R01|MSG2|P|2.5\r" +
		"PID|1||12345^^^HOSP^MR\r" +
		obr + "\r" +
		"OBX|1|NM|2345-7^Glucose^LN||110|mg/dL|70-99|H||||||202305150945\r" +
		"OBX|2|NM|2160-0^Creatinine^LN||0.9|mg/dL|0.6-1.2|N||||||202305150945\r" +
		"NTE|1||Specimen slightly hemolyzed."

	content, err := testNormalizer().Normalize([]byte(raw))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(content.Labs) != 1 {
		t.Fatalf("want 1 lab report, got %d", len(content.Labs))
	}
	lab := content.Labs[0]
	if lab.ReportID != "LAB123" || lab.PanelName != "Basic Metabolic Panel" || !lab.IsPanel {
		t.Errorf("report = %+v", lab)
	}
	if lab.CollectionDate != "202305140800" || lab.ReportDate != "202305151030" {
		t.Errorf("report dates = %q / %q", lab.CollectionDate, lab.ReportDate)
	}
	if lab.OrderingProviderID != "2001" {
		t.Errorf("ordering provider = %q", lab.OrderingProviderID)
	}
	if len(lab.Observations) != 2 {
		t.Fatalf("want 2 observations, got %d", len(lab.Observations))
	}
	glucose := lab.Observations[0]
	if glucose.Code != "2345-7" || glucose.Value != "110" || glucose.Unit != "mg/dL" || glucose.AbnormalFlag != "H" {
		t.Errorf("glucose = %+v", glucose)
	}

	if len(content.Notes) != 1 || content.Notes[0].Text != "Specimen slightly hemolyzed." {
		t.Errorf("notes = %+v", content.Notes)
	}
}

func TestNormalizeOver90(t *testing.T) {
	raw := "MSH|^~\\&|EPIC|WESTSIDE|||20230515||ADT^A01|MSG3|P|2.5\r" +
		"PID|1||77777^^^HOSP^MR||DOE^AGNES||19300102|F"

	content, err := testNormalizer().Normalize([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if !content.Patient.Over90 {
		t.Error("patient born 1930 should be flagged over 90 in 2025")
	}
}

func TestNormalizerFormat(t *testing.T) {
	if got := testNormalizer().Format(); got != ingest.FormatHL7v2 {
		t.Errorf("Format() = %q", got)
	}
}
