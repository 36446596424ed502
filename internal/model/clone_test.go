package model

import (
	"testing"
	"time"
)

func TestClinicalClone(t *testing.T) {
	src := &ClinicalContent{
		Patient: &Patient{
			ID:          "P1",
			DOBYear:     1975,
			Identifiers: map[string]string{"MRN": "M1"},
			Extensions:  map[string]string{"vendor_flag": "x"},
		},
		Notes: []Note{{Text: "original text"}},
	}

	dup, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	dup.Patient.ID = "changed"
	dup.Patient.Identifiers["MRN"] = "changed"
	dup.Notes[0].Text = "changed"

	if src.Patient.ID != "P1" {
		t.Errorf("clone shares patient with source: %q", src.Patient.ID)
	}
	if src.Patient.Identifiers["MRN"] != "M1" {
		t.Errorf("clone shares identifier map with source: %q", src.Patient.Identifiers["MRN"])
	}
	if src.Notes[0].Text != "original text" {
		t.Errorf("clone shares notes slice with source: %q", src.Notes[0].Text)
	}
}

func TestOperationalClone(t *testing.T) {
	when := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)
	src := &OperationalContent{
		Claims: []Claim{{ClaimID: "C1", ClaimDate: &when, Charges: []Charge{{ChargeID: "CH1"}}}},
	}

	dup, err := src.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	*dup.Claims[0].ClaimDate = when.AddDate(1, 0, 0)
	dup.Claims[0].Charges[0].ChargeID = "changed"

	if !src.Claims[0].ClaimDate.Equal(when) {
		t.Errorf("clone shares claim date with source: %v", src.Claims[0].ClaimDate)
	}
	if src.Claims[0].Charges[0].ChargeID != "CH1" {
		t.Errorf("clone shares nested charges with source: %q", src.Claims[0].Charges[0].ChargeID)
	}
}

func TestSummary(t *testing.T) {
	c := &ClinicalContent{
		Patient: &Patient{ID: "P1"},
		Notes:   []Note{{}, {}},
	}
	if got, want := c.Summary(), "patient notes=2"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if got := (&ClinicalContent{}).Summary(); got != "empty clinical content" {
		t.Errorf("empty Summary() = %q", got)
	}

	o := &OperationalContent{TransactionType: "835", Payments: []Payment{{}}}
	if got, want := o.Summary(), "txn=835 payments=1"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
