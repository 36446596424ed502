package deid

import "github.com/clinpipe/clinpipe/internal/model"

// Entity dispatch: type-aware orchestration of the walk over each root
// variant. The patient is always processed first so the primary identity-map
// entry exists before any entity references it; after that, collection order
// is irrelevant because the shared identity map keeps references consistent.

func (w *walker) walkClinical(c *model.ClinicalContent) int {
	entities := 0
	if c.Patient != nil {
		w.walk(c.Patient)
		entities++
	}
	if c.Encounter != nil {
		w.walk(c.Encounter)
		entities++
		for i := range c.Encounter.Providers {
			w.walk(&c.Encounter.Providers[i])
			entities++
		}
	}
	for i := range c.Allergies {
		w.walk(&c.Allergies[i])
		entities++
	}
	for i := range c.Immunizations {
		w.walk(&c.Immunizations[i])
		entities++
	}
	for i := range c.Diagnoses {
		w.walk(&c.Diagnoses[i])
		entities++
	}
	for i := range c.ProblemList {
		w.walk(&c.ProblemList[i])
		entities++
	}
	for i := range c.Medications {
		w.walk(&c.Medications[i])
		entities++
	}
	for i := range c.Notes {
		w.walk(&c.Notes[i])
		entities++
	}
	for i := range c.Imaging {
		w.walk(&c.Imaging[i])
		entities++
		for j := range c.Imaging[i].Findings {
			w.walk(&c.Imaging[i].Findings[j])
			entities++
		}
	}
	for i := range c.Labs {
		w.walk(&c.Labs[i])
		entities++
		for j := range c.Labs[i].Observations {
			w.walk(&c.Labs[i].Observations[j])
			entities++
		}
	}
	return entities
}

func (w *walker) walkOperational(c *model.OperationalContent) int {
	entities := 0
	for i := range c.Claims {
		claim := &c.Claims[i]
		w.walk(claim)
		entities++
		for j := range claim.Charges {
			w.walk(&claim.Charges[j])
			entities++
		}
		for j := range claim.Payments {
			w.walk(&claim.Payments[j])
			entities++
		}
		for j := range claim.Adjustments {
			w.walk(&claim.Adjustments[j])
			entities++
		}
	}
	for i := range c.Charges {
		w.walk(&c.Charges[i])
		entities++
	}
	for i := range c.Payments {
		w.walk(&c.Payments[i])
		entities++
	}
	for i := range c.Adjustments {
		w.walk(&c.Adjustments[i])
		entities++
	}
	for i := range c.PriorAuthorizations {
		w.walk(&c.PriorAuthorizations[i])
		entities++
	}
	for i := range c.DRGs {
		w.walk(&c.DRGs[i])
		entities++
	}
	return entities
}
