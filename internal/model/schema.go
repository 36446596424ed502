package model

import "github.com/clinpipe/clinpipe/internal/phi"

// De-identification schemas. Each entity declares its PHI-bearing fields so
// the walker never has to guess from names; the Extensions bag on Patient is
// the one place where name sniffing still applies.

// DeidSchema implements phi.Redactable.
func (p *Patient) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Patient",
		Over90: func() bool { return p.Over90 },
		Fields: []phi.Field{
			phi.StrID("id", phi.IDPatient, &p.ID),
			phi.Year("dob_year", &p.DOBYear),
			phi.Str("geographic_area", phi.KindGeographic, &p.GeographicArea),
		},
		IdentifiersGet: func() map[string]string { return p.Identifiers },
		IdentifiersSet: func(m map[string]string) { p.Identifiers = m },
		VendorGet:      func() map[string]string { return p.Extensions },
		VendorSet:      func(m map[string]string) { p.Extensions = m },
	}
}

// DeidSchema implements phi.Redactable.
func (e *Encounter) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Encounter",
		Fields: []phi.Field{
			phi.StrID("id", phi.IDGeneric, &e.ID),
			phi.Str("admit_date", phi.KindDate, &e.AdmitDate),
			phi.Str("discharge_date", phi.KindDate, &e.DischargeDate),
			phi.Str("location", phi.KindAddress, &e.Location),
			phi.StrID("patient_id", phi.IDPatient, &e.PatientID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (p *EncounterProvider) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "EncounterProvider",
		Fields: []phi.Field{
			phi.StrID("id", phi.IDGeneric, &p.ID),
			phi.Str("name", phi.KindName, &p.Name),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (a *Allergy) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Allergy",
		Fields: []phi.Field{
			phi.Str("onset", phi.KindDate, &a.Onset),
			phi.StrID("patient_id", phi.IDPatient, &a.PatientID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (i *Immunization) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Immunization",
		Fields: []phi.Field{
			phi.Str("date_administered", phi.KindDate, &i.DateAdministered),
			phi.StrID("lot_number", phi.IDGeneric, &i.LotNumber),
			phi.StrID("patient_id", phi.IDPatient, &i.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &i.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (d *Diagnosis) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Diagnosis",
		Fields: []phi.Field{
			phi.Str("onset_date", phi.KindDate, &d.OnsetDate),
			phi.StrID("patient_id", phi.IDPatient, &d.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &d.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (p *Problem) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Problem",
		Fields: []phi.Field{
			phi.Str("onset_date", phi.KindDate, &p.OnsetDate),
			phi.StrID("patient_id", phi.IDPatient, &p.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &p.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (m *Medication) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Medication",
		Fields: []phi.Field{
			phi.Str("start_date", phi.KindDate, &m.StartDate),
			phi.Str("end_date", phi.KindDate, &m.EndDate),
			phi.StrID("patient_id", phi.IDPatient, &m.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &m.EncounterID),
			phi.Str("notes", phi.KindText, &m.Notes),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (n *Note) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Note",
		Fields: []phi.Field{
			phi.Str("text", phi.KindText, &n.Text),
			phi.Str("timestamp", phi.KindDate, &n.Timestamp),
			phi.StrID("author_id", phi.IDGeneric, &n.AuthorID),
			phi.Str("author_name", phi.KindName, &n.AuthorName),
			phi.StrID("patient_id", phi.IDPatient, &n.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &n.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (l *LabReport) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "LabReport",
		Fields: []phi.Field{
			phi.StrID("report_id", phi.IDGeneric, &l.ReportID),
			phi.StrID("ordering_provider_id", phi.IDGeneric, &l.OrderingProviderID),
			phi.Str("collection_date", phi.KindDate, &l.CollectionDate),
			phi.Str("report_date", phi.KindDate, &l.ReportDate),
			phi.Str("note", phi.KindText, &l.Note),
			phi.StrID("patient_id", phi.IDPatient, &l.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &l.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (o *LabObservation) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "LabObservation",
		Fields: []phi.Field{
			phi.Str("result_date", phi.KindDate, &o.ResultDate),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (r *ImagingReport) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "ImagingReport",
		Fields: []phi.Field{
			phi.StrID("report_id", phi.IDGeneric, &r.ReportID),
			phi.StrID("ordering_provider_id", phi.IDGeneric, &r.OrderingProviderID),
			phi.Str("acquisition_date", phi.KindDate, &r.AcquisitionDate),
			phi.Str("narrative", phi.KindText, &r.Narrative),
			phi.StrID("patient_id", phi.IDPatient, &r.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &r.EncounterID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (f *ImagingFinding) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "ImagingFinding",
		Fields: []phi.Field{
			phi.Str("impression", phi.KindText, &f.Impression),
			phi.Str("result_date", phi.KindDate, &f.ResultDate),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (c *Claim) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Claim",
		Fields: []phi.Field{
			phi.StrID("claim_id", phi.IDGeneric, &c.ClaimID),
			phi.StrID("patient_id", phi.IDPatient, &c.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &c.EncounterID),
			phi.Time("claim_date", &c.ClaimDate),
			phi.StrID("payer_id", phi.IDGeneric, &c.PayerID),
			phi.Time("service_start_date", &c.ServiceStartDate),
			phi.Time("service_end_date", &c.ServiceEndDate),
			phi.StrID("organization_id", phi.IDGeneric, &c.OrganizationID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (c *Charge) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Charge",
		Fields: []phi.Field{
			phi.StrID("charge_id", phi.IDGeneric, &c.ChargeID),
			phi.StrID("encounter_id", phi.IDGeneric, &c.EncounterID),
			phi.StrID("patient_id", phi.IDPatient, &c.PatientID),
			phi.Time("service_date", &c.ServiceDate),
			phi.Str("charge_description", phi.KindText, &c.ChargeDescription),
			phi.StrID("performing_provider_id", phi.IDGeneric, &c.PerformingProviderID),
			phi.StrID("ordering_provider_id", phi.IDGeneric, &c.OrderingProviderID),
			phi.StrID("organization_id", phi.IDGeneric, &c.OrganizationID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (p *Payment) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Payment",
		Fields: []phi.Field{
			phi.StrID("payment_id", phi.IDGeneric, &p.PaymentID),
			phi.StrID("patient_id", phi.IDPatient, &p.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &p.EncounterID),
			phi.StrID("charge_id", phi.IDGeneric, &p.ChargeID),
			phi.StrID("payer_id", phi.IDGeneric, &p.PayerID),
			phi.Time("payment_date", &p.PaymentDate),
			phi.Str("check_number", phi.KindAccount, &p.CheckNumber),
			phi.Str("remit_advice_description", phi.KindText, &p.RemitAdviceDescription),
			phi.StrID("organization_id", phi.IDGeneric, &p.OrganizationID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (a *Adjustment) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "Adjustment",
		Fields: []phi.Field{
			phi.StrID("adjustment_id", phi.IDGeneric, &a.AdjustmentID),
			phi.StrID("charge_id", phi.IDGeneric, &a.ChargeID),
			phi.StrID("payment_id", phi.IDGeneric, &a.PaymentID),
			phi.Time("adjustment_date", &a.AdjustmentDate),
			phi.Str("adjustment_reason_description", phi.KindText, &a.AdjustmentReasonDescription),
			phi.StrID("organization_id", phi.IDGeneric, &a.OrganizationID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (p *PriorAuthorization) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "PriorAuthorization",
		Fields: []phi.Field{
			phi.StrID("auth_id", phi.IDGeneric, &p.AuthID),
			phi.StrID("patient_id", phi.IDPatient, &p.PatientID),
			phi.StrID("provider_id", phi.IDGeneric, &p.ProviderID),
			phi.Times("service_dates", &p.ServiceDates),
			phi.StrID("organization_id", phi.IDGeneric, &p.OrganizationID),
		},
	}
}

// DeidSchema implements phi.Redactable.
func (d *DRG) DeidSchema() phi.Schema {
	return phi.Schema{
		Entity: "DRG",
		Fields: []phi.Field{
			phi.StrID("patient_id", phi.IDPatient, &d.PatientID),
			phi.StrID("encounter_id", phi.IDGeneric, &d.EncounterID),
		},
	}
}
