// Package model defines the canonical content graph: the normalized,
// format-agnostic representation of a clinical or operational document
// produced by the ingestion normalizers and consumed by every downstream
// stage. Entities are independent record types with no shared base; the
// capabilities they expose to the de-identification engine are declared in
// schema.go.
package model

// ClinicalContent aggregates all clinical data for a single patient document.
// One instance corresponds to one ingested source document (FHIR bundle,
// HL7v2 message, or C-CDA document) after normalization.
type ClinicalContent struct {
	Patient      *Patient        `json:"patient,omitempty"`
	Encounter    *Encounter      `json:"encounter,omitempty"`
	Allergies    []Allergy       `json:"allergies,omitempty"`
	Immunizations []Immunization `json:"immunizations,omitempty"`
	Diagnoses    []Diagnosis     `json:"diagnoses,omitempty"`
	ProblemList  []Problem       `json:"problem_list,omitempty"`
	Medications  []Medication    `json:"medications,omitempty"`
	Notes        []Note          `json:"notes,omitempty"`
	Imaging      []ImagingReport `json:"imaging,omitempty"`
	Labs         []LabReport     `json:"labs,omitempty"`

	// Deidentified is set by the de-identification stage. Downstream stages
	// must refuse graphs where it is false.
	Deidentified bool `json:"deidentified"`
}

// Patient holds the demographic surface retained in the canonical model.
// Only Safe-Harbor-compatible demographics are modeled: year of birth (absent
// for patients aged 90 or over), gender, and a generalized geographic area.
type Patient struct {
	ID             string            `json:"id,omitempty"`
	DOBYear        int               `json:"dob_year,omitempty"`
	Over90         bool              `json:"over_90,omitempty"`
	Gender         string            `json:"gender,omitempty"`
	GeographicArea string            `json:"geographic_area,omitempty"`
	// Identifiers is an assorted identifier dictionary (MRN, SSN, payer
	// member ids, ...) keyed by source-assigned names.
	Identifiers map[string]string `json:"identifiers,omitempty"`
	// Extensions is a vendor extension bag for source fields that have no
	// canonical home. Keys are classified by name when de-identifying.
	Extensions map[string]string `json:"extensions,omitempty"`
}

// EncounterProvider is a provider involved in an encounter.
type EncounterProvider struct {
	ID           string `json:"id,omitempty"`
	TypeCode     string `json:"type_code,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Name         string `json:"name,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
}

// Encounter is a clinical encounter: an admission, outpatient visit, or
// emergency visit. Dates stay in their source string encoding until the
// de-identification stage normalizes them.
type Encounter struct {
	ID                 string              `json:"id,omitempty"`
	AdmitDate          string              `json:"admit_date,omitempty"`
	DischargeDate      string              `json:"discharge_date,omitempty"`
	EncounterType      string              `json:"encounter_type,omitempty"`
	TypeCodingMethod   string              `json:"type_coding_method,omitempty"`
	Location           string              `json:"location,omitempty"`
	ReasonCode         string              `json:"reason_code,omitempty"`
	ReasonCodingMethod string              `json:"reason_coding_method,omitempty"`
	VisitType          string              `json:"visit_type,omitempty"`
	PatientID          string              `json:"patient_id,omitempty"`
	Providers          []EncounterProvider `json:"providers,omitempty"`
}

// Allergy records an allergic reaction.
type Allergy struct {
	Substance    string `json:"substance,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Reaction     string `json:"reaction,omitempty"`
	Severity     string `json:"severity,omitempty"`
	Onset        string `json:"onset,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`
}

// Immunization records an administered vaccine.
type Immunization struct {
	VaccineCode      string `json:"vaccine_code,omitempty"`
	CodingMethod     string `json:"coding_method,omitempty"`
	Description      string `json:"description,omitempty"`
	DateAdministered string `json:"date_administered,omitempty"`
	Status           string `json:"status,omitempty"`
	LotNumber        string `json:"lot_number,omitempty"`
	PatientID        string `json:"patient_id,omitempty"`
	EncounterID      string `json:"encounter_id,omitempty"`
}

// Diagnosis is an encounter-scoped diagnosis.
type Diagnosis struct {
	Code         string `json:"code,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Description  string `json:"description,omitempty"`
	OnsetDate    string `json:"onset_date,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`
	EncounterID  string `json:"encounter_id,omitempty"`
}

// Problem is an entry in the longitudinal problem list.
type Problem struct {
	Code         string `json:"code,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Description  string `json:"description,omitempty"`
	OnsetDate    string `json:"onset_date,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`
	EncounterID  string `json:"encounter_id,omitempty"`
}

// Medication is a medication order or prescription.
type Medication struct {
	Code         string `json:"code,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Name         string `json:"name,omitempty"`
	Dose         string `json:"dose,omitempty"`
	Route        string `json:"route,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Status       string `json:"status,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`
	EncounterID  string `json:"encounter_id,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Note is a clinical narrative document: progress note, discharge summary,
// consult note, and so on.
type Note struct {
	NoteTypeCode string `json:"note_type_code,omitempty"`
	Text         string `json:"text,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	AuthorID     string `json:"author_id,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	PatientID    string `json:"patient_id,omitempty"`
	EncounterID  string `json:"encounter_id,omitempty"`
}

// LabObservation is a single result within a lab report.
type LabObservation struct {
	Code           string `json:"code,omitempty"`
	CodingMethod   string `json:"coding_method,omitempty"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	Value          string `json:"value,omitempty"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
	AbnormalFlag   string `json:"abnormal_flag,omitempty"`
	ResultDate     string `json:"result_date,omitempty"`
}

// LabReport is a laboratory report containing one or more observations.
type LabReport struct {
	ReportID           string           `json:"report_id,omitempty"`
	LabType            string           `json:"lab_type,omitempty"`
	Code               string           `json:"code,omitempty"`
	CodingMethod       string           `json:"coding_method,omitempty"`
	PanelName          string           `json:"panel_name,omitempty"`
	PanelCode          string           `json:"panel_code,omitempty"`
	PanelCodeMethod    string           `json:"panel_code_method,omitempty"`
	IsPanel            bool             `json:"is_panel,omitempty"`
	OrderingProviderID string           `json:"ordering_provider_id,omitempty"`
	PerformingLab      string           `json:"performing_lab,omitempty"`
	ReportType         string           `json:"report_type,omitempty"`
	CollectionDate     string           `json:"collection_date,omitempty"`
	ReportDate         string           `json:"report_date,omitempty"`
	Observations       []LabObservation `json:"observations,omitempty"`
	Note               string           `json:"note,omitempty"`
	PatientID          string           `json:"patient_id,omitempty"`
	EncounterID        string           `json:"encounter_id,omitempty"`
}

// ImagingFinding is one finding within an imaging report.
type ImagingFinding struct {
	Code         string `json:"code,omitempty"`
	CodingMethod string `json:"coding_method,omitempty"`
	Description  string `json:"description,omitempty"`
	Impression   string `json:"impression,omitempty"`
	AbnormalFlag string `json:"abnormal_flag,omitempty"`
	ResultDate   string `json:"result_date,omitempty"`
}

// ImagingReport is a radiology or other imaging report.
type ImagingReport struct {
	ReportID           string           `json:"report_id,omitempty"`
	ImageType          string           `json:"image_type,omitempty"`
	CodingMethod       string           `json:"coding_method,omitempty"`
	OrderingProviderID string           `json:"ordering_provider_id,omitempty"`
	PerformingFacility string           `json:"performing_facility,omitempty"`
	Modality           string           `json:"modality,omitempty"`
	AcquisitionDate    string           `json:"acquisition_date,omitempty"`
	Findings           []ImagingFinding `json:"findings,omitempty"`
	Narrative          string           `json:"narrative,omitempty"`
	PatientID          string           `json:"patient_id,omitempty"`
	EncounterID        string           `json:"encounter_id,omitempty"`
}
