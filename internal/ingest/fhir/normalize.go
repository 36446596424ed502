// Package fhir normalizes FHIR R4 JSON bundles into the canonical clinical
// graph. Only the resource subset with a canonical home is mapped; other
// resource types in the bundle are counted and skipped.
package fhir

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/ingest"
	"github.com/clinpipe/clinpipe/internal/model"
)

// Normalizer maps FHIR bundles onto the canonical clinical graph.
type Normalizer struct {
	log zerolog.Logger
	now func() time.Time
}

// NewNormalizer builds a FHIR normalizer.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// Format implements ingest.Normalizer.
func (n *Normalizer) Format() ingest.Format { return ingest.FormatFHIR }

// bundle is the envelope; each entry's resource stays raw until its type is
// known.
type bundle struct {
	ResourceType string `json:"resourceType"`
	Type         string `json:"type"`
	Entry        []struct {
		Resource json.RawMessage `json:"resource"`
	} `json:"entry"`
}

type resourceHeader struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
}

// Normalize parses a Bundle (or a single resource) and maps every supported
// resource. Observations are attached to the DiagnosticReport that references
// them; standalone observations get a report of their own.
func (n *Normalizer) Normalize(data []byte) (*model.ClinicalContent, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("fhir: parse bundle: %w", err)
	}

	var resources []json.RawMessage
	switch b.ResourceType {
	case "Bundle":
		for _, e := range b.Entry {
			if len(e.Resource) > 0 {
				resources = append(resources, e.Resource)
			}
		}
	case "":
		return nil, fmt.Errorf("fhir: missing resourceType")
	default:
		resources = append(resources, data)
	}

	content := &model.ClinicalContent{}
	m := &mapper{content: content, observations: make(map[string]model.LabObservation)}
	skipped := 0
	for _, raw := range resources {
		var hdr resourceHeader
		if err := json.Unmarshal(raw, &hdr); err != nil {
			return nil, fmt.Errorf("fhir: parse resource: %w", err)
		}
		if err := m.mapResource(hdr, raw, n.now); err != nil {
			return nil, err
		}
		if !m.mapped {
			skipped++
		}
	}
	m.attachReports()

	n.log.Debug().
		Int("resources", len(resources)).
		Int("skipped", skipped).
		Str("content", content.Summary()).
		Msg("fhir bundle normalized")
	return content, nil
}

// mapper accumulates mapping state across a bundle: observations are indexed
// by id so reports can claim them, and reports remember their references.
type mapper struct {
	content      *model.ClinicalContent
	observations map[string]model.LabObservation
	reports      []pendingReport
	mapped       bool
}

type pendingReport struct {
	report model.LabReport
	refs   []string
}

func (m *mapper) mapResource(hdr resourceHeader, raw json.RawMessage, now func() time.Time) error {
	m.mapped = true
	var err error
	switch hdr.ResourceType {
	case "Patient":
		err = m.mapPatient(raw, now)
	case "Encounter":
		err = m.mapEncounter(raw)
	case "AllergyIntolerance":
		err = m.mapAllergy(raw)
	case "Condition":
		err = m.mapCondition(raw)
	case "MedicationRequest":
		err = m.mapMedicationRequest(raw)
	case "Immunization":
		err = m.mapImmunization(raw)
	case "Observation":
		err = m.mapObservation(hdr.ID, raw)
	case "DiagnosticReport":
		err = m.mapDiagnosticReport(hdr.ID, raw)
	case "DocumentReference":
		err = m.mapDocumentReference(raw)
	default:
		m.mapped = false
	}
	if err != nil {
		return fmt.Errorf("fhir: map %s: %w", hdr.ResourceType, err)
	}
	return nil
}

// codeableConcept and related fragments of the FHIR data model.
type codeableConcept struct {
	Coding []coding `json:"coding"`
	Text   string   `json:"text"`
}

type coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

func (c codeableConcept) first() coding {
	if len(c.Coding) > 0 {
		return c.Coding[0]
	}
	return coding{}
}

func (c codeableConcept) display() string {
	if f := c.first(); f.Display != "" {
		return f.Display
	}
	return c.Text
}

type reference struct {
	Reference string `json:"reference"`
}

// id extracts the bare id from "Patient/123" style references.
func (r reference) id() string {
	if i := strings.LastIndexByte(r.Reference, '/'); i >= 0 {
		return r.Reference[i+1:]
	}
	return r.Reference
}

func (m *mapper) mapPatient(raw json.RawMessage, now func() time.Time) error {
	var res struct {
		ID         string `json:"id"`
		Gender     string `json:"gender"`
		BirthDate  string `json:"birthDate"`
		Identifier []struct {
			System string          `json:"system"`
			Value  string          `json:"value"`
			Type   codeableConcept `json:"type"`
		} `json:"identifier"`
		Address []struct {
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	p := &model.Patient{ID: res.ID, Gender: res.Gender}

	if len(res.BirthDate) >= 4 {
		if year, err := strconv.Atoi(res.BirthDate[:4]); err == nil {
			p.DOBYear = year
			p.Over90 = now().Year()-year >= 90
		}
	}
	for _, id := range res.Identifier {
		if id.Value == "" {
			continue
		}
		key := id.Type.first().Code
		if key == "" {
			key = id.System
		}
		if key == "" {
			continue
		}
		if p.Identifiers == nil {
			p.Identifiers = make(map[string]string)
		}
		p.Identifiers[key] = id.Value
	}
	if len(res.Address) > 0 {
		var segs []string
		for _, s := range []string{res.Address[0].City, res.Address[0].State, res.Address[0].Country} {
			if s != "" {
				segs = append(segs, s)
			}
		}
		p.GeographicArea = strings.Join(segs, ", ")
	}

	m.content.Patient = p
	return nil
}

func (m *mapper) mapEncounter(raw json.RawMessage) error {
	var res struct {
		ID    string `json:"id"`
		Class struct {
			Code string `json:"code"`
		} `json:"class"`
		Type   []codeableConcept `json:"type"`
		Period struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"period"`
		Subject     reference `json:"subject"`
		Location    []struct {
			Location struct {
				Display string `json:"display"`
			} `json:"location"`
		} `json:"location"`
		Participant []struct {
			Type       []codeableConcept `json:"type"`
			Individual struct {
				Reference string `json:"reference"`
				Display   string `json:"display"`
			} `json:"individual"`
		} `json:"participant"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	e := &model.Encounter{
		ID:            res.ID,
		EncounterType: res.Class.Code,
		AdmitDate:     res.Period.Start,
		DischargeDate: res.Period.End,
		PatientID:     res.Subject.id(),
	}
	if len(res.Type) > 0 {
		e.VisitType = res.Type[0].display()
	}
	if len(res.Location) > 0 {
		e.Location = res.Location[0].Location.Display
	}
	for _, part := range res.Participant {
		ref := reference{Reference: part.Individual.Reference}
		if ref.id() == "" {
			continue
		}
		prov := model.EncounterProvider{ID: ref.id(), Name: part.Individual.Display}
		if len(part.Type) > 0 {
			prov.TypeCode = part.Type[0].first().Code
		}
		e.Providers = append(e.Providers, prov)
	}
	m.content.Encounter = e
	return nil
}

func (m *mapper) mapAllergy(raw json.RawMessage) error {
	var res struct {
		Code     codeableConcept `json:"code"`
		Patient  reference       `json:"patient"`
		Onset    string          `json:"onsetDateTime"`
		Reaction []struct {
			Manifestation []codeableConcept `json:"manifestation"`
			Severity      string            `json:"severity"`
		} `json:"reaction"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	a := model.Allergy{
		Substance:    res.Code.display(),
		CodingMethod: res.Code.first().System,
		Onset:        res.Onset,
		PatientID:    res.Patient.id(),
	}
	if len(res.Reaction) > 0 {
		a.Severity = res.Reaction[0].Severity
		if len(res.Reaction[0].Manifestation) > 0 {
			a.Reaction = res.Reaction[0].Manifestation[0].display()
		}
	}
	m.content.Allergies = append(m.content.Allergies, a)
	return nil
}

func (m *mapper) mapCondition(raw json.RawMessage) error {
	var res struct {
		Code      codeableConcept `json:"code"`
		Subject   reference       `json:"subject"`
		Encounter reference       `json:"encounter"`
		Onset     string          `json:"onsetDateTime"`
		Category  []codeableConcept `json:"category"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	// problem-list-item conditions go to the problem list, everything else is
	// an encounter diagnosis.
	problem := false
	for _, cat := range res.Category {
		if cat.first().Code == "problem-list-item" {
			problem = true
		}
	}
	if problem {
		m.content.ProblemList = append(m.content.ProblemList, model.Problem{
			Code:         res.Code.first().Code,
			Description:  res.Code.display(),
			CodingMethod: res.Code.first().System,
			OnsetDate:    res.Onset,
			PatientID:    res.Subject.id(),
			EncounterID:  res.Encounter.id(),
		})
		return nil
	}
	m.content.Diagnoses = append(m.content.Diagnoses, model.Diagnosis{
		Code:         res.Code.first().Code,
		Description:  res.Code.display(),
		CodingMethod: res.Code.first().System,
		OnsetDate:    res.Onset,
		PatientID:    res.Subject.id(),
		EncounterID:  res.Encounter.id(),
	})
	return nil
}

func (m *mapper) mapMedicationRequest(raw json.RawMessage) error {
	var res struct {
		Status     string          `json:"status"`
		Medication codeableConcept `json:"medicationCodeableConcept"`
		Subject    reference       `json:"subject"`
		Encounter  reference       `json:"encounter"`
		Dosage     []struct {
			Text string `json:"text"`
		} `json:"dosageInstruction"`
		Authored string `json:"authoredOn"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	med := model.Medication{
		Code:         res.Medication.first().Code,
		Name:         res.Medication.display(),
		CodingMethod: res.Medication.first().System,
		Status:       res.Status,
		StartDate:    res.Authored,
		PatientID:    res.Subject.id(),
		EncounterID:  res.Encounter.id(),
	}
	if len(res.Dosage) > 0 {
		med.Dose = res.Dosage[0].Text
	}
	m.content.Medications = append(m.content.Medications, med)
	return nil
}

func (m *mapper) mapImmunization(raw json.RawMessage) error {
	var res struct {
		Status      string          `json:"status"`
		VaccineCode codeableConcept `json:"vaccineCode"`
		Patient     reference       `json:"patient"`
		Encounter   reference       `json:"encounter"`
		Occurrence  string          `json:"occurrenceDateTime"`
		LotNumber   string          `json:"lotNumber"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	m.content.Immunizations = append(m.content.Immunizations, model.Immunization{
		VaccineCode:      res.VaccineCode.first().Code,
		Description:      res.VaccineCode.display(),
		CodingMethod:     res.VaccineCode.first().System,
		Status:           res.Status,
		DateAdministered: res.Occurrence,
		LotNumber:        res.LotNumber,
		PatientID:        res.Patient.id(),
		EncounterID:      res.Encounter.id(),
	})
	return nil
}

func (m *mapper) mapObservation(id string, raw json.RawMessage) error {
	var res struct {
		Code          codeableConcept `json:"code"`
		ValueQuantity struct {
			Value json.Number `json:"value"`
			Unit  string      `json:"unit"`
		} `json:"valueQuantity"`
		ValueString   string `json:"valueString"`
		Effective     string `json:"effectiveDateTime"`
		ReferenceRange []struct {
			Text string `json:"text"`
		} `json:"referenceRange"`
		Interpretation []codeableConcept `json:"interpretation"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	o := model.LabObservation{
		Code:         res.Code.first().Code,
		Name:         res.Code.display(),
		CodingMethod: res.Code.first().System,
		Value:        res.ValueQuantity.Value.String(),
		Unit:         res.ValueQuantity.Unit,
		ResultDate:   res.Effective,
	}
	if o.Value == "" {
		o.Value = res.ValueString
	}
	if len(res.ReferenceRange) > 0 {
		o.ReferenceRange = res.ReferenceRange[0].Text
	}
	if len(res.Interpretation) > 0 {
		o.AbnormalFlag = res.Interpretation[0].first().Code
	}
	m.observations[id] = o
	return nil
}

func (m *mapper) mapDiagnosticReport(id string, raw json.RawMessage) error {
	var res struct {
		Code      codeableConcept `json:"code"`
		Subject   reference       `json:"subject"`
		Encounter reference       `json:"encounter"`
		Effective string          `json:"effectiveDateTime"`
		Issued    string          `json:"issued"`
		Result    []reference     `json:"result"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	pr := pendingReport{
		report: model.LabReport{
			ReportID:        id,
			PanelCode:       res.Code.first().Code,
			PanelName:       res.Code.display(),
			PanelCodeMethod: res.Code.first().System,
			IsPanel:         len(res.Result) > 1,
			CollectionDate:  res.Effective,
			ReportDate:      res.Issued,
			PatientID:       res.Subject.id(),
			EncounterID:     res.Encounter.id(),
		},
	}
	for _, r := range res.Result {
		pr.refs = append(pr.refs, r.id())
	}
	m.reports = append(m.reports, pr)
	return nil
}

func (m *mapper) mapDocumentReference(raw json.RawMessage) error {
	var res struct {
		Type    codeableConcept `json:"type"`
		Subject reference       `json:"subject"`
		Date    string          `json:"date"`
		Author  []struct {
			Reference string `json:"reference"`
			Display   string `json:"display"`
		} `json:"author"`
		Content []struct {
			Attachment struct {
				ContentType string `json:"contentType"`
				Data        string `json:"data"`
			} `json:"attachment"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return err
	}
	note := model.Note{
		NoteTypeCode: res.Type.first().Code,
		Timestamp:    res.Date,
		PatientID:    res.Subject.id(),
	}
	if len(res.Author) > 0 {
		note.AuthorID = reference{Reference: res.Author[0].Reference}.id()
		note.AuthorName = res.Author[0].Display
	}
	if len(res.Content) > 0 {
		note.Text = decodeAttachment(res.Content[0].Attachment.Data)
	}
	if note.Text == "" {
		return nil
	}
	m.content.Notes = append(m.content.Notes, note)
	return nil
}

// attachReports claims indexed observations for each report and appends the
// reports to the graph. Observations no report references become a standalone
// single-observation report, so no result is dropped.
func (m *mapper) attachReports() {
	claimed := make(map[string]bool)
	for _, pr := range m.reports {
		for _, ref := range pr.refs {
			if o, ok := m.observations[ref]; ok {
				pr.report.Observations = append(pr.report.Observations, o)
				claimed[ref] = true
			}
		}
		m.content.Labs = append(m.content.Labs, pr.report)
	}
	for id, o := range m.observations {
		if claimed[id] {
			continue
		}
		m.content.Labs = append(m.content.Labs, model.LabReport{
			ReportID:     id,
			PanelName:    o.Name,
			ReportDate:   o.ResultDate,
			Observations: []model.LabObservation{o},
			PatientID:    patientID(m.content),
		})
	}
}

func patientID(content *model.ClinicalContent) string {
	if content.Patient == nil {
		return ""
	}
	return content.Patient.ID
}

// decodeAttachment decodes a base64 attachment body. Non-base64 payloads are
// taken as literal text, since some producers inline plain narratives.
func decodeAttachment(data string) string {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return data
	}
	return string(decoded)
}
