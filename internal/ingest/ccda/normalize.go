// Package ccda normalizes C-CDA (Consolidated Clinical Document Architecture)
// XML documents into the canonical clinical graph. Sections are identified by
// their LOINC codes; unknown sections are skipped.
package ccda

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/ingest"
	"github.com/clinpipe/clinpipe/internal/model"
)

// Normalizer maps C-CDA documents onto the canonical clinical graph.
type Normalizer struct {
	log zerolog.Logger
	now func() time.Time
}

// NewNormalizer builds a C-CDA normalizer.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// Format implements ingest.Normalizer.
func (n *Normalizer) Format() ingest.Format { return ingest.FormatCCDA }

// Normalize parses the XML document and maps the header plus every
// recognized section.
func (n *Normalizer) Normalize(data []byte) (*model.ClinicalContent, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ccda: empty document")
	}
	var doc clinicalDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ccda: parse document: %w", err)
	}

	content := &model.ClinicalContent{}
	n.mapPatient(&doc, content)
	if doc.Component != nil && doc.Component.StructuredBody != nil {
		for _, sc := range doc.Component.StructuredBody.Components {
			if sc.Section != nil {
				n.mapSection(sc.Section, &doc, content)
			}
		}
	}

	n.log.Debug().
		Str("title", doc.Title).
		Str("content", content.Summary()).
		Msg("ccda document normalized")
	return content, nil
}

func (n *Normalizer) mapPatient(doc *clinicalDocument, content *model.ClinicalContent) {
	if doc.RecordTarget == nil || doc.RecordTarget.PatientRole == nil {
		return
	}
	role := doc.RecordTarget.PatientRole
	p := &model.Patient{}

	// The first id extension is the primary identifier; the rest go into the
	// dictionary keyed by their assigning root.
	for i, id := range role.IDs {
		if id.Extension == "" {
			continue
		}
		if i == 0 {
			p.ID = id.Extension
			continue
		}
		if p.Identifiers == nil {
			p.Identifiers = make(map[string]string)
		}
		p.Identifiers[id.Root] = id.Extension
	}

	if role.Patient != nil {
		if g := role.Patient.GenderCode; g != nil {
			p.Gender = g.DisplayName
			if p.Gender == "" {
				p.Gender = g.Code
			}
		}
		if bt := role.Patient.BirthTime; bt != nil && len(bt.Value) >= 4 {
			if year, err := strconv.Atoi(bt.Value[:4]); err == nil {
				p.DOBYear = year
				p.Over90 = n.now().Year()-year >= 90
			}
		}
	}

	if a := role.Addr; a != nil {
		var segs []string
		for _, s := range []string{a.City, a.State, a.Country} {
			if s = strings.TrimSpace(s); s != "" {
				segs = append(segs, s)
			}
		}
		p.GeographicArea = strings.Join(segs, ", ")
	}

	content.Patient = p
}

func (n *Normalizer) mapSection(sec *section, doc *clinicalDocument, content *model.ClinicalContent) {
	if sec.Code == nil {
		return
	}
	switch sec.Code.Code {
	case loincAllergies:
		n.mapAllergies(sec, content)
	case loincMedications:
		n.mapMedications(sec, content)
	case loincProblems:
		n.mapProblems(sec, content)
	case loincResults:
		n.mapResults(sec, content)
	case loincImmunizations:
		n.mapImmunizations(sec, content)
	case loincNotes:
		n.mapNote(sec, doc, content)
	}
}

func (n *Normalizer) mapAllergies(sec *section, content *model.ClinicalContent) {
	for _, e := range sec.Entries {
		if e.Act == nil {
			continue
		}
		a := model.Allergy{PatientID: patientID(content)}
		if e.Act.EffectiveTime != nil {
			a.Onset = isoDate(e.Act.EffectiveTime.Low.Value)
		}
		for _, er := range e.Act.EntryRelationships {
			if er.Observation != nil && er.Observation.Value != nil {
				a.Substance = er.Observation.Value.DisplayName
				a.CodingMethod = er.Observation.Value.CodeSystemName
			}
		}
		content.Allergies = append(content.Allergies, a)
	}
}

func (n *Normalizer) mapMedications(sec *section, content *model.ClinicalContent) {
	for _, e := range sec.Entries {
		sa := e.SubstanceAdministration
		if sa == nil {
			continue
		}
		m := model.Medication{PatientID: patientID(content)}
		if sa.StatusCode != nil {
			m.Status = sa.StatusCode.Code
		}
		if sa.EffectiveTime != nil {
			m.StartDate = isoDate(sa.EffectiveTime.Low.Value)
		}
		if c := materialCode(sa); c != nil {
			m.Name = c.DisplayName
			m.Code = c.Code
			m.CodingMethod = c.CodeSystemName
		}
		content.Medications = append(content.Medications, m)
	}
}

func (n *Normalizer) mapProblems(sec *section, content *model.ClinicalContent) {
	for _, e := range sec.Entries {
		if e.Act == nil {
			continue
		}
		p := model.Problem{PatientID: patientID(content)}
		if e.Act.EffectiveTime != nil {
			p.OnsetDate = isoDate(e.Act.EffectiveTime.Low.Value)
		}
		for _, er := range e.Act.EntryRelationships {
			if er.Observation != nil && er.Observation.Value != nil {
				p.Description = er.Observation.Value.DisplayName
				p.Code = er.Observation.Value.Code
				p.CodingMethod = er.Observation.Value.CodeSystemName
			}
		}
		content.ProblemList = append(content.ProblemList, p)
	}
}

// mapResults turns each organizer into one lab report with its component
// observations.
func (n *Normalizer) mapResults(sec *section, content *model.ClinicalContent) {
	for _, e := range sec.Entries {
		org := e.Organizer
		if org == nil {
			continue
		}
		report := model.LabReport{PatientID: patientID(content)}
		if org.ID != nil {
			report.ReportID = org.ID.Extension
			if report.ReportID == "" {
				report.ReportID = org.ID.Root
			}
		}
		if org.Code != nil {
			report.PanelCode = org.Code.Code
			report.PanelName = org.Code.DisplayName
			report.PanelCodeMethod = org.Code.CodeSystemName
			report.IsPanel = true
		}
		for _, oc := range org.Components {
			obs := oc.Observation
			if obs == nil {
				continue
			}
			o := model.LabObservation{}
			if obs.Code != nil {
				o.Code = obs.Code.Code
				o.Name = obs.Code.DisplayName
				o.CodingMethod = obs.Code.CodeSystemName
			}
			if obs.Value != nil {
				o.Value = obs.Value.Value
				o.Unit = obs.Value.Unit
			}
			if obs.EffectiveTime != nil {
				o.ResultDate = isoDate(obs.EffectiveTime.Value)
				if o.ResultDate == "" {
					o.ResultDate = isoDate(obs.EffectiveTime.Low.Value)
				}
				if report.ReportDate == "" {
					report.ReportDate = o.ResultDate
				}
			}
			report.Observations = append(report.Observations, o)
		}
		content.Labs = append(content.Labs, report)
	}
}

func (n *Normalizer) mapImmunizations(sec *section, content *model.ClinicalContent) {
	for _, e := range sec.Entries {
		sa := e.SubstanceAdministration
		if sa == nil {
			continue
		}
		im := model.Immunization{PatientID: patientID(content)}
		if sa.StatusCode != nil {
			im.Status = sa.StatusCode.Code
		}
		if sa.EffectiveTime != nil {
			im.DateAdministered = isoDate(sa.EffectiveTime.Low.Value)
			if im.DateAdministered == "" {
				im.DateAdministered = isoDate(sa.EffectiveTime.Value)
			}
		}
		if c := materialCode(sa); c != nil {
			im.VaccineCode = c.Code
			im.Description = c.DisplayName
			im.CodingMethod = c.CodeSystemName
		}
		if sa.Consumable != nil && sa.Consumable.ManufacturedProduct != nil &&
			sa.Consumable.ManufacturedProduct.ManufacturedMaterial != nil {
			im.LotNumber = strings.TrimSpace(sa.Consumable.ManufacturedProduct.ManufacturedMaterial.LotNumberText)
		}
		content.Immunizations = append(content.Immunizations, im)
	}
}

// mapNote captures a narrative section's text as a clinical note.
func (n *Normalizer) mapNote(sec *section, doc *clinicalDocument, content *model.ClinicalContent) {
	text := strings.TrimSpace(sec.Text)
	if text == "" {
		return
	}
	content.Notes = append(content.Notes, model.Note{
		Text:      text,
		Timestamp: isoDate(doc.EffectiveTime.Value),
		PatientID: patientID(content),
	})
}

func materialCode(sa *substanceAdministration) *code {
	if sa.Consumable == nil || sa.Consumable.ManufacturedProduct == nil ||
		sa.Consumable.ManufacturedProduct.ManufacturedMaterial == nil {
		return nil
	}
	return sa.Consumable.ManufacturedProduct.ManufacturedMaterial.Code
}

func patientID(content *model.ClinicalContent) string {
	if content.Patient == nil {
		return ""
	}
	return content.Patient.ID
}

// isoDate converts an HL7 timestamp prefix (YYYYMMDD...) to YYYY-MM-DD.
func isoDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:8]
}
