package hl7v2

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/ingest"
	"github.com/clinpipe/clinpipe/internal/model"
)

// Normalizer maps parsed HL7v2 messages onto the canonical clinical graph.
type Normalizer struct {
	log zerolog.Logger
	now func() time.Time
}

// NewNormalizer builds an HL7v2 normalizer.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// Format implements ingest.Normalizer.
func (n *Normalizer) Format() ingest.Format { return ingest.FormatHL7v2 }

// Normalize parses the message and maps its segments. Segments without a
// mapping are skipped; a message is never rejected for carrying extra
// segments.
func (n *Normalizer) Normalize(data []byte) (*model.ClinicalContent, error) {
	msg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	content := &model.ClinicalContent{}
	n.mapPatient(msg, content)
	n.mapEncounter(msg, content)
	n.mapAllergies(msg, content)
	n.mapDiagnoses(msg, content)
	n.mapImmunizations(msg, content)
	n.mapMedications(msg, content)
	n.mapLabs(msg, content)
	n.mapNotes(msg, content)

	n.log.Debug().
		Str("message_type", msg.Type).
		Str("control_id", msg.ControlID).
		Str("content", content.Summary()).
		Msg("hl7v2 message normalized")
	return content, nil
}

// mapPatient maps PID: identifiers from the PID-3 repeats, demographics from
// PID-7/8, geography from the PID-11 address components.
func (n *Normalizer) mapPatient(msg *Message, content *model.ClinicalContent) {
	pid := msg.First("PID")
	if pid == nil {
		return
	}
	p := &model.Patient{
		ID:     pid.Component(3, 1),
		Gender: pid.Field(8),
	}

	// PID-3 repeats: id^check^scheme^authority^type. The type code keys the
	// identifier dictionary; untyped repeats fall back to the authority.
	for _, rep := range pid.Repeats(3) {
		value := component(rep, 1)
		key := component(rep, 5)
		if key == "" {
			key = component(rep, 4)
		}
		if value == "" || key == "" {
			continue
		}
		if p.Identifiers == nil {
			p.Identifiers = make(map[string]string)
		}
		p.Identifiers[key] = value
	}

	if dob := pid.Field(7); len(dob) >= 4 {
		if year, err := strconv.Atoi(dob[:4]); err == nil {
			p.DOBYear = year
			p.Over90 = n.now().Year()-year >= 90
		}
	}

	// PID-11: street^other^city^state^zip^country.
	if city := pid.Component(11, 3); city != "" {
		segs := []string{city}
		if state := pid.Component(11, 4); state != "" {
			segs = append(segs, state)
		}
		if country := pid.Component(11, 6); country != "" {
			segs = append(segs, country)
		}
		p.GeographicArea = strings.Join(segs, ", ")
	}

	content.Patient = p
}

// mapEncounter maps PV1. The attending (PV1-7) and referring (PV1-8)
// physicians become encounter providers.
func (n *Normalizer) mapEncounter(msg *Message, content *model.ClinicalContent) {
	pv1 := msg.First("PV1")
	if pv1 == nil {
		return
	}
	e := &model.Encounter{
		ID:            pv1.Component(19, 1),
		EncounterType: pv1.Field(2),
		Location:      pv1.Component(3, 1),
		AdmitDate:     pv1.Field(44),
		DischargeDate: pv1.Field(45),
		PatientID:     patientID(content),
	}
	for fieldIdx, typeCode := range map[int]string{7: "ATND", 8: "RP"} {
		id := pv1.Component(fieldIdx, 1)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(pv1.Component(fieldIdx, 3) + " " + pv1.Component(fieldIdx, 2))
		e.Providers = append(e.Providers, model.EncounterProvider{
			ID:       id,
			TypeCode: typeCode,
			Name:     name,
		})
	}
	content.Encounter = e
}

func (n *Normalizer) mapAllergies(msg *Message, content *model.ClinicalContent) {
	for _, al1 := range msg.All("AL1") {
		content.Allergies = append(content.Allergies, model.Allergy{
			Substance:    al1.Component(3, 2),
			CodingMethod: al1.Component(3, 3),
			Severity:     al1.Component(4, 1),
			Reaction:     al1.Component(5, 1),
			Onset:        al1.Field(6),
			PatientID:    patientID(content),
		})
	}
}

func (n *Normalizer) mapDiagnoses(msg *Message, content *model.ClinicalContent) {
	for _, dg1 := range msg.All("DG1") {
		content.Diagnoses = append(content.Diagnoses, model.Diagnosis{
			Code:         dg1.Component(3, 1),
			Description:  dg1.Component(3, 2),
			CodingMethod: dg1.Component(3, 3),
			OnsetDate:    dg1.Field(5),
			PatientID:    patientID(content),
			EncounterID:  encounterID(content),
		})
	}
}

func (n *Normalizer) mapImmunizations(msg *Message, content *model.ClinicalContent) {
	for _, rxa := range msg.All("RXA") {
		content.Immunizations = append(content.Immunizations, model.Immunization{
			VaccineCode:      rxa.Component(5, 1),
			Description:      rxa.Component(5, 2),
			CodingMethod:     rxa.Component(5, 3),
			DateAdministered: rxa.Field(3),
			LotNumber:        rxa.Field(15),
			PatientID:        patientID(content),
			EncounterID:      encounterID(content),
		})
	}
}

func (n *Normalizer) mapMedications(msg *Message, content *model.ClinicalContent) {
	for _, rxe := range msg.All("RXE") {
		content.Medications = append(content.Medications, model.Medication{
			Code:         rxe.Component(2, 1),
			Name:         rxe.Component(2, 2),
			CodingMethod: rxe.Component(2, 3),
			Dose:         strings.TrimSpace(rxe.Field(3) + " " + rxe.Field(5)),
			PatientID:    patientID(content),
			EncounterID:  encounterID(content),
		})
	}
}

// mapLabs walks segments in order: each OBR opens a report and the OBX
// segments that follow attach to it until the next OBR.
func (n *Normalizer) mapLabs(msg *Message, content *model.ClinicalContent) {
	var report *model.LabReport
	flush := func() {
		if report != nil {
			content.Labs = append(content.Labs, *report)
			report = nil
		}
	}
	for i := range msg.Segments {
		seg := &msg.Segments[i]
		switch seg.Name {
		case "OBR":
			flush()
			report = &model.LabReport{
				ReportID:           seg.Component(3, 1),
				PanelCode:          seg.Component(4, 1),
				PanelName:          seg.Component(4, 2),
				PanelCodeMethod:    seg.Component(4, 3),
				CollectionDate:     seg.Field(7),
				ReportDate:         seg.Field(22),
				OrderingProviderID: seg.Component(16, 1),
				PatientID:          patientID(content),
				EncounterID:        encounterID(content),
			}
			report.IsPanel = report.PanelCode != ""
		case "OBX":
			if report == nil {
				continue
			}
			report.Observations = append(report.Observations, model.LabObservation{
				Code:           seg.Component(3, 1),
				Name:           seg.Component(3, 2),
				CodingMethod:   seg.Component(3, 3),
				Value:          seg.Field(5),
				Unit:           seg.Component(6, 1),
				ReferenceRange: seg.Field(7),
				AbnormalFlag:   seg.Field(8),
				ResultDate:     seg.Field(14),
			})
		}
	}
	flush()
}

// mapNotes collects NTE segments into one note per run of consecutive NTEs.
func (n *Normalizer) mapNotes(msg *Message, content *model.ClinicalContent) {
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			content.Notes = append(content.Notes, model.Note{
				Text:        strings.Join(lines, "\n"),
				Timestamp:   msg.Timestamp,
				PatientID:   patientID(content),
				EncounterID: encounterID(content),
			})
			lines = nil
		}
	}
	for i := range msg.Segments {
		seg := &msg.Segments[i]
		if seg.Name != "NTE" {
			flush()
			continue
		}
		if text := seg.Field(3); text != "" {
			lines = append(lines, text)
		}
	}
	flush()
}

func patientID(content *model.ClinicalContent) string {
	if content.Patient == nil {
		return ""
	}
	return content.Patient.ID
}

func encounterID(content *model.ClinicalContent) string {
	if content.Encounter == nil {
		return ""
	}
	return content.Encounter.ID
}
