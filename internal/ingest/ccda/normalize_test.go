package ccda

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/ingest"
)

const sampleDocument = `<?xml version="1.0"?>
<ClinicalDocument xmlns="urn:hl7-org:v3">
  <title>Continuity of Care Document</title>
  <effectiveTime value="20230515143000"/>
  <recordTarget>
    <patientRole>
      <id root="2.16.840.1.113883.19.5" extension="12345"/>
      <id root="2.16.840.1.113883.4.1" extension="999551111"/>
      <addr>
        <city>New York</city>
        <state>NY</state>
        <country>USA</country>
      </addr>
      <patient>
        <administrativeGenderCode code="F" displayName="Female"/>
        <birthTime value="19800312"/>
      </patient>
    </patientRole>
  </recordTarget>
  <component>
    <structuredBody>
      <component>
        <section>
          <code code="48765-2" displayName="Allergies"/>
          <title>Allergies</title>
          <entry>
            <act>
              <statusCode code="active"/>
              <effectiveTime><low value="20150601"/></effectiveTime>
              <entryRelationship>
                <observation>
                  <value code="70618" codeSystemName="RxNorm" displayName="Penicillin"/>
                </observation>
              </entryRelationship>
            </act>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="11450-4" displayName="Problems"/>
          <entry>
            <act>
              <statusCode code="active"/>
              <effectiveTime><low value="20230101"/></effectiveTime>
              <entryRelationship>
                <observation>
                  <value code="E11.9" codeSystemName="ICD-10" displayName="Type 2 diabetes mellitus"/>
                </observation>
              </entryRelationship>
            </act>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="10160-0" displayName="Medications"/>
          <entry>
            <substanceAdministration>
              <statusCode code="active"/>
              <effectiveTime><low value="20230201"/></effectiveTime>
              <consumable>
                <manufacturedProduct>
                  <manufacturedMaterial>
                    <code code="860975" codeSystemName="RxNorm" displayName="Metformin 500mg"/>
                  </manufacturedMaterial>
                </manufacturedProduct>
              </consumable>
            </substanceAdministration>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="30954-2" displayName="Results"/>
          <entry>
            <organizer>
              <id root="1.2.3" extension="LAB123"/>
              <code code="80048" codeSystemName="CPT" displayName="Basic Metabolic Panel"/>
              <component>
                <observation>
                  <code code="2345-7" codeSystemName="LOINC" displayName="Glucose"/>
                  <value value="110" unit="mg/dL"/>
                  <effectiveTime value="20230515"/>
                </observation>
              </component>
            </organizer>
          </entry>
        </section>
      </component>
      <component>
        <section>
          <code code="11488-4" displayName="Consultation Note"/>
          <text>Patient seen in clinic for follow-up of diabetes.</text>
        </section>
      </component>
    </structuredBody>
  </component>
</ClinicalDocument>`

func testNormalizer() *Normalizer {
	n := NewNormalizer(zerolog.Nop())
	n.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return n
}

func TestNormalize(t *testing.T) {
	content, err := testNormalizer().Normalize([]byte(sampleDocument))
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
	if p.Identifiers["2.16.840.1.113883.4.1"] != "999551111" {
		t.Errorf("identifiers = %v", p.Identifiers)
	}
	if p.Gender != "Female" || p.DOBYear != 1980 || p.Over90 {
		t.Errorf("demographics = %+v", p)
	}
	if p.GeographicArea != "New York, NY, USA" {
		t.Errorf("geographic_area = %q", p.GeographicArea)
	}

	if len(content.Allergies) != 1 {
		t.Fatalf("allergies = %+v", content.Allergies)
	}
	a := content.Allergies[0]
	if a.Substance != "Penicillin" || a.CodingMethod != "RxNorm" || a.Onset != "2015-06-01" {
		t.Errorf("allergy = %+v", a)
	}
	if a.PatientID != "12345" {
		t.Errorf("allergy patient_id = %q", a.PatientID)
	}

	if len(content.ProblemList) != 1 {
		t.Fatalf("problems = %+v", content.ProblemList)
	}
	pr := content.ProblemList[0]
	if pr.Code != "E11.9" || pr.OnsetDate != "2023-01-01" {
		t.Errorf("problem = %+v", pr)
	}

	if len(content.Medications) != 1 {
		t.Fatalf("medications = %+v", content.Medications)
	}
	m := content.Medications[0]
	if m.Name != "Metformin 500mg" || m.Code != "860975" || m.StartDate != "2023-02-01" {
		t.Errorf("medication = %+v", m)
	}

	if len(content.Labs) != 1 {
		t.Fatalf("labs = %+v", content.Labs)
	}
	lab := content.Labs[0]
	if lab.ReportID != "LAB123" || lab.PanelName != "Basic Metabolic Panel" || !lab.IsPanel {
		t.Errorf("report = %+v", lab)
	}
	if len(lab.Observations) != 1 {
		t.Fatalf("observations = %+v", lab.Observations)
	}
	o := lab.Observations[0]
	if o.Name != "Glucose" || o.Value != "110" || o.Unit != "mg/dL" || o.ResultDate != "2023-05-15" {
		t.Errorf("observation = %+v", o)
	}

	if len(content.Notes) != 1 {
		t.Fatalf("notes = %+v", content.Notes)
	}
	n := content.Notes[0]
	if n.Text != "Patient seen in clinic for follow-up of diabetes." {
		t.Errorf("note text = %q", n.Text)
	}
	if n.Timestamp != "2023-05-15" {
		t.Errorf("note timestamp = %q", n.Timestamp)
	}
}

func TestNormalizeErrors(t *testing.T) {
	n := testNormalizer()
	if _, err := n.Normalize(nil); err == nil {
		t.Error("empty document accepted")
	}
	if _, err := n.Normalize([]byte("not xml")); err == nil {
		t.Error("malformed document accepted")
	}
}

func TestNormalizerFormat(t *testing.T) {
	if got := testNormalizer().Format(); got != ingest.FormatCCDA {
		t.Errorf("Format() = %q", got)
	}
}
