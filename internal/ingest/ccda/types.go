package ccda

import "encoding/xml"

// LOINC codes identifying C-CDA sections.
const (
	loincAllergies     = "48765-2"
	loincMedications   = "10160-0"
	loincProblems      = "11450-4"
	loincResults       = "30954-2"
	loincImmunizations = "11369-6"
	loincNotes         = "11488-4" // consultation note
)

// clinicalDocument is the subset of the CDA R2 schema the normalizer reads.
type clinicalDocument struct {
	XMLName       xml.Name      `xml:"ClinicalDocument"`
	Title         string        `xml:"title"`
	EffectiveTime timeValue     `xml:"effectiveTime"`
	RecordTarget  *recordTarget `xml:"recordTarget"`
	Component     *component    `xml:"component"`
}

type timeValue struct {
	Value string `xml:"value,attr"`
}

type timeInterval struct {
	Value string    `xml:"value,attr"`
	Low   timeValue `xml:"low"`
}

type code struct {
	Code           string `xml:"code,attr"`
	CodeSystemName string `xml:"codeSystemName,attr"`
	DisplayName    string `xml:"displayName,attr"`
	Value          string `xml:"value,attr"`
	Unit           string `xml:"unit,attr"`
}

type instanceID struct {
	Root      string `xml:"root,attr"`
	Extension string `xml:"extension,attr"`
}

type recordTarget struct {
	PatientRole *patientRole `xml:"patientRole"`
}

type patientRole struct {
	IDs     []instanceID `xml:"id"`
	Addr    *address     `xml:"addr"`
	Patient *cdaPatient  `xml:"patient"`
}

type address struct {
	City    string `xml:"city"`
	State   string `xml:"state"`
	Country string `xml:"country"`
}

type cdaPatient struct {
	GenderCode *code      `xml:"administrativeGenderCode"`
	BirthTime  *timeValue `xml:"birthTime"`
}

type component struct {
	StructuredBody *structuredBody `xml:"structuredBody"`
}

type structuredBody struct {
	Components []sectionComponent `xml:"component"`
}

type sectionComponent struct {
	Section *section `xml:"section"`
}

type section struct {
	Code    *code   `xml:"code"`
	Title   string  `xml:"title"`
	Text    string  `xml:"text"`
	Entries []entry `xml:"entry"`
}

type entry struct {
	Act                     *act                     `xml:"act"`
	Observation             *observation             `xml:"observation"`
	Organizer               *organizer               `xml:"organizer"`
	SubstanceAdministration *substanceAdministration `xml:"substanceAdministration"`
}

type act struct {
	StatusCode         *code               `xml:"statusCode"`
	EffectiveTime      *timeInterval       `xml:"effectiveTime"`
	EntryRelationships []entryRelationship `xml:"entryRelationship"`
}

type entryRelationship struct {
	Observation *observation `xml:"observation"`
}

type observation struct {
	Code          *code         `xml:"code"`
	StatusCode    *code         `xml:"statusCode"`
	EffectiveTime *timeInterval `xml:"effectiveTime"`
	Value         *code         `xml:"value"`
}

type organizer struct {
	ID         *instanceID          `xml:"id"`
	Code       *code                `xml:"code"`
	Components []organizerComponent `xml:"component"`
}

type organizerComponent struct {
	Observation *observation `xml:"observation"`
}

type substanceAdministration struct {
	StatusCode    *code         `xml:"statusCode"`
	EffectiveTime *timeInterval `xml:"effectiveTime"`
	Consumable    *consumable   `xml:"consumable"`
}

type consumable struct {
	ManufacturedProduct *manufacturedProduct `xml:"manufacturedProduct"`
}

type manufacturedProduct struct {
	ManufacturedMaterial *manufacturedMaterial `xml:"manufacturedMaterial"`
}

type manufacturedMaterial struct {
	Code          *code  `xml:"code"`
	LotNumberText string `xml:"lotNumberText"`
}
