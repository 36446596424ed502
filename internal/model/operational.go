package model

import "time"

// OperationalContent aggregates administrative and financial transactions:
// claims, charges, payments, adjustments, and prior authorizations as carried
// by X12 837/835/278 interchanges.
type OperationalContent struct {
	TransactionType               string               `json:"transaction_type,omitempty"`
	InterchangeControlNumber      string               `json:"interchange_control_number,omitempty"`
	FunctionalGroupControlNumber  string               `json:"functional_group_control_number,omitempty"`
	OrganizationID                string               `json:"organization_id,omitempty"`
	DRGs                          []DRG                `json:"drgs,omitempty"`
	Claims                        []Claim              `json:"claims,omitempty"`
	Charges                       []Charge             `json:"charges,omitempty"`
	Payments                      []Payment            `json:"payments,omitempty"`
	Adjustments                   []Adjustment         `json:"adjustments,omitempty"`
	PriorAuthorizations           []PriorAuthorization `json:"prior_authorizations,omitempty"`

	Deidentified bool `json:"deidentified"`
}

// Charge is a billable service or item.
type Charge struct {
	ChargeID             string     `json:"charge_id,omitempty"`
	EncounterID          string     `json:"encounter_id,omitempty"`
	PatientID            string     `json:"patient_id,omitempty"`
	ServiceDate          *time.Time `json:"service_date,omitempty"`
	ChargeCode           string     `json:"charge_code,omitempty"`
	ChargeDescription    string     `json:"charge_description,omitempty"`
	ChargeAmount         float64    `json:"charge_amount"`
	Quantity             int        `json:"quantity,omitempty"`
	PerformingProviderID string     `json:"performing_provider_id,omitempty"`
	OrderingProviderID   string     `json:"ordering_provider_id,omitempty"`
	RevenueCode          string     `json:"revenue_code,omitempty"`
	CPTHCPCSCode         string     `json:"cpt_hcpcs_code,omitempty"`
	DiagnosisPointers    []string   `json:"diagnosis_pointers,omitempty"`
	ChargeStatus         string     `json:"charge_status,omitempty"`
	OrganizationID       string     `json:"organization_id,omitempty"`
}

// Payment is a financial transaction made against a patient account.
type Payment struct {
	PaymentID              string     `json:"payment_id,omitempty"`
	PatientID              string     `json:"patient_id,omitempty"`
	EncounterID            string     `json:"encounter_id,omitempty"`
	ChargeID               string     `json:"charge_id,omitempty"`
	PayerID                string     `json:"payer_id,omitempty"`
	PaymentDate            *time.Time `json:"payment_date,omitempty"`
	PaymentAmount          float64    `json:"payment_amount"`
	PaymentType            string     `json:"payment_type,omitempty"`
	CheckNumber            string     `json:"check_number,omitempty"`
	RemitAdviceCode        string     `json:"remit_advice_code,omitempty"`
	RemitAdviceDescription string     `json:"remit_advice_description,omitempty"`
	OrganizationID         string     `json:"organization_id,omitempty"`
}

// Adjustment modifies a charge balance without being a payment: contractual
// write-offs, charity care, corrections.
type Adjustment struct {
	AdjustmentID                string     `json:"adjustment_id,omitempty"`
	ChargeID                    string     `json:"charge_id,omitempty"`
	PaymentID                   string     `json:"payment_id,omitempty"`
	AdjustmentDate              *time.Time `json:"adjustment_date,omitempty"`
	AdjustmentReasonCode        string     `json:"adjustment_reason_code,omitempty"`
	AdjustmentReasonDescription string     `json:"adjustment_reason_description,omitempty"`
	AdjustmentAmount            float64    `json:"adjustment_amount"`
	AdjustmentType              string     `json:"adjustment_type,omitempty"`
	OrganizationID              string     `json:"organization_id,omitempty"`
}

// Claim is a formal request for payment bundling charges for one patient.
type Claim struct {
	ClaimID            string       `json:"claim_id,omitempty"`
	PatientID          string       `json:"patient_id,omitempty"`
	EncounterID        string       `json:"encounter_id,omitempty"`
	ClaimDate          *time.Time   `json:"claim_date,omitempty"`
	PayerID            string       `json:"payer_id,omitempty"`
	TotalChargeAmount  float64      `json:"total_charge_amount"`
	TotalPaymentAmount float64      `json:"total_payment_amount"`
	ClaimStatus        string       `json:"claim_status,omitempty"`
	ClaimType          string       `json:"claim_type,omitempty"`
	ServiceStartDate   *time.Time   `json:"service_start_date,omitempty"`
	ServiceEndDate     *time.Time   `json:"service_end_date,omitempty"`
	Charges            []Charge     `json:"charges,omitempty"`
	Payments           []Payment    `json:"payments,omitempty"`
	Adjustments        []Adjustment `json:"adjustments,omitempty"`
	OrganizationID     string       `json:"organization_id,omitempty"`
}

// PriorAuthorization is an X12 278 authorization request/response.
type PriorAuthorization struct {
	AuthID             string      `json:"auth_id,omitempty"`
	PatientID          string      `json:"patient_id,omitempty"`
	ProviderID         string      `json:"provider_id,omitempty"`
	RequestedProcedure string      `json:"requested_procedure,omitempty"`
	AuthType           string      `json:"auth_type,omitempty"`
	ReviewStatus       string      `json:"review_status,omitempty"`
	ServiceDates       []time.Time `json:"service_dates,omitempty"`
	DiagnosisCodes     []string    `json:"diagnosis_codes,omitempty"`
	OrganizationID     string      `json:"organization_id,omitempty"`
}

// DRG is a diagnosis-related-group classification attached to an inpatient
// stay for prospective payment.
type DRG struct {
	DRGCode                 string   `json:"drg_code"`
	DRGDescription          string   `json:"drg_description,omitempty"`
	DRGType                 string   `json:"drg_type,omitempty"`
	DRGVersion              string   `json:"drg_version,omitempty"`
	RelativeWeight          float64  `json:"relative_weight,omitempty"`
	SeverityOfIllness       int      `json:"severity_of_illness,omitempty"`
	RiskOfMortality         int      `json:"risk_of_mortality,omitempty"`
	AverageLengthOfStay     float64  `json:"average_length_of_stay,omitempty"`
	MDCCode                 string   `json:"mdc_code,omitempty"`
	MDCDescription          string   `json:"mdc_description,omitempty"`
	PrincipalDiagnosisCode  string   `json:"principal_diagnosis_code,omitempty"`
	ProcedureCodes          []string `json:"procedure_codes,omitempty"`
	ComplicationFlag        bool     `json:"complication_flag,omitempty"`
	PaymentAmount           float64  `json:"payment_amount,omitempty"`
	PatientID               string   `json:"patient_id,omitempty"`
	EncounterID             string   `json:"encounter_id,omitempty"`
}
