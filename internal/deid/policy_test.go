package deid

import "testing"

func TestDefaultPolicyValidates(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	p := Policy{}.Normalize()
	d := DefaultPolicy()

	if p.Method != d.Method {
		t.Errorf("method = %q, want %q", p.Method, d.Method)
	}
	if p.GeographicPrecision != d.GeographicPrecision {
		t.Errorf("geographic_precision = %q, want %q", p.GeographicPrecision, d.GeographicPrecision)
	}
	if p.Over90Handling != d.Over90Handling {
		t.Errorf("over_90_handling = %q, want %q", p.Over90Handling, d.Over90Handling)
	}
	if p.PatientIDStrategy != d.PatientIDStrategy {
		t.Errorf("patient_id_strategy = %q, want %q", p.PatientIDStrategy, d.PatientIDStrategy)
	}
	if p.IDSalt != DefaultSalt {
		t.Errorf("id_salt = %q, want default", p.IDSalt)
	}
	// Normalize never overrides explicit values.
	q := Policy{GeographicPrecision: PrecisionCity, IDSalt: "s"}.Normalize()
	if q.GeographicPrecision != PrecisionCity || q.IDSalt != "s" {
		t.Errorf("explicit values overridden: %+v", q)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"method", func(p *Policy) { p.Method = "expert_determination" }},
		{"precision", func(p *Policy) { p.GeographicPrecision = "county" }},
		{"over90", func(p *Policy) { p.Over90Handling = "ignore" }},
		{"strategy", func(p *Policy) { p.PatientIDStrategy = "plaintext" }},
		{"salt", func(p *Policy) { p.IDSalt = "" }},
	}
	for _, c := range cases {
		p := DefaultPolicy()
		c.mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: invalid value accepted", c.name)
		}
	}
}
