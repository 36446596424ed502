package model

import (
	"fmt"
	"strings"
)

// Summary returns a short description of the graph for log lines.
func (c *ClinicalContent) Summary() string {
	parts := []string{}
	if c.Patient != nil {
		parts = append(parts, "patient")
	}
	if c.Encounter != nil {
		parts = append(parts, "encounter")
	}
	counts := []struct {
		name string
		n    int
	}{
		{"allergies", len(c.Allergies)},
		{"immunizations", len(c.Immunizations)},
		{"diagnoses", len(c.Diagnoses)},
		{"problems", len(c.ProblemList)},
		{"medications", len(c.Medications)},
		{"notes", len(c.Notes)},
		{"imaging", len(c.Imaging)},
		{"labs", len(c.Labs)},
	}
	for _, e := range counts {
		if e.n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", e.name, e.n))
		}
	}
	if len(parts) == 0 {
		return "empty clinical content"
	}
	return strings.Join(parts, " ")
}

// Summary returns a short description of the graph for log lines.
func (c *OperationalContent) Summary() string {
	parts := []string{}
	if c.TransactionType != "" {
		parts = append(parts, "txn="+c.TransactionType)
	}
	counts := []struct {
		name string
		n    int
	}{
		{"claims", len(c.Claims)},
		{"charges", len(c.Charges)},
		{"payments", len(c.Payments)},
		{"adjustments", len(c.Adjustments)},
		{"prior_auths", len(c.PriorAuthorizations)},
		{"drgs", len(c.DRGs)},
	}
	for _, e := range counts {
		if e.n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", e.name, e.n))
		}
	}
	if len(parts) == 0 {
		return "empty operational content"
	}
	return strings.Join(parts, " ")
}
