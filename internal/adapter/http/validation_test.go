package http

import (
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

type validationProbe struct {
	LenderID      string `validate:"required,hex32"`
	OfferedAmount string `validate:"required,decstr"`
	InterestRate  string `validate:"required,rate"`
	TermOptions   string `validate:"required,terms"`
}

func validProbe() validationProbe {
	return validationProbe{
		LenderID:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		OfferedAmount: "50000",
		InterestRate:  "0.12",
		TermOptions:   "3,6,12",
	}
}

func TestValidator_AcceptsValidInput(t *testing.T) {
	cv := NewValidator()
	p := validProbe()
	if err := cv.Validate(&p); err != nil {
		t.Fatalf("valid probe rejected: %v", err)
	}
}

func TestValidator_Tags(t *testing.T) {
	cv := NewValidator()
	cases := []struct {
		name  string
		mut   func(p *validationProbe)
		field string
		msg   string
	}{
		{"short lender id", func(p *validationProbe) { p.LenderID = "abc" }, "LenderID", "32-char"},
		{"uppercase lender id", func(p *validationProbe) { p.LenderID = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" }, "LenderID", "32-char"},
		{"non-numeric amount", func(p *validationProbe) { p.OfferedAmount = "lots" }, "OfferedAmount", "positive decimal"},
		{"zero amount", func(p *validationProbe) { p.OfferedAmount = "0" }, "OfferedAmount", "positive decimal"},
		{"negative amount", func(p *validationProbe) { p.OfferedAmount = "-5" }, "OfferedAmount", "positive decimal"},
		{"rate above one", func(p *validationProbe) { p.InterestRate = "1.5" }, "InterestRate", "between 0 and 1"},
		{"negative rate", func(p *validationProbe) { p.InterestRate = "-0.1" }, "InterestRate", "between 0 and 1"},
		{"zero month term", func(p *validationProbe) { p.TermOptions = "0,6" }, "TermOptions", "month counts"},
		{"dangling comma", func(p *validationProbe) { p.TermOptions = "3,6," }, "TermOptions", "month counts"},
		{"missing lender", func(p *validationProbe) { p.LenderID = "" }, "LenderID", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProbe()
			tc.mut(&p)
			err := cv.Validate(&p)
			if err == nil {
				t.Fatal("expected validation error")
			}
			details := ToFieldErrors(err)
			if !containsFieldMsg(details, tc.field, tc.msg) {
				t.Fatalf("details %v missing %s/%s", details, tc.field, tc.msg)
			}
		})
	}
}

func TestValidator_RateBoundsInclusive(t *testing.T) {
	cv := NewValidator()
	for _, rate := range []string{"0", "1", "0.0001"} {
		p := validProbe()
		p.InterestRate = rate
		if err := cv.Validate(&p); err != nil {
			t.Fatalf("rate %s must be accepted: %v", rate, err)
		}
	}
}
