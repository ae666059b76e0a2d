package leads

import (
	"encoding/json"
	"errors"
	"testing"
)

func validSubmission() *LeadSubmission {
	return &LeadSubmission{
		Name:       "John Doe",
		Phone:      "07700 900123",
		Email:      "john@example.com",
		Postcode:   "BS1 4QA",
		Address:    ManualAddress("1 Queen Square, Bristol, BS1 4QA"),
		Service:    "Boiler Repair",
		SourcePath: "/boiler-repair",
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validSubmission().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingRequiredFields(t *testing.T) {
	mutations := map[string]func(*LeadSubmission){
		"name":          func(s *LeadSubmission) { s.Name = "" },
		"phone":         func(s *LeadSubmission) { s.Phone = " " },
		"email":         func(s *LeadSubmission) { s.Email = "" },
		"postcode":      func(s *LeadSubmission) { s.Postcode = "" },
		"address label": func(s *LeadSubmission) { s.Address = AddressResolution{} },
		"service":       func(s *LeadSubmission) { s.Service = "" },
		"source path":   func(s *LeadSubmission) { s.SourcePath = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			sub := validSubmission()
			mutate(sub)
			if err := sub.Validate(); !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
		})
	}
}

func TestValidateOtherServiceRequiresDescription(t *testing.T) {
	sub := validSubmission()
	sub.Service = ServiceOther
	if err := sub.Validate(); !errors.Is(err, ErrOtherServiceRequired) {
		t.Fatalf("expected ErrOtherServiceRequired, got %v", err)
	}

	sub.OtherService = "Power flushing"
	if err := sub.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSelectedAddressCarriesIDAndRaw(t *testing.T) {
	raw := json.RawMessage(`{"line_1":"1 Queen Square"}`)
	res := SelectedAddress("abc123", "1 Queen Square, Bristol", raw)

	id, ok := res.AddressID()
	if !ok || id != "abc123" {
		t.Fatalf("expected selected id, got %q ok=%v", id, ok)
	}
	if res.Label() != "1 Queen Square, Bristol" {
		t.Errorf("unexpected label %q", res.Label())
	}
	if len(res.Raw()) == 0 {
		t.Errorf("expected raw payload")
	}
}

func TestManualAddressHasNoIDOrRaw(t *testing.T) {
	res := ManualAddress("Flat 2, 9 Park Row, Bristol")
	if _, ok := res.AddressID(); ok {
		t.Fatal("manual resolution must not carry an address id")
	}
	if res.Raw() != nil {
		t.Fatal("manual resolution must not carry a raw payload")
	}
}

func TestSelectedAddressWithoutIDDegradesToManual(t *testing.T) {
	res := SelectedAddress("", "1 Queen Square", json.RawMessage(`{}`))
	if _, ok := res.AddressID(); ok {
		t.Fatal("expected manual resolution")
	}
	if res.Raw() != nil {
		t.Fatal("raw payload must be dropped without an id")
	}
	if res.Label() != "1 Queen Square" {
		t.Errorf("unexpected label %q", res.Label())
	}
}

func TestSubmissionCollapsesWireAddressFields(t *testing.T) {
	req := &SubmitLeadRequest{
		Name:         "John Doe",
		AddressLabel: "1 Queen Square, Bristol",
		AddressID:    "abc123",
		AddressJSON:  `{"line_1":"1 Queen Square"}`,
		Website:      "",
	}
	sub := req.Submission()
	if id, ok := sub.Address.AddressID(); !ok || id != "abc123" {
		t.Fatalf("expected selected address, got %q", id)
	}

	req.AddressID = ""
	sub = req.Submission()
	if _, ok := sub.Address.AddressID(); ok {
		t.Fatal("expected manual address without id")
	}
}
