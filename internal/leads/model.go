package leads

import (
	"encoding/json"
	"strings"
	"time"
)

// ServiceOther is the sentinel service category requiring a free-text
// description.
const ServiceOther = "Other"

// Services is the catalog offered on the lead form.
var Services = []string{
	"Emergency Plumbing",
	"24 Hour Plumber",
	"Boiler Repair",
	"Blocked Drains",
	"Leak Detection",
	"Bathroom Plumbing",
	"Central Heating",
	ServiceOther,
}

// AddressResolution is the authoritative address of a submission: either
// selected through a suggest+fetch round trip or entered manually. The
// constructors keep "both populated" and "neither populated" states
// unrepresentable.
type AddressResolution struct {
	addressID string
	label     string
	raw       json.RawMessage
}

// SelectedAddress builds a resolution from a successful detail fetch.
func SelectedAddress(addressID, label string, raw json.RawMessage) AddressResolution {
	if addressID == "" {
		return ManualAddress(label)
	}
	return AddressResolution{addressID: addressID, label: label, raw: raw}
}

// ManualAddress builds a resolution from free-text entry.
func ManualAddress(label string) AddressResolution {
	return AddressResolution{label: label}
}

// Label returns the human-readable address. Always non-empty on a valid
// submission.
func (a AddressResolution) Label() string {
	return a.label
}

// AddressID returns the provider id and whether this is a selected
// resolution.
func (a AddressResolution) AddressID() (string, bool) {
	return a.addressID, a.addressID != ""
}

// Raw returns the provider payload for a selected resolution, nil
// otherwise.
func (a AddressResolution) Raw() json.RawMessage {
	if a.addressID == "" {
		return nil
	}
	return a.raw
}

// LeadSubmission is a client-constructed request to record a lead.
type LeadSubmission struct {
	Name           string
	Phone          string
	Email          string
	Postcode       string
	Address        AddressResolution
	Service        string
	OtherService   string
	Notes          string
	Honeypot       string
	ChallengeToken string
	SourcePath     string
	Referrer       string
}

// Validate checks the required-field set: name, phone, email, postcode,
// address label, service category, and source page. Phone/email format is
// deliberately left to the form control types. A service of "Other"
// additionally requires a free-text description.
func (s *LeadSubmission) Validate() error {
	required := []string{
		s.Name,
		s.Phone,
		s.Email,
		s.Postcode,
		s.Address.Label(),
		s.Service,
		s.SourcePath,
	}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return ErrMissingFields
		}
	}
	if s.Service == ServiceOther && strings.TrimSpace(s.OtherService) == "" {
		return ErrOtherServiceRequired
	}
	return nil
}

// Lead is the persisted record of a submission. Created exactly once when
// the pipeline completes; immutable thereafter.
type Lead struct {
	ID                string          `json:"id"`
	CreatedAt         time.Time       `json:"created_at"`
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	Postcode          string          `json:"postcode"`
	AddressLabel      string          `json:"address_label"`
	AddressID         string          `json:"address_id,omitempty"`
	AddressRaw        json.RawMessage `json:"address_raw,omitempty"`
	Service           string          `json:"service"`
	OtherService      string          `json:"other_service,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	SourcePath        string          `json:"source_path"`
	Referrer          string          `json:"referrer,omitempty"`
	IdentityHash      string          `json:"identity_hash,omitempty"`
	UserAgent         string          `json:"user_agent,omitempty"`
	ChallengeVerified bool            `json:"challenge_verified"`
}
