package address

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Provider is the lookup contract the flow drives. *Client satisfies it.
type Provider interface {
	Suggest(ctx context.Context, postcode string) ([]Suggestion, error)
	FetchDetail(ctx context.Context, id string) (*Detail, error)
}

// Mode is the state of an address lookup flow.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeSearching Mode = "searching"
	ModeSelecting Mode = "selecting"
	ModeManual    Mode = "manual"
)

// ErrNoResolution is returned when no address has been selected or entered.
var ErrNoResolution = errors.New("no address selected or entered")

// Resolution is the authoritative address a flow produces. A non-empty
// AddressID marks a provider-selected address; otherwise the label was
// entered manually or recovered from a suggestion after a failed detail
// fetch.
type Resolution struct {
	AddressID string
	Label     string
	Raw       json.RawMessage
}

// Selected reports whether the resolution came from a successful
// suggest+fetch round trip.
func (r Resolution) Selected() bool {
	return r.AddressID != ""
}

// Flow reproduces the form widget's lookup state machine over a Provider:
// search a postcode, pick a suggestion, fall back to manual entry whenever
// lookup is unavailable, empty, or rejected. The form stays submittable on
// every path.
type Flow struct {
	provider Provider

	mu          sync.Mutex
	mode        Mode
	message     string
	suggestions []Suggestion
	resolution  *Resolution
}

// NewFlow creates an idle lookup flow.
func NewFlow(provider Provider) *Flow {
	return &Flow{provider: provider, mode: ModeIdle}
}

// Mode returns the current mode.
func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Message returns the last user-visible status message.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Suggestions returns the candidates from the last successful search.
func (f *Flow) Suggestions() []Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestions
}

// Search looks up the postcode. Zero suggestions or a provider failure
// switches to manual entry with an explanatory message; an invalid postcode
// leaves the mode unchanged so the user can correct it. A search already in
// flight rejects re-entry, mirroring the disabled search control.
func (f *Flow) Search(ctx context.Context, postcode string) error {
	f.mu.Lock()
	if f.mode == ModeSearching {
		f.mu.Unlock()
		return errors.New("search already in progress")
	}
	previous := f.mode
	f.mode = ModeSearching
	f.suggestions = nil
	f.mu.Unlock()

	suggestions, err := f.provider.Suggest(ctx, postcode)

	f.mu.Lock()
	defer f.mu.Unlock()

	if errors.Is(err, ErrInvalidPostcode) {
		f.mode = previous
		f.message = "Please enter a valid UK postcode before searching."
		return err
	}
	if err != nil {
		f.mode = ModeManual
		f.message = "Address lookup is currently unavailable. Please enter your address manually."
		return nil
	}
	if len(suggestions) == 0 {
		f.mode = ModeManual
		f.message = "No addresses found. Please enter your address manually."
		return nil
	}

	f.mode = ModeSelecting
	f.suggestions = suggestions
	f.message = "Select your address from the list."
	return nil
}

// Select resolves a suggestion to a full address. A failed detail fetch
// falls back to the suggestion's own display text with a cleared id; the
// form remains submittable either way.
func (f *Flow) Select(ctx context.Context, id string) error {
	f.mu.Lock()
	var fallback string
	for _, s := range f.suggestions {
		if s.ID == id {
			fallback = s.Label
			break
		}
	}
	f.mu.Unlock()
	if fallback == "" {
		return errors.New("unknown suggestion id")
	}

	detail, err := f.provider.FetchDetail(ctx, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.resolution = &Resolution{Label: fallback}
		f.message = fallback
		return nil
	}
	f.resolution = &Resolution{AddressID: detail.ID, Label: detail.Label, Raw: detail.Raw}
	f.message = detail.Label
	return nil
}

// EnterManually switches to manual entry; the text becomes the
// authoritative label on submit. Allowed at any time.
func (f *Flow) EnterManually(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = ModeManual
	if text != "" {
		f.resolution = &Resolution{Label: text}
	}
}

// Resolution returns the authoritative address, or ErrNoResolution when the
// user has neither selected nor entered one.
func (f *Flow) Resolution() (Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolution == nil || f.resolution.Label == "" {
		return Resolution{}, ErrNoResolution
	}
	return *f.resolution, nil
}
