// Package address wraps the getAddress.io postcode lookup service behind a
// stable suggest/fetch-detail contract.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/draintech/lead-intake/pkg/logging"
)

var (
	// ErrInvalidPostcode is returned when the postcode is empty or does not
	// match the UK postcode shape.
	ErrInvalidPostcode = errors.New("a valid UK postcode is required")

	// ErrInvalidID is returned when the address id is empty.
	ErrInvalidID = errors.New("address id is required")

	// ErrUnavailable is returned when the provider is unreachable or no API
	// key is configured.
	ErrUnavailable = errors.New("address lookup is unavailable")

	// ErrLookupFailed is returned when a detail fetch fails; callers should
	// fall back to the suggestion's display text.
	ErrLookupFailed = errors.New("unable to fetch address details")
)

// Outward code of 1-2 letters, a digit, an optional letter/digit, then an
// optional inward code of a digit and up to 2 letters. Partial postcodes are
// accepted for autocomplete.
var postcodePattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?([0-9][A-Z]{0,2})?$`)

// NormalizePostcode strips all whitespace and uppercases.
func NormalizePostcode(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// ValidPostcode reports whether the normalized postcode matches the UK shape.
func ValidPostcode(normalized string) bool {
	return postcodePattern.MatchString(normalized)
}

// Suggestion is a lightweight address candidate returned by a postcode
// search. A follow-up FetchDetail call resolves the full record.
type Suggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Detail is a fully resolved address.
type Detail struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Postcode string          `json:"postcode"`
	Raw      json.RawMessage `json:"raw"`
}

// Client is an HTTP client for the getAddress.io API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewClient creates a provider client. An empty apiKey leaves the client in
// an unconfigured state where every call returns ErrUnavailable.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: "https://api.getAddress.io",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type autocompleteResponse struct {
	Suggestions []struct {
		ID      string `json:"id"`
		Address string `json:"address"`
	} `json:"suggestions"`
}

// Suggest searches the provider for addresses matching the postcode. An
// empty result set is a valid outcome, not an error. The postcode is
// validated before any network call is made.
func (c *Client) Suggest(ctx context.Context, postcode string) ([]Suggestion, error) {
	normalized := NormalizePostcode(postcode)
	if normalized == "" || !ValidPostcode(normalized) {
		return nil, ErrInvalidPostcode
	}
	if !c.Configured() {
		return nil, ErrUnavailable
	}

	endpoint := fmt.Sprintf("%s/autocomplete/%s?api-key=%s&all=true",
		c.baseURL, url.PathEscape(normalized), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("address: create suggest request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("address suggest request failed", "error", err, "postcode", normalized)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("address provider returned non-success", "status", resp.StatusCode, "postcode", normalized)
		return nil, ErrUnavailable
	}

	var payload autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error("address suggest decode failed", "error", err)
		return nil, ErrUnavailable
	}

	suggestions := make([]Suggestion, 0, len(payload.Suggestions))
	for _, item := range payload.Suggestions {
		suggestions = append(suggestions, Suggestion{ID: item.ID, Label: item.Address})
	}
	return suggestions, nil
}

type detailResponse struct {
	Line1      string `json:"line_1"`
	Line2      string `json:"line_2"`
	Line3      string `json:"line_3"`
	Line4      string `json:"line_4"`
	TownOrCity string `json:"town_or_city"`
	County     string `json:"county"`
	Postcode   string `json:"postcode"`
}

// FetchDetail resolves a suggestion id to a full address. The label is a
// comma-separated join of the non-empty address lines.
func (c *Client) FetchDetail(ctx context.Context, id string) (*Detail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	if !c.Configured() {
		return nil, ErrUnavailable
	}

	endpoint := fmt.Sprintf("%s/get/%s?api-key=%s",
		c.baseURL, url.PathEscape(id), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("address: create detail request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("address detail request failed", "error", err, "id", id)
		return nil, ErrLookupFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("address provider returned non-success", "status", resp.StatusCode, "id", id)
		return nil, ErrLookupFailed
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Error("address detail decode failed", "error", err)
		return nil, ErrLookupFailed
	}
	var payload detailResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrLookupFailed
	}

	label := joinNonEmpty(
		payload.Line1,
		payload.Line2,
		payload.Line3,
		payload.Line4,
		payload.TownOrCity,
		payload.County,
		payload.Postcode,
	)
	if label == "" {
		return nil, ErrLookupFailed
	}

	return &Detail{
		ID:       id,
		Label:    label,
		Postcode: payload.Postcode,
		Raw:      raw,
	}, nil
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
