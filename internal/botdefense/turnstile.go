package botdefense

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/draintech/lead-intake/pkg/logging"
)

// DefaultVerifyURL is Cloudflare's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// VerifyResult is the outcome of a challenge verification.
type VerifyResult struct {
	// Verified is true only when the token was checked and accepted.
	Verified bool
	// Skipped is true when no secret is configured; the submission
	// proceeds unverified and is recorded as such.
	Skipped bool
}

// Verifier checks challenge tokens. Implementations must treat transport
// failure as verification failure, never as a skip.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (VerifyResult, error)
}

// TurnstileVerifier verifies tokens against the Turnstile siteverify API.
type TurnstileVerifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	logger     *logging.Logger
}

// TurnstileOption is a functional option for configuring the verifier.
type TurnstileOption func(*TurnstileVerifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) TurnstileOption {
	return func(v *TurnstileVerifier) {
		v.httpClient = client
	}
}

// WithVerifyURL overrides the siteverify endpoint.
func WithVerifyURL(u string) TurnstileOption {
	return func(v *TurnstileVerifier) {
		v.verifyURL = u
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) TurnstileOption {
	return func(v *TurnstileVerifier) {
		v.logger = logger
	}
}

// NewTurnstileVerifier creates a verifier. An empty secret disables
// verification: every call reports Skipped.
func NewTurnstileVerifier(secret string, opts ...TurnstileOption) *TurnstileVerifier {
	v := &TurnstileVerifier{
		secret:    secret,
		verifyURL: DefaultVerifyURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits the token to the siteverify endpoint. With no secret
// configured the result is Skipped and nil error. With a secret, a missing
// token, transport failure, non-2xx status, or success:false all count as
// verification failure.
func (v *TurnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (VerifyResult, error) {
	if v.secret == "" {
		return VerifyResult{Skipped: true}, nil
	}
	if strings.TrimSpace(token) == "" {
		return VerifyResult{}, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return VerifyResult{}, fmt.Errorf("botdefense: create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Error("turnstile verify request failed", "error", err)
		return VerifyResult{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("turnstile verify returned non-success", "status", resp.StatusCode)
		return VerifyResult{}, nil
	}

	var payload siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		v.logger.Error("turnstile verify decode failed", "error", err)
		return VerifyResult{}, nil
	}
	if !payload.Success {
		v.logger.Info("turnstile token rejected", "error_codes", strings.Join(payload.ErrorCodes, ","))
		return VerifyResult{}, nil
	}

	return VerifyResult{Verified: true}, nil
}
