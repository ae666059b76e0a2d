package leads

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/draintech/lead-intake/internal/botdefense"
	"github.com/draintech/lead-intake/pkg/logging"
)

// SubmitLeadRequest is the wire format of a form submission.
type SubmitLeadRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Postcode       string `json:"postcode"`
	AddressLabel   string `json:"address_label"`
	AddressID      string `json:"address_id"`
	AddressJSON    string `json:"address_json"`
	Service        string `json:"service"`
	OtherService   string `json:"other_service"`
	Notes          string `json:"notes"`
	SourcePath     string `json:"source_path"`
	Referrer       string `json:"referrer"`
	TurnstileToken string `json:"turnstile_token"`
	Website        string `json:"website"`
}

// Submission converts the wire format into a LeadSubmission, collapsing
// the loose address fields into the tagged resolution.
func (r *SubmitLeadRequest) Submission() *LeadSubmission {
	var resolution AddressResolution
	if r.AddressID != "" {
		resolution = SelectedAddress(r.AddressID, r.AddressLabel, json.RawMessage(r.AddressJSON))
	} else {
		resolution = ManualAddress(r.AddressLabel)
	}
	return &LeadSubmission{
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		Postcode:       r.Postcode,
		Address:        resolution,
		Service:        r.Service,
		OtherService:   r.OtherService,
		Notes:          r.Notes,
		Honeypot:       r.Website,
		ChallengeToken: r.TurnstileToken,
		SourcePath:     r.SourcePath,
		Referrer:       r.Referrer,
	}
}

// Handler handles HTTP requests for leads
type Handler struct {
	pipeline *Pipeline
	repo     Repository
	siteKey  string
	logger   *logging.Logger
}

// NewHandler creates a new leads handler. siteKey is the challenge site
// key served to the form; empty means the challenge widget is disabled.
func NewHandler(pipeline *Pipeline, repo Repository, siteKey string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		pipeline: pipeline,
		repo:     repo,
		siteKey:  siteKey,
		logger:   logger,
	}
}

// SubmitLead handles POST /api/leads requests.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON payload.")
		return
	}

	meta := RequestMeta{
		IP:        clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	}

	_, err := h.pipeline.Process(r.Context(), req.Submission(), meta)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// writeError maps pipeline outcomes onto the response contract. Unexpected
// errors are normalized to a generic storage failure rather than leaking
// internals.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, botdefense.ErrBotDetected):
		writeMessage(w, http.StatusBadRequest, "Submission rejected.")
	case errors.Is(err, ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, "Too many submissions. Please try again later.")
	case errors.Is(err, ErrChallengeFailed):
		writeMessage(w, http.StatusForbidden, "Submission rejected.")
	case errors.Is(err, ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, "Please fill in all required fields.")
	case errors.Is(err, ErrOtherServiceRequired):
		writeMessage(w, http.StatusBadRequest, "Please specify the other service required.")
	default:
		h.logger.Error("lead submission failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Unable to save your request. Please try calling us.")
	}
}

// ListLeads handles GET /api/leads requests, newest first.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Unable to fetch leads.")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// FormConfig handles GET /api/lead-config. Absence of a configured site
// key is a normal "feature disabled" state, never an error.
func (h *Handler) FormConfig(w http.ResponseWriter, _ *http.Request) {
	var siteKey any
	if h.siteKey != "" {
		siteKey = h.siteKey
	}
	writeJSON(w, http.StatusOK, map[string]any{"challengeSiteKey": siteKey})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// clientIP resolves the submitter's network address. Prefers X-Real-Ip set
// by chi's RealIP middleware, then the first X-Forwarded-For hop, then the
// socket address. May be empty behind a misconfigured proxy; such
// submissions are never rate-limited.
func clientIP(r *http.Request) string {
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
