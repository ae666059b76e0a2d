package leads

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/draintech/lead-intake/internal/ratelimit"
	"github.com/draintech/lead-intake/pkg/logging"
)

func validRequest() SubmitLeadRequest {
	return SubmitLeadRequest{
		Name:         "John Doe",
		Phone:        "07700 900123",
		Email:        "john@example.com",
		Postcode:     "BS1 4QA",
		AddressLabel: "1 Queen Square, Bristol, BS1 4QA",
		Service:      "Boiler Repair",
		Notes:        "Boiler losing pressure overnight",
		SourcePath:   "/boiler-repair",
	}
}

func newTestHandler(repo Repository, limiter ratelimit.Limiter) *Handler {
	logger := logging.New("error")
	pipeline := NewPipeline(limiter, skippedVerifier(), repo, nil, logger)
	return NewHandler(pipeline, repo, "", logger)
}

func postLead(t *testing.T, h *Handler, req SubmitLeadRequest, ip string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	r := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(body))
	if ip != "" {
		r.Header.Set("X-Real-Ip", ip)
	}
	r.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	h.SubmitLead(w, r)
	return w
}

func TestSubmitLead_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	h := newTestHandler(repo, &stubLimiter{allowed: true})

	w := postLead(t, h, validRequest(), "203.0.113.7")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var resp map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp["ok"] {
		t.Fatal("expected ok response")
	}
}

func TestSubmitLead_InvalidJSON(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), &stubLimiter{allowed: true})

	r := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.SubmitLead(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSubmitLead_HoneypotRejected(t *testing.T) {
	repo := NewInMemoryRepository()
	h := newTestHandler(repo, &stubLimiter{allowed: true})

	req := validRequest()
	req.Website = "https://spam.example"
	w := postLead(t, h, req, "203.0.113.7")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if resp["message"] != "Submission rejected." {
		t.Fatalf("expected generic rejection message, got %q", resp["message"])
	}
	if leadsStored(t, repo) != 0 {
		t.Fatal("honeypot submission must not be persisted")
	}
}

func TestSubmitLead_MissingFields(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), &stubLimiter{allowed: true})

	req := validRequest()
	req.Email = ""
	w := postLead(t, h, req, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSubmitLead_OtherServiceRequired(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), &stubLimiter{allowed: true})

	req := validRequest()
	req.Service = ServiceOther
	w := postLead(t, h, req, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	req.OtherService = "Power flushing"
	w = postLead(t, h, req, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestSubmitLead_RateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(time.Minute, 5)
	h := newTestHandler(NewInMemoryRepository(), limiter)

	for i := 0; i < 5; i++ {
		w := postLead(t, h, validRequest(), "203.0.113.7")
		if w.Code != http.StatusCreated {
			t.Fatalf("submission %d: expected %d, got %d", i+1, http.StatusCreated, w.Code)
		}
	}

	w := postLead(t, h, validRequest(), "203.0.113.7")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
}

func TestSubmitLead_ChallengeFailed(t *testing.T) {
	logger := logging.New("error")
	repo := NewInMemoryRepository()
	verifier := &stubVerifier{}
	pipeline := NewPipeline(&stubLimiter{allowed: true}, verifier, repo, nil, logger)
	h := NewHandler(pipeline, repo, "", logger)

	w := postLead(t, h, validRequest(), "203.0.113.7")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestSubmitLead_StorageFailure(t *testing.T) {
	h := newTestHandler(failingStore{}, &stubLimiter{allowed: true})

	w := postLead(t, h, validRequest(), "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestListLeads(t *testing.T) {
	repo := NewInMemoryRepository()
	h := newTestHandler(repo, &stubLimiter{allowed: true})

	first := validRequest()
	first.Name = "First"
	second := validRequest()
	second.Name = "Second"
	postLead(t, h, first, "")
	postLead(t, h, second, "")

	r := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	w := httptest.NewRecorder()
	h.ListLeads(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var all []*Lead
	if err := json.NewDecoder(w.Body).Decode(&all); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(all))
	}
	if all[0].Name != "Second" {
		t.Fatalf("expected newest first, got %q", all[0].Name)
	}
}

func TestListLeads_StoreFailure(t *testing.T) {
	h := newTestHandler(failingStore{}, &stubLimiter{allowed: true})

	r := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	w := httptest.NewRecorder()
	h.ListLeads(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestFormConfigWithSiteKey(t *testing.T) {
	logger := logging.New("error")
	repo := NewInMemoryRepository()
	pipeline := NewPipeline(&stubLimiter{allowed: true}, skippedVerifier(), repo, nil, logger)
	h := NewHandler(pipeline, repo, "site-key-123", logger)

	r := httptest.NewRequest(http.MethodGet, "/api/lead-config", nil)
	w := httptest.NewRecorder()
	h.FormConfig(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["challengeSiteKey"] != "site-key-123" {
		t.Fatalf("expected site key, got %v", resp["challengeSiteKey"])
	}
}

func TestFormConfigWithoutSiteKeyIsNull(t *testing.T) {
	h := newTestHandler(NewInMemoryRepository(), &stubLimiter{allowed: true})

	r := httptest.NewRequest(http.MethodGet, "/api/lead-config", nil)
	w := httptest.NewRecorder()
	h.FormConfig(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if val, present := resp["challengeSiteKey"]; !present || val != nil {
		t.Fatalf("expected null site key, got %v", val)
	}
}

func leadsStored(t *testing.T, repo Repository) int {
	t.Helper()
	all, err := repo.List(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return len(all)
}
