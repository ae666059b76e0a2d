package address

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/draintech/lead-intake/internal/observability/metrics"
	"github.com/draintech/lead-intake/pkg/logging"
)

// Handler serves the address lookup endpoints backing the form widget.
type Handler struct {
	client  *Client
	logger  *logging.Logger
	metrics *metrics.AddressMetrics
}

// NewHandler creates an address lookup handler.
func NewHandler(client *Client, m *metrics.AddressMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger, metrics: m}
}

type suggestResponse struct {
	Addresses []Suggestion `json:"addresses"`
}

// Suggest handles GET /api/address/suggest?postcode=
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")

	suggestions, err := h.client.Suggest(r.Context(), postcode)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPostcode):
			h.metrics.ObserveSuggest("invalid")
			writeMessage(w, http.StatusBadRequest, "Please enter a valid UK postcode.")
		case errors.Is(err, ErrUnavailable):
			h.metrics.ObserveSuggest("unavailable")
			writeMessage(w, http.StatusServiceUnavailable, "Address lookup is unavailable.")
		default:
			h.logger.Error("address suggest failed", "error", err)
			h.metrics.ObserveSuggest("error")
			writeMessage(w, http.StatusBadGateway, "Unable to fetch address suggestions.")
		}
		return
	}

	h.metrics.ObserveSuggest("ok")
	writeJSON(w, http.StatusOK, suggestResponse{Addresses: suggestions})
}

// Get handles GET /api/address/get?id=
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	detail, err := h.client.FetchDetail(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidID):
			h.metrics.ObserveDetail("invalid")
			writeMessage(w, http.StatusBadRequest, "Address id is required.")
		case errors.Is(err, ErrUnavailable):
			h.metrics.ObserveDetail("unavailable")
			writeMessage(w, http.StatusServiceUnavailable, "Address lookup is unavailable.")
		default:
			h.logger.Error("address detail failed", "error", err, "id", id)
			h.metrics.ObserveDetail("error")
			writeMessage(w, http.StatusBadGateway, "Unable to fetch address details.")
		}
		return
	}

	h.metrics.ObserveDetail("ok")
	writeJSON(w, http.StatusOK, detail)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
