package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/draintech/lead-intake/internal/address"
	httpmiddleware "github.com/draintech/lead-intake/internal/http/middleware"
	"github.com/draintech/lead-intake/internal/leads"
	"github.com/draintech/lead-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	AddressHandler     *address.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/lead-config", cfg.LeadsHandler.FormConfig)
		api.Route("/address", func(addr chi.Router) {
			addr.Get("/suggest", cfg.AddressHandler.Suggest)
			addr.Get("/get", cfg.AddressHandler.Get)
		})
		api.Route("/leads", func(lr chi.Router) {
			lr.Post("/", cfg.LeadsHandler.SubmitLead)
			lr.Get("/", cfg.LeadsHandler.ListLeads)
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
