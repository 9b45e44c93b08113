// Package api exposes the capture scheduler and stored leads over HTTP for
// the browser client.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/seo-leads/internal/capture"
	"github.com/sells-group/seo-leads/internal/events"
	"github.com/sells-group/seo-leads/internal/leads"
	"github.com/sells-group/seo-leads/internal/speed"
	"github.com/sells-group/seo-leads/pkg/pagerank"
)

// AuditStore looks up stored page-speed audits.
type AuditStore interface {
	Get(ctx context.Context, pageURL string) (*speed.Audit, error)
}

// Deps are the services the router dispatches to. Audits, PageRank and Hub
// are optional; their routes answer 503 when unset.
type Deps struct {
	Scheduler *capture.Scheduler
	Leads     *leads.Gateway
	Audits    AuditStore
	PageRank  pagerank.Client
	Hub       *events.Hub

	AllowedOrigins []string
}

// NewRouter builds the HTTP handler. Captures dispatched by requests run on
// base, not the request context, so they outlive the response.
func NewRouter(base context.Context, d Deps) http.Handler {
	h := &handlers{base: base, d: d}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/tabs", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/navigated", h.tabNavigated)
			r.Post("/activated", h.tabActivated)
			r.Post("/closed", h.tabClosed)
		})

		r.Get("/leads", h.listLeads)
		r.Get("/leads/lookup", h.lookupLead)
		r.Get("/leads/export", h.exportLeads)
		r.Post("/leads/refresh", h.refresh)

		r.Get("/audits/lookup", h.lookupAudit)
		r.Get("/metrics", h.metrics)

		r.Get("/events", h.events)
	})

	return r
}

// NewServer wraps the router in an http.Server with conservative timeouts.
// WriteTimeout is left unset for the event stream.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type handlers struct {
	base context.Context
	d    Deps
}
