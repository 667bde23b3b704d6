package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const apiVersion = "1.0.0"

// Config carries router-level settings.
type Config struct {
	AuthToken string
}

// NewRouter assembles the gateway HTTP surface. Registry and audit routes
// require the bearer token when one is configured, policy and proxy routes
// stay open for MCP clients.
func NewRouter(svc RegistryService, fwd Forwarder, cfg Config) http.Handler {
	h := &handlers{svc: svc, fwd: fwd}

	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Version: apiVersion})
	})

	r.Route("/registry", func(r chi.Router) {
		r.Use(requireBearer(cfg.AuthToken))
		r.Post("/servers", h.registerServer)
		r.Get("/servers", h.listServers)
		r.Get("/servers/{serverID}", h.getServer)
		r.Post("/servers/{serverID}/scan/upload", h.uploadScan)
		r.Get("/servers/{serverID}/scans", h.listScans)
		r.Post("/servers/{serverID}/approve", h.adminAction("approve"))
		r.Post("/servers/{serverID}/deny", h.adminAction("deny"))
		r.Post("/servers/{serverID}/suspend", h.adminAction("suspend"))
	})

	r.Route("/audit", func(r chi.Router) {
		r.Use(requireBearer(cfg.AuthToken))
		r.Get("/events", h.listAuditEvents)
	})

	r.Get("/policy/check", h.checkPolicy)
	r.Get("/mcp/servers", h.listApprovedServers)
	r.Handle("/mcp/proxy/*", http.HandlerFunc(h.proxyRequest))

	return r
}
