package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/workerdesk/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// route is one entry of the route table. Each method and pattern pair may
// appear only once.
type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
	// middleware applied to this route only
	use []func(http.Handler) http.Handler
}

// workerRoutes lists the API routes mounted under the configured prefix.
func (s *Server) workerRoutes() []route {
	upload := route{method: http.MethodPost, pattern: "/workers/upload", handler: s.handleUpload}
	if s.cfg.Rate.Enabled {
		upload.use = append(upload.use, s.newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute).middleware)
	}

	return []route{
		{method: http.MethodGet, pattern: "/workers", handler: s.handleListWorkers},
		{method: http.MethodPost, pattern: "/workers/add", handler: s.handleAddWorker},
		{method: http.MethodPut, pattern: "/workers/edit", handler: s.handleEditWorker},
		{method: http.MethodDelete, pattern: "/workers/delete", handler: s.handleDeleteWorker},
		upload,
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	mountRoutes(s.router, []route{
		{method: http.MethodGet, pattern: "/", handler: s.handleIndex},
		{method: http.MethodGet, pattern: "/health", handler: s.handleHealth},
		{method: http.MethodGet, pattern: "/metrics", handler: metrics.Handler().ServeHTTP},
	})

	if prefix := s.cfg.Server.APIPrefix; prefix != "" {
		s.router.Route(prefix, func(r chi.Router) {
			mountRoutes(r, s.workerRoutes())
		})
		return
	}
	mountRoutes(s.router, s.workerRoutes())
}

// mountRoutes registers every route on r.
// Panics if a method and pattern pair is registered twice.
func mountRoutes(r chi.Router, routes []route) {
	seen := make(map[string]struct{}, len(routes))

	for _, rt := range routes {
		key := rt.method + " " + rt.pattern
		if _, exists := seen[key]; exists {
			panic(fmt.Sprintf("route already registered: %s", key))
		}
		seen[key] = struct{}{}

		if len(rt.use) > 0 {
			r.With(rt.use...).MethodFunc(rt.method, rt.pattern, rt.handler)
			continue
		}
		r.MethodFunc(rt.method, rt.pattern, rt.handler)
	}
}
