package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check in GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID, s.accessLog, s.recoverPanics, s.cors, limitBody)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Get("/{room}", s.handleGetRoom)
				r.Get("/{room}/lights", s.handleRoomLights)
			})

			r.Route("/doors", func(r chi.Router) {
				r.Get("/", s.handleListDoors)

				r.Route("/{door}", func(r chi.Router) {
					r.Get("/", s.handleGetDoor)
					r.Get("/history", s.handleDoorHistory)
					r.Post("/commands", s.handleDoorCommand)
					r.Post("/{action}", s.handleDoorAction)
				})
			})

			r.Get("/sessions", s.handleListSessions)
			r.Get("/audit", s.handleListAudit)
			r.Get("/lights", s.handleListLights)
			r.Post("/scan", s.handleScan)
		})
	})

	return r
}

// handleHealth returns the server health status. Any failing dependency
// check turns the response into a 503 with status "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()

		if err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
