package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires all public endpoints. Routes mirror the dashboard API:
// stats, history, trends, summary, roster, and the manual record endpoint.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/attendance/manual", h.handleManualAttendance)
		r.Get("/attendance/history", h.handleHistory)
		r.Get("/attendance/trends/{student}", h.handleTrends)
		r.Get("/attendance/summary", h.handleSummary)
		r.Get("/stats/all", h.handleAllStats)
		r.Get("/stats/{student}", h.handleStudentStats)
		r.Get("/students", h.handleStudents)
	})

	return r
}
