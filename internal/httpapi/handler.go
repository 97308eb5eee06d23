package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"attend-go/internal/attend"
	"attend-go/internal/model"
)

// AttendanceService is the slice of the domain service the HTTP layer
// depends on. Handlers delegate to it without embedding business logic.
type AttendanceService interface {
	RecordAttendance(studentName, status, source string) (attend.RecordOutcome, error)
	StudentStats(studentName string) (*model.Stats, error)
	AllStudentsStats() ([]*model.Stats, error)
	ClassAverage() (float64, error)
	History(studentName string, windowDays int) ([]model.HistoryEntry, error)
	Trends(studentName string) (*model.Trends, error)
	DailySummary(referenceDay time.Time) (*model.Summary, error)
	ListStudents() ([]string, error)
}

// Handler is the thin HTTP layer over the attendance service.
type Handler struct {
	service AttendanceService
	clock   attend.Clock
	logger  attend.Logger
}

func NewHandler(service AttendanceService, clock attend.Clock, logger attend.Logger) *Handler {
	return &Handler{service: service, clock: clock, logger: logger}
}

type manualAttendanceRequest struct {
	StudentName string `json:"student_name"`
	Status      string `json:"status"`
}

func (h *Handler) handleManualAttendance(w http.ResponseWriter, r *http.Request) {
	var req manualAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = model.StatusPresent
	}

	outcome, err := h.service.RecordAttendance(req.StudentName, req.Status, model.SourceManual)
	switch {
	case errors.Is(err, attend.ErrInvalidInput):
		writeError(w, err)
	case err != nil:
		h.logger.Error("recording attendance", "student", req.StudentName, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to log attendance")
	case outcome == attend.RecordDuplicate:
		writeErrorMessage(w, http.StatusConflict, "attendance already logged today")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{
			"message": "attendance logged successfully",
		})
	}
}

func (h *Handler) handleStudentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.StudentStats(chi.URLParam(r, "student"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAllStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AllStudentsStats()
	if err != nil {
		writeError(w, err)
		return
	}
	average, err := h.service.ClassAverage()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"students":      stats,
		"class_average": average,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	history, err := h.service.History(r.URL.Query().Get("student_name"), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.service.Trends(chi.URLParam(r, "student"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.DailySummary(h.clock.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleStudents(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListStudents()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates domain errors to HTTP responses so all handlers
// share one JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, attend.ErrStudentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, attend.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
