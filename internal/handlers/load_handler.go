package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"library-loader/internal/models"
	"library-loader/internal/services"
)

// LoadScheduler is the part of the scheduler the handlers use.
type LoadScheduler interface {
	Status() models.SchedulerStatus
	Trigger() error
}

// Handler holds service dependencies
type Handler struct {
	scheduler LoadScheduler
}

func NewHandler(scheduler LoadScheduler) *Handler {
	return &Handler{
		scheduler: scheduler,
	}
}

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.RootHandler)
	mux.HandleFunc("/health", h.HealthHandler)
	mux.HandleFunc("/api/load/status", h.StatusHandler)
	mux.HandleFunc("/api/load/run", h.TriggerHandler)
	return mux
}

func (h *Handler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := h.scheduler.Trigger()
	switch {
	case errors.Is(err, services.ErrRunInProgress):
		sendErrorResponse(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		sendErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	sendResponse(w, http.StatusAccepted, "Load started", nil)
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sendResponse(w, http.StatusOK, "", h.scheduler.Status())
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	sendResponse(w, http.StatusOK, "Service is running", nil)
}

func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		sendErrorResponse(w, "Not found", http.StatusNotFound)
		return
	}

	endpoints := map[string]string{
		"health": "GET /health",
		"status": "GET /api/load/status",
		"run":    "POST /api/load/run",
	}

	sendResponse(w, http.StatusOK, "Library loader", map[string]interface{}{"endpoints": endpoints})
}

func sendResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	response := Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
