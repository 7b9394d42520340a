// internal/server/handlers/trend.go

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"trendwatch/internal/domain/trend"
)

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	store trend.Store
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(store trend.Store) *TrendHandler {
	return &TrendHandler{
		store: store,
	}
}

// ListTrends returns all stored trend records in rank order
func (h *TrendHandler) ListTrends(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list trends", err)
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

// GetTrend returns a single trend record by name
func (h *TrendHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Missing trend name", nil)
		return
	}

	// Trend names carry characters like '#', so clients send them
	// percent-encoded and chi hands back the raw segment.
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	rec, err := h.store.FindByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, trend.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Trend not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to get trend", err)
		}
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		slog.Error("HTTP error", "code", code, "message", message, "error", err)
	}

	response := map[string]string{"error": message}
	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
