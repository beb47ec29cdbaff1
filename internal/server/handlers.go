// Package server exposes the engine over HTTP: health, metrics, the overlay
// socket, alert history and the manual resend and command triggers.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/events"
	"github.com/nebel/CurrencyWatchdog/internal/metrics"
	"github.com/nebel/CurrencyWatchdog/internal/overlay"
)

// Submitter hands a host event to the event loop.
type Submitter interface {
	Submit(ctx context.Context, ev *events.HostEvent) error
}

// HistoryReader lists recently delivered alerts.
type HistoryReader interface {
	ListAlertHistory(ctx context.Context, limit int) ([]database.HistoryEntry, error)
}

// MetricsSource provides the live counters.
type MetricsSource interface {
	Snapshot() *metrics.Snapshot
}

// OverlaySource is the overlay hub as seen by the HTTP layer.
type OverlaySource interface {
	http.Handler
	LastFrame() (overlay.Frame, error)
	Clients() int
	PanelCount() int
}

// Handlers wraps dependencies for HTTP handlers. History and metrics are
// optional.
type Handlers struct {
	loop    Submitter
	overlay OverlaySource
	history HistoryReader
	metrics MetricsSource
}

// NewHandlers creates a new handlers instance.
func NewHandlers(loop Submitter, hub OverlaySource, history HistoryReader, m MetricsSource) *Handlers {
	return &Handlers{
		loop:    loop,
		overlay: hub,
		history: history,
		metrics: m,
	}
}

// CommandRequest is the body of POST /api/v1/commands.
type CommandRequest struct {
	Command string `json:"command"`
}

// Health reports liveness.
// GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ResendAlerts asks the event loop to send every active chat alert again.
// POST /api/v1/alerts/resend
func (h *Handlers) ResendAlerts(w http.ResponseWriter, r *http.Request) {
	if err := h.loop.Submit(r.Context(), &events.HostEvent{Type: events.TypeResendAlerts}); err != nil {
		slog.Error("Failed to queue resend", "error", err)
		http.Error(w, "Failed to queue resend: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RunCommand queues a /cdog command.
// POST /api/v1/commands
func (h *Handlers) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.loop.Submit(r.Context(), &events.HostEvent{Type: events.TypeCommand, Text: req.Command}); err != nil {
		slog.Error("Failed to queue command", "command", req.Command, "error", err)
		http.Error(w, "Failed to queue command: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetOverlayFrame returns the last frame drawn.
// GET /api/v1/overlay
func (h *Handlers) GetOverlayFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := h.overlay.LastFrame()
	if err != nil {
		slog.Error("Failed to read overlay frame", "error", err)
		http.Error(w, "Failed to read overlay frame", http.StatusInternalServerError)
		return
	}
	writeJSON(w, frame)
}

// ListHistory returns delivered chat alerts, newest first.
// GET /api/v1/history?limit=N
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "Alert history not configured", http.StatusNotFound)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.history.ListAlertHistory(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list alert history", "error", err)
		http.Error(w, "Failed to list alert history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

// MetricsResponse is the body of GET /api/v1/metrics.
type MetricsResponse struct {
	*metrics.Snapshot
	OverlayClients int `json:"overlay_clients"`
	OverlayPanels  int `json:"overlay_panels"`
}

// GetMetrics returns the live counters.
// GET /api/v1/metrics
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.Error(w, "Metrics not configured", http.StatusNotFound)
		return
	}
	writeJSON(w, MetricsResponse{
		Snapshot:       h.metrics.Snapshot(),
		OverlayClients: h.overlay.Clients(),
		OverlayPanels:  h.overlay.PanelCount(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
