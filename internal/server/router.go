package server

import (
	"net/http"
	"time"
)

// Recorder is the part of the metrics collector the middleware uses.
type Recorder interface {
	IncrementCustom(name string)
}

// Router wraps the HTTP mux and provides route configuration.
type Router struct {
	mux      *http.ServeMux
	handlers *Handlers
	recorder Recorder
}

// NewRouter creates a router with all routes configured. recorder may be nil.
func NewRouter(h *Handlers, recorder Recorder) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		recorder: recorder,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("/health", r.handlers.Health)
	r.mux.Handle("/overlay", r.handlers.overlay)

	r.mux.HandleFunc("/api/v1/overlay", method(http.MethodGet, r.handlers.GetOverlayFrame))
	r.mux.HandleFunc("/api/v1/alerts/resend", method(http.MethodPost, r.handlers.ResendAlerts))
	r.mux.HandleFunc("/api/v1/commands", method(http.MethodPost, r.handlers.RunCommand))
	r.mux.HandleFunc("/api/v1/history", method(http.MethodGet, r.handlers.ListHistory))
	r.mux.HandleFunc("/api/v1/metrics", method(http.MethodGet, r.handlers.GetMetrics))
}

// Handler returns the mux with CORS and request counting applied.
func (r *Router) Handler() http.Handler {
	return corsMiddleware(countMiddleware(r.recorder)(r.mux))
}

func method(m string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, req)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// countMiddleware counts API requests by method and failures. Health checks
// and the overlay socket are not counted.
func countMiddleware(recorder Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil || r.URL.Path == "/health" || r.URL.Path == "/overlay" {
				next.ServeHTTP(w, r)
				return
			}

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			recorder.IncrementCustom("http_" + r.Method)
			if wrapped.statusCode >= 400 {
				recorder.IncrementCustom("http_errors")
			}
		})
	}
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// NewServer creates the HTTP server. WriteTimeout is left unset because the
// overlay socket is long-lived.
func NewServer(addr string, h *Handlers, recorder Recorder) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(h, recorder).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
