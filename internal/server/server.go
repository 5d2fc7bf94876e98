// Package server exposes the scraper over HTTP.
//
// Routes:
//
//	GET /                          liveness text
//	GET /event/{id}                one event as JSON
//	GET /profile/{profile}/events  NDJSON stream: the ID list, then one event per line
//	GET /metrics                   Prometheus metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pfrederiksen/fb-events/internal/config"
	"github.com/pfrederiksen/fb-events/internal/event"
	"github.com/pfrederiksen/fb-events/internal/extract"
	"github.com/pfrederiksen/fb-events/internal/logger"
	"github.com/pfrederiksen/fb-events/internal/scraper"
)

// EventSource is what the server needs from a scraper.
type EventSource interface {
	Event(ctx context.Context, id string) (*event.GenericEvent, error)
	ProfileEventIDs(ctx context.Context, profile string) (*scraper.ProfileIDs, error)
}

// Server serves scraped events over HTTP.
type Server struct {
	src     EventSource
	metrics http.Handler
	log     *logger.Logger
	mux     *http.ServeMux
}

// New creates a Server. metricsHandler may be nil to disable /metrics.
func New(src EventSource, metricsHandler http.Handler, log *logger.Logger) *Server {
	s := &Server{
		src:     src,
		metrics: metricsHandler,
		log:     log,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /event/{id}", s.handleEvent)
	s.mux.HandleFunc("GET /profile/{profile}/events", s.handleProfileEvents)
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}

	return s
}

// ServeHTTP tags every request with an ID and logs it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	start := time.Now()
	s.mux.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), requestID)))

	s.log.Info("Handled request", logger.Fields{
		"request_id":  requestID,
		"method":      r.Method,
		"path":        r.URL.Path,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", logger.Fields{"addr": cfg.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello, world")) // nolint:errcheck
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := scraper.ValidateEventID(id); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	evt, err := s.src.Event(r.Context(), id)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(evt); err != nil {
		s.log.Error("Writing response failed", logger.Fields{"request_id": requestID(r.Context())}, err)
	}
}

// handleProfileEvents streams newline-delimited JSON: first the array of
// event IDs, then each event as soon as it is scraped. Once streaming has
// started a failure can only end the stream early.
func (s *Server) handleProfileEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile := r.PathValue("profile")

	ids, err := s.src.ProfileEventIDs(ctx, profile)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	if err := enc.Encode(ids.IDs); err != nil {
		return
	}
	if flusher != nil {
		flusher.Flush()
	}

	for _, id := range ids.IDs {
		evt, err := s.src.Event(ctx, id)
		if err != nil {
			s.log.Error("Profile stream aborted", logger.Fields{
				"request_id": requestID(ctx),
				"profile":    profile,
				"event_id":   id,
			}, err)
			return
		}
		if err := enc.Encode(evt); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	id := requestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", logger.Fields{"request_id": id, "status": status}, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), RequestID: id}) // nolint:errcheck
}

// statusFor maps scrape errors to HTTP status codes. A page whose structure
// changed is the upstream's fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrStructure):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
