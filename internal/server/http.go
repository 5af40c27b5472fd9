// Package server exposes the engine's HTTP surface: event ingestion, alert
// query/resolve, metrics, and health.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"security-core/engine/internal/audit"
	"security-core/engine/internal/correlation"
	eventdomain "security-core/engine/internal/event/domain"
)

// ServiceName is reported by GET /health.
const ServiceName = "security-core"

// Server wires the correlation service and metrics handler to HTTP routes.
type Server struct {
	svc     *correlation.Service
	metrics http.Handler
}

// New returns a Server. metrics may be nil; then GET /metrics returns 404.
func New(svc *correlation.Service, metrics http.Handler) *Server {
	return &Server{svc: svc, metrics: metrics}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLog, traced)
	r.HandleFunc("/events/camera", s.handleCameraEvent).Methods(http.MethodPost)
	r.HandleFunc("/events/pos", s.handlePosEvent).Methods(http.MethodPost)
	r.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id}/resolve", s.handleResolve).Methods(http.MethodPost)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleCameraEvent(w http.ResponseWriter, r *http.Request) {
	var evt eventdomain.CameraEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	// Events posted without an observation time take the server receive time.
	if evt.ObservedAt.IsZero() {
		evt.ObservedAt = time.Now().UTC()
	}
	if err := s.svc.IngestCamera(r.Context(), &evt); err != nil {
		writeIngestError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handlePosEvent(w http.ResponseWriter, r *http.Request) {
	var evt eventdomain.PosEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if evt.ObservedAt.IsZero() {
		evt.ObservedAt = time.Now().UTC()
	}
	if err := s.svc.IngestPos(r.Context(), &evt); err != nil {
		writeIngestError(w, err)
		return
	}
	writeOK(w)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Alerts())
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.Resolve(r.Context(), id); err != nil {
		log.Printf("server: resolve %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "audit write failed")
		return
	}
	writeOK(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
}

// writeIngestError maps ingest-path sentinels to status codes: validation is
// the client's fault, an audit write failure is fatal server-side.
func writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventdomain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, audit.ErrWriteFailed):
		log.Printf("server: ingest: %v", err)
		writeError(w, http.StatusInternalServerError, "audit write failed")
	default:
		log.Printf("server: ingest: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: write response: %v", err)
	}
}
