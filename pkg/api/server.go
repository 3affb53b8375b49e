package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lumina-devices/luminad/pkg/controller"
	"github.com/lumina-devices/luminad/pkg/log"
	"github.com/lumina-devices/luminad/pkg/metrics"
	"github.com/lumina-devices/luminad/pkg/scheduler"
	"github.com/lumina-devices/luminad/pkg/storage"
	"github.com/lumina-devices/luminad/pkg/types"
	"github.com/rs/zerolog"
)

// Server exposes the sync protocol and device surface over HTTP.
type Server struct {
	controller *controller.Controller
	scheduler  *scheduler.Scheduler
	mux        *http.ServeMux
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer creates the API server. The scheduler is optional and only
// feeds the readiness payload.
func NewServer(ctrl *controller.Controller, sched *scheduler.Scheduler) *Server {
	mux := http.NewServeMux()
	s := &Server{
		controller: ctrl,
		scheduler:  sched,
		mux:        mux,
		logger:     log.WithComponent("api"),
	}

	// Register endpoints
	mux.HandleFunc("/api/routines/sync", s.instrument("sync", s.syncHandler))
	mux.HandleFunc("/api/routines", s.instrument("list", s.listHandler))
	mux.HandleFunc("/api/time", s.instrument("time", s.timeHandler))
	mux.HandleFunc("/api/device", s.instrument("device", s.deviceHandler))
	mux.HandleFunc("/api/device/power", s.instrument("power", s.powerHandler))
	mux.HandleFunc("/api/device/channels", s.instrument("channels", s.channelsHandler))
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.Handle("/metrics", metrics.Handler())

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("API server listening")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)
}

// Handler returns the HTTP handler for embedding in tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h(recorder, r)

		timer.ObserveDurationVec(metrics.APIRequestDuration, name)
		metrics.APIRequestsTotal.WithLabelValues(name, strconv.Itoa(recorder.status)).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// syncHandler implements POST /api/routines/sync: the bulk replace.
func (s *Server) syncHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SyncRequestsTotal.WithLabelValues("malformed").Inc()
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	// The raw list length is checked before per-entry filtering: an
	// oversized batch is rejected outright, store untouched
	if len(req.Routines) > types.MaxRoutines {
		metrics.SyncRequestsTotal.WithLabelValues("too_large").Inc()
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("too many routines: %d exceeds maximum of %d", len(req.Routines), types.MaxRoutines),
		})
		return
	}

	records, rejections := decodeSyncRoutines(req.Routines)
	for _, rejection := range rejections {
		s.logger.Warn().
			Int("entry", rejection.Index).
			Str("field", rejection.Field).
			Str("reason", rejection.Reason).
			Msg("rejected sync entry")
	}

	accepted, err := s.controller.ReplaceRoutines(records)
	if err != nil {
		if errors.Is(err, storage.ErrBatchTooLarge) {
			metrics.SyncRequestsTotal.WithLabelValues("too_large").Inc()
			s.writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: err.Error()})
			return
		}
		metrics.SyncRequestsTotal.WithLabelValues("error").Inc()
		s.writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: err.Error()})
		return
	}

	metrics.SyncRequestsTotal.WithLabelValues("ok").Inc()
	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("stored %d routines", accepted),
		Data:    SyncData{RoutineCount: accepted},
	})
}

// listHandler implements GET /api/routines.
func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := s.controller.Routines()
	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "ok",
		Data: ListData{
			RoutineCount: len(records),
			Routines:     renderRoutines(records),
		},
	})
}

// timeHandler implements POST /api/time: the manual time set that flips
// the time source to synchronized.
func (s *Server) timeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	if req.Timestamp <= 0 {
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: "timestamp must be a positive unix time",
		})
		return
	}

	s.controller.SetTime(req.Timestamp)
	s.writeJSON(w, http.StatusOK, Response{Success: true, Message: "time set"})
}

// deviceHandler implements GET /api/device.
func (s *Server) deviceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.controller.Status()
	channels := make([]int, types.NumChannels)
	for i, v := range status.Channels {
		channels[i] = int(v)
	}

	s.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "ok",
		Data: DeviceData{
			IsOn:          status.IsOn,
			Channels:      channels,
			Synchronized:  status.Synchronized,
			RoutineCount:  status.RoutineCount,
			UptimeSeconds: status.UptimeSeconds,
		},
	})
}

// powerHandler implements POST /api/device/power.
func (s *Server) powerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	s.controller.SetPower(req.On)
	s.writeJSON(w, http.StatusOK, Response{Success: true, Message: "power set"})
}

// channelsHandler implements POST /api/device/channels.
func (s *Server) channelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChannelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	values := make([]uint8, 0, types.NumChannels)
	for i := 0; i < types.NumChannels && i < len(req.Channels); i++ {
		values = append(values, clampByte(req.Channels[i]))
	}
	s.controller.SetChannels(values)
	s.writeJSON(w, http.StatusOK, Response{Success: true, Message: "channels set"})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// Version is set from the build by cmd/luminad.
var Version = "dev"

// healthHandler implements the /health endpoint: a plain liveness check.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
	})
}

// readyHandler implements the /ready endpoint: storage must be
// reachable before the device accepts sync traffic.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]string)
	ready := true
	var message string

	if err := s.controller.Store().Ping(); err != nil {
		checks["storage"] = fmt.Sprintf("error: %v", err)
		ready = false
		message = "Storage not accessible"
	} else {
		checks["storage"] = "ok"
	}

	if s.scheduler != nil {
		checks["scheduler"] = string(s.scheduler.State())
	}
	if s.controller.TimeSource().Synchronized() {
		checks["time"] = "synchronized"
	} else {
		// Unsynchronized time is a degraded-but-ready state: the sync
		// protocol is exactly how the app fixes it
		checks["time"] = "unsynchronized"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not ready"
		statusCode = http.StatusServiceUnavailable
	}

	s.writeJSON(w, statusCode, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
