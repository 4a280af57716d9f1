package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"lapsecast/pipeline"
)

// APIServer exposes the capture/upload pipeline over an authenticated HTTP
// API: status, start/stop controls, and a websocket event stream.
type APIServer struct {
	config    *Config
	logger    *Logger
	auth      *AuthMiddleware
	hub       *Hub
	capture   *pipeline.Capture
	scheduler *pipeline.Scheduler
	resetFunc func() error // deletes the persisted Google token
	server    *http.Server
	startTime time.Time

	mu       sync.Mutex
	session  *pipeline.Session
	schedule *pipeline.Schedule
}

type StatusResponse struct {
	Status          string           `json:"status"`
	CaptureRunning  bool             `json:"capture_running"`
	ScheduleRunning bool             `json:"schedule_running"`
	CycleInFlight   bool             `json:"cycle_in_flight"`
	FrameCount      int              `json:"frame_count"`
	RecentEvents    []pipeline.Event `json:"recent_events"`
	Uptime          string           `json:"uptime"`
}

func NewAPIServer(config *Config, capture *pipeline.Capture, scheduler *pipeline.Scheduler, hub *Hub, resetFunc func() error, logger *Logger) *APIServer {
	return &APIServer{
		config:    config,
		logger:    logger,
		auth:      NewAuthMiddleware(config.AuthToken),
		hub:       hub,
		capture:   capture,
		scheduler: scheduler,
		resetFunc: resetFunc,
		startTime: time.Now(),
	}
}

func (s *APIServer) Start() error {
	mux := http.NewServeMux()

	// Health check (no auth)
	mux.HandleFunc("/health", s.handleHealth)

	// API endpoints (with auth)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/status", s.handleStatus)
	apiMux.HandleFunc("/api/capture/start", s.handleCaptureStart)
	apiMux.HandleFunc("/api/capture/stop", s.handleCaptureStop)
	apiMux.HandleFunc("/api/schedule/start", s.handleScheduleStart)
	apiMux.HandleFunc("/api/schedule/stop", s.handleScheduleStop)
	apiMux.HandleFunc("/api/events", s.handleEvents)
	apiMux.HandleFunc("/api/auth/token", s.handleGetStreamToken)
	apiMux.HandleFunc("/api/config", s.handleGetConfig)
	apiMux.HandleFunc("/api/reset", s.handleReset)

	mux.Handle("/api/", s.auth.Check(apiMux))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           mux,
		ReadTimeout:       ServerReadTimeout,
		WriteTimeout:      ServerWriteTimeout,
		IdleTimeout:       ServerIdleTimeout,
		ReadHeaderTimeout: ServerReadHeaderTimeout,
		MaxHeaderBytes:    HTTPMaxHeaderBytes,
	}

	s.logger.Printf("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down and stops any running capture session and
// upload schedule. An upload cycle already in flight runs to completion.
func (s *APIServer) Stop() {
	s.mu.Lock()
	if s.session != nil {
		s.session.Stop()
		s.session = nil
	}
	if s.schedule != nil {
		s.schedule.Stop()
		s.schedule = nil
	}
	s.mu.Unlock()

	s.hub.Close()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
