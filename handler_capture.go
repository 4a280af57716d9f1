package main

import (
	"encoding/json"
	"net/http"
	"time"
)

type CaptureStartRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	IntervalS   int    `json:"interval_s"`
}

func (s *APIServer) handleCaptureStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CaptureStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Fall back to configured values for anything the request omits
	if req.Source == "" {
		req.Source = s.config.RTSPURL
	}
	if req.Destination == "" {
		req.Destination = s.config.OutputDir
	}
	if req.IntervalS == 0 {
		req.IntervalS = s.config.CaptureIntervalS
	}
	if req.IntervalS < 1 {
		http.Error(w, "interval_s must be at least 1", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		http.Error(w, "Capture already running", http.StatusConflict)
		return
	}

	session, err := s.capture.Start(req.Source, req.Destination, time.Duration(req.IntervalS)*time.Second)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.session = session

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "capture started",
	})
}

func (s *APIServer) handleCaptureStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		http.Error(w, "Capture not running", http.StatusConflict)
		return
	}

	s.session.Stop()
	s.session = nil

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "capture stopped",
	})
}
