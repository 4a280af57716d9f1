package main

import (
	"encoding/json"
	"net/http"
)

type ScheduleStartRequest struct {
	Frequency int    `json:"frequency"`
	InputDir  string `json:"input_dir"`
	FPS       int    `json:"fps"`
}

func (s *APIServer) handleScheduleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScheduleStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Frequency == 0 {
		req.Frequency = s.config.UploadFrequency
	}
	if req.InputDir == "" {
		req.InputDir = s.config.OutputDir
	}
	if req.FPS == 0 {
		req.FPS = s.config.FPS
	}
	if req.FPS < 1 {
		http.Error(w, "fps must be at least 1", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule != nil {
		http.Error(w, "Upload schedule already running", http.StatusConflict)
		return
	}

	schedule, err := s.scheduler.Start(req.Frequency, req.InputDir, req.FPS)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.schedule = schedule

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "upload schedule started",
	})
}

func (s *APIServer) handleScheduleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == nil {
		http.Error(w, "Upload schedule not running", http.StatusConflict)
		return
	}

	// Future firings are cancelled; a cycle in flight runs to completion
	s.schedule.Stop()
	s.schedule = nil

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "upload schedule stopped",
	})
}
