package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lapsecast/pipeline"
)

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

func (s *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	frames, err := pipeline.ListFrames(s.config.OutputDir)
	if err != nil {
		http.Error(w, "Failed to enumerate frames", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	captureRunning := s.session != nil
	scheduleRunning := s.schedule != nil
	s.mu.Unlock()

	status := StatusResponse{
		Status:          "ok",
		CaptureRunning:  captureRunning,
		ScheduleRunning: scheduleRunning,
		CycleInFlight:   s.scheduler.InFlight(),
		FrameCount:      len(frames),
		RecentEvents:    s.hub.Recent(),
		Uptime:          fmt.Sprintf("%d seconds", int(time.Since(s.startTime).Seconds())),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *APIServer) handleGetStreamToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.GenerateStreamToken()
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"token": token,
	})
}

func (s *APIServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	// Auth token is deliberately omitted from the response
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"rtsp_url":           s.config.RTSPURL,
		"output_dir":         s.config.OutputDir,
		"capture_interval_s": s.config.CaptureIntervalS,
		"fps":                s.config.FPS,
		"upload_frequency":   s.config.UploadFrequency,
		"sheet_enabled":      s.config.SheetEnabled,
		"sheet_title":        s.config.SheetTitle,
	})
}

// handleReset deletes the persisted Google token, forcing interactive
// consent on the next upload cycle.
func (s *APIServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.resetFunc(); err != nil {
		s.logger.Printf("Reset failed: %v", err)
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		return
	}

	s.logger.Printf("Persisted Google token deleted")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "reset",
	})
}
