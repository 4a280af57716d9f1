package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreateConfig_createsDefault(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	config, err := LoadOrCreateConfig(configPath)
	if err != nil {
		t.Fatalf("LoadOrCreateConfig: %v", err)
	}

	if config.AuthToken == "" {
		t.Error("auth token not generated")
	}
	if config.Port != DefaultPort {
		t.Errorf("port = %d, want %d", config.Port, DefaultPort)
	}
	if config.FFmpegPath != DefaultFFmpegPath {
		t.Errorf("ffmpeg path = %q", config.FFmpegPath)
	}
	if config.UploadFrequency != DefaultUploadFrequency {
		t.Errorf("upload frequency = %d", config.UploadFrequency)
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := os.Stat(config.OutputDir); err != nil {
		t.Errorf("frame store directory not created: %v", err)
	}
}

func TestLoadOrCreateConfig_loadsExisting(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	created, err := LoadOrCreateConfig(configPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := LoadOrCreateConfig(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.AuthToken != created.AuthToken {
		t.Error("auth token changed across loads")
	}
	if loaded.Port != created.Port {
		t.Errorf("port changed across loads: %d vs %d", loaded.Port, created.Port)
	}
}

func TestLoadOrCreateConfig_fillsMissingFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	// An older config with only a port and a token
	partial := map[string]interface{}{
		"port":       9090,
		"auth_token": "existing-token",
	}
	data, _ := json.Marshal(partial)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	config, err := LoadOrCreateConfig(configPath)
	if err != nil {
		t.Fatalf("LoadOrCreateConfig: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("port = %d, want 9090", config.Port)
	}
	if config.AuthToken != "existing-token" {
		t.Errorf("auth token = %q", config.AuthToken)
	}
	if config.FFmpegPath != DefaultFFmpegPath {
		t.Errorf("ffmpeg path = %q, want default", config.FFmpegPath)
	}
	if config.CaptureIntervalS != DefaultCaptureInterval {
		t.Errorf("capture interval = %d, want default", config.CaptureIntervalS)
	}
	if config.FPS != DefaultFPS {
		t.Errorf("fps = %d, want default", config.FPS)
	}
	if config.SheetTitle != DefaultSheetTitle {
		t.Errorf("sheet title = %q, want default", config.SheetTitle)
	}
}

func TestLoadOrCreateConfig_malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte("not json"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadOrCreateConfig(configPath); err == nil {
		t.Error("expected error for malformed config")
	}
}
