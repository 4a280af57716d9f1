package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

type Config struct {
	Port             int    `json:"port"`
	AuthToken        string `json:"auth_token"`
	FFmpegPath       string `json:"ffmpeg_path"`
	RTSPURL          string `json:"rtsp_url"`
	OutputDir        string `json:"output_dir"`         // frame store root
	CaptureIntervalS int    `json:"capture_interval_s"` // seconds between grabs
	FPS              int    `json:"fps"`                // assembled video frame rate
	UploadFrequency  int    `json:"upload_frequency"`   // 1..6 hour-of-day selector
	SecretFile       string `json:"google_secret_file"` // user-supplied OAuth client secret
	SheetEnabled     bool   `json:"sheet_enabled"`
	SheetID          string `json:"sheet_id"`
	SheetTitle       string `json:"sheet_title"`
	Verbose          bool   `json:"verbose"`
}

func DefaultConfig() *Config {
	// Use XDG state directory for the frame store
	framesDir, err := xdg.StateFile(FramesDirName)
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		framesDir = filepath.Join(homeDir, ".local/state", FramesDirName)
	}

	return &Config{
		Port:             DefaultPort,
		FFmpegPath:       DefaultFFmpegPath,
		OutputDir:        framesDir,
		CaptureIntervalS: DefaultCaptureInterval,
		FPS:              DefaultFPS,
		UploadFrequency:  DefaultUploadFrequency,
		SheetTitle:       DefaultSheetTitle,
	}
}

func LoadOrCreateConfig(configPath string) (*Config, error) {
	// If config exists, load it
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		config := &Config{}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		// Set defaults for fields missing from older configs
		if config.FFmpegPath == "" {
			config.FFmpegPath = DefaultFFmpegPath
		}
		if config.CaptureIntervalS == 0 {
			config.CaptureIntervalS = DefaultCaptureInterval
		}
		if config.FPS == 0 {
			config.FPS = DefaultFPS
		}
		if config.UploadFrequency == 0 {
			config.UploadFrequency = DefaultUploadFrequency
		}
		if config.SheetTitle == "" {
			config.SheetTitle = DefaultSheetTitle
		}

		return config, nil
	}

	// Create default config
	config := DefaultConfig()

	// Generate auth token if not present
	if config.AuthToken == "" {
		config.AuthToken = generateToken()
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Ensure frame store directory exists
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}

	// Write default config
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created default config at %s\n", configPath)
	fmt.Printf("Auth token: %s\n", config.AuthToken)

	return config, nil
}
