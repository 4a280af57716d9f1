package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"lapsecast/gapi"
	"lapsecast/pipeline"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// googleAuth adapts the Google API service to the scheduler's
// Authenticator interface.
type googleAuth struct {
	svc *gapi.Service
}

func (g googleAuth) Authorize(ctx context.Context) (pipeline.Client, error) {
	client, err := g.svc.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Parse command-line flags
	var (
		configPath = flag.String("config", "", "Path to config file (default: XDG config directory)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	// Use XDG config directory if not specified
	if *configPath == "" {
		var err error
		*configPath, err = xdg.ConfigFile(ConfigFileName)
		if err != nil {
			// Fallback to legacy location
			*configPath = filepath.Join(os.ExpandEnv("$HOME"), ".config", ConfigFileName)
		}
	}

	// Create directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(*configPath), 0755); err != nil {
		log.Fatalf("Failed to create config directory: %v", err)
	}

	// Load or create config
	config, err := LoadOrCreateConfig(*configPath)
	if err != nil {
		NewLogger(false).Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := NewLogger(*verbose || config.Verbose)

	logger.Printf("Starting lapsecast...")
	logger.Printf("Listening on port %d", config.Port)
	logger.Printf("Frame store: %s", config.OutputDir)
	logger.Printf("Capture interval: %ds, video fps: %d, upload frequency: %d",
		config.CaptureIntervalS, config.FPS, config.UploadFrequency)

	// App-data files for the Google token and the encoder manifest
	tokenFile, err := xdg.DataFile(TokenFileName)
	if err != nil {
		logger.Fatalf("Failed to resolve token file path: %v", err)
	}
	manifestFile, err := xdg.CacheFile(ManifestFileName)
	if err != nil {
		logger.Fatalf("Failed to resolve manifest scratch path: %v", err)
	}

	// Event hub is the pipeline's observer boundary
	hub := NewHub(logger)

	// Pipeline components
	capture := pipeline.NewCapture(config.FFmpegPath, hub, logger)
	assembler := pipeline.NewAssembler(config.FFmpegPath, manifestFile, hub, logger)
	google := gapi.NewService(config.SecretFile, tokenFile, config.SheetID, config.SheetTitle, logger)
	scheduler := pipeline.NewScheduler(assembler, googleAuth{svc: google}, config.SheetEnabled, hub, logger)

	// Create API server
	server := NewAPIServer(config, capture, scheduler, hub, google.DeleteToken, logger)

	// Start HTTP server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverDone:
		logger.Printf("Server stopped: %v", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
	}

	// Cleanup
	logger.Printf("Shutting down...")
	server.Stop()
}
