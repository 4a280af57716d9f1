package main

import "time"

// =============================================================================
// Default Configuration Values
// =============================================================================

const (
	DefaultPort            = 8080
	DefaultFFmpegPath      = "ffmpeg"
	DefaultCaptureInterval = 60 // seconds between frame grabs
	DefaultFPS             = 1  // frame rate of the assembled video
	DefaultUploadFrequency = 1  // fire at midnight only
	DefaultSheetTitle      = "Uploads"
)

// =============================================================================
// Server Timeouts
// =============================================================================

const (
	ServerReadTimeout       = 30 * time.Second  // 30s max to read entire request body
	ServerIdleTimeout       = 120 * time.Second // 2min max idle before closing connection
	ServerReadHeaderTimeout = 10 * time.Second  // 10s max to read HTTP headers
	ServerWriteTimeout      = 0                 // 0 = no timeout (needed for the event stream)

	HTTPMaxHeaderBytes = 1 << 20 // 1MB = maximum HTTP header size (security limit)

	ShutdownTimeout = 5 * time.Second
)

// =============================================================================
// Event Stream
// =============================================================================

const (
	// EventHistorySize is how many recent events /api/status reports.
	EventHistorySize = 100

	// EventWriteTimeout bounds a single websocket write; a client that
	// cannot keep up is dropped rather than backpressuring the pipeline.
	EventWriteTimeout = 5 * time.Second

	// StreamTokenTTL is the lifetime of a websocket stream token.
	StreamTokenTTL = time.Hour
)

// =============================================================================
// App Data Files
// =============================================================================

const (
	ConfigFileName   = "lapsecast/config.json"
	TokenFileName    = "lapsecast/token.json"
	ManifestFileName = "lapsecast/frames_list.tmp"
	FramesDirName    = "lapsecast/frames"
)
