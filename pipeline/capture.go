package pipeline

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Capture grabs single frames from an RTSP stream on a fixed interval by
// invoking the external ffmpeg binary once per tick.
type Capture struct {
	ffmpeg string
	sink   Sink
	logger Logger

	// grab runs one grabber invocation; replaced in tests.
	grab func(source, outFile string) error
}

// NewCapture creates a capture component using the ffmpeg binary at
// ffmpegPath.
func NewCapture(ffmpegPath string, sink Sink, logger Logger) *Capture {
	c := &Capture{
		ffmpeg: ffmpegPath,
		sink:   sink,
		logger: logger,
	}
	c.grab = c.runGrabber
	return c
}

// ValidateSource checks that source is an RTSP stream address with no
// trailing whitespace.
func ValidateSource(source string) error {
	if strings.TrimRight(source, " \t\r\n") != source {
		return fmt.Errorf("stream address has trailing whitespace: %q", source)
	}
	if !strings.HasPrefix(source, "rtsp://") && !strings.HasPrefix(source, "rtsps://") {
		return fmt.Errorf("stream address must start with rtsp:// or rtsps://: %q", source)
	}
	return nil
}

// Start validates the parameters and begins capturing one frame every
// interval into the date/hour hierarchy under root. It returns the session
// handle; stopping the session cancels the timer only, an in-flight grab is
// left to finish on its own.
func (c *Capture) Start(source, root string, interval time.Duration) (*Session, error) {
	if err := ValidateSource(source); err != nil {
		return nil, err
	}
	if interval < time.Second {
		return nil, fmt.Errorf("capture interval must be at least one second, got %s", interval)
	}

	s := &Session{
		capture:  c,
		source:   source,
		root:     root,
		interval: interval,
		done:     make(chan struct{}),
	}
	go s.loop()

	Message(c.sink, ScopeCapture, "Capture started")
	c.logger.Printf("Capture started: %s every %s into %s", source, interval, root)
	return s, nil
}

// Session is one live capture run. It owns exactly one timer; cancelling it
// via Stop is the only way to end the session. No state survives a
// stop/start; restarting always creates a fresh session.
type Session struct {
	capture  *Capture
	source   string
	root     string
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// Stop cancels the session timer. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		Message(s.capture.sink, ScopeCapture, "Capture stopped")
		s.capture.logger.Printf("Capture stopped: %s", s.source)
	})
}

func (s *Session) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			// Each tick runs independently so a slow grab never delays the
			// cadence. Overlapping grabs write distinct second-named files.
			go s.captureOnce(time.Now())
		}
	}
}

// captureOnce grabs a single frame timestamped at now. A failed grab is a
// dropped frame; the next tick is unaffected.
func (s *Session) captureOnce(now time.Time) {
	dir, file := framePath(s.root, now)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.capture.logger.Printf("Capture: failed to create %s: %v", dir, err)
		return
	}

	if err := s.capture.grab(s.source, file); err != nil {
		s.capture.logger.Printf("Capture: dropped frame: %v", err)
		return
	}

	Message(s.capture.sink, ScopeCapture, "Captured: "+file)
}

// runGrabber invokes ffmpeg for one frame over TCP transport at the highest
// quality setting. Exit code 0 is the only success signal.
func (c *Capture) runGrabber(source, outFile string) error {
	cmd := exec.Command(c.ffmpeg,
		"-rtsp_transport", "tcp",
		"-i", source,
		"-vframes", "1",
		"-q:v", "1",
		outFile,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			c.logger.Debugf("Grabber output: %s", output)
		}
		return fmt.Errorf("grabber %s: %w", outFile, err)
	}
	return nil
}
