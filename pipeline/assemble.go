package pipeline

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// frameCounterRe matches the encoded-frame counter ffmpeg prints on stderr.
var frameCounterRe = regexp.MustCompile(`frame=\s*(\d+)`)

// Assembler turns the accumulated frames under a directory into one H.264
// video via the external ffmpeg binary, then deletes the consumed frames.
type Assembler struct {
	ffmpeg  string
	scratch string // manifest file location, outside the frame tree
	sink    Sink
	logger  Logger

	// encode runs one encoder invocation; replaced in tests.
	encode func(manifest, outFile string, fps, totalFrames int) error
}

// NewAssembler creates an assembler using the ffmpeg binary at ffmpegPath
// and scratchFile for the concat manifest.
func NewAssembler(ffmpegPath, scratchFile string, sink Sink, logger Logger) *Assembler {
	a := &Assembler{
		ffmpeg:  ffmpegPath,
		scratch: scratchFile,
		sink:    sink,
		logger:  logger,
	}
	a.encode = a.runEncoder
	return a
}

// Assemble collects every frame under inputDir in chronological order,
// encodes them into inputDir/output.mp4, and on success deletes the consumed
// frames plus any directories left empty. On encoder failure the frames are
// preserved for the next cycle.
func (a *Assembler) Assemble(inputDir string, fps int) (string, error) {
	frames, err := ListFrames(inputDir)
	if err != nil {
		return "", fmt.Errorf("enumerate frames: %w", err)
	}
	if len(frames) == 0 {
		return "", ErrNoFrames
	}
	a.logger.Printf("Assembling %d frames from %s", len(frames), inputDir)

	if err := os.WriteFile(a.scratch, []byte(buildManifest(frames)), 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}

	outFile := filepath.Join(inputDir, OutputVideoName)
	if err := a.encode(a.scratch, outFile, fps, len(frames)); err != nil {
		return "", err
	}

	Message(a.sink, ScopeCapture, "Video created: "+outFile)

	if err := DeleteFrames(inputDir, frames); err != nil {
		a.logger.Printf("Assembly: frame cleanup error: %v", err)
	}
	return outFile, nil
}

// buildManifest writes one concat entry per frame with a fixed one-second
// display duration. Entries are absolute, because the concat demuxer resolves
// relative ones against the manifest's own directory rather than the frame
// store, and use forward slashes, which it accepts on every platform.
func buildManifest(frames []string) string {
	var b strings.Builder
	for _, frame := range frames {
		if abs, err := filepath.Abs(frame); err == nil {
			frame = abs
		}
		b.WriteString("file '")
		b.WriteString(filepath.ToSlash(frame))
		b.WriteString("'\nduration 1\n")
	}
	return b.String()
}

// runEncoder drives ffmpeg over the manifest and relays encode progress
// parsed from its stderr frame counter.
func (a *Assembler) runEncoder(manifest, outFile string, fps, totalFrames int) error {
	cmd := exec.Command(a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c:v", "libx264",
		"-crf", "17",
		"-preset", "veryslow",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
		"-an",
		outFile,
	)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("encoder stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start encoder: %w", err)
	}

	progress := newProgressTracker(a.sink, ScopeCapture, "Creating video")
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		buf := make([]byte, 4096)
		for {
			n, err := stderr.Read(buf)
			if n > 0 {
				if matches := frameCounterRe.FindAllSubmatch(buf[:n], -1); len(matches) > 0 {
					encoded, _ := strconv.Atoi(string(matches[len(matches)-1][1]))
					progress.Update(encodePercent(encoded, totalFrames))
				}
			}
			if err != nil {
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	<-readDone

	if waitErr != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, waitErr)
	}
	return nil
}

// encodePercent maps an encoded-frame count to 0..100.
func encodePercent(encoded, total int) int {
	if total <= 0 {
		return 0
	}
	percent := int(math.Round(float64(encoded) / float64(total) * 100))
	if percent > 100 {
		percent = 100
	}
	return percent
}
