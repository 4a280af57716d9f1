package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestAssembler(t *testing.T, sink Sink) *Assembler {
	t.Helper()
	scratch := filepath.Join(t.TempDir(), "frames_list.tmp")
	if sink == nil {
		sink = &recordingSink{}
	}
	return NewAssembler("ffmpeg", scratch, sink, testLogger{})
}

func TestAssemble_emptyInput(t *testing.T) {
	a := newTestAssembler(t, nil)
	encoderRan := false
	a.encode = func(manifest, outFile string, fps, total int) error {
		encoderRan = true
		return nil
	}

	_, err := a.Assemble(t.TempDir(), 1)
	if !errors.Is(err, ErrNoFrames) {
		t.Fatalf("err = %v, want ErrNoFrames", err)
	}
	if encoderRan {
		t.Error("encoder must not run with zero frames")
	}
}

func TestAssemble_manifestOrderAndDurations(t *testing.T) {
	root := t.TempDir()
	var frames []string
	for _, name := range []string{
		"2024-05-01/2024-05-01_10/2024-05-01_10-00-10.png",
		"2024-05-01/2024-05-01_10/2024-05-01_10-00-05.png",
		"2024-05-01/2024-05-01_09/2024-05-01_09-59-55.png",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		writeFrame(t, path)
		frames = append(frames, path)
	}

	a := newTestAssembler(t, nil)
	var manifestContent string
	a.encode = func(manifest, outFile string, fps, total int) error {
		data, err := os.ReadFile(manifest)
		if err != nil {
			t.Fatalf("read manifest: %v", err)
		}
		manifestContent = string(data)
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if fps != 2 {
			t.Errorf("fps = %d, want 2", fps)
		}
		return os.WriteFile(outFile, []byte("mp4"), 0644)
	}

	if _, err := a.Assemble(root, 2); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(manifestContent), "\n")
	if len(lines) != 6 {
		t.Fatalf("manifest has %d lines, want 6:\n%s", len(lines), manifestContent)
	}
	// Chronological order: 09-59-55, 10-00-05, 10-00-10
	wantOrder := []string{"09-59-55", "10-00-05", "10-00-10"}
	for i, stamp := range wantOrder {
		fileLine := lines[i*2]
		if !strings.HasPrefix(fileLine, "file '") || !strings.Contains(fileLine, stamp) {
			t.Errorf("line %d = %q, want file entry containing %q", i*2, fileLine, stamp)
		}
		if lines[i*2+1] != "duration 1" {
			t.Errorf("line %d = %q, want %q", i*2+1, lines[i*2+1], "duration 1")
		}
	}
}

func TestAssemble_manifestPathsAreAbsolute(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	})
	writeFrame(t, filepath.Join("frames", "2024-05-01", "2024-05-01_10", "2024-05-01_10-00-00.png"))

	a := newTestAssembler(t, nil)
	var manifestContent string
	a.encode = func(manifest, outFile string, fps, total int) error {
		data, err := os.ReadFile(manifest)
		if err != nil {
			t.Fatalf("read manifest: %v", err)
		}
		manifestContent = string(data)
		return os.WriteFile(outFile, []byte("mp4"), 0644)
	}

	// A relative frame store must still yield absolute manifest entries;
	// the demuxer resolves relative ones against the manifest's directory.
	if _, err := a.Assemble("frames", 1); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	line := strings.Split(manifestContent, "\n")[0]
	entry := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
	if !filepath.IsAbs(filepath.FromSlash(entry)) {
		t.Errorf("manifest entry not absolute: %q", entry)
	}
	if !strings.Contains(entry, "2024-05-01_10-00-00") {
		t.Errorf("manifest entry = %q, want the frame timestamp", entry)
	}
}

func TestAssemble_successDeletesFrames(t *testing.T) {
	root := t.TempDir()
	var frames []string
	for i := 0; i < 3; i++ {
		path := filepath.Join(root, "2024-05-01", "2024-05-01_10",
			fmt.Sprintf("2024-05-01_10-00-0%d.png", i))
		writeFrame(t, path)
		frames = append(frames, path)
	}

	sink := &recordingSink{}
	a := newTestAssembler(t, sink)
	a.encode = func(manifest, outFile string, fps, total int) error {
		return os.WriteFile(outFile, []byte("mp4"), 0644)
	}

	videoFile, err := a.Assemble(root, 1)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if videoFile != filepath.Join(root, OutputVideoName) {
		t.Errorf("videoFile = %q", videoFile)
	}
	if _, err := os.Stat(videoFile); err != nil {
		t.Fatalf("output video missing: %v", err)
	}

	for _, frame := range frames {
		if _, err := os.Stat(frame); !os.IsNotExist(err) {
			t.Errorf("frame %s not deleted", frame)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "2024-05-01")); !os.IsNotExist(err) {
		t.Error("emptied date directory not pruned")
	}

	var found bool
	for _, msg := range sink.messages() {
		if strings.HasPrefix(msg, "Video created: ") {
			found = true
		}
	}
	if !found {
		t.Error("missing video-created message")
	}
}

func TestAssemble_failurePreservesFrames(t *testing.T) {
	root := t.TempDir()
	frame := filepath.Join(root, "2024-05-01", "2024-05-01_10", "2024-05-01_10-00-00.png")
	writeFrame(t, frame)

	a := newTestAssembler(t, nil)
	a.encode = func(manifest, outFile string, fps, total int) error {
		return fmt.Errorf("%w: exit status 1", ErrEncodeFailed)
	}

	_, err := a.Assemble(root, 1)
	if !errors.Is(err, ErrEncodeFailed) {
		t.Fatalf("err = %v, want ErrEncodeFailed", err)
	}
	if _, err := os.Stat(frame); err != nil {
		t.Errorf("frame must survive a failed encode: %v", err)
	}
}

func TestEncodePercent(t *testing.T) {
	tests := []struct {
		encoded, total, want int
	}{
		{0, 10, 0},
		{5, 10, 50},
		{10, 10, 100},
		{15, 10, 100}, // counter may overshoot with duplicated frames
		{1, 3, 33},
		{2, 3, 67},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := encodePercent(tt.encoded, tt.total); got != tt.want {
			t.Errorf("encodePercent(%d, %d) = %d, want %d", tt.encoded, tt.total, got, tt.want)
		}
	}
}
