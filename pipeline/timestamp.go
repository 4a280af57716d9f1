package pipeline

import (
	"path/filepath"
	"time"
)

// Timestamp layouts for the date/hour/second frame hierarchy. Lexicographic
// order of these names matches chronological order, which assembly relies on
// when it sorts the manifest.
const (
	dateLayout   = "2006-01-02"
	hourLayout   = "2006-01-02_15"
	secondLayout = "2006-01-02_15-04-05"
)

// FrameExt is the fixed extension for captured frames.
const FrameExt = ".png"

// OutputVideoName is the assembled video filename inside the input folder.
const OutputVideoName = "output.mp4"

// framePath returns the date/hour partition directory and the full frame
// path for a capture at t. Captures within the same second overwrite each
// other, which is acceptable at the minimum one-second cadence.
func framePath(root string, t time.Time) (dir, file string) {
	dir = filepath.Join(root, t.Format(dateLayout), t.Format(hourLayout))
	file = filepath.Join(dir, t.Format(secondLayout)+FrameExt)
	return dir, file
}

// VideoTitle returns the upload title for a cycle starting at t.
func VideoTitle(t time.Time) string {
	return t.Format(secondLayout)
}
