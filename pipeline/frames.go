package pipeline

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ListFrames walks root recursively and returns every frame file, sorted
// lexicographically. With timestamp-derived names that is chronological
// order. A missing root is treated as zero frames, not an error.
func ListFrames(root string) ([]string, error) {
	var frames []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == FrameExt {
			frames = append(frames, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)
	return frames, nil
}

// DeleteFrames removes the given files and prunes every directory left empty
// as a result, walking upward from each file's parent until a non-empty
// directory or root is reached. Directories that still hold other files are
// untouched. Removal errors do not stop the sweep; the first one is returned.
func DeleteFrames(root string, frames []string) error {
	var firstErr error
	parents := make(map[string]struct{})
	for _, frame := range frames {
		if err := os.Remove(frame); err != nil && firstErr == nil {
			firstErr = err
		}
		parents[filepath.Dir(frame)] = struct{}{}
	}
	for dir := range parents {
		pruneEmptyDirs(root, dir)
	}
	return firstErr
}

// pruneEmptyDirs removes dir if empty, then its parent, and so on up to but
// not including root.
func pruneEmptyDirs(root, dir string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); dir != root; {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
