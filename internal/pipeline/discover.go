package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover enumerates the regular files under inputDir, applying exclude glob
// patterns, and returns the paths sorted lexicographically for deterministic
// batch assignment. In flat mode only the directory itself is read and
// patterns match the base name; in recursive mode subdirectories are walked
// and patterns match either the base name or the full path.
func Discover(inputDir string, recursive bool, excludes []string) ([]string, error) {
	if recursive {
		return discoverRecursive(inputDir, excludes)
	}
	return discoverFlat(inputDir, excludes)
}

func discoverFlat(inputDir string, excludes []string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matchesAny(excludes, e.Name()) {
			continue
		}
		files = append(files, filepath.Join(inputDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func discoverRecursive(inputDir string, excludes []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matchesAny(excludes, d.Name()) || matchesAny(excludes, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// matchesAny reports whether name matches any of the glob patterns.
// Malformed patterns are rejected by config validation before we get here.
func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
