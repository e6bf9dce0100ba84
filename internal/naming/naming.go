// Package naming builds deterministic archive file names and accounts for
// split-volume output.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/packmaster/internal/config"
)

// ArchiveName returns the file name for a batch archive: "<prefix>_<num>.<ext>".
// Batch numbers are 1-based and stable across re-runs, so skipped batches
// leave gaps rather than renumbering.
func ArchiveName(prefix string, num int, format config.ArchiveFormat) string {
	return fmt.Sprintf("%s_%d.%s", prefix, num, format)
}

// ArchivePath joins the output directory with the archive name for a batch.
func ArchivePath(outputDir, prefix string, num int, format config.ArchiveFormat) string {
	return filepath.Join(outputDir, ArchiveName(prefix, num, format))
}

// ArchiveSize returns the on-disk size of an archive. When split volumes are
// in use, 7z writes "<name>.001", "<name>.002", etc. and the plain path never
// exists; in that case the volume sizes are summed.
func ArchiveSize(path string) (int64, error) {
	if fi, err := os.Stat(path); err == nil {
		return fi.Size(), nil
	}
	matches, err := filepath.Glob(path + ".*")
	if err != nil || len(matches) == 0 {
		return 0, fmt.Errorf("archive not found: %s", path)
	}
	var total int64
	var counted int
	for _, m := range matches {
		if !isVolumeSuffix(strings.TrimPrefix(m, path+".")) {
			continue
		}
		fi, err := os.Stat(m)
		if err != nil {
			continue
		}
		total += fi.Size()
		counted++
	}
	if counted == 0 {
		return 0, fmt.Errorf("archive not found: %s", path)
	}
	return total, nil
}

// Volumes returns the sorted split-volume paths for an archive, or nil when
// the archive is a single file.
func Volumes(path string) []string {
	matches, _ := filepath.Glob(path + ".*")
	var vols []string
	for _, m := range matches {
		if isVolumeSuffix(strings.TrimPrefix(m, path+".")) {
			vols = append(vols, m)
		}
	}
	sort.Strings(vols)
	return vols
}

// isVolumeSuffix reports whether s is an all-digit 7z volume suffix ("001").
func isVolumeSuffix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
