// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the external archiver tools.
package check

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/backmassage/packmaster/internal/config"
	"github.com/backmassage/packmaster/internal/sevenzip"
)

// ErrSevenZipNotFound is returned by CheckDeps when the archiver is missing.
var ErrSevenZipNotFound = errors.New("7z not found on PATH (install 7-Zip: https://www.7-zip.org/)")

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// compressionTools are the binaries reported by --check. Only 7z is required;
// zip and rar availability is informational.
var compressionTools = []string{"7z", "zip", "rar"}

// RunCheck runs the interactive --check flow: prints availability and paths of
// the compression tools, the 7z version banner, and a smoke-test archive round
// trip. Missing optional tools only warn. Returns false when the required
// archiver is unusable.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== Checking compression tools ===")

	ok := true
	for _, tool := range compressionTools {
		path, err := exec.LookPath(tool)
		if err != nil {
			if tool == sevenzip.Binary {
				log.Error("%s NOT found on PATH (required)", tool)
				ok = false
			} else {
				log.Warn("%s NOT found on PATH", tool)
			}
			continue
		}
		log.Success("%s found at: %s", tool, path)
	}
	if !ok {
		return false
	}

	if v := sevenZipVersion(); v != "" {
		log.Info("7z version: %s", v)
	}

	if err := smokeTest(context.Background()); err != nil {
		log.Error("7z smoke test failed: %v", err)
		return false
	}
	log.Success("7z smoke test passed (create + verify)")
	return true
}

// CheckDeps is the pre-pipeline validation: it verifies the archiver binary is
// on PATH. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(sevenzip.Binary); err != nil {
		return ErrSevenZipNotFound
	}
	return nil
}

// sevenZipVersion returns the first non-empty line of the 7z banner, or "".
// 7z prints its version header even when invoked with a bare "i" command.
func sevenZipVersion() string {
	out, err := exec.Command(sevenzip.Binary, "i").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// smokeTest creates and verifies a tiny archive in a temp directory to prove
// the archiver actually works, not just that the binary exists.
func smokeTest(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "packmaster-check-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	sample := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(sample, []byte("packmaster self-test\n"), 0o644); err != nil {
		return err
	}

	archive := filepath.Join(dir, "sample.7z")
	job := &sevenzip.Job{ArchivePath: archive, Files: []string{sample}, Level: 1}
	if res := sevenzip.Execute(ctx, job); res.Err != nil {
		return res.Err
	}
	return sevenzip.Verify(ctx, archive)
}
