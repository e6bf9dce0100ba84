// Package config holds runtime configuration: defaults, CLI flag parsing,
// YAML config file overlay, and validation. All defaults match the legacy
// batch-compress script (v2.0.0) for parity.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// --- Enum types for validated string fields ---

// ArchiveFormat selects the archive container produced by 7z.
type ArchiveFormat string

const (
	Format7z  ArchiveFormat = "7z"  // 7-Zip container (default).
	FormatZip ArchiveFormat = "zip" // Zip container (compatibility).
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// PrefixInvalidChars are rejected in archive name prefixes. They are either
// path separators or reserved on common filesystems.
const PrefixInvalidChars = `<>:"/\|?*`

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] (and optionally a --config file) before being
// passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string
	OutputDir string

	// Batching.
	BatchSize int    // Default: 80. Files per archive.
	Prefix    string // Default: "archive". Archive filename prefix.

	// Archiver settings.
	Format           ArchiveFormat // Default: "7z".
	CompressionLevel int           // Default: 5. Passed as -mx=N (0-9).
	Password         string        // Optional. Enables header encryption too.
	SplitSize        string        // Optional volume size, e.g. "100M".

	// File selection.
	Exclude   []string // Glob patterns, repeatable.
	Recursive bool     // Scan subdirectories.

	// Execution.
	Threads      int  // Default: 1. Parallel compression workers.
	AutoConfirm  bool // Skip the confirmation prompt.
	DryRun       bool
	SkipExisting bool // Default: true. Cleared by --force.
	Verify       bool // Run "7z t" on each created archive.

	// Reporting.
	MetadataFile string // Optional JSON manifest path.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// Config file (applied during flag parsing).
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults matching the legacy
// batch-compress behavior. Used as the base before [ParseFlags] applies CLI
// and config-file overrides.
func DefaultConfig() Config {
	return Config{
		BatchSize:        80,
		Prefix:           "archive",
		Format:           Format7z,
		CompressionLevel: 5,
		Threads:          1,
		SkipExisting:     true,
		ColorMode:        ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, numeric ranges, the prefix, and the split size.
// When not in CheckOnly mode, it also requires that both input and output
// directory paths are non-empty.
func (c *Config) Validate() error {
	switch c.Format {
	case Format7z, FormatZip:
		// valid
	default:
		return errors.New("invalid format (use '7z' or 'zip')")
	}

	if c.BatchSize < 1 {
		return errors.New("batch size must be at least 1")
	}
	if c.Threads < 1 {
		return errors.New("threads must be at least 1")
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return errors.New("compression level must be between 0 and 9")
	}
	if c.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	if strings.ContainsAny(c.Prefix, PrefixInvalidChars) {
		return fmt.Errorf("prefix must not contain any of %s", PrefixInvalidChars)
	}
	if c.SplitSize != "" {
		if _, err := ParseSize(c.SplitSize); err != nil {
			return err
		}
	}
	for _, p := range c.Exclude {
		if _, err := filepath.Match(p, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents the pipeline from archiving
// its own output. Both arguments must be absolute, symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}

// sizeRe accepts forms like "100M", "1.5G", "500K", "2048", "100MB".
var sizeRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGT]?)B?$`)

// ParseSize parses a human-readable size string ("100M", "1G", "500K", plain
// bytes) into a byte count. The unit letter is case-insensitive and a trailing
// "B" is tolerated.
func ParseSize(s string) (int64, error) {
	m := sizeRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("invalid size format %q (use e.g. 100M, 1G, 500K)", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size format %q", s)
	}
	mult := int64(1)
	switch m[2] {
	case "K":
		mult = 1 << 10
	case "M":
		mult = 1 << 20
	case "G":
		mult = 1 << 30
	case "T":
		mult = 1 << 40
	}
	return int64(value * float64(mult)), nil
}

// NormalizeSplitArg converts a validated split size into the lowercase form
// 7z expects for its -v switch (e.g. "100M" -> "100m", "2048" -> "2048b").
func NormalizeSplitArg(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimSuffix(t, "b")
	if t == "" {
		return t
	}
	last := t[len(t)-1]
	if last >= '0' && last <= '9' {
		return t + "b"
	}
	return t
}
