package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBytesWithSign prefixes with + or - for delta display (e.g. "- 1.2 GiB").
func FormatBytesWithSign(bytes int64) string {
	sign := ""
	if bytes > 0 {
		sign = "+ "
	} else if bytes < 0 {
		sign = "- "
		bytes = -bytes
	}
	return sign + FormatBytes(bytes)
}

// FormatReduction returns the compression summary label for a run, e.g.
// "34.2% reduced". Negative reductions (output grew) render as "grew 5.0%".
func FormatReduction(inputBytes, outputBytes int64) string {
	if inputBytes <= 0 {
		return "n/a"
	}
	pct := (1 - float64(outputBytes)/float64(inputBytes)) * 100
	if pct < 0 {
		return fmt.Sprintf("grew %.1f%%", -pct)
	}
	return fmt.Sprintf("%.1f%% reduced", pct)
}
