package sevenzip

import (
	"errors"
	"fmt"
)

// 7z exit codes, per the 7-Zip documentation. Anything else is reported as an
// unrecognized exit status.
const (
	ExitOK          = 0   // Archive created.
	ExitWarning     = 1   // Non-fatal warning (e.g. a file was locked).
	ExitFatal       = 2   // Fatal error.
	ExitUsage       = 7   // Command line error.
	ExitMemory      = 8   // Not enough memory.
	ExitUserStopped = 255 // User stopped the process.
)

// Sentinel errors for the classified 7z exit codes.
var (
	ErrWarning     = errors.New("7z finished with warnings (some files may be missing from the archive)")
	ErrFatal       = errors.New("7z reported a fatal error")
	ErrUsage       = errors.New("7z rejected the command line")
	ErrMemory      = errors.New("7z ran out of memory")
	ErrUserStopped = errors.New("7z was stopped")
)

// ClassifyExit maps a 7z exit code to a sentinel error, or nil for success.
func ClassifyExit(code int) error {
	switch code {
	case ExitOK:
		return nil
	case ExitWarning:
		return ErrWarning
	case ExitFatal:
		return ErrFatal
	case ExitUsage:
		return ErrUsage
	case ExitMemory:
		return ErrMemory
	case ExitUserStopped:
		return ErrUserStopped
	default:
		return fmt.Errorf("7z exited with status %d", code)
	}
}
