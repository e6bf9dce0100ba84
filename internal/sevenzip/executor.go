// Package sevenzip builds and runs 7z command lines: archive creation,
// integrity testing, and exit-code classification.
package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Binary is the archiver executable looked up on PATH.
const Binary = "7z"

// Result holds the outcome of a single 7z invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Ok reports whether the invocation exited cleanly.
func (r *Result) Ok() bool { return r.Err == nil }

// Execute runs the archive creation command for a job. Output is captured
// silently; 7z progress noise is suppressed via -bd in the built args.
// A non-zero exit is classified into a readable error (see errors.go).
func Execute(ctx context.Context, job *Job) Result {
	return run(ctx, BuildArgs(job))
}

// Verify runs "7z t" against an archive and returns nil when the archive is
// intact. With split volumes, the first volume must be passed; 7z follows
// the chain itself.
func Verify(ctx context.Context, archivePath string) error {
	res := run(ctx, VerifyArgs(archivePath))
	return res.Err
}

func run(ctx context.Context, args []string) Result {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	res := Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Err = ClassifyExit(res.ExitCode)
	default:
		// Start failure: binary missing, context cancelled before exec, etc.
		res.ExitCode = -1
		res.Err = err
	}
	return res
}
