package sevenzip

import (
	"fmt"

	"github.com/backmassage/packmaster/internal/config"
)

// Job describes one archive creation: the output path, the files going into
// it, and the archiver switches derived from config.
type Job struct {
	ArchivePath string
	Files       []string
	Level       int    // -mx value, 0-9.
	Password    string // Enables header encryption when set.
	SplitSize   string // Raw size string ("100M"); empty disables splitting.
}

// NewJob builds a Job for a batch from the active config.
func NewJob(cfg *config.Config, archivePath string, files []string) *Job {
	return &Job{
		ArchivePath: archivePath,
		Files:       files,
		Level:       cfg.CompressionLevel,
		Password:    cfg.Password,
		SplitSize:   cfg.SplitSize,
	}
}

// BuildArgs returns the full 7z command line for a job, binary name included.
// -bd disables the interactive progress indicator so captured output stays
// line-oriented. Switches precede the archive path; the file list comes last.
func BuildArgs(job *Job) []string {
	args := []string{Binary, "a", "-bd", fmt.Sprintf("-mx=%d", job.Level)}

	if job.Password != "" {
		// -mhe=on encrypts archive headers, hiding file names too.
		args = append(args, "-p"+job.Password, "-mhe=on")
	}
	if job.SplitSize != "" {
		args = append(args, "-v"+config.NormalizeSplitArg(job.SplitSize))
	}

	args = append(args, job.ArchivePath)
	args = append(args, job.Files...)
	return args
}

// RedactedArgs returns the command line with the password switch masked,
// safe for debug logging.
func RedactedArgs(job *Job) []string {
	args := BuildArgs(job)
	for i, a := range args {
		if len(a) > 2 && a[:2] == "-p" {
			args[i] = "-p****"
		}
	}
	return args
}

// VerifyArgs returns the 7z command line for testing archive integrity.
func VerifyArgs(archivePath string) []string {
	return []string{Binary, "t", "-bd", archivePath}
}
