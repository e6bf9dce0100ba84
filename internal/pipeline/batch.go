package pipeline

import (
	"os"

	"github.com/backmassage/packmaster/internal/config"
	"github.com/backmassage/packmaster/internal/naming"
)

// Batch is one fixed-size group of input files assigned to a single archive.
type Batch struct {
	Num         int // 1-based batch number over the full partition.
	Files       []string
	ArchivePath string
	InputBytes  int64
}

// Partition is the result of splitting the discovered files into batches.
// Batch numbers are assigned over the full file list before skip-existing
// filtering, so skipped archives leave gaps rather than renumbering.
type Partition struct {
	Batches      []Batch  // Batches still to be processed.
	TotalBatches int      // Count over the full partition, including skipped.
	SkippedPaths []string // Archive paths skipped because they already exist.
}

// BuildBatches partitions files into groups of cfg.BatchSize, computes the
// archive path and input byte total for each, and drops batches whose archive
// already exists unless SkipExisting has been cleared by --force.
func BuildBatches(cfg *config.Config, files []string) Partition {
	var part Partition
	if len(files) == 0 {
		return part
	}
	part.TotalBatches = (len(files) + cfg.BatchSize - 1) / cfg.BatchSize

	for i := 0; i < len(files); i += cfg.BatchSize {
		num := i/cfg.BatchSize + 1
		end := i + cfg.BatchSize
		if end > len(files) {
			end = len(files)
		}
		group := files[i:end]
		archivePath := naming.ArchivePath(cfg.OutputDir, cfg.Prefix, num, cfg.Format)

		if cfg.SkipExisting {
			if _, err := os.Stat(archivePath); err == nil {
				part.SkippedPaths = append(part.SkippedPaths, archivePath)
				continue
			}
		}

		part.Batches = append(part.Batches, Batch{
			Num:         num,
			Files:       group,
			ArchivePath: archivePath,
			InputBytes:  sumSizes(group),
		})
	}
	return part
}

// sumSizes returns the total on-disk size of the given files. Files that
// vanish between discovery and partitioning count as zero.
func sumSizes(files []string) int64 {
	var total int64
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil {
			total += fi.Size()
		}
	}
	return total
}
