// Package pipeline orchestrates file discovery, batch partitioning, parallel
// archive creation, and summary reporting.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/packmaster/internal/config"
	"github.com/backmassage/packmaster/internal/display"
	"github.com/backmassage/packmaster/internal/logging"
	"github.com/backmassage/packmaster/internal/naming"
	"github.com/backmassage/packmaster/internal/sevenzip"
	"github.com/backmassage/packmaster/internal/term"
)

// Run is the top-level batch entry point. It discovers files, partitions them
// into batches, previews the work, and dispatches each batch to the archiver
// under a bounded worker pool. Returns aggregate stats; the caller decides
// the exit code from stats.Failed.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, err := Discover(cfg.InputDir, cfg.Recursive, cfg.Exclude)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}
	if len(files) == 0 {
		log.Error("No files found in folder: %s", cfg.InputDir)
		return stats
	}

	stats.TotalFiles = len(files)
	stats.TotalInputBytes = sumSizes(files)

	part := BuildBatches(cfg, files)
	stats.TotalBatches = part.TotalBatches
	stats.SkippedExisting = len(part.SkippedPaths)

	logHeader(cfg, log, &stats)

	for _, p := range part.SkippedPaths {
		log.Warn("Skip (exists): %s (use --force to replace)", filepath.Base(p))
	}

	if len(part.Batches) == 0 {
		log.Info("No batches to process (all archives exist)")
		return stats
	}

	// Preview every batch before touching anything.
	for _, b := range part.Batches {
		log.Info("Batch %d/%d: %d files (%s) -> %s",
			b.Num, part.TotalBatches, len(b.Files),
			display.FormatBytes(b.InputBytes), filepath.Base(b.ArchivePath))
		for _, f := range b.Files {
			log.Debug(cfg.Verbose, "  - %s", filepath.Base(f))
		}
	}

	if cfg.DryRun {
		log.Info("=== DRY RUN COMPLETE - no archives created ===")
		stats.Succeeded = len(part.Batches)
		logSummary(cfg, log, &stats)
		return stats
	}

	if !cfg.AutoConfirm {
		if !promptConfirm(len(part.Batches)) {
			log.Warn("Operation cancelled by user.")
			return stats
		}
	}

	results := runBatches(ctx, cfg, log, part.Batches, &stats)

	if stats.NotStarted > 0 {
		log.Warn("Interrupted: %d batch(es) not started", stats.NotStarted)
	}

	if cfg.MetadataFile != "" && stats.Succeeded > 0 {
		m := NewManifest(cfg, &stats, results)
		if err := WriteManifest(cfg.MetadataFile, m); err != nil {
			log.Error("Cannot write metadata file: %v", err)
		} else {
			log.Info("Metadata exported to %s", cfg.MetadataFile)
		}
	}

	logSummary(cfg, log, &stats)
	return stats
}

// runBatches dispatches the batches to a worker pool capped at cfg.Threads,
// collecting per-batch outcomes into stats and the manifest entries.
func runBatches(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	batches []Batch,
	stats *RunStats,
) []ManifestArchive {
	bar := newProgressBar(cfg, len(batches))

	var mu sync.Mutex
	var results []ManifestArchive

	g := new(errgroup.Group)
	g.SetLimit(cfg.Threads)

	for _, b := range batches {
		b := b
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				stats.NotStarted++
				mu.Unlock()
				return nil
			}

			outSize, ok := processBatch(ctx, cfg, log, &b)

			mu.Lock()
			if ok {
				stats.Succeeded++
				stats.TotalOutputBytes += outSize
				results = append(results, ManifestArchive{
					BatchNum:    b.Num,
					ArchiveName: filepath.Base(b.ArchivePath),
					FileCount:   len(b.Files),
					InputSize:   b.InputBytes,
					OutputSize:  outSize,
					Files:       basenames(b.Files),
				})
			} else {
				stats.Failed++
			}
			mu.Unlock()

			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	return results
}

// processBatch handles one batch: invoke the archiver, size the result, and
// verify it when requested. A failed batch leaves no partial archive behind.
func processBatch(ctx context.Context, cfg *config.Config, log *logging.Logger, b *Batch) (int64, bool) {
	base := filepath.Base(b.ArchivePath)
	log.Info("Compressing %d files into %s", len(b.Files), base)

	job := sevenzip.NewJob(cfg, b.ArchivePath, b.Files)
	log.Debug(cfg.Verbose, "Executing: %s", strings.Join(sevenzip.RedactedArgs(job), " "))

	// --force means replace: "7z a" against an existing archive would update
	// it in place, silently merging old contents into the new batch.
	if !cfg.SkipExisting {
		removeArchive(b.ArchivePath)
	}

	start := time.Now()
	res := sevenzip.Execute(ctx, job)
	if res.Err != nil {
		log.Error("Failed to create %s: %v", base, res.Err)
		logStderrTail(log, res.Stderr)
		removeArchive(b.ArchivePath)
		return 0, false
	}

	outSize, err := naming.ArchiveSize(b.ArchivePath)
	if err != nil {
		log.Error("Archive missing after 7z reported success: %s", base)
		return 0, false
	}

	if cfg.Verify {
		if err := verifyArchive(ctx, b.ArchivePath); err != nil {
			log.Error("Verification failed: %s (%v)", base, err)
			removeArchive(b.ArchivePath)
			return 0, false
		}
		log.Info("Verification passed: %s", base)
	}

	elapsed := time.Since(start)
	ratio := int64(100)
	if b.InputBytes > 0 {
		ratio = outSize * 100 / b.InputBytes
	}
	log.Success("Created %s in %ds (%s, %d%% of input)",
		base, int(elapsed.Seconds()), display.FormatBytes(outSize), ratio)
	return outSize, true
}

// verifyArchive runs "7z t". With split volumes the first volume carries the
// archive headers, so it is the path handed to 7z.
func verifyArchive(ctx context.Context, archivePath string) error {
	target := archivePath
	if _, err := os.Stat(archivePath); err != nil {
		if vols := naming.Volumes(archivePath); len(vols) > 0 {
			target = vols[0]
		}
	}
	return sevenzip.Verify(ctx, target)
}

// removeArchive deletes an archive and any split volumes it produced.
func removeArchive(archivePath string) {
	os.Remove(archivePath)
	for _, v := range naming.Volumes(archivePath) {
		os.Remove(v)
	}
}

// promptConfirm asks for interactive confirmation before compressing.
func promptConfirm(batchCount int) bool {
	fmt.Printf("\nProceed with compression of %d batch(es)? (y/n): ", batchCount)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}

// newProgressBar returns a terminal progress bar for the batch loop, or nil
// when stderr is not a TTY or verbose logging would fight with it.
func newProgressBar(cfg *config.Config, total int) *progressbar.ProgressBar {
	if cfg.Verbose || !term.IsTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Compressing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func logStderrTail(log *logging.Logger, stderr string) {
	if strings.TrimSpace(stderr) == "" {
		return
	}
	log.Error("Last 7z output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

// --- Logging helpers ---

func logHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d files (%s), will create %d archive(s)",
		stats.TotalFiles, display.FormatBytes(stats.TotalInputBytes), stats.TotalBatches)

	if len(cfg.Exclude) > 0 {
		log.Info("Excluding patterns: %s", strings.Join(cfg.Exclude, ", "))
	}
	log.Info("Format: %s, level %d, %d files per batch", cfg.Format, cfg.CompressionLevel, cfg.BatchSize)
	if cfg.Password != "" {
		log.Info("Encryption: enabled (headers included)")
	}
	if cfg.SplitSize != "" {
		log.Info("Split volumes: %s", cfg.SplitSize)
	}
	if cfg.Verify {
		log.Info("Verification: test each archive after creation")
	}
	if cfg.Threads > 1 {
		log.Info("Workers: %d parallel compressions", cfg.Threads)
	}
	if cfg.DryRun {
		log.Warn("=== DRY RUN MODE - no archives will be created ===")
	}
	fmt.Println()
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	if stats.Processed() == 0 {
		return
	}
	log.Info("==================================================")
	log.Info("SUMMARY")
	log.Info("==================================================")
	log.Info("Total batches:    %d", stats.Processed())
	log.Info("Successful:       %d", stats.Succeeded)
	log.Info("Failed:           %d", stats.Failed)
	if stats.SkippedExisting > 0 {
		log.Info("Skipped (exist):  %d", stats.SkippedExisting)
	}
	log.Info("Input size:       %s", display.FormatBytes(stats.TotalInputBytes))

	if cfg.DryRun {
		log.Info("Output size:      n/a (dry run)")
		return
	}
	if stats.TotalOutputBytes > 0 {
		log.Info("Output size:      %s", display.FormatBytes(stats.TotalOutputBytes))
		log.Info("Compression:      %s", display.FormatReduction(stats.TotalInputBytes, stats.TotalOutputBytes))
	}
	if stats.Failed > 0 {
		log.Warn("Some batches failed. Check log for details.")
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
