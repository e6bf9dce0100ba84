package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/packmaster/internal/config"
	"github.com/backmassage/packmaster/internal/logging"
)

// --- Discover tests ---

func TestDiscover_FlatIgnoresSubdirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.txt")
	touch(t, dir, "a.txt")
	os.MkdirAll(filepath.Join(dir, "nested"), 0o755)
	touch(t, filepath.Join(dir, "nested"), "deep.txt")

	files, err := Discover(dir, false, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"a.txt", "b.txt"}
	got := basenames(files)
	if !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_RecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "sub", "deeper"), 0o755)
	touch(t, filepath.Join(dir, "sub", "deeper"), "z.dat")
	touch(t, filepath.Join(dir, "sub"), "m.dat")
	touch(t, dir, "a.dat")

	files, err := Discover(dir, true, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i] < files[i-1] {
			t.Errorf("not sorted: %q before %q", files[i-1], files[i])
		}
	}
}

func TestDiscover_ExcludeByName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "keep.doc")
	touch(t, dir, "junk.tmp")
	touch(t, dir, "debug.log")

	files, err := Discover(dir, false, []string{"*.tmp", "*.log"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.doc" {
		t.Errorf("got %v, want only keep.doc", basenames(files))
	}
}

func TestDiscover_RecursiveExcludeByPath(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "cache"), 0o755)
	touch(t, dir, "keep.doc")
	touch(t, filepath.Join(dir, "cache"), "blob.bin")

	files, err := Discover(dir, true, []string{filepath.Join(dir, "cache", "*")})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "keep.doc" {
		t.Errorf("got %v, want only keep.doc", basenames(files))
	}
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover(t.TempDir(), false, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

// --- BuildBatches tests ---

func batchConfig(t *testing.T, inputDir string, batchSize int) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.InputDir = inputDir
	cfg.OutputDir = t.TempDir()
	cfg.BatchSize = batchSize
	cfg.ColorMode = config.ColorNever
	return cfg
}

func TestBuildBatches_Partitioning(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		files = append(files, touchSized(t, dir, n+".dat", 100))
	}

	cfg := batchConfig(t, dir, 2)
	part := BuildBatches(&cfg, files)

	if part.TotalBatches != 3 {
		t.Fatalf("TotalBatches = %d, want 3", part.TotalBatches)
	}
	if len(part.Batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(part.Batches))
	}

	wantSizes := []int{2, 2, 1}
	for i, b := range part.Batches {
		if b.Num != i+1 {
			t.Errorf("batch %d has Num %d", i, b.Num)
		}
		if len(b.Files) != wantSizes[i] {
			t.Errorf("batch %d has %d files, want %d", b.Num, len(b.Files), wantSizes[i])
		}
		if b.InputBytes != int64(100*wantSizes[i]) {
			t.Errorf("batch %d InputBytes = %d", b.Num, b.InputBytes)
		}
		wantName := "archive_" + string(rune('0'+b.Num)) + ".7z"
		if filepath.Base(b.ArchivePath) != wantName {
			t.Errorf("batch %d archive = %q, want %q", b.Num, filepath.Base(b.ArchivePath), wantName)
		}
	}
}

func TestBuildBatches_SingleBatch(t *testing.T) {
	dir := t.TempDir()
	files := []string{touchSized(t, dir, "only.dat", 10)}

	cfg := batchConfig(t, dir, 80)
	part := BuildBatches(&cfg, files)

	if part.TotalBatches != 1 || len(part.Batches) != 1 {
		t.Fatalf("partition = %+v, want single batch", part)
	}
}

func TestBuildBatches_SkipExistingKeepsNumbering(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, n := range []string{"a", "b", "c", "d"} {
		files = append(files, touchSized(t, dir, n+".dat", 1))
	}

	cfg := batchConfig(t, dir, 2)
	// Archive for batch 1 already exists.
	touch(t, cfg.OutputDir, "archive_1.7z")

	part := BuildBatches(&cfg, files)
	if part.TotalBatches != 2 {
		t.Errorf("TotalBatches = %d, want 2", part.TotalBatches)
	}
	if len(part.SkippedPaths) != 1 {
		t.Fatalf("SkippedPaths = %v, want 1 entry", part.SkippedPaths)
	}
	if len(part.Batches) != 1 || part.Batches[0].Num != 2 {
		t.Errorf("remaining batch should keep number 2, got %+v", part.Batches)
	}

	// With --force the existing archive is processed again.
	cfg.SkipExisting = false
	part = BuildBatches(&cfg, files)
	if len(part.Batches) != 2 || len(part.SkippedPaths) != 0 {
		t.Errorf("force should keep all batches, got %+v", part)
	}
}

// --- RunStats tests ---

func TestRunStats(t *testing.T) {
	s := RunStats{Succeeded: 3, Failed: 1, TotalInputBytes: 1000, TotalOutputBytes: 600}
	if got := s.Processed(); got != 4 {
		t.Errorf("Processed: got %d, want 4", got)
	}
	if got := s.SpaceSaved(); got != 400 {
		t.Errorf("SpaceSaved: got %d, want 400", got)
	}

	s2 := RunStats{TotalInputBytes: 100, TotalOutputBytes: 150}
	if got := s2.SpaceSaved(); got != -50 {
		t.Errorf("SpaceSaved (negative): got %d, want -50", got)
	}
}

// --- Manifest tests ---

func TestNewManifest_SortsAndComputesRatio(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InputDir = "/in"
	cfg.OutputDir = "/out"
	stats := RunStats{TotalFiles: 4, TotalInputBytes: 1000, TotalOutputBytes: 250}

	archives := []ManifestArchive{
		{BatchNum: 2, ArchiveName: "archive_2.7z"},
		{BatchNum: 1, ArchiveName: "archive_1.7z"},
	}
	m := NewManifest(&cfg, &stats, archives)

	if m.Archives[0].BatchNum != 1 || m.Archives[1].BatchNum != 2 {
		t.Errorf("archives not sorted by batch number: %+v", m.Archives)
	}
	if m.CompressionRatio != 75 {
		t.Errorf("CompressionRatio = %v, want 75", m.CompressionRatio)
	}
	if m.TotalFiles != 4 || m.TotalInputSize != 1000 || m.TotalOutputSize != 250 {
		t.Errorf("totals not copied: %+v", m)
	}
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "run.json")
	m := &Manifest{CreatedAt: "2026-08-28T12:00:00Z", BatchSize: 80}

	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var back Manifest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if back.BatchSize != 80 {
		t.Errorf("round-trip BatchSize = %d", back.BatchSize)
	}
}

// --- Pipeline integration tests ---

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(&cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRun_DryRun(t *testing.T) {
	inputDir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		touchSized(t, inputDir, n+".dat", 64)
	}

	cfg := batchConfig(t, inputDir, 2)
	cfg.DryRun = true

	stats := Run(context.Background(), &cfg, newTestLogger(t))

	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2 (dry-run counts planned batches)", stats.Succeeded)
	}
	if stats.Failed != 0 {
		t.Errorf("Failed = %d, want 0", stats.Failed)
	}

	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 0 {
		t.Errorf("dry run must not create archives, found %d entries", len(entries))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	cfg := batchConfig(t, t.TempDir(), 2)
	cfg.AutoConfirm = true

	stats := Run(context.Background(), &cfg, newTestLogger(t))
	if stats.TotalFiles != 0 || stats.Processed() != 0 {
		t.Errorf("empty input should process nothing: %+v", stats)
	}
}

// stubArchiver installs a fake 7z on PATH that writes a small file at the
// archive path for "a" commands and succeeds for "t".
func stubArchiver(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	script := `#!/bin/sh
cmd="$1"
shift
if [ "$cmd" = "a" ]; then
  for arg in "$@"; do
    case "$arg" in
      -*) continue ;;
      *) printf 'stub-archive' > "$arg"; exit 0 ;;
    esac
  done
  exit 2
fi
exit 0
`
	if err := os.WriteFile(filepath.Join(dir, "7z"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub 7z: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRun_CompressesAllBatches(t *testing.T) {
	stubArchiver(t)

	inputDir := t.TempDir()
	for _, n := range []string{"a", "b", "c"} {
		touchSized(t, inputDir, n+".dat", 64)
	}

	cfg := batchConfig(t, inputDir, 2)
	cfg.AutoConfirm = true
	cfg.Threads = 2
	cfg.Verify = true
	cfg.MetadataFile = filepath.Join(t.TempDir(), "run.json")

	stats := Run(context.Background(), &cfg, newTestLogger(t))

	if stats.Succeeded != 2 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want 2 succeeded", stats)
	}
	if stats.TotalInputBytes != 192 {
		t.Errorf("TotalInputBytes = %d, want 192", stats.TotalInputBytes)
	}
	if stats.TotalOutputBytes != int64(2*len("stub-archive")) {
		t.Errorf("TotalOutputBytes = %d", stats.TotalOutputBytes)
	}

	for _, name := range []string{"archive_1.7z", "archive_2.7z"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("missing archive %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(cfg.MetadataFile)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest decode: %v", err)
	}
	if len(m.Archives) != 2 {
		t.Fatalf("manifest has %d archives, want 2", len(m.Archives))
	}
	if m.Archives[0].BatchNum != 1 || m.Archives[1].BatchNum != 2 {
		t.Errorf("manifest archives not sorted: %+v", m.Archives)
	}
	if m.Archives[0].FileCount != 2 || m.Archives[1].FileCount != 1 {
		t.Errorf("manifest file counts wrong: %+v", m.Archives)
	}
}

func TestRun_FailedBatchLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\nexit 2\n"
	if err := os.WriteFile(filepath.Join(dir, "7z"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	inputDir := t.TempDir()
	touchSized(t, inputDir, "a.dat", 10)

	cfg := batchConfig(t, inputDir, 80)
	cfg.AutoConfirm = true

	stats := Run(context.Background(), &cfg, newTestLogger(t))
	if stats.Failed != 1 || stats.Succeeded != 0 {
		t.Errorf("stats = %+v, want 1 failed", stats)
	}
	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 0 {
		t.Errorf("failed batch should leave no archive, found %d entries", len(entries))
	}
}

func TestRun_AllArchivesExist(t *testing.T) {
	inputDir := t.TempDir()
	touchSized(t, inputDir, "a.dat", 10)

	cfg := batchConfig(t, inputDir, 80)
	cfg.AutoConfirm = true
	touch(t, cfg.OutputDir, "archive_1.7z")

	stats := Run(context.Background(), &cfg, newTestLogger(t))
	if stats.Processed() != 0 {
		t.Errorf("nothing should run when all archives exist: %+v", stats)
	}
	if stats.SkippedExisting != 1 {
		t.Errorf("SkippedExisting = %d, want 1", stats.SkippedExisting)
	}
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	return touchSized(t, dir, name, 0)
}

func touchSized(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
