package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/backmassage/packmaster/internal/config"
)

// ManifestArchive records one successfully created archive in the manifest.
type ManifestArchive struct {
	BatchNum    int      `json:"batch_num"`
	ArchiveName string   `json:"archive_name"`
	FileCount   int      `json:"file_count"`
	InputSize   int64    `json:"input_size"`
	OutputSize  int64    `json:"output_size"`
	Files       []string `json:"files"`
}

// Manifest is the JSON run report written by --metadata. Field names keep the
// legacy tool's shape so downstream consumers keep working.
type Manifest struct {
	CreatedAt        string            `json:"created_at"`
	InputFolder      string            `json:"input_folder"`
	OutputFolder     string            `json:"output_folder"`
	TotalFiles       int               `json:"total_files"`
	TotalInputSize   int64             `json:"total_input_size"`
	BatchSize        int               `json:"batch_size"`
	CompressionLevel int               `json:"compression_level"`
	Archives         []ManifestArchive `json:"archives"`
	TotalOutputSize  int64             `json:"total_output_size"`
	CompressionRatio float64           `json:"compression_ratio"`
}

// NewManifest assembles a Manifest from the run configuration, stats, and the
// per-archive results. Archives are sorted by batch number because parallel
// workers complete in nondeterministic order.
func NewManifest(cfg *config.Config, stats *RunStats, archives []ManifestArchive) *Manifest {
	sorted := make([]ManifestArchive, len(archives))
	copy(sorted, archives)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BatchNum < sorted[j].BatchNum })

	m := &Manifest{
		CreatedAt:        time.Now().Format(time.RFC3339),
		InputFolder:      cfg.InputDir,
		OutputFolder:     cfg.OutputDir,
		TotalFiles:       stats.TotalFiles,
		TotalInputSize:   stats.TotalInputBytes,
		BatchSize:        cfg.BatchSize,
		CompressionLevel: cfg.CompressionLevel,
		Archives:         sorted,
		TotalOutputSize:  stats.TotalOutputBytes,
	}
	if stats.TotalInputBytes > 0 {
		m.CompressionRatio = (1 - float64(stats.TotalOutputBytes)/float64(stats.TotalInputBytes)) * 100
	}
	return m
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
