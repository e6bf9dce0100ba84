package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	TotalFiles      int
	TotalBatches    int // Full partition, including skipped-existing batches.
	Succeeded       int
	Failed          int
	SkippedExisting int
	NotStarted      int // Batches never dispatched because of an interrupt.

	TotalInputBytes  int64 // All discovered files.
	TotalOutputBytes int64 // Archives created this run.
}

// Processed returns how many batches actually ran to completion or failure.
func (s *RunStats) Processed() int {
	return s.Succeeded + s.Failed
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means the archives are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}
