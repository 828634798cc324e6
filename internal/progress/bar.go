package progress

import (
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// BarReporter renders a terminal progress bar for the whole run.
// One bar tracks total bytes; the prefix shows the file in flight.
type BarReporter struct {
	mu           sync.Mutex
	bar          *pb.ProgressBar
	baseline     int64 // bytes completed before the current file
	currentTotal int64
}

// NewBarReporter creates a reporter that draws to stderr.
func NewBarReporter() *BarReporter {
	return &BarReporter{}
}

// SetTotal starts the bar once the plan size is known.
func (r *BarReporter) SetTotal(totalFiles int, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if totalBytes == 0 {
		return
	}
	r.bar = pb.Full.Start64(totalBytes)
	r.bar.Set(pb.Bytes, true)
}

// Start begins tracking a new file transfer
func (r *BarReporter) Start(path string, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentTotal = totalBytes
	if r.bar != nil {
		r.bar.Set("prefix", path+" ")
	}
}

// Update reports progress on the current transfer
func (r *BarReporter) Update(bytesTransferred int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.SetCurrent(r.baseline + bytesTransferred)
	}
}

// Complete marks the current transfer as complete
func (r *BarReporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.baseline += r.currentTotal
	r.currentTotal = 0
	if r.bar != nil {
		r.bar.SetCurrent(r.baseline)
	}
}

// Error keeps the bar running; failures are printed by the caller.
func (r *BarReporter) Error(err error) {}

// Finish stops the bar.
func (r *BarReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
