// Package progress reports transfer progress for sync runs.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// Reporter handles progress reporting for sync operations
type Reporter interface {
	// SetTotal sets the number of files and bytes the run will copy
	SetTotal(totalFiles int, totalBytes int64)
	// Start begins tracking a new file transfer
	Start(path string, totalBytes int64)
	// Update reports progress on the current transfer
	Update(bytesTransferred int64)
	// Complete marks the current transfer as complete
	Complete()
	// Error reports a failed action
	Error(err error)
	// Finish flushes any pending output at the end of the run
	Finish()
}

// Update carries one progress notification to a callback.
type Update struct {
	Type           UpdateType
	CurrentFile    string
	CurrentBytes   int64
	CurrentTotal   int64
	FilesCompleted int
	FilesTotal     int
	BytesCompleted int64
	BytesTotal     int64
	Error          error
}

// UpdateType indicates the type of progress update
type UpdateType int

const (
	UpdateStart UpdateType = iota
	UpdateProgress
	UpdateComplete
	UpdateError
)

// Callback is a function that receives progress updates
type Callback func(update Update)

// CallbackReporter implements Reporter with a callback function
type CallbackReporter struct {
	callback Callback

	mu             sync.Mutex
	currentFile    string
	currentTotal   int64
	filesTotal     int
	bytesTotal     int64
	filesCompleted int
	bytesCompleted int64
}

// NewCallbackReporter creates a new CallbackReporter
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{callback: callback}
}

// SetTotal sets the total number of files and bytes to sync
func (r *CallbackReporter) SetTotal(totalFiles int, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filesTotal = totalFiles
	r.bytesTotal = totalBytes
}

// Start begins tracking a new file transfer
func (r *CallbackReporter) Start(path string, totalBytes int64) {
	r.mu.Lock()
	r.currentFile = path
	r.currentTotal = totalBytes
	update := r.snapshot(UpdateStart)
	callback := r.callback
	r.mu.Unlock()

	// Call callback outside lock to prevent deadlock
	if callback != nil {
		callback(update)
	}
}

// Update reports progress on the current transfer
func (r *CallbackReporter) Update(bytesTransferred int64) {
	r.mu.Lock()
	update := r.snapshot(UpdateProgress)
	update.CurrentBytes = bytesTransferred
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Complete marks the current transfer as complete
func (r *CallbackReporter) Complete() {
	r.mu.Lock()
	r.filesCompleted++
	r.bytesCompleted += r.currentTotal
	update := r.snapshot(UpdateComplete)
	update.CurrentBytes = r.currentTotal
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Error reports a failed action
func (r *CallbackReporter) Error(err error) {
	r.mu.Lock()
	update := r.snapshot(UpdateError)
	update.Error = err
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Finish is a no-op for callback reporters
func (r *CallbackReporter) Finish() {}

// snapshot builds an update from current state; callers hold the lock.
func (r *CallbackReporter) snapshot(t UpdateType) Update {
	return Update{
		Type:           t,
		CurrentFile:    r.currentFile,
		CurrentTotal:   r.currentTotal,
		FilesCompleted: r.filesCompleted,
		FilesTotal:     r.filesTotal,
		BytesCompleted: r.bytesCompleted,
		BytesTotal:     r.bytesTotal,
	}
}

// ProgressReader wraps an io.Reader to track read progress
type ProgressReader struct {
	reader      io.Reader
	reporter    Reporter
	transferred int64
}

// NewProgressReader creates a new progress-tracking reader
func NewProgressReader(r io.Reader, reporter Reporter) *ProgressReader {
	return &ProgressReader{reader: r, reporter: reporter}
}

// Read implements io.Reader
func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
		if pr.reporter != nil {
			pr.reporter.Update(pr.transferred)
		}
	}
	return n, err
}

// NullReporter is a no-op reporter
type NullReporter struct{}

func (NullReporter) SetTotal(totalFiles int, totalBytes int64) {}
func (NullReporter) Start(path string, totalBytes int64)       {}
func (NullReporter) Update(bytesTransferred int64)             {}
func (NullReporter) Complete()                                 {}
func (NullReporter) Error(err error)                           {}
func (NullReporter) Finish()                                   {}

// FormatBytes formats bytes into a human-readable string
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
