// Package lock prevents two sync runs from mutating the same bucket
// at once, using a lock file keyed by bucket name.
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultStaleTimeout is the fallback age after which a lock from an
// unreachable host is considered abandoned.
const DefaultStaleTimeout = 30 * time.Minute

// LockInfo describes the lock holder.
type LockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartTime time.Time `json:"start_time"`
	Bucket    string    `json:"bucket"`
}

// FileLock is a file-based mutual exclusion lock for one bucket.
type FileLock struct {
	bucket       string
	lockPath     string
	staleTimeout time.Duration
	info         *LockInfo
}

// New creates a lock for the given bucket. An empty lockDir defaults
// to the user config directory.
func New(lockDir, bucket string) (*FileLock, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	if lockDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config dir: %w", err)
		}
		lockDir = filepath.Join(configDir, "bucketsync")
	}

	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	return &FileLock{
		bucket:       bucket,
		lockPath:     filepath.Join(lockDir, fmt.Sprintf(".bucketsync.%s.lock", bucket)),
		staleTimeout: DefaultStaleTimeout,
	}, nil
}

// SetStaleTimeout overrides the cross-host stale fallback.
func (l *FileLock) SetStaleTimeout(d time.Duration) {
	l.staleTimeout = d
}

// Acquire takes the lock, removing a stale one if found.
func (l *FileLock) Acquire() error {
	if l.info != nil {
		return nil // already held by this instance
	}

	existing, err := l.readLockInfo()
	if err == nil {
		if l.isStale(existing) {
			if err := os.Remove(l.lockPath); err != nil {
				return fmt.Errorf("failed to remove stale lock: %w", err)
			}
		} else {
			return &LockError{
				Holder: existing,
				Reason: "lock is held by another process",
			}
		}
	}

	hostname, _ := os.Hostname()
	info := &LockInfo{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartTime: time.Now(),
		Bucket:    l.bucket,
	}

	// O_EXCL makes create-if-absent atomic against concurrent runs
	file, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			existing, readErr := l.readLockInfo()
			if readErr != nil {
				return fmt.Errorf("lock acquisition race: %w", err)
			}
			return &LockError{
				Holder: existing,
				Reason: "lock acquired by another process during acquisition",
			}
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(info); err != nil {
		os.Remove(l.lockPath)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	l.info = info
	return nil
}

// Release frees the lock. A missing lock file is not an error, but a
// lock rewritten by someone else is.
func (l *FileLock) Release() error {
	if l.info == nil {
		return nil
	}

	existing, err := l.readLockInfo()
	if err != nil {
		l.info = nil
		return nil
	}

	if !l.isHeldByThisInstance(existing) {
		l.info = nil
		return fmt.Errorf("lock was taken over by another process")
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	l.info = nil
	return nil
}

// IsLocked reports whether a live lock exists.
func (l *FileLock) IsLocked() bool {
	info, err := l.readLockInfo()
	if err != nil {
		return false
	}
	return !l.isStale(info)
}

// Holder returns the current lock holder, or an error if there is no
// live lock.
func (l *FileLock) Holder() (*LockInfo, error) {
	info, err := l.readLockInfo()
	if err != nil {
		return nil, err
	}
	if l.isStale(info) {
		return nil, fmt.Errorf("lock is stale")
	}
	return info, nil
}

// ForceRelease removes the lock file regardless of holder.
func (l *FileLock) ForceRelease() error {
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to force remove lock: %w", err)
	}
	l.info = nil
	return nil
}

func (l *FileLock) readLockInfo() (*LockInfo, error) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid lock file format: %w", err)
	}
	return &info, nil
}

// isStale checks process liveness on the same host; for a different
// host it falls back to the stale timeout.
func (l *FileLock) isStale(info *LockInfo) bool {
	hostname, _ := os.Hostname()

	if info.Hostname == hostname {
		return !processExists(info.PID)
	}

	return time.Since(info.StartTime) > l.staleTimeout
}

func (l *FileLock) isHeldByThisInstance(info *LockInfo) bool {
	if l.info == nil {
		return false
	}
	hostname, _ := os.Hostname()
	return info.PID == os.Getpid() &&
		info.Hostname == hostname &&
		l.info.StartTime.Equal(info.StartTime)
}

// LockError reports a lock held elsewhere.
type LockError struct {
	Holder *LockInfo
	Reason string
}

func (e *LockError) Error() string {
	if e.Holder != nil {
		return fmt.Sprintf("cannot acquire lock: %s (held by PID %d on %s since %s, bucket: %s)",
			e.Reason,
			e.Holder.PID,
			e.Holder.Hostname,
			e.Holder.StartTime.Format(time.RFC3339),
			e.Holder.Bucket,
		)
	}
	return fmt.Sprintf("cannot acquire lock: %s", e.Reason)
}

// IsLockError checks if an error is a LockError.
func IsLockError(err error) bool {
	_, ok := err.(*LockError)
	return ok
}
