// Package service orchestrates sync runs against a configured
// bucket and local root.
package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/nrollins/bucketsync/internal/config"
	"github.com/nrollins/bucketsync/internal/core/diff"
	"github.com/nrollins/bucketsync/internal/core/executor"
	"github.com/nrollins/bucketsync/internal/core/hatch"
	"github.com/nrollins/bucketsync/internal/core/planner"
	"github.com/nrollins/bucketsync/internal/domain"
	"github.com/nrollins/bucketsync/internal/lock"
	"github.com/nrollins/bucketsync/internal/logger"
	"github.com/nrollins/bucketsync/internal/progress"
	"github.com/nrollins/bucketsync/internal/store"
	locstore "github.com/nrollins/bucketsync/internal/store/local"
	s3store "github.com/nrollins/bucketsync/internal/store/s3"
)

// SyncService coordinates planning and execution for one sync pair.
type SyncService struct {
	cfg      *config.Config
	local    store.Store
	remote   store.Store
	lock     *lock.FileLock
	reporter progress.Reporter
}

// NewSyncService builds a service from config, constructing the local
// and S3 stores and the bucket lock.
func NewSyncService(ctx context.Context, cfg *config.Config) (*SyncService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	algo := hatch.Algorithm(cfg.Hatch.Algorithm)
	if algo == "" {
		algo = hatch.MD5
	}
	opts := hatch.DefaultOptions()
	if cfg.Hatch.MaxSizeMB > 0 {
		opts.MaxSize = cfg.Hatch.MaxSizeMB * 1024 * 1024
	}

	localStore, err := locstore.New(cfg.Root, hatch.NewCalculator(opts), algo)
	if err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}

	remoteStore, err := s3store.New(ctx, s3store.Options{
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		Region:         cfg.Region,
		Endpoint:       cfg.Endpoint,
		ForcePathStyle: cfg.ForcePathStyle,
		CreateBucket:   cfg.CreateBucket,
	})
	if err != nil {
		localStore.Close()
		return nil, fmt.Errorf("s3 store: %w", err)
	}

	fileLock, err := lock.New(cfg.LockDir, cfg.Bucket)
	if err != nil {
		localStore.Close()
		remoteStore.Close()
		return nil, fmt.Errorf("file lock: %w", err)
	}

	return &SyncService{
		cfg:    cfg,
		local:  localStore,
		remote: remoteStore,
		lock:   fileLock,
	}, nil
}

// NewWithStores builds a service around existing stores. The lock may
// be nil, in which case runs are not serialized. Used by tests.
func NewWithStores(local, remote store.Store, fileLock *lock.FileLock) *SyncService {
	return &SyncService{
		local:  local,
		remote: remote,
		lock:   fileLock,
	}
}

// SetProgressReporter sets the reporter used during execution.
func (s *SyncService) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

func (s *SyncService) getReporter() progress.Reporter {
	if s.reporter != nil {
		return s.reporter
	}
	return progress.NullReporter{}
}

// Plan builds a sync plan without executing it.
func (s *SyncService) Plan(ctx context.Context, direction domain.Direction, safe bool) (*domain.SyncPlan, error) {
	if !direction.IsValid() {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}

	entries, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}

	plan := planner.Plan(entries, direction, safe)
	logger.Get().Info("sync plan created",
		"direction", string(direction),
		"safe", safe,
		"copies", plan.Stats.Copies,
		"renames", plan.Stats.Renames,
		"deletes", plan.Stats.Deletes,
		"bytes_to_copy", plan.Stats.BytesToCopy,
	)
	return plan, nil
}

// Push syncs local to remote: the local tree is authoritative.
func (s *SyncService) Push(ctx context.Context, safe bool) (*executor.Report, error) {
	return s.sync(ctx, domain.DirectionPush, safe)
}

// Pull syncs remote to local: the bucket is authoritative.
func (s *SyncService) Pull(ctx context.Context, safe bool) (*executor.Report, error) {
	return s.sync(ctx, domain.DirectionPull, safe)
}

func (s *SyncService) sync(ctx context.Context, direction domain.Direction, safe bool) (*executor.Report, error) {
	runID := uuid.New().String()
	log := logger.With("run_id", runID, "direction", string(direction), "safe", safe)
	log.Info("sync started")

	if s.lock != nil {
		if err := s.lock.Acquire(); err != nil {
			log.Error("failed to acquire lock", "error", err)
			if lock.IsLockError(err) {
				return nil, fmt.Errorf("%w: %v", domain.ErrSyncInProgress, err)
			}
			return nil, err
		}
		defer func() {
			if err := s.lock.Release(); err != nil {
				log.Error("failed to release lock", "error", err)
			}
		}()
	}

	plan, err := s.Plan(ctx, direction, safe)
	if err != nil {
		return nil, err
	}

	if plan.Empty() {
		log.Info("nothing to sync")
		return &executor.Report{Kept: plan.Stats.Keeps}, nil
	}

	reporter := s.getReporter()
	defer reporter.Finish()

	report, err := executor.New(reporter).Apply(ctx, plan, s.local, s.remote)
	if err != nil {
		log.Error("sync finished with errors",
			"copied", report.Copied,
			"failed", len(report.Errors),
			"error", err,
		)
		return report, err
	}

	log.Info("sync completed",
		"copied", report.Copied,
		"renamed", report.Renamed,
		"deleted", report.Deleted,
		"bytes_copied", report.BytesCopied,
	)
	return report, nil
}

// Status describes how the two sides currently differ.
type Status struct {
	Summary diff.Summary
	Entries []diff.Entry
	Locked  bool
	Holder  *lock.LockInfo
}

// Status compares both sides without mutating anything.
func (s *SyncService) Status(ctx context.Context) (*Status, error) {
	entries, err := s.classify(ctx)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Summary: diff.Summarize(entries),
		Entries: entries,
	}
	if s.lock != nil && s.lock.IsLocked() {
		st.Locked = true
		if holder, err := s.lock.Holder(); err == nil {
			st.Holder = holder
		}
	}
	return st, nil
}

// ForceUnlock removes the bucket lock regardless of holder.
func (s *SyncService) ForceUnlock() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.ForceRelease()
}

func (s *SyncService) classify(ctx context.Context) ([]diff.Entry, error) {
	localRecords, err := s.local.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing local files: %w", err)
	}
	remoteRecords, err := s.remote.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing bucket objects: %w", err)
	}

	localIndex, err := diff.BuildIndex(localRecords)
	if err != nil {
		return nil, fmt.Errorf("local index: %w", err)
	}
	remoteIndex, err := diff.BuildIndex(remoteRecords)
	if err != nil {
		return nil, fmt.Errorf("bucket index: %w", err)
	}

	return diff.Classify(localIndex, remoteIndex), nil
}

// Close releases both stores.
func (s *SyncService) Close() error {
	var lastErr error
	if err := s.local.Close(); err != nil {
		lastErr = err
	}
	if err := s.remote.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

var _ io.Closer = (*SyncService)(nil)
