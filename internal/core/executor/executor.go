// Package executor applies a sync plan against the two stores.
package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/nrollins/bucketsync/internal/domain"
	"github.com/nrollins/bucketsync/internal/progress"
	"github.com/nrollins/bucketsync/internal/store"
)

// Report summarizes what an Apply run actually did.
type Report struct {
	Kept        int
	Copied      int
	Renamed     int
	Deleted     int
	Skipped     int
	BytesCopied int64

	// Errors holds one entry per failed action; a file whose protective
	// rename failed contributes that failure only, the dependent copy is
	// counted in Skipped
	Errors []*domain.TransferError
}

// Executor applies plans sequentially, one action at a time.
type Executor struct {
	reporter progress.Reporter
}

// New creates an executor reporting progress to the given reporter.
// A nil reporter disables progress reporting.
func New(reporter progress.Reporter) *Executor {
	if reporter == nil {
		reporter = progress.NullReporter{}
	}
	return &Executor{reporter: reporter}
}

// Apply executes every action of the plan in order.
// A failed action aborts the remaining actions for that same path but
// independent paths continue; the aggregated failures come back as a
// PartialError alongside the report.
func (e *Executor) Apply(ctx context.Context, plan *domain.SyncPlan, local, remote store.Store) (*Report, error) {
	report := &Report{}
	e.reporter.SetTotal(plan.Stats.Copies, plan.Stats.BytesToCopy)

	failedPaths := make(map[string]bool)

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if failedPaths[action.Path] {
			report.Skipped++
			continue
		}

		if err := e.apply(ctx, action, local, remote, report); err != nil {
			failedPaths[action.Path] = true
			te := &domain.TransferError{Op: string(action.Type), Path: action.Path, Err: err}
			report.Errors = append(report.Errors, te)
			e.reporter.Error(te)
		}
	}

	if len(report.Errors) > 0 {
		return report, &domain.PartialError{Errors: report.Errors}
	}
	return report, nil
}

func (e *Executor) apply(ctx context.Context, action domain.Action, local, remote store.Store, report *Report) error {
	switch action.Type {
	case domain.ActionKeep:
		report.Kept++
		return nil

	case domain.ActionCopyLocalToRemote:
		if action.Local == nil {
			return fmt.Errorf("%w: copy without local record", domain.ErrConflict)
		}
		if err := e.copy(ctx, action.Path, *action.Local, local, remote); err != nil {
			return err
		}
		report.Copied++
		report.BytesCopied += action.Local.Size
		return nil

	case domain.ActionCopyRemoteToLocal:
		if action.Remote == nil {
			return fmt.Errorf("%w: copy without remote record", domain.ErrConflict)
		}
		if err := e.copy(ctx, action.Path, *action.Remote, remote, local); err != nil {
			return err
		}
		report.Copied++
		report.BytesCopied += action.Remote.Size
		return nil

	case domain.ActionRenameLocal:
		if err := local.Rename(ctx, action.Path, action.Target); err != nil {
			return err
		}
		report.Renamed++
		return nil

	case domain.ActionRenameRemote:
		if err := remote.Rename(ctx, action.Path, action.Target); err != nil {
			return err
		}
		report.Renamed++
		return nil

	case domain.ActionDeleteLocal:
		if err := local.Delete(ctx, action.Path); err != nil {
			return err
		}
		report.Deleted++
		return nil

	case domain.ActionDeleteRemote:
		if err := remote.Delete(ctx, action.Path); err != nil {
			return err
		}
		report.Deleted++
		return nil

	default:
		return fmt.Errorf("unsupported action type: %s", action.Type)
	}
}

// copy streams one file from src to dst, reporting transfer progress.
func (e *Executor) copy(ctx context.Context, path string, rec domain.FileRecord, src, dst store.Store) error {
	e.reporter.Start(path, rec.Size)

	reader, err := src.Read(ctx, path)
	if err != nil {
		return err
	}
	defer reader.Close()

	var r io.Reader = progress.NewProgressReader(reader, e.reporter)
	if err := dst.Write(ctx, rec, r); err != nil {
		return err
	}

	e.reporter.Complete()
	return nil
}
