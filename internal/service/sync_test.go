package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nrollins/bucketsync/internal/core/hatch"
	"github.com/nrollins/bucketsync/internal/domain"
	"github.com/nrollins/bucketsync/internal/lock"
	"github.com/nrollins/bucketsync/internal/store/local"
	"github.com/nrollins/bucketsync/internal/store/memory"
	"github.com/nrollins/bucketsync/internal/testutil"
)

func newTestService(t *testing.T) (*SyncService, *memory.Store, *memory.Store) {
	t.Helper()
	local := memory.New()
	remote := memory.New()
	svc := NewWithStores(local, remote, nil)
	t.Cleanup(func() { svc.Close() })
	return svc, local, remote
}

func TestPushCopiesNewFiles(t *testing.T) {
	svc, local, remote := newTestService(t)
	local.Seed("docs/a.txt", "hello world")
	local.Seed("b.txt", "content b")

	report, err := svc.Push(context.Background(), true)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if report.Copied != 2 {
		t.Errorf("Copied = %d, want 2", report.Copied)
	}
	if got := string(remote.Content("docs/a.txt")); got != "hello world" {
		t.Errorf("remote content = %q, want %q", got, "hello world")
	}
}

func TestPullSafeKeepsConflictingLocal(t *testing.T) {
	svc, local, remote := newTestService(t)
	local.Seed("a.txt", "local version")
	remote.Seed("a.txt", "remote version")

	report, err := svc.Pull(context.Background(), true)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if report.Renamed != 1 || report.Copied != 1 {
		t.Errorf("report = %+v, want 1 rename and 1 copy", report)
	}

	if got := string(local.Content("a.txt")); got != "remote version" {
		t.Errorf("a.txt = %q, want remote version", got)
	}
	if got := string(local.Content("[loc0]a.txt")); got != "local version" {
		t.Errorf("[loc0]a.txt = %q, want preserved local version", got)
	}
}

func TestPushUnsafeDeletesRemoteOnly(t *testing.T) {
	svc, local, remote := newTestService(t)
	local.Seed("keep.txt", "same")
	remote.Seed("keep.txt", "same")
	remote.Seed("stale.txt", "old")

	report, err := svc.Push(context.Background(), false)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if report.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", report.Deleted)
	}
	if ok, _ := remote.Exists(context.Background(), "stale.txt"); ok {
		t.Error("stale.txt should be deleted from remote")
	}
}

func TestSyncIdempotent(t *testing.T) {
	svc, local, _ := newTestService(t)
	local.Seed("a.txt", "hello")

	if _, err := svc.Push(context.Background(), true); err != nil {
		t.Fatalf("first Push() error = %v", err)
	}

	report, err := svc.Push(context.Background(), true)
	if err != nil {
		t.Fatalf("second Push() error = %v", err)
	}
	if report.Copied != 0 || report.Renamed != 0 || report.Deleted != 0 {
		t.Errorf("second push mutated: %+v", report)
	}
}

func TestPlanDoesNotMutate(t *testing.T) {
	svc, local, remote := newTestService(t)
	local.Seed("a.txt", "local")
	remote.Seed("a.txt", "remote")

	plan, err := svc.Plan(context.Background(), domain.DirectionPush, false)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Empty() {
		t.Error("plan should contain actions for the conflict")
	}

	if got := string(remote.Content("a.txt")); got != "remote" {
		t.Errorf("Plan() changed remote content: %q", got)
	}
}

func TestPlanRejectsInvalidDirection(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Plan(context.Background(), domain.Direction("sideways"), true); err == nil {
		t.Fatal("Plan() with bad direction should fail")
	}
}

func TestStatus(t *testing.T) {
	svc, local, remote := newTestService(t)
	local.Seed("same.txt", "x")
	remote.Seed("same.txt", "x")
	local.Seed("only-local.txt", "y")
	remote.Seed("only-remote.txt", "z")
	local.Seed("clash.txt", "1")
	remote.Seed("clash.txt", "2")

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Summary.Matches != 1 {
		t.Errorf("Matches = %d, want 1", st.Summary.Matches)
	}
	if st.Summary.NameConflicts != 1 {
		t.Errorf("NameConflicts = %d, want 1", st.Summary.NameConflicts)
	}
	if st.Summary.LocalOnly != 1 || st.Summary.RemoteOnly != 1 {
		t.Errorf("Summary = %+v", st.Summary)
	}
	if st.Locked {
		t.Error("Locked = true with no lock configured")
	}
}

func TestSyncHeldLock(t *testing.T) {
	dir := t.TempDir()
	held, err := lock.New(dir, "b")
	if err != nil {
		t.Fatalf("lock.New() error = %v", err)
	}
	if err := held.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer held.Release()

	other, err := lock.New(dir, "b")
	if err != nil {
		t.Fatalf("lock.New() error = %v", err)
	}
	svc := NewWithStores(memory.New(), memory.New(), other)
	defer svc.Close()

	if _, err := svc.Push(context.Background(), true); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("Push() error = %v, want ErrSyncInProgress", err)
	}
}

func TestSyncReleasesLock(t *testing.T) {
	dir := t.TempDir()
	lk, err := lock.New(dir, "b")
	if err != nil {
		t.Fatalf("lock.New() error = %v", err)
	}
	svc := NewWithStores(memory.New(), memory.New(), lk)
	defer svc.Close()

	if _, err := svc.Push(context.Background(), true); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if lk.IsLocked() {
		t.Error("lock should be released after sync")
	}
}

func TestPushFromDisk(t *testing.T) {
	dir := t.TempDir()
	payload := testutil.RandomString(256)
	testutil.SeedTree(t, dir, map[string]string{
		"a.txt":          "hello world",
		"docs/deep/b.md": payload,
	})

	localStore, err := local.New(dir, hatch.NewDefaultCalculator(), hatch.MD5)
	if err != nil {
		t.Fatalf("local.New() error = %v", err)
	}
	remote := memory.New()
	svc := NewWithStores(localStore, remote, nil)
	defer svc.Close()

	report, err := svc.Push(context.Background(), true)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if report.Copied != 2 {
		t.Errorf("Copied = %d, want 2", report.Copied)
	}
	if got := string(remote.Content("docs/deep/b.md")); got != payload {
		t.Errorf("nested file content mismatch (%d bytes)", len(got))
	}

	// a freshly pushed pair is a no-op on the next run
	report, err = svc.Push(context.Background(), true)
	if err != nil {
		t.Fatalf("second Push() error = %v", err)
	}
	if report.Copied != 0 {
		t.Errorf("second push copied %d files", report.Copied)
	}
}
