// Package planner turns a classified diff into an ordered sync plan by
// applying the push/pull x safe/unsafe policy table.
//
// The table, per relation:
//
//	match          -> keep (any direction, any mode)
//	name-conflict  -> displace the destination copy (rename when safe,
//	                  delete when unsafe), then copy from the
//	                  authoritative side
//	only on the authoritative side -> copy across
//	only on the pruned side        -> rename when safe, delete when unsafe
package planner

import (
	"fmt"
	"strings"

	"github.com/nrollins/bucketsync/internal/core/diff"
	"github.com/nrollins/bucketsync/internal/core/revision"
	"github.com/nrollins/bucketsync/internal/domain"
)

// Plan applies the policy table to a classified diff.
// Entries arrive sorted by path; the plan preserves that order, with the
// per-path protective rename or delete always preceding the copy that
// overwrites the old name.
func Plan(entries []diff.Entry, direction domain.Direction, safe bool) *domain.SyncPlan {
	plan := &domain.SyncPlan{
		Direction: direction,
		Safe:      safe,
		Actions:   make([]domain.Action, 0, len(entries)),
	}

	// Rename targets must not collide with anything on either side,
	// nor with targets already handed out in this plan.
	taken := make(map[string]bool, len(entries))
	for _, e := range entries {
		taken[e.Path] = true
	}

	for _, e := range entries {
		switch e.Relation {
		case domain.RelMatch:
			plan.Actions = append(plan.Actions, domain.Action{
				Type:   domain.ActionKeep,
				Path:   e.Path,
				Local:  e.Local,
				Remote: e.Remote,
				Reason: "names and hatches match",
			})

		case domain.RelNameConflict:
			plan.Actions = append(plan.Actions, planConflict(e, direction, safe, taken)...)

		case domain.RelLocalOnly:
			if direction == domain.DirectionPush {
				plan.Actions = append(plan.Actions, domain.Action{
					Type:   domain.ActionCopyLocalToRemote,
					Path:   e.Path,
					Local:  e.Local,
					Reason: "file exists only locally",
				})
			} else {
				plan.Actions = append(plan.Actions, planPrune(e, direction, safe, taken))
			}

		case domain.RelRemoteOnly:
			if direction == domain.DirectionPull {
				plan.Actions = append(plan.Actions, domain.Action{
					Type:   domain.ActionCopyRemoteToLocal,
					Path:   e.Path,
					Remote: e.Remote,
					Reason: "file exists only in bucket",
				})
			} else {
				plan.Actions = append(plan.Actions, planPrune(e, direction, safe, taken))
			}
		}
	}

	calculateStats(plan, entries)
	return plan
}

// planConflict handles a name clash with differing content: the side
// being overwritten loses its copy, renamed away first in safe mode.
func planConflict(e diff.Entry, direction domain.Direction, safe bool, taken map[string]bool) []domain.Action {
	actions := make([]domain.Action, 0, 2)

	if direction == domain.DirectionPush {
		if safe {
			target := revision.Unique(e.Path, revision.PrefixRemote, taken)
			taken[target] = true
			actions = append(actions, domain.Action{
				Type:   domain.ActionRenameRemote,
				Path:   e.Path,
				Target: target,
				Remote: e.Remote,
				Reason: "preserving superseded remote copy",
			})
		} else {
			actions = append(actions, domain.Action{
				Type:   domain.ActionDeleteRemote,
				Path:   e.Path,
				Remote: e.Remote,
				Reason: "discarding superseded remote copy",
			})
		}
		actions = append(actions, domain.Action{
			Type:   domain.ActionCopyLocalToRemote,
			Path:   e.Path,
			Local:  e.Local,
			Remote: e.Remote,
			Reason: "hatches differ, local is authoritative",
		})
		return actions
	}

	if safe {
		target := revision.Unique(e.Path, revision.PrefixLocal, taken)
		taken[target] = true
		actions = append(actions, domain.Action{
			Type:   domain.ActionRenameLocal,
			Path:   e.Path,
			Target: target,
			Local:  e.Local,
			Reason: "preserving superseded local copy",
		})
	} else {
		actions = append(actions, domain.Action{
			Type:   domain.ActionDeleteLocal,
			Path:   e.Path,
			Local:  e.Local,
			Reason: "discarding superseded local copy",
		})
	}
	actions = append(actions, domain.Action{
		Type:   domain.ActionCopyRemoteToLocal,
		Path:   e.Path,
		Local:  e.Local,
		Remote: e.Remote,
		Reason: "hatches differ, bucket is authoritative",
	})
	return actions
}

// planPrune handles a file that exists only on the side being overwritten.
// Safe mode marks it with a revision name instead of deleting it.
func planPrune(e diff.Entry, direction domain.Direction, safe bool, taken map[string]bool) domain.Action {
	if direction == domain.DirectionPush {
		if safe {
			target := revision.Unique(e.Path, revision.PrefixRemote, taken)
			taken[target] = true
			return domain.Action{
				Type:   domain.ActionRenameRemote,
				Path:   e.Path,
				Target: target,
				Remote: e.Remote,
				Reason: "absent locally, preserved under revision name",
			}
		}
		return domain.Action{
			Type:   domain.ActionDeleteRemote,
			Path:   e.Path,
			Remote: e.Remote,
			Reason: "absent locally, pruned",
		}
	}

	if safe {
		target := revision.Unique(e.Path, revision.PrefixLocal, taken)
		taken[target] = true
		return domain.Action{
			Type:   domain.ActionRenameLocal,
			Path:   e.Path,
			Target: target,
			Local:  e.Local,
			Reason: "absent in bucket, preserved under revision name",
		}
	}
	return domain.Action{
		Type:   domain.ActionDeleteLocal,
		Path:   e.Path,
		Local:  e.Local,
		Reason: "absent in bucket, pruned",
	}
}

// calculateStats computes summary statistics for a plan
func calculateStats(plan *domain.SyncPlan, entries []diff.Entry) {
	plan.Stats.TotalPaths = len(entries)
	for _, e := range entries {
		if e.Relation == domain.RelNameConflict {
			plan.Stats.NameConflicts++
		}
	}
	for _, a := range plan.Actions {
		switch a.Type {
		case domain.ActionKeep:
			plan.Stats.Keeps++
		case domain.ActionCopyLocalToRemote:
			plan.Stats.Copies++
			if a.Local != nil {
				plan.Stats.BytesToCopy += a.Local.Size
			}
		case domain.ActionCopyRemoteToLocal:
			plan.Stats.Copies++
			if a.Remote != nil {
				plan.Stats.BytesToCopy += a.Remote.Size
			}
		case domain.ActionRenameLocal, domain.ActionRenameRemote:
			plan.Stats.Renames++
		case domain.ActionDeleteLocal, domain.ActionDeleteRemote:
			plan.Stats.Deletes++
		}
	}
}

// Describe renders the plan for human review: one line per mutating
// action plus a trailing summary.
func Describe(plan *domain.SyncPlan) string {
	var b strings.Builder
	for _, a := range plan.Actions {
		if !a.Type.Mutates() {
			continue
		}
		if a.Target != "" {
			fmt.Fprintf(&b, "%-22s %s -> %s\n", a.Type, a.Path, a.Target)
		} else {
			fmt.Fprintf(&b, "%-22s %s\n", a.Type, a.Path)
		}
	}

	mode := "unsafe"
	if plan.Safe {
		mode = "safe"
	}
	fmt.Fprintf(&b, "%s (%s): %d keep, %d copy, %d rename, %d delete\n",
		plan.Direction, mode,
		plan.Stats.Keeps, plan.Stats.Copies, plan.Stats.Renames, plan.Stats.Deletes)
	return b.String()
}
