// Package diff classifies the relative paths of two file sets into the
// four relationship states the sync policy operates on.
package diff

import (
	"fmt"
	"sort"

	"github.com/nrollins/bucketsync/internal/domain"
)

// Entry is the classification of one relative path.
type Entry struct {
	Path     string
	Relation domain.Relation

	// Local is nil for remote-only paths
	Local *domain.FileRecord

	// Remote is nil for local-only paths
	Remote *domain.FileRecord
}

// BuildIndex converts a record list into a path-keyed map.
// Returns domain.ErrConflict if two records normalize to the same path:
// the diff would silently drop one of them otherwise.
func BuildIndex(records []domain.FileRecord) (map[string]domain.FileRecord, error) {
	index := make(map[string]domain.FileRecord, len(records))
	for _, rec := range records {
		if _, dup := index[rec.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", domain.ErrConflict, rec.Path)
		}
		index[rec.Path] = rec
	}
	return index, nil
}

// Classify compares the local and remote indexes and returns one entry
// per path present on either side, sorted by path for deterministic plans.
func Classify(local, remote map[string]domain.FileRecord) []Entry {
	paths := make(map[string]bool, len(local)+len(remote))
	for p := range local {
		paths[p] = true
	}
	for p := range remote {
		paths[p] = true
	}

	entries := make([]Entry, 0, len(paths))
	for p := range paths {
		loc, hasLocal := local[p]
		rem, hasRemote := remote[p]

		var e Entry
		e.Path = p
		switch {
		case hasLocal && hasRemote && sameContent(loc, rem):
			e.Relation = domain.RelMatch
			e.Local, e.Remote = &loc, &rem
		case hasLocal && hasRemote:
			e.Relation = domain.RelNameConflict
			e.Local, e.Remote = &loc, &rem
		case hasLocal:
			e.Relation = domain.RelLocalOnly
			e.Local = &loc
		default:
			e.Relation = domain.RelRemoteOnly
			e.Remote = &rem
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// sameContent reports whether two same-path records carry the same
// content. An empty hatch means the signature is unknown (a file too
// large to hash, or a multipart object with no recorded signature);
// unknown pairs count as matching so repeated runs do not keep
// renaming them aside.
func sameContent(local, remote domain.FileRecord) bool {
	if local.Hatch == "" || remote.Hatch == "" {
		return true
	}
	return local.Hatch == remote.Hatch
}

// Summary counts entries per relation, for status output and logging.
type Summary struct {
	Matches       int
	NameConflicts int
	LocalOnly     int
	RemoteOnly    int
}

// Summarize tallies the relations of a classified diff.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		switch e.Relation {
		case domain.RelMatch:
			s.Matches++
		case domain.RelNameConflict:
			s.NameConflicts++
		case domain.RelLocalOnly:
			s.LocalOnly++
		case domain.RelRemoteOnly:
			s.RemoteOnly++
		}
	}
	return s
}
