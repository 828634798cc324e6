package domain

import "time"

// FileRecord describes one file on either side of the sync.
type FileRecord struct {
	// Path is the slash-normalized path relative to the tree root
	Path string

	// Hatch is the content signature (hex digest)
	// Two records with equal Path and equal Hatch are the same file
	Hatch string

	// Size in bytes
	Size int64

	// ModTime is the last modification time (zero for remote objects
	// whose store does not report one)
	ModTime time.Time
}

// Matches reports whether the two records carry the same content.
// An empty hatch on either side means the signature is unknown and
// the records pass as matching.
func (f FileRecord) Matches(other FileRecord) bool {
	if f.Path != other.Path {
		return false
	}
	if f.Hatch == "" || other.Hatch == "" {
		return true
	}
	return f.Hatch == other.Hatch
}

// Relation classifies a relative path present on either side.
type Relation int

const (
	// RelMatch means the path exists on both sides with equal hatches
	RelMatch Relation = iota
	// RelNameConflict means the path exists on both sides with differing hatches
	RelNameConflict
	// RelLocalOnly means the path exists only in the local tree
	RelLocalOnly
	// RelRemoteOnly means the path exists only in the bucket
	RelRemoteOnly
)

// String returns the relation name used in logs and status output.
func (r Relation) String() string {
	switch r {
	case RelMatch:
		return "match"
	case RelNameConflict:
		return "name-conflict"
	case RelLocalOnly:
		return "local-only"
	case RelRemoteOnly:
		return "remote-only"
	default:
		return "unknown"
	}
}
