package domain

// Direction selects which side is authoritative for a sync run.
type Direction string

const (
	// DirectionPush overwrites the bucket with the local tree
	DirectionPush Direction = "push"

	// DirectionPull overwrites the local tree with the bucket
	DirectionPull Direction = "pull"
)

// IsValid checks if the direction is a known value.
func (d Direction) IsValid() bool {
	return d == DirectionPush || d == DirectionPull
}

// ActionType represents the type of sync action.
type ActionType string

const (
	ActionKeep              ActionType = "keep"
	ActionCopyLocalToRemote ActionType = "copy-local-to-remote"
	ActionCopyRemoteToLocal ActionType = "copy-remote-to-local"
	ActionRenameLocal       ActionType = "rename-local"
	ActionRenameRemote      ActionType = "rename-remote"
	ActionDeleteLocal       ActionType = "delete-local"
	ActionDeleteRemote      ActionType = "delete-remote"
)

// Mutates reports whether executing the action changes either side.
func (t ActionType) Mutates() bool {
	return t != ActionKeep
}

// Action is a single operation in a sync plan.
type Action struct {
	// Type of action to perform
	Type ActionType

	// Path is the relative path being operated on
	Path string

	// Target is the new relative path for renames, empty otherwise
	Target string

	// Local file metadata, nil when the path has no local side
	Local *FileRecord

	// Remote file metadata, nil when the path has no remote side
	Remote *FileRecord

	// Reason explains why this action was chosen
	Reason string
}

// PlanStats provides summary statistics for a sync plan.
type PlanStats struct {
	TotalPaths    int
	Keeps         int
	Copies        int
	Renames       int
	Deletes       int
	BytesToCopy   int64
	NameConflicts int
}

// SyncPlan is the ordered list of actions computed from a diff.
// Actions for the same path appear in dependency order: the protective
// rename or delete always precedes the copy that overwrites it.
type SyncPlan struct {
	Direction Direction
	Safe      bool
	Actions   []Action
	Stats     PlanStats
}

// Empty reports whether the plan contains no mutating actions.
func (p *SyncPlan) Empty() bool {
	for _, a := range p.Actions {
		if a.Type.Mutates() {
			return false
		}
	}
	return true
}
