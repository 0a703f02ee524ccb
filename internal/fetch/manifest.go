package fetch

import "context"

// File describes one remote file belonging to a challenge download. Name is a
// slash-separated path relative to the target directory, unique within the
// manifest.
type File struct {
	Name string
	Size int64
	URL  string
}

// Manifest is the ordered set of files that constitute a challenge download.
// It is rebuilt from the remote index on every invocation and never persisted.
type Manifest []File

// Resolver obtains the manifest for a challenge from the remote index.
type Resolver interface {
	Resolve(ctx context.Context, challenge int) (Manifest, error)
}

// LocalState classifies a manifest file against the target directory.
type LocalState int

const (
	StateAbsent LocalState = iota
	StatePartial
	StateComplete
)

func (s LocalState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// PlanEntry pairs a file descriptor with its local state and the byte offset
// the next fetch should resume from. ResumeOffset is never greater than the
// remote size.
type PlanEntry struct {
	File         File
	State        LocalState
	ResumeOffset int64
}
