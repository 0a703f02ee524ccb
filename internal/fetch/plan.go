package fetch

import (
	"fmt"
	"os"
	"path/filepath"
)

// BuildPlan classifies every manifest file against the target directory and
// computes the offset the next fetch should resume from. It only performs
// local stats; no network state is consulted. This is what makes rerunning an
// aborted invocation cheap: only partial or absent files are fetched again.
func BuildPlan(manifest Manifest, dir string) ([]PlanEntry, error) {
	plan := make([]PlanEntry, 0, len(manifest))

	for _, file := range manifest {
		entry, err := planFile(file, dir)
		if err != nil {
			return nil, err
		}

		plan = append(plan, entry)
	}

	return plan, nil
}

func planFile(file File, dir string) (PlanEntry, error) {
	entry := PlanEntry{File: file, State: StateAbsent}

	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(file.Name)))
	if err != nil {
		if os.IsNotExist(err) {
			return entry, nil
		}

		return entry, fmt.Errorf("failed to stat %s: %w", file.Name, err)
	}

	switch size := info.Size(); {
	case size == file.Size:
		entry.State = StateComplete
		entry.ResumeOffset = file.Size
	case size > file.Size:
		// Corruption or a mismatched prior run. Never resume with a negative
		// remainder: the next fetch truncates and starts over.
		entry.State = StateAbsent
	case size > 0:
		entry.State = StatePartial
		entry.ResumeOffset = size
	}

	return entry, nil
}
