// Package verify checks that a submission archive follows the expected
// format: a zip named Name-major.minor[.patch].zip containing a single
// top-level directory named after the file, with the entry point, dependency
// list and README inside.
package verify

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9-]+-[0-9]+\.[0-9]+(\.[0-9]+)?\.zip$`)

var requiredFiles = []struct {
	name   string
	reason string
}{
	{"run_game.py", "this file is the entry point; running it should start the game"},
	{"requirements.txt", `this file lists dependencies; create it with "pip freeze > requirements.txt"`},
	{"README.md", "this file should describe the game and the controls"},
}

// Check inspects a submission archive and returns the problems found. A
// non-nil error means the file could not be inspected at all.
func Check(path string) ([]string, error) {
	base := filepath.Base(path)

	if !strings.EqualFold(filepath.Ext(base), ".zip") {
		return nil, fmt.Errorf("%s is not a zip file", base)
	}

	var problems []string

	if !namePattern.MatchString(base) {
		problems = append(problems,
			fmt.Sprintf("%s does not follow the naming convention Name-of-Entry-major.minor.zip, e.g. My-Game-1.0.zip", base))
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", base, err)
	}
	defer zr.Close()

	stem := strings.TrimSuffix(base, filepath.Ext(base))

	topLevel := make(map[string]struct{})
	members := make(map[string]struct{})

	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "./")
		if name == "" {
			continue
		}

		dir, rest, found := strings.Cut(name, "/")
		topLevel[dir] = struct{}{}

		if found && rest != "" {
			member, _, _ := strings.Cut(rest, "/")
			members[dir+"/"+member] = struct{}{}
		}
	}

	if len(topLevel) != 1 {
		dirs := make([]string, 0, len(topLevel))
		for dir := range topLevel {
			dirs = append(dirs, dir)
		}

		sort.Strings(dirs)

		problems = append(problems,
			fmt.Sprintf("archive contains %d top-level entries (%s); it should contain a single directory named %q",
				len(topLevel), strings.Join(dirs, ", "), stem))

		return problems, nil
	}

	var dir string
	for d := range topLevel {
		dir = d
	}

	if dir != stem {
		problems = append(problems,
			fmt.Sprintf("top-level directory is named %q; it should be named %q", dir, stem))
	}

	for _, required := range requiredFiles {
		if _, ok := members[dir+"/"+required.name]; !ok {
			problems = append(problems,
				fmt.Sprintf("archive is missing %q: %s", required.name, required.reason))
		}
	}

	return problems, nil
}
