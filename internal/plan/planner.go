package plan

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"batch-renamer/internal/capture"
)

// Planner lists and orders the matching files of a directory.
type Planner struct {
	Fs   afero.Fs
	Glob string // matched against base names

	// Sort orders files by Oracle key instead of by path.
	Sort   bool
	Oracle capture.Oracle
}

// Plan returns the renames for dir. A directory without matches yields an
// empty group. An error means dir could not be listed.
func (p *Planner) Plan(dir string) (Group, error) {
	files, err := p.Match(dir)
	if err != nil {
		return Group{Dir: dir}, err
	}

	if p.Sort && p.Oracle != nil {
		files = p.byCaptureTime(files)
	}

	return New(dir, files), nil
}

// Match returns the paths of the non-directory entries of dir whose names
// match the glob, in lexical order.
func (p *Planner) Match(dir string) ([]string, error) {
	entries, err := afero.ReadDir(p.Fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, StagingMarker) {
			continue
		}

		ok, err := doublestar.Match(p.Glob, name)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", p.Glob, err)
		}
		if ok {
			files = append(files, filepath.Join(dir, name))
		}
	}

	slices.Sort(files)
	return files, nil
}

// byCaptureTime stable-sorts files by their oracle key, so files sharing a key
// keep their lexical order and Unknown keys come first.
func (p *Planner) byCaptureTime(files []string) []string {
	type keyed struct {
		path string
		key  string
	}

	ks := make([]keyed, len(files))
	for i, f := range files {
		ks[i] = keyed{path: f, key: p.Oracle.Key(f)}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		return cmp.Compare(a.key, b.key)
	})

	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.path
	}
	return out
}
