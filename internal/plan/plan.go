// Package plan turns the files of one directory into an ordered list of
// staged renames.
//
// Every matched file gets a zero-based index in sorted order. From the index
// two names are derived:
//
//	staging:     {dir}/{i}.brtmp
//	destination: {dir}/{tag}{i}.{ext}
//
// where tag joins the directory's last two path segments, farther segment
// first: files in photos/2024/06/trip become 06trip0.jpg, 06trip1.jpg, ...
// Staging names live in their own namespace, so moving every source to its
// staging name first and only then to its destination never overwrites a file,
// even when a destination equals some other file's current name.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StagingMarker is appended to the index to form a staging name. Files already
// carrying it are never matched.
const StagingMarker = ".brtmp"

// Rename is one file's trip from Source through Staging to Destination.
type Rename struct {
	Source      string
	Staging     string
	Destination string
}

// Group is a directory together with the renames planned for it, in index
// order.
type Group struct {
	Dir     string
	Renames []Rename
}

// Flatten concatenates the renames of every group.
func Flatten(groups []Group) []Rename {
	n := 0
	for _, g := range groups {
		n += len(g.Renames)
	}

	out := make([]Rename, 0, n)
	for _, g := range groups {
		out = append(out, g.Renames...)
	}
	return out
}

// Tag returns the destination prefix for dir: its last two path segments
// concatenated, farther segment first. Shallower paths use what they have.
func Tag(dir string) string {
	var segs []string
	for _, s := range strings.Split(filepath.Clean(dir), string(filepath.Separator)) {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}

	if len(segs) > 2 {
		segs = segs[len(segs)-2:]
	}
	return strings.Join(segs, "")
}

// StagingName returns the staging path of the i-th file in dir.
func StagingName(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s", i, StagingMarker))
}

// DestinationName returns the final path of the i-th file in dir. The original
// extension is kept; a file without one ends in a bare dot.
func DestinationName(dir string, i int, source string) string {
	ext := strings.TrimPrefix(filepath.Ext(source), ".")
	return filepath.Join(dir, fmt.Sprintf("%s%d.%s", Tag(dir), i, ext))
}

// New builds the renames for files, which must already be in their final
// order and all live in dir.
func New(dir string, files []string) Group {
	g := Group{Dir: dir, Renames: make([]Rename, len(files))}
	for i, f := range files {
		g.Renames[i] = Rename{
			Source:      f,
			Staging:     StagingName(dir, i),
			Destination: DestinationName(dir, i, f),
		}
	}
	return g
}
