// Package scan discovers the directories whose files get renamed.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// MinDepth is the shallowest directory depth that is renamed into. Names are
// built from two ancestor segments, so the root (depth 0) and its immediate
// children (depth 1) are never yielded.
const MinDepth = 2

// Dirs walks root and returns every directory at depth MinDepth or deeper.
// Directories that cannot be read are logged as warnings and skipped;
// symlinks are not followed. Callers must not rely on the order of the result.
func Dirs(fs afero.Fs, root string, log zerolog.Logger) []string {
	root = filepath.Clean(root)

	var dirs []string
	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip errors, continue walking
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if Depth(root, path) >= MinDepth {
			dirs = append(dirs, path)
		}
		return nil
	})

	return dirs
}

// Depth returns the number of path segments separating path from root.
// Depth(root, root) is 0.
func Depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
