package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batch-renamer/internal/capture"
	"batch-renamer/internal/config"
	"batch-renamer/internal/pool"
)

// tree writes files (relative slash paths → content) under a fresh temp root.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// snapshot returns every file under root as relative slash path → content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if info.IsDir() {
			return nil
		}
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}

func runner(root string, stdout *bytes.Buffer, mutate func(*config.Config)) *Runner {
	cfg := config.Default()
	cfg.Dir = root
	cfg.Workers = 3
	cfg.Practice = true
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, stdout, zerolog.Nop())
}

func execute(c *config.Config) {
	c.Execute = true
	c.Practice = false
}

func TestRun_TripExample(t *testing.T) {
	root := tree(t, map[string]string{
		"2024/06/trip/b.jpg": "b",
		"2024/06/trip/a.jpg": "a",
	})

	var out bytes.Buffer
	res, err := runner(root, &out, execute).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Planned)
	assert.Empty(t, res.Failures)
	assert.Equal(t, map[string]string{
		"2024/06/trip/06trip0.jpg": "a",
		"2024/06/trip/06trip1.jpg": "b",
	}, snapshot(t, root))

	assert.Contains(t, out.String(), "2 files in")
	assert.Contains(t, out.String(), "Renaming executed.")
}

func TestRun_PracticeMutatesNothing(t *testing.T) {
	files := map[string]string{
		"2024/06/trip/b.jpg":  "b",
		"2024/06/trip/a.jpg":  "a",
		"2024/07/beach/c.jpg": "c",
		"2024/07/notes.txt":   "n",
	}
	root := tree(t, files)
	before := snapshot(t, root)

	var out bytes.Buffer
	res, err := runner(root, &out, func(c *config.Config) { c.Verbose = true }).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Planned)
	assert.Equal(t, before, snapshot(t, root))
	assert.Contains(t, out.String(), "This was a practice run.")
	assert.Contains(t, out.String(), filepath.Join(root, "2024", "07", "beach", "0.brtmp")+" >> "+filepath.Join(root, "2024", "07", "beach", "07beach0.jpg"))
}

func TestRun_RerunDoesNotRecreateOldNames(t *testing.T) {
	root := tree(t, map[string]string{
		"a/b/c/zeta.jpg":  "z",
		"a/b/c/alpha.jpg": "a",
		"a/b/c/mid.jpg":   "m",
	})

	var out bytes.Buffer
	_, err := runner(root, &out, execute).Run(context.Background())
	require.NoError(t, err)
	first := snapshot(t, root)

	_, err = runner(root, &out, execute).Run(context.Background())
	require.NoError(t, err)
	second := snapshot(t, root)

	want := map[string]string{
		"a/b/c/bc0.jpg": "a",
		"a/b/c/bc1.jpg": "m",
		"a/b/c/bc2.jpg": "z",
	}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
}

func TestRun_CollisionWithExistingDestinationName(t *testing.T) {
	root := tree(t, map[string]string{
		"p/y/z/x.jpg":   "x",
		"p/y/z/yz0.jpg": "old yz0",
	})

	var out bytes.Buffer
	res, err := runner(root, &out, execute).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, res.Failures)
	assert.Equal(t, map[string]string{
		"p/y/z/yz0.jpg": "x",
		"p/y/z/yz1.jpg": "old yz0",
	}, snapshot(t, root))
}

func TestRun_ShallowFilesAndEmptyDirs(t *testing.T) {
	root := tree(t, map[string]string{
		"top.jpg":        "t",
		"one/level.jpg":  "l",
		"one/two/x.png":  "p",
		"one/two/y.jpeg": "j",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "one", "empty", "deeper"), 0o755))
	before := snapshot(t, root)

	var out bytes.Buffer
	res, err := runner(root, &out, execute).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.Planned)
	assert.Empty(t, res.Failures)
	assert.Equal(t, before, snapshot(t, root))
	assert.Contains(t, out.String(), "0 files in")
}

func TestRun_SortByCaptureTime(t *testing.T) {
	root := tree(t, map[string]string{
		"a/b/c/1.jpg": "newest",
		"a/b/c/2.jpg": "oldest",
		"a/b/c/3.jpg": "no exif",
	})

	keys := map[string]string{
		filepath.Join(root, "a", "b", "c", "1.jpg"): "2024:01:03 00:00:00",
		filepath.Join(root, "a", "b", "c", "2.jpg"): "2024:01:01 00:00:00",
	}

	var out bytes.Buffer
	r := runner(root, &out, func(c *config.Config) {
		execute(c)
		c.Sort = true
	})
	r.Oracle = capture.OracleFunc(func(path string) string { return keys[path] })

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"a/b/c/bc0.jpg": "no exif",
		"a/b/c/bc1.jpg": "oldest",
		"a/b/c/bc2.jpg": "newest",
	}, snapshot(t, root))
	assert.Contains(t, out.String(), "Sorted by EXIF date.")
}

func TestRun_QuietPrintsNothing(t *testing.T) {
	root := tree(t, map[string]string{"a/b/c/1.jpg": "1"})

	var out bytes.Buffer
	_, err := runner(root, &out, func(c *config.Config) {
		c.Verbose = true
		c.Quiet = true
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, out.String())
}

func TestRun_InMemoryFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/lib")
	for _, f := range []string{"2023/12/eve/b.JPG", "2023/12/eve/a.jpg", "2023/12/eve/c.jpg"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(f), 0o644))
	}

	var out bytes.Buffer
	r := runner(root, &out, func(c *config.Config) {
		execute(c)
		c.Glob = "*.{jpg,JPG}"
	})
	r.Fs = fs

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Failures)

	entries, err := afero.ReadDir(fs, filepath.Join(root, "2023", "12", "eve"))
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"12eve0.jpg", "12eve1.JPG", "12eve2.jpg"}, names)
}

func TestRun_CancelledBeforePlanning(t *testing.T) {
	root := tree(t, map[string]string{"a/b/c/1.jpg": "1"})
	before := snapshot(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := runner(root, &out, execute).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, snapshot(t, root))
}

func TestRun_InvalidWorkerCount(t *testing.T) {
	var out bytes.Buffer
	_, err := runner(t.TempDir(), &out, func(c *config.Config) { c.Workers = -1 }).Run(context.Background())

	assert.ErrorIs(t, err, pool.ErrInvalidSize)
	assert.True(t, strings.HasPrefix(err.Error(), "start worker pool"))
}
