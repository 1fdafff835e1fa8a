// Package batch runs one complete renaming pass: discover directories, plan
// every directory, execute the staged rename, and print the summary.
package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"batch-renamer/internal/capture"
	"batch-renamer/internal/config"
	"batch-renamer/internal/logging"
	"batch-renamer/internal/plan"
	"batch-renamer/internal/pool"
	"batch-renamer/internal/rename"
	"batch-renamer/internal/report"
	"batch-renamer/internal/scan"
)

// Runner wires the renaming components together for a validated Config.
type Runner struct {
	Cfg    config.Config
	Fs     afero.Fs
	Oracle capture.Oracle // used only when Cfg.Sort is set
	Stdout io.Writer      // narration and summary
	Log    zerolog.Logger
}

// New returns a Runner over the real filesystem with the EXIF oracle.
func New(cfg config.Config, stdout io.Writer, log zerolog.Logger) *Runner {
	fs := afero.NewOsFs()
	return &Runner{
		Cfg:    cfg,
		Fs:     fs,
		Oracle: capture.NewExifOracle(fs),
		Stdout: stdout,
		Log:    log,
	}
}

// Run performs the pass. It returns an error only for failures that prevent
// the pass from starting or finishing planning; per-file rename failures are
// reported in the result.
func (r *Runner) Run(ctx context.Context) (rename.Result, error) {
	start := time.Now()

	workers := r.Cfg.Workers
	if workers == 0 {
		workers = pool.DefaultSize()
	}

	p, err := pool.New(workers, logging.Component(r.Log, "pool"))
	if err != nil {
		return rename.Result{}, fmt.Errorf("start worker pool: %w", err)
	}
	defer p.Close()

	dirs := scan.Dirs(r.Fs, r.Cfg.Dir, logging.Component(r.Log, "scan"))
	r.Log.Debug().Int("dirs", len(dirs)).Str("root", r.Cfg.Dir).Msg("scanned")

	groups, err := r.plan(ctx, dirs, workers)
	if err != nil {
		return rename.Result{}, err
	}
	renames := plan.Flatten(groups)

	exec := &rename.Executor{
		Fs:     r.Fs,
		Pool:   p,
		DryRun: r.Cfg.DryRun(),
		Log:    logging.Component(r.Log, "rename"),
	}
	if r.Cfg.Narrate() {
		exec.Narration = r.Stdout
	}

	res := exec.Execute(renames)

	if !r.Cfg.Quiet {
		err := report.Print(r.Stdout, report.Summary{
			Files:   res.Planned,
			Failed:  len(res.Failures),
			Elapsed: time.Since(start),
			Execute: r.Cfg.Execute,
			Sorted:  r.Cfg.Sort,
			Glob:    r.Cfg.Glob,
			Root:    r.Cfg.Dir,
		})
		if err != nil {
			r.Log.Warn().Err(err).Msg("failed to print summary")
		}
	}

	return res, nil
}

// plan builds the groups for dirs concurrently, at most workers at a time.
// Directories that cannot be listed are logged and contribute nothing.
// Cancellation stops planning before anything is renamed.
func (r *Runner) plan(ctx context.Context, dirs []string, workers int) ([]plan.Group, error) {
	planner := &plan.Planner{
		Fs:     r.Fs,
		Glob:   r.Cfg.Glob,
		Sort:   r.Cfg.Sort,
		Oracle: r.Oracle,
	}
	log := logging.Component(r.Log, "plan")

	groups := make([]plan.Group, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			grp, err := planner.Plan(dir)
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("skipping directory")
				return nil
			}

			groups[i] = grp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan renames: %w", err)
	}
	return groups, nil
}
