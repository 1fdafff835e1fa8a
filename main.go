// Batch Renamer - rename photos after the folders that hold them
//
// This tool walks a directory tree and renames every file matching a glob
// inside each directory at least two levels below the root. New names are
// built from the directory's last two path segments plus a running index,
// so photos stay identifiable after they leave their folder structure.
//
// Features:
//   - Deterministic, collision-free names (2024/06/trip/a.jpg -> 06trip0.jpg)
//   - Optional ordering by EXIF capture time
//   - Two-phase staged renames: no file is ever overwritten
//   - Parallel renames across directories on a bounded worker pool
//   - Practice runs that touch nothing
//
// Usage:
//
//	batch-renamer -p -v              # Practice run, print every rename
//	batch-renamer -x                 # Execute renaming
//	batch-renamer -xvs -g "*.png"    # Execute, verbose, sorted by EXIF date, PNGs
//	batch-renamer -x -d /path        # Use custom root directory
//
// Expected directory structure:
//
//	Photos/            <- root (-d)
//	└── 2024/
//	    └── 06/        <- renamed into: 202406N.jpg
//	        └── trip/  <- renamed into: 06tripN.jpg
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"batch-renamer/internal/batch"
	"batch-renamer/internal/config"
	"batch-renamer/internal/logging"
)

// =============================================================================
// Flags
// =============================================================================

// flags holds the raw command-line values before they are merged with the
// config file into a config.Config.
type flags struct {
	execute    bool
	practice   bool
	verbose    bool
	quiet      bool
	sort       bool
	glob       string
	dir        string
	workers    int
	configPath string
	logLevel   string
}

// resolve merges built-in defaults, the optional YAML file and the flags that
// were explicitly set, then validates the result.
func (f *flags) resolve(c *cli.Command) (config.Config, error) {
	cfg, err := config.LoadFile(f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	// Mode is only ever taken from the command line.
	cfg.Execute = f.execute
	cfg.Practice = f.practice

	if c.IsSet("verbose") {
		cfg.Verbose = f.verbose
	}
	if c.IsSet("quiet") {
		cfg.Quiet = f.quiet
	}
	if c.IsSet("sort") {
		cfg.Sort = f.sort
	}
	if c.IsSet("glob") {
		cfg.Glob = f.glob
	}
	if c.IsSet("dir") {
		cfg.Dir = f.dir
	}
	if c.IsSet("workers") {
		cfg.Workers = f.workers
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = f.logLevel
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Command
// =============================================================================

func newCommand() *cli.Command {
	f := &flags{}

	return &cli.Command{
		Name:      "batch-renamer",
		Usage:     "Rename photos after the two folders that hold them",
		UsageText: `batch-renamer -h -[vq] -[px] -s -g "glob-string" -d <path>`,
		Description: `Renames every file matching the glob in each directory at least two levels
below the root to <parent><dir><index>.<ext>, e.g. 2024/06/trip/a.jpg becomes
2024/06/trip/06trip0.jpg.

Examples:
  batch-renamer -pv                # Practice run, print what would happen
  batch-renamer -x                 # Execute renaming. Use with caution.
  batch-renamer -xvs -g "*.png"    # Execute, verbose, EXIF-sorted PNGs
  batch-renamer -x -d ./directory  # Run from another root`,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "execute",
				Aliases:     []string{"x"},
				Usage:       "execute renaming, use with caution",
				Destination: &f.execute,
			},
			&cli.BoolFlag{
				Name:        "practice",
				Aliases:     []string{"p"},
				Usage:       "practice run, combine with -v to print what would happen",
				Destination: &f.practice,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "print every rename",
				Destination: &f.verbose,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "disable terminal printing entirely, overrides -v",
				Destination: &f.quiet,
			},
			&cli.BoolFlag{
				Name:        "sort",
				Aliases:     []string{"s"},
				Usage:       "sort by EXIF timestamp ascending (default: filename order)",
				Destination: &f.sort,
			},
			&cli.StringFlag{
				Name:        "glob",
				Aliases:     []string{"g"},
				Usage:       "pattern matched against file names in each directory",
				Value:       config.DefaultGlob,
				Destination: &f.glob,
			},
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "root directory to search from (default: current directory)",
				Destination: &f.dir,
			},
			&cli.IntFlag{
				Name:        "workers",
				Aliases:     []string{"w"},
				Usage:       "number of parallel renames (0 = one per CPU)",
				Destination: &f.workers,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML file with default settings",
				Sources:     cli.EnvVars("BATCH_RENAMER_CONFIG"),
				Destination: &f.configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("BATCH_RENAMER_LOG_LEVEL"),
				Value:       config.DefaultLogLevel,
				Destination: &f.logLevel,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := f.resolve(c)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel, os.Stderr)
			if err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger

			_, err = batch.New(cfg, c.Root().Writer, logger).Run(ctx)
			return err
		},
	}
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	exitCode := 0
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}
