package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

var (
	// ErrModeClash is reported when both execute and practice are requested.
	ErrModeClash = errors.New("don't mix -x and -p")

	// ErrNoMode is reported when neither execute nor practice is requested.
	ErrNoMode = errors.New("need -x or -p to run")
)

// Validate checks every precondition the renamer assumes before touching the
// filesystem.
func (c Config) Validate() error {
	return criterio.ValidateStruct(
		c.validateMode(),
		criterio.Run("glob", c.Glob, validGlob),
		criterio.Run("dir", c.Dir, isDirectory),
		criterio.Run("log_level", c.LogLevel, validLogLevel),
		c.validateWorkers(),
	)
}

func (c Config) validateMode() error {
	switch {
	case c.Execute && c.Practice:
		return criterio.NewFieldErrors("mode", ErrModeClash)
	case !c.Execute && !c.Practice:
		return criterio.NewFieldErrors("mode", ErrNoMode)
	}
	return nil
}

func (c Config) validateWorkers() error {
	var errs criterio.FieldErrorsBuilder
	if c.Workers < 0 {
		errs = errs.Append("workers", fmt.Errorf("must be 0 (auto) or positive, got %d", c.Workers))
	}
	return errs.ToError()
}

// validGlob rejects empty and malformed patterns, and patterns that reach into
// other directories; a pattern is matched against names inside one directory.
func validGlob(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if strings.ContainsRune(pattern, '/') || strings.ContainsRune(pattern, os.PathSeparator) {
		return fmt.Errorf("bad glob pattern %q: must not contain a path separator", pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("bad glob pattern %q, try something like \"*.jpg\"", pattern)
	}
	return nil
}

func isDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("directory is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func validLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
