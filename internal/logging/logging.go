// Package logging builds the zerolog loggers used across the renamer.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a human-readable console logger writing to w.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
	}

	out := zerolog.ConsoleWriter{
		Out:        zerolog.SyncWriter(w),
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(lvl), nil
}

// Component derives a logger tagged with a component name under the "cmp" key.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("cmp", name).Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
