// Package report prints the end-of-run summary.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary is everything the final report shows.
type Summary struct {
	Files   int // planned renames, not necessarily successful
	Failed  int
	Elapsed time.Duration
	Execute bool
	Sorted  bool
	Glob    string
	Root    string
}

// Rate returns files per second, or 0 for an instantaneous run.
func (s Summary) Rate() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Files) / secs
}

// Print writes the human-readable summary to w.
func Print(w io.Writer, s Summary) error {
	mode := "This was a practice run. -x to execute renaming. Be careful."
	if s.Execute {
		mode = "Renaming executed."
	}

	sorted := "NOT sorted"
	if s.Sorted {
		sorted = "Sorted by EXIF date."
	}

	_, err := fmt.Fprintf(w, "%s files in %.3f seconds. %.0f files/sec\n%s\n%s\nglob = %q\nroot dir = %q\n",
		humanize.Comma(int64(s.Files)),
		s.Elapsed.Seconds(),
		s.Rate(),
		mode,
		sorted,
		s.Glob,
		s.Root,
	)
	if err != nil {
		return err
	}

	if s.Failed > 0 {
		_, err = fmt.Fprintf(w, "%s renames failed, see errors above.\n", humanize.Comma(int64(s.Failed)))
	}
	return err
}
