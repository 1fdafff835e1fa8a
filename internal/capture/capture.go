// Package capture extracts sortable capture-time keys from image files.
//
// Keys are opaque strings whose lexical order is chronological order. Files
// without readable EXIF metadata get Unknown, which sorts before every real
// key.
package capture

import (
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// Unknown is the key of a file whose capture time cannot be read.
const Unknown = ""

// keyLayout orders lexically by time: zero-padded, most significant first.
const keyLayout = "2006:01:02 15:04:05"

// exifExts contains the extensions of files that may carry EXIF data goexif
// can decode: JPEG and TIFF-based raw formats. Anything else is Unknown
// without being opened.
var exifExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".dng":  true, // Adobe Digital Negative
	".arw":  true, // Sony RAW
	".cr2":  true, // Canon RAW
	".nef":  true, // Nikon RAW
}

// HasExif reports whether path's extension is one EXIF is read from.
func HasExif(path string) bool {
	return exifExts[strings.ToLower(filepath.Ext(path))]
}

// Oracle returns an ordering key for a file. It never fails; unreadable
// metadata yields Unknown.
type Oracle interface {
	Key(path string) string
}

// ExifOracle reads the EXIF DateTimeOriginal (falling back to DateTime) of
// photos through an afero filesystem.
type ExifOracle struct {
	Fs afero.Fs
}

// NewExifOracle returns an ExifOracle reading from fs.
func NewExifOracle(fs afero.Fs) *ExifOracle {
	return &ExifOracle{Fs: fs}
}

// Key returns the capture timestamp of path formatted as "YYYY:MM:DD hh:mm:ss",
// or Unknown.
func (o *ExifOracle) Key(path string) string {
	if !HasExif(path) {
		return Unknown
	}

	f, err := o.Fs.Open(path)
	if err != nil {
		return Unknown
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Unknown
	}

	t, err := x.DateTime()
	if err != nil {
		return Unknown
	}

	return t.Format(keyLayout)
}

// OracleFunc adapts a plain function to an Oracle.
type OracleFunc func(path string) string

// Key calls f(path).
func (f OracleFunc) Key(path string) string {
	return f(path)
}
