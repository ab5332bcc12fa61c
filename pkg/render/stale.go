package render

import (
	"os"
	"time"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
)

// NeedsUpdate reports whether the tile at dst must be regenerated from the
// region file at src. It also returns the source's modification time so a
// successful write can propagate it onto the tile.
//
// The destination is up-to-date when it exists and its modification time
// is greater than or equal to the source's, compared at full precision.
// Region files are large and decoding is expensive; this mtime comparison
// gives repeated runs build-cache semantics without hashing content.
//
// A source that cannot be statted is an error scoped to this region; a
// destination that cannot be statted simply forces regeneration.
func NeedsUpdate(src, dst string) (bool, time.Time, error) {
	si, err := os.Stat(src)
	if err != nil {
		return false, time.Time{}, errors.Wrap(errors.ErrCodeStatFailed, err, "stat %s", src)
	}

	di, err := os.Stat(dst)
	if err != nil {
		return true, si.ModTime(), nil
	}
	if !di.ModTime().Before(si.ModTime()) {
		return false, si.ModTime(), nil
	}
	return true, si.ModTime(), nil
}
