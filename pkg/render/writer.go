package render

import (
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
)

// tmpSuffix marks a tile that is still being written. The temporary name
// is unique per destination, so concurrent runs over disjoint regions
// never collide.
const tmpSuffix = ".tmp"

// TileWriter encodes pixel buffers and atomically publishes them. The
// destination path always holds either the previous complete tile or the
// new complete tile, never a partial write, even if the process crashes
// mid-encode or a reader polls the output directory concurrently.
type TileWriter struct {
	Logger *log.Logger

	// Encode serializes the image; nil selects png.Encode.
	Encode func(w io.Writer, img image.Image) error
}

// NewTileWriter creates a writer logging through the given logger.
// A nil logger falls back to log.Default().
func NewTileWriter(logger *log.Logger) *TileWriter {
	if logger == nil {
		logger = log.Default()
	}
	return &TileWriter{Logger: logger}
}

// WriteTile encodes img to dst+".tmp", stamps the temporary file with the
// source region's modification time, and renames it over dst. Any failure
// removes the temporary file and leaves dst untouched.
//
// The timestamp propagation is what keeps NeedsUpdate correct on the next
// run: the tile carries its source's mtime, not the wall clock of this
// run. It is best-effort; a failure to set it is logged as a warning and
// does not fail the region.
func (w *TileWriter) WriteTile(img *Image, dst string, srcMtime time.Time) error {
	tmp := dst + tmpSuffix

	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncodeFailed, err, "create %s", tmp)
	}

	encode := w.Encode
	if encode == nil {
		encode = png.Encode
	}

	if err := encode(f, img.NRGBA()); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeEncodeFailed, err, "encode %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeEncodeFailed, err, "close %s", tmp)
	}

	if err := os.Chtimes(tmp, srcMtime, srcMtime); err != nil {
		w.Logger.Warn("Failed to set tile timestamp", "path", tmp, "error", err)
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodePublishFailed, err, "rename %s to %s", tmp, dst)
	}

	return nil
}
