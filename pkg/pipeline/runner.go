package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
	"github.com/HEPOMAHTIK/MinedMap/pkg/render"
	"github.com/HEPOMAHTIK/MinedMap/pkg/world"
)

// Runner executes conversion runs. It is stateless between runs; the same
// Runner can execute multiple runs with different options.
type Runner struct {
	Logger *log.Logger
	writer *render.TileWriter
}

// NewRunner creates a runner logging through the given logger.
// A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Logger: logger,
		writer: render.NewTileWriter(logger),
	}
}

// Execute converts every stale region under opts.WorldDir into a tile
// under opts.OutputDir.
//
// The returned error is run-fatal only: invalid options, an unreadable
// region directory, or an output directory that cannot be created.
// Per-region failures are logged, counted in the result, and never
// propagate. Cancellation is honored between entries; a conversion that
// has started runs to completion.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	regionDir := filepath.Join(opts.WorldDir, regionSubdir)
	entries, err := os.ReadDir(regionDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input directory %s", regionDir)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "create output directory %s", opts.OutputDir)
	}

	result := &Result{Bounds: world.NewBounds()}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// Names that do not round-trip are not region files; skipping
		// them is silent by design.
		coord, ok := world.ParseRegionName(entry.Name())
		if !ok {
			result.Rejected++
			continue
		}

		result.Bounds.Extend(coord)

		src := filepath.Join(regionDir, entry.Name())
		dst := filepath.Join(opts.OutputDir, world.TileName(coord.X, coord.Z))

		switch r.convert(src, dst, opts) {
		case StatusSkipped:
			result.Skipped++
		case StatusPublished:
			result.Published++
		case StatusFailed:
			result.Failed++
		}
	}

	return result, nil
}

// convert runs one region through stat → decode/composite → encode →
// publish and returns its terminal state. All failures are reported here
// and reduced to StatusFailed; nothing propagates to the scan loop.
func (r *Runner) convert(src, dst string, opts Options) Status {
	need, srcMtime, err := render.NeedsUpdate(src, dst)
	if err != nil {
		r.Logger.Error("Unable to stat region", "region", src, "error", err)
		return StatusFailed
	}
	if !need && !opts.Force {
		r.Logger.Info("Tile is up-to-date", "tile", dst)
		return StatusSkipped
	}

	r.Logger.Info("Generating tile", "region", src, "tile", dst)

	img := render.NewImage()
	err = opts.Decode(src, func(cx, cz int, c *world.Chunk) {
		img.DrawChunk(cx, cz, c.TopLayer(opts.Palette))
	})
	if err != nil {
		r.Logger.Error("Failed to generate tile", "tile", dst, "error", err)
		return StatusFailed
	}

	if err := r.writer.WriteTile(img, dst, srcMtime); err != nil {
		r.Logger.Error("Failed to save tile", "tile", dst, "error", err)
		return StatusFailed
	}

	return StatusPublished
}
