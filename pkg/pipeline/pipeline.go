// Package pipeline drives the region-to-tile conversion.
//
// The Runner scans a world's region directory, validates each filename,
// decides per region whether its tile is stale, and runs the
// decode → composite → encode → publish sequence for the stale ones.
//
// # State machine
//
// Every directory entry reaches exactly one terminal state:
//
//	Unvalidated → Rejected            (name does not round-trip)
//	Unvalidated → Validated
//	Validated   → Skipped             (tile is up-to-date)
//	Validated   → Converting
//	Converting  → Published | Failed
//
// Failures are isolated to their region: they are logged and counted but
// never abort the directory scan, and they do not affect the process exit
// code. Every validated coordinate widens the run's bounding box whether
// or not its conversion succeeds.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    WorldDir:  "/srv/world",
//	    OutputDir: "/srv/tiles",
//	})
//	if err != nil {
//	    return err // run-fatal: region directory unreadable
//	}
//	logger.Info("Done", "published", result.Published, "failed", result.Failed)
package pipeline

import (
	"github.com/HEPOMAHTIK/MinedMap/pkg/errors"
	"github.com/HEPOMAHTIK/MinedMap/pkg/world"
)

// regionSubdir is the world subdirectory holding region files.
const regionSubdir = "region"

// Status is the terminal state of one directory entry.
type Status int

// Terminal states of the per-entry state machine.
const (
	StatusRejected Status = iota
	StatusSkipped
	StatusPublished
	StatusFailed
)

// String returns the operator-facing name of the status.
func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusSkipped:
		return "skipped"
	case StatusPublished:
		return "published"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decoder turns a region file into per-chunk visits. The production
// implementation is world.VisitChunks; tests substitute fakes.
type Decoder func(path string, visit world.ChunkVisitor) error

// Options configures one conversion run.
type Options struct {
	// WorldDir is the world directory; region files live in its
	// "region" subdirectory.
	WorldDir string

	// OutputDir receives one PNG tile per region.
	OutputDir string

	// Force regenerates every tile regardless of staleness.
	Force bool

	// Palette resolves block colors. Nil selects the built-in table.
	Palette *world.Palette

	// Decode reads a region file. Nil selects world.VisitChunks.
	Decode Decoder
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.WorldDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "world directory is required")
	}
	if o.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if o.Palette == nil {
		o.Palette = world.DefaultPalette()
	}
	if o.Decode == nil {
		o.Decode = world.VisitChunks
	}
	return nil
}

// Result summarizes one conversion run.
type Result struct {
	// Counters per terminal state.
	Published int
	Skipped   int
	Failed    int
	Rejected  int

	// Bounds is the coordinate extent of all validated regions,
	// independent of conversion outcome. Intended for an index consumer;
	// see DESIGN.md.
	Bounds world.Bounds
}
