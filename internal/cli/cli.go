// Package cli implements the minedmap command-line interface.
//
// The CLI wraps the conversion pipeline in a single cobra command taking
// two positional arguments: the world directory (containing the region
// subdirectory) and the output directory for PNG tiles. Per-region
// failures are reported on stderr but do not affect the exit code; only
// an unusable input or output directory fails the run.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/HEPOMAHTIK/MinedMap/pkg/buildinfo"
	"github.com/HEPOMAHTIK/MinedMap/pkg/pipeline"
	"github.com/HEPOMAHTIK/MinedMap/pkg/world"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		force  bool
		colors string
	)

	root := &cobra.Command{
		Use:          "minedmap <world dir> <output dir>",
		Short:        "MinedMap renders Minecraft worlds as PNG map tiles",
		Long:         `MinedMap converts a world's region files into one PNG tile per region, regenerating only the tiles whose region file changed since the last run.`,
		Args:         cobra.ExactArgs(2),
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			palette := world.DefaultPalette()
			if colors != "" {
				var err error
				if palette, err = world.LoadPalette(colors); err != nil {
					return err
				}
			}

			prog := newProgress(c.Logger)
			runner := pipeline.NewRunner(c.Logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				WorldDir:  args[0],
				OutputDir: args[1],
				Force:     force,
				Palette:   palette,
			})
			if err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Processed %d regions",
				result.Published+result.Skipped+result.Failed))
			printSummary(result)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.Flags().BoolVarP(&force, "force", "f", false, "regenerate tiles even when up-to-date")
	root.Flags().StringVar(&colors, "colors", "", "TOML file overriding the block color table")

	root.AddCommand(c.completionCommand())

	return root
}
