package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/HEPOMAHTIK/MinedMap/pkg/pipeline"
)

var (
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleWarning     = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim         = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + styleWarning.Render(msg))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// printSummary prints the run's terminal-state counters and, when any
// region was seen, the coordinate extent of the world.
func printSummary(result *pipeline.Result) {
	switch {
	case result.Failed > 0:
		printWarning("Rendered %d tiles, %d regions failed", result.Published, result.Failed)
	default:
		printSuccess("Rendered %d tiles", result.Published)
	}
	printDetail("%d up-to-date, %d foreign entries skipped", result.Skipped, result.Rejected)

	if b := result.Bounds; !b.Empty() {
		printDetail("world extent x [%d, %d], z [%d, %d]", b.MinX, b.MaxX, b.MinZ, b.MaxZ)
	}
}
