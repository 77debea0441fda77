package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/reqsmith/pkg/errors"
	"github.com/matzehuels/reqsmith/pkg/pipeline"
	"github.com/matzehuels/reqsmith/pkg/pydeps"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
)

// =============================================================================
// Status Output
// =============================================================================

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

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// =============================================================================
// Sync Summary
// =============================================================================

// printSyncSummary renders the outcome of a sync run.
func printSyncSummary(result *pipeline.Result, dryRun bool) {
	w := result.Write
	if w == nil {
		return
	}

	if dryRun {
		printInfo("Dry run: %d packages would be added", len(w.Added))
		for _, r := range w.Added {
			printDetail(r.String())
		}
	} else if len(w.Added) > 0 {
		printSuccess("Added %d packages", len(w.Added))
		for _, r := range w.Added {
			printDetail(r.String())
		}
	} else {
		printInfo("Nothing to add")
	}

	if len(w.Skipped) > 0 {
		printInfo("Skipped %d packages already in the manifest", len(w.Skipped))
	}

	for _, f := range w.Failed {
		printError("%s: %s", f.Requirement.Name, errors.UserMessage(f.Err))
	}

	for _, warn := range result.Warnings {
		printWarning("%s: %s", warn.Stage, warn.Message)
	}
}

// =============================================================================
// Scan Table
// =============================================================================

// renderScanTable formats a reconciled requirement set as a table.
func renderScanTable(reqs []pydeps.Requirement) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		spec := r.Spec
		if spec == "" {
			spec = "—"
		}
		rows = append(rows, []string{r.Name, spec, r.Source})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Constraint", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 2 {
				return styleDim
			}
			return styleValue
		})

	return t.Render()
}
