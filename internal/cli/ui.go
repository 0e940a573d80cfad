package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) printSuccess(format string, args ...any) {
	fmt.Fprintln(c.stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printInfo(format string, args ...any) {
	fmt.Fprintln(c.stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func (c *CLI) printDetail(format string, args ...any) {
	fmt.Fprintln(c.stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file with the names updated in it.
func (c *CLI) printFile(path string, updated []string) {
	line := "  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path)
	if len(updated) > 0 {
		line += StyleDim.Render(" (" + strings.Join(updated, ", ") + ")")
	}
	fmt.Fprintln(c.stdout, line)
}

// printStats prints a one-line summary of a resolution.
func (c *CLI) printStats(descs []*deps.Descriptor) {
	updates, unresolved := 0, 0
	for _, d := range descs {
		if d.HasUpdate() {
			updates++
		}
		if _, ok := d.Best(); !ok {
			unresolved++
		}
	}
	parts := []string{StyleDim.Render(fmt.Sprintf("%d dependencies", len(descs)))}
	if updates > 0 {
		parts = append(parts, StyleSuccess.Render(fmt.Sprintf("%d updates", updates)))
	} else {
		parts = append(parts, StyleDim.Render("0 updates"))
	}
	if unresolved > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d without match", unresolved)))
	}
	fmt.Fprintln(c.stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// =============================================================================
// Tables
// =============================================================================

// dependencyTable renders name, project, current and best version per
// descriptor. Rows with an update are highlighted.
func dependencyTable(descs []*deps.Descriptor) string {
	rows := make([][]string, len(descs))
	for i, d := range descs {
		best := d.BestString()
		if best == "" {
			best = "—"
		}
		current := d.CurrentString()
		if current == "" {
			current = "—"
		}
		req := "*"
		if d.VersionReq != nil {
			req = d.VersionReq.String()
		}
		rows[i] = []string{d.Name, d.Project, req, current, best}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Project", "Requirement", "Current", "Best").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if row < 0 || row >= len(descs) {
				return base
			}
			switch {
			case descs[row].HasUpdate() && col == 4:
				return base.Foreground(colorGreen).Bold(true)
			case descs[row].BestVersion.IsZero() && col == 4:
				return base.Foreground(colorYellow)
			case col == 1 || col == 2:
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}
