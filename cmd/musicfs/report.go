package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/musicfs/internal/tree"
)

var (
	colorPrimary = lipgloss.Color("#a78bfa")
	colorMuted   = lipgloss.Color("#808080")
	colorSuccess = lipgloss.Color("#42b883")
	colorWarning = lipgloss.Color("#f1a208")
	colorBorder  = lipgloss.Color("240")

	cellBase    = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellBase.Bold(true).Foreground(colorPrimary)
	mutedStyle  = cellBase.Foreground(colorMuted)
	goodStyle   = cellBase.Foreground(colorSuccess)
	warnStyle   = cellBase.Foreground(colorWarning)
)

// Summary columns.
const (
	colTree = iota
	colRoot
	colCreated
	colExisting
	colReplaced
	colDirs
	colFallbacks
	colUnresolved
)

var summaryHeaders = []string{"TREE", "ROOT", "CREATED", "EXISTING", "REPLACED", "DIRS", "FALLBACKS", "NO METADATA"}

// renderSummary renders one row per build.
func renderSummary(stats []tree.Stats) string {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		mode := string(s.Mode)
		if s.DryRun {
			mode += " (dry run)"
		}
		rows = append(rows, []string{
			mode,
			s.Root,
			humanize.Comma(int64(s.LinksCreated)),
			humanize.Comma(int64(s.LinksExisting)),
			humanize.Comma(int64(s.LinksReplaced)),
			humanize.Comma(int64(s.DirsCreated)),
			humanize.Comma(int64(s.Fallbacks)),
			humanize.Comma(int64(s.Unresolved)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 || row >= len(rows) {
				return headerStyle
			}
			return cellStyle(col, rows[row][col])
		})
	return t.Render()
}

// cellStyle styles a data cell. Counts are right aligned and zeros muted.
func cellStyle(col int, cell string) lipgloss.Style {
	if col <= colRoot {
		if col == colRoot {
			return mutedStyle
		}
		return cellBase
	}

	var style lipgloss.Style
	switch {
	case cell == "0":
		style = mutedStyle
	case col == colCreated || col == colDirs:
		style = goodStyle
	case col == colReplaced || col == colFallbacks || col == colUnresolved:
		style = warnStyle
	default:
		style = cellBase
	}
	return style.Align(lipgloss.Right)
}
