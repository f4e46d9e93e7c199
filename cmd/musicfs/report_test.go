package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/musicfs/internal/tree"
)

func TestRenderSummary(t *testing.T) {
	out := renderSummary([]tree.Stats{
		{Mode: tree.ModeAlbum, Root: "/trees/albums", LinksCreated: 12345, DirsCreated: 3},
		{Mode: tree.ModePlaylist, Root: "/trees/pls", DryRun: true, LinksExisting: 7, Unresolved: 2},
	})

	for _, want := range []string{"TREE", "NO METADATA", "artist-album", "playlist (dry run)", "/trees/albums", "12,345"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSummaryAlignsRows(t *testing.T) {
	out := renderSummary([]tree.Stats{
		{Mode: tree.ModeArtist, Root: "a", LinksCreated: 1},
		{Mode: tree.ModeArtist, Root: "a-much-longer-root", LinksCreated: 1000000},
	})

	// Every line of the bordered block has the same width.
	lines := strings.Split(out, "\n")
	for _, line := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(line))
	}
}

func TestRenderSummaryShowsFallbacks(t *testing.T) {
	out := renderSummary([]tree.Stats{
		{Mode: tree.ModeAlbum, Root: "/trees/albums", LinksCreated: 2, Fallbacks: 1},
	})

	assert.Contains(t, out, "FALLBACKS")
}

func TestCellStyle(t *testing.T) {
	tests := []struct {
		name  string
		col   int
		cell  string
		style lipgloss.Style
		align lipgloss.Position
	}{
		{"tree", colTree, "artist", cellBase, lipgloss.Left},
		{"root", colRoot, "/trees", mutedStyle, lipgloss.Left},
		{"zero count", colCreated, "0", mutedStyle, lipgloss.Right},
		{"created", colCreated, "4", goodStyle, lipgloss.Right},
		{"existing", colExisting, "4", cellBase, lipgloss.Right},
		{"fallbacks", colFallbacks, "1", warnStyle, lipgloss.Right},
		{"no metadata", colUnresolved, "1", warnStyle, lipgloss.Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellStyle(tt.col, tt.cell)
			assert.Equal(t, tt.style.GetForeground(), got.GetForeground())
			assert.Equal(t, tt.align, got.GetAlignHorizontal())
		})
	}
}
