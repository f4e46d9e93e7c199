package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"song.mp3", true},
		{"song.FLAC", true},
		{"song.opus", true},
		{"song.ogg", true},
		{"song.m4a", true},
		{"cover.jpg", false},
		{"notes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAudioFile(tt.name); got != tt.want {
				t.Errorf("IsAudioFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestScanSkipsUntaggedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noise.mp3"), []byte("not an mp3"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpeg"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.mp3"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755))

	doc, skips, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, doc)
	require.Len(t, skips, 1)
	assert.Equal(t, "noise.mp3", skips[0].Filename)
	assert.NotEmpty(t, skips[0].Reason)
}

func TestScanMissingLibrary(t *testing.T) {
	_, _, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentRoundTripsThroughLoad(t *testing.T) {
	doc := Document{
		"b.ogg": {Artist: "A", Album: "B", Title: "Second", Number: 2, Date: 1999},
		"a.ogg": {Artist: "A", Album: "B", Title: "First", Number: 1, Date: 1999},
	}

	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf))
	assert.Less(t, strings.Index(buf.String(), "a.ogg"), strings.Index(buf.String(), "b.ogg"),
		"keys are written sorted")

	store, err := Load(&buf)
	require.NoError(t, err)
	song, ok := store.Lookup("b.ogg")
	require.True(t, ok)
	assert.Equal(t, Song{Filename: "b.ogg", Artist: "A", Album: "B", Title: "Second", TrackNumber: 2, Year: 1999}, song)
}
