package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/musicfs/internal/metadata"
)

const testMetadata = `{
	"a.flac": {"artist": "AC/DC", "album": "Back in Black", "title": "Hells Bells", "number": 1, "date": 1980},
	"b.flac": {"artist": "AC/DC", "album": "Back in Black", "title": "Shoot to Thrill", "number": "2", "date": "1980"}
}`

const testPlaylists = `[{"name": "Road", "songs": ["b.flac", "missing.mp3"]}]`

type fixture struct {
	dir       string
	config    string
	metadata  string
	playlists string
	library   string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		config:    filepath.Join(dir, "config.toml"),
		metadata:  filepath.Join(dir, "metadata.json"),
		playlists: filepath.Join(dir, "playlists.json"),
		library:   filepath.Join(dir, "lib"),
	}
	require.NoError(t, os.WriteFile(f.config, nil, 0o600))
	require.NoError(t, os.WriteFile(f.metadata, []byte(testMetadata), 0o600))
	require.NoError(t, os.WriteFile(f.playlists, []byte(testPlaylists), 0o600))
	require.NoError(t, os.MkdirAll(f.library, 0o755))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{"musicfs", "--config", f.config}
	err := newApp(&out, &errOut).Run(append(base, args...))
	return out.String(), err
}

func readLink(t *testing.T, path string) string {
	t.Helper()
	target, err := os.Readlink(path)
	require.NoError(t, err)
	return target
}

func TestArtistAlbumTreeCommand(t *testing.T) {
	f := newFixture(t)
	treeRoot := filepath.Join(f.dir, "albums")

	out, err := f.run(t, "-m", f.metadata, "artist-album-tree", f.library, treeRoot)
	require.NoError(t, err)
	assert.Contains(t, out, "artist-album")

	link := filepath.Join(treeRoot, "AC|DC", "[1980] Back in Black", "01 - Hells Bells.flac")
	assert.Equal(t, filepath.Join(f.library, "a.flac"), readLink(t, link))
	assert.FileExists(t, filepath.Join(treeRoot, "AC|DC", "[1980] Back in Black", "02 - Shoot to Thrill.flac"))
}

func TestAlbumTreeAlias(t *testing.T) {
	f := newFixture(t)
	treeRoot := filepath.Join(f.dir, "albums")

	_, err := f.run(t, "-m", f.metadata, "album-tree", f.library, treeRoot)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(treeRoot, "AC|DC"))
}

func TestArtistTreeCommand(t *testing.T) {
	f := newFixture(t)
	treeRoot := filepath.Join(f.dir, "artists")

	_, err := f.run(t, "--metadata", f.metadata, "artist-tree", f.library, treeRoot)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.library, "b.flac"),
		readLink(t, filepath.Join(treeRoot, "AC|DC", "002 - Shoot to Thrill.flac")))
}

func TestPlaylistTreeCommand(t *testing.T) {
	f := newFixture(t)
	treeRoot := filepath.Join(f.dir, "playlists")

	out, err := f.run(t, "-m", f.metadata, "playlist-tree", f.library, treeRoot, f.playlists)
	require.NoError(t, err)
	assert.Contains(t, out, "playlist")

	assert.Equal(t, filepath.Join(f.library, "b.flac"),
		readLink(t, filepath.Join(treeRoot, "Road", "001 - Shoot to Thrill.flac")))
	assert.Equal(t, filepath.Join(f.library, "missing.mp3"),
		readLink(t, filepath.Join(treeRoot, "Road", "2 - missing.mp3")))
}

func TestTreeCommandDryRun(t *testing.T) {
	f := newFixture(t)
	treeRoot := filepath.Join(f.dir, "albums")

	out, err := f.run(t, "-m", f.metadata, "--dry-run", "artist-album-tree", f.library, treeRoot)
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.NoDirExists(t, treeRoot)
}

func TestTreeCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		args     func(f fixture) []string
		contains string
	}{
		{
			name: "missing metadata flag",
			args: func(f fixture) []string {
				return []string{"artist-tree", f.library, filepath.Join(f.dir, "t")}
			},
			contains: "missing metadata",
		},
		{
			name: "missing tree argument",
			args: func(f fixture) []string {
				return []string{"-m", f.metadata, "artist-tree", f.library}
			},
			contains: "missing tree root",
		},
		{
			name: "missing playlists argument",
			args: func(f fixture) []string {
				return []string{"-m", f.metadata, "playlist-tree", f.library, filepath.Join(f.dir, "t")}
			},
			contains: "missing playlists",
		},
		{
			name:     "malformed metadata",
			metadata: `{"a.flac": {"artist": "X"}}`,
			args: func(f fixture) []string {
				return []string{"-m", f.metadata, "artist-tree", f.library, filepath.Join(f.dir, "t")}
			},
			contains: "a.flac",
		},
		{
			name: "metadata file not found",
			args: func(f fixture) []string {
				return []string{"-m", filepath.Join(f.dir, "nope.json"), "artist-tree", f.library, filepath.Join(f.dir, "t")}
			},
			contains: "nope.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.metadata != "" {
				require.NoError(t, os.WriteFile(f.metadata, []byte(tt.metadata), 0o600))
			}

			_, err := f.run(t, tt.args(f)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.NoDirExists(t, filepath.Join(f.dir, "t"))
		})
	}
}

func TestInvalidPlaylistsLeaveTreeUntouched(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.playlists, []byte(`[{"songs": []}]`), 0o600))
	treeRoot := filepath.Join(f.dir, "playlists")

	_, err := f.run(t, "-m", f.metadata, "playlist-tree", f.library, treeRoot, f.playlists)
	require.Error(t, err)
	assert.NoDirExists(t, treeRoot)
}

func TestMissingConfigFile(t *testing.T) {
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run([]string{
		"musicfs", "--config", filepath.Join(t.TempDir(), "absent.toml"), "build",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestBuildFromConfig(t *testing.T) {
	f := newFixture(t)
	albums := filepath.Join(f.dir, "albums")
	artists := filepath.Join(f.dir, "artists")
	pls := filepath.Join(f.dir, "pls")
	cfg := `library = "` + f.library + `"
metadata = "` + f.metadata + `"
playlists = "` + f.playlists + `"

[trees]
album = "` + albums + `"
artist = "` + artists + `"
playlist = "` + pls + `"
`
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o600))

	out, err := f.run(t, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "artist-album")
	assert.Contains(t, out, "playlist")

	assert.DirExists(t, filepath.Join(albums, "AC|DC", "[1980] Back in Black"))
	assert.FileExists(t, filepath.Join(artists, "AC|DC", "001 - Hells Bells.flac"))
	assert.FileExists(t, filepath.Join(pls, "Road", "001 - Shoot to Thrill.flac"))

	// A second build changes nothing.
	_, err = f.run(t, "build")
	require.NoError(t, err)
}

func TestBuildWithoutTrees(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "-m", f.metadata, "build")
	assert.ErrorIs(t, err, errNoTrees)
}

func TestTreeCommandUsesConfigDefaults(t *testing.T) {
	f := newFixture(t)
	artists := filepath.Join(f.dir, "artists")
	cfg := `library = "` + f.library + `"
metadata = "` + f.metadata + `"

[trees]
artist = "` + artists + `"
`
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0o600))

	_, err := f.run(t, "artist-tree")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(artists, "AC|DC"))
}

func TestScanCommand(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.library, "noise.mp3"), []byte("not audio"), 0o600))
	output := filepath.Join(f.dir, "scanned.json")

	_, err := f.run(t, "scan", "-o", output, f.library)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc metadata.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Empty(t, doc)
}

func TestScanCommandMissingLibrary(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "scan", filepath.Join(f.dir, "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
