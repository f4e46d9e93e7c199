// Package playlists loads ordered playlists referencing library files by name.
package playlists

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/llehouerou/musicfs/internal/metadata"
)

// Causes reported by Error.
var (
	ErrMalformed   = errors.New("malformed document")
	ErrMissingName = errors.New("missing playlist name")
	ErrInvalidName = errors.New("invalid playlist name")
	ErrInvalidSong = errors.New("invalid song entry")
)

// Error reports a playlist document that cannot be loaded.
type Error struct {
	Index int // position of the playlist in the document, -1 for document-level errors
	Err   error
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("playlists: %v", e.Err)
	}
	return fmt.Sprintf("playlist #%d: %v", e.Index+1, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Playlist is an ordered list of library filenames.
// Songs may repeat; a filename unknown to the metadata store is allowed.
type Playlist struct {
	Name  string // unique within one load
	Songs []string
}

// DirName returns the playlist directory name.
func (p Playlist) DirName() string {
	return metadata.Sanitize(p.Name)
}

type rawPlaylist struct {
	Name  *string           `json:"name"`
	Songs []json.RawMessage `json:"songs"`
}

// LoadFile loads a playlist document from disk.
func LoadFile(path string) ([]Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlists: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a playlist document, an array of {"name", "songs"} objects,
// keeping document order. Repeated names are disambiguated: the first
// occurrence keeps the name, later ones become "Name (1)", "Name (2)"...
func Load(r io.Reader) ([]Playlist, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, &Error{Index: -1, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}

	names := newNameCounter()
	playlists := make([]Playlist, 0, len(raws))
	for i, raw := range raws {
		var rp rawPlaylist
		if err := json.Unmarshal(raw, &rp); err != nil {
			return nil, &Error{Index: i, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
		}
		if rp.Name == nil || *rp.Name == "" {
			return nil, &Error{Index: i, Err: ErrMissingName}
		}
		if !metadata.IsSegment(*rp.Name) {
			return nil, &Error{Index: i, Err: fmt.Errorf("%w: %q is not a usable directory name", ErrInvalidName, *rp.Name)}
		}

		songs := make([]string, 0, len(rp.Songs))
		for j, rs := range rp.Songs {
			var name string
			if err := json.Unmarshal(rs, &name); err != nil || name == "" {
				return nil, &Error{Index: i, Err: fmt.Errorf("%w: song #%d: %s", ErrInvalidSong, j+1, rs)}
			}
			songs = append(songs, name)
		}

		playlists = append(playlists, Playlist{
			Name:  names.next(*rp.Name),
			Songs: songs,
		})
	}
	return playlists, nil
}

// nameCounter disambiguates playlist names over one load pass.
type nameCounter map[string]int

func newNameCounter() nameCounter {
	return make(nameCounter)
}

func (c nameCounter) next(name string) string {
	n := c[name]
	c[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s (%d)", name, n)
}
