// Package metadata holds song records of a flat music library and the
// path fragments derived from them.
package metadata

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Song describes one file of the flat library.
type Song struct {
	Filename    string // name in the library root, extension included
	Artist      string
	Album       string
	Title       string
	TrackNumber int
	Year        int
}

// Ext returns the library filename extension, dot included.
func (s Song) Ext() string {
	return filepath.Ext(s.Filename)
}

// Stem returns the library filename without its extension.
func (s Song) Stem() string {
	return strings.TrimSuffix(s.Filename, s.Ext())
}

// ArtistDir returns the artist directory name.
func (s Song) ArtistDir() string {
	return Sanitize(s.Artist)
}

// AlbumDir returns the album directory name, e.g. "[1994] Fairytales of Slavery".
func (s Song) AlbumDir() string {
	return Sanitize(fmt.Sprintf("[%d] %s", s.Year, s.Album))
}

// FilenameInAlbum returns the link name inside an album directory.
// The fallback form appends the library stem to tell apart tracks
// sharing number and title.
func (s Song) FilenameInAlbum(fallback bool) string {
	if fallback {
		return Sanitize(fmt.Sprintf("%02d - %s (%s)%s", s.TrackNumber, s.Title, s.Stem(), s.Ext()))
	}
	return Sanitize(fmt.Sprintf("%02d - %s%s", s.TrackNumber, s.Title, s.Ext()))
}

// FilenameInPlaylist returns the link name for the song at a 1-based
// position of an ordered listing.
func (s Song) FilenameInPlaylist(position int) string {
	return Sanitize(fmt.Sprintf("%03d - %s%s", position, s.Title, s.Ext()))
}

// PathInLibrary returns the path relative to the library root.
func (s Song) PathInLibrary() string {
	return s.Filename
}

// PathInAlbumTree returns Artist/[Year] Album/NN - Title.ext.
func (s Song) PathInAlbumTree(fallback bool) string {
	return filepath.Join(s.ArtistDir(), s.AlbumDir(), s.FilenameInAlbum(fallback))
}

// PathInArtistTree returns Artist/NNN - Title.ext.
func (s Song) PathInArtistTree(position int) string {
	return filepath.Join(s.ArtistDir(), s.FilenameInPlaylist(position))
}

// PathInPlaylistTree returns NNN - Title.ext; callers prefix the playlist directory.
func (s Song) PathInPlaylistTree(position int) string {
	return s.FilenameInPlaylist(position)
}
