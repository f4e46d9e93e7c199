package tree

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/llehouerou/musicfs/internal/logging"
	"github.com/llehouerou/musicfs/internal/metadata"
	"github.com/llehouerou/musicfs/internal/playlists"
)

// BuildAlbumTree links every song at Artist/[Year] Album/NN - Title.ext,
// in input order. When two songs share a name the first one keeps it.
func (b *Builder) BuildAlbumTree(songs []metadata.Song) (Stats, error) {
	r := b.newRun(ModeAlbum)
	logging.Info("Building %s tree in %s (%d songs)", ModeAlbum, b.treeRoot, len(songs))

	for _, song := range songs {
		if err := r.checkSegment(song.Artist); err != nil {
			return r.stats, err
		}
		rel, err := r.albumPath(song)
		if err != nil {
			return r.stats, err
		}
		if err := r.link(rel, song.PathInLibrary()); err != nil {
			return r.stats, err
		}
	}

	logging.Info("%s", r.stats)
	return r.stats, nil
}

// albumPath picks the album layout path of a song, switching to the
// fallback name when disambiguation is enabled and the regular name
// belongs to another library file. A link to the same filename under
// another library root is the song's own stale link: it keeps the
// regular name and is left to the link policy.
func (r *run) albumPath(song metadata.Song) (string, error) {
	rel := song.PathInAlbumTree(false)
	if !r.b.disambiguate {
		return rel, nil
	}

	dir, err := r.abs(OpMkdir, filepath.Dir(rel))
	if err != nil {
		return "", err
	}
	if _, err := r.ensureDir(dir); err != nil {
		return "", err
	}
	path, err := r.abs(OpSymlink, rel)
	if err != nil {
		return "", err
	}
	current, exists, err := r.currentTarget(path)
	if err != nil {
		return "", err
	}
	if exists && current != r.b.LinkTarget(rel, song.PathInLibrary()) &&
		filepath.Base(current) != song.PathInLibrary() {
		fallback := song.PathInAlbumTree(true)
		logging.Debug("%s is taken, using %s", rel, fallback)
		r.stats.Fallbacks++
		return fallback, nil
	}
	return rel, nil
}

// BuildArtistTree links every song at Artist/NNN - Title.ext. Songs are
// ordered by artist, album, year and track number, and numbered from 1
// within each artist.
func (b *Builder) BuildArtistTree(songs []metadata.Song) (Stats, error) {
	r := b.newRun(ModeArtist)
	logging.Info("Building %s tree in %s (%d songs)", ModeArtist, b.treeRoot, len(songs))

	// Counted per directory: artists that sanitize alike share one.
	positions := make(map[string]int)
	for _, song := range SortForArtistTree(songs) {
		if err := r.checkSegment(song.Artist); err != nil {
			return r.stats, err
		}
		dir := song.ArtistDir()
		positions[dir]++
		rel := song.PathInArtistTree(positions[dir])
		if err := r.link(rel, song.PathInLibrary()); err != nil {
			return r.stats, err
		}
	}

	logging.Info("%s", r.stats)
	return r.stats, nil
}

// SortForArtistTree returns a copy of songs stably sorted by
// (artist, album, year, track number).
func SortForArtistTree(songs []metadata.Song) []metadata.Song {
	sorted := slices.Clone(songs)
	slices.SortStableFunc(sorted, func(a, b metadata.Song) int {
		return cmp.Or(
			cmp.Compare(a.Artist, b.Artist),
			cmp.Compare(a.Album, b.Album),
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.TrackNumber, b.TrackNumber),
		)
	})
	return sorted
}

// BuildPlaylistTree links the members of every playlist at
// Playlist/NNN - Title.ext, numbered from 1 in playlist order. Members
// missing from the store are linked as "N - filename" straight to the
// library file.
func (b *Builder) BuildPlaylistTree(store *metadata.Store, pls []playlists.Playlist) (Stats, error) {
	r := b.newRun(ModePlaylist)
	logging.Info("Building %s tree in %s (%d playlists)", ModePlaylist, b.treeRoot, len(pls))

	for _, p := range pls {
		if err := r.checkSegment(p.Name); err != nil {
			return r.stats, err
		}
		dir := p.DirName()
		dirPath, err := r.abs(OpMkdir, dir)
		if err != nil {
			return r.stats, err
		}
		if _, err := r.ensureDir(dirPath); err != nil {
			return r.stats, err
		}

		for i, filename := range p.Songs {
			position := i + 1

			var rel string
			if song, ok := store.Lookup(filename); ok {
				rel = filepath.Join(dir, song.PathInPlaylistTree(position))
			} else {
				rel = filepath.Join(dir, UnresolvedName(position, filename))
				logging.Warn("Playlist %q: no metadata for %s", p.Name, filename)
				r.stats.Unresolved++
			}

			if err := r.link(rel, filename); err != nil {
				return r.stats, err
			}
		}
	}

	logging.Info("%s", r.stats)
	return r.stats, nil
}

// UnresolvedName is the link name of a playlist member without metadata.
func UnresolvedName(position int, filename string) string {
	return metadata.Sanitize(fmt.Sprintf("%d - %s", position, filename))
}

// link creates the parent directory of rel and a link at rel to the
// library file.
func (r *run) link(rel, libraryFile string) error {
	dir, err := r.abs(OpMkdir, filepath.Dir(rel))
	if err != nil {
		return err
	}
	if _, err := r.ensureDir(dir); err != nil {
		return err
	}
	path, err := r.abs(OpSymlink, rel)
	if err != nil {
		return err
	}

	target := r.b.LinkTarget(rel, libraryFile)
	outcome, err := r.ensureLink(path, target)
	if err != nil {
		return err
	}
	logging.Debug("%s -> %s (%s)", rel, target, outcome)
	return nil
}
