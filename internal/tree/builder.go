// Package tree builds symbolic-link views of a flat music library.
//
// Three layouts are supported: Artist/[Year] Album/NN - Title, Artist/NNN - Title
// and Playlist/NNN - Title. Every build is idempotent: entries that are
// already in place are left alone, so a build can be re-run after a
// failure or after new songs are added.
package tree

import (
	"fmt"
	"path/filepath"

	"github.com/llehouerou/musicfs/internal/metadata"
)

// Policy decides what happens to a link that already exists at a destination.
type Policy int

const (
	// PolicyKeep accepts any existing link, whatever it points to.
	PolicyKeep Policy = iota
	// PolicyRelink replaces existing links pointing to another target.
	PolicyRelink
)

// ParsePolicy maps the configuration flag to a policy.
func ParsePolicy(relink bool) Policy {
	if relink {
		return PolicyRelink
	}
	return PolicyKeep
}

// Builder creates link trees under a tree root pointing into a library root.
//
// A relative library root is interpreted relative to the tree root. When
// the tree root is relative, link targets are relative too, climbing back
// to the tree root with "..". When it is absolute, targets are absolute.
type Builder struct {
	treeRoot     string
	libraryRoot  string
	policy       Policy
	disambiguate bool
	dryRun       bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithPolicy sets the existing-link policy. Defaults to PolicyKeep.
func WithPolicy(p Policy) Option {
	return func(b *Builder) { b.policy = p }
}

// WithDisambiguation makes the album layout fall back to
// "NN - Title (stem).ext" when the regular name is taken by a link to
// another library file.
func WithDisambiguation(enabled bool) Option {
	return func(b *Builder) { b.disambiguate = enabled }
}

// WithDryRun computes and logs every operation without touching the filesystem.
func WithDryRun(enabled bool) Option {
	return func(b *Builder) { b.dryRun = enabled }
}

// New creates a Builder.
func New(treeRoot, libraryRoot string, opts ...Option) *Builder {
	b := &Builder{
		treeRoot:    treeRoot,
		libraryRoot: libraryRoot,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TreeRoot returns the directory the builder writes into.
func (b *Builder) TreeRoot() string {
	return b.treeRoot
}

// LinkTarget returns the target of a link placed at rel (relative to the
// tree root) for a file of the library.
func (b *Builder) LinkTarget(rel, libraryFile string) string {
	if filepath.IsAbs(b.libraryRoot) {
		return filepath.Join(b.libraryRoot, libraryFile)
	}
	if filepath.IsAbs(b.treeRoot) {
		return filepath.Join(b.treeRoot, b.libraryRoot, libraryFile)
	}

	depth := linkDepth(rel)
	parts := make([]string, 0, depth+2)
	for range depth {
		parts = append(parts, "..")
	}
	parts = append(parts, b.libraryRoot, libraryFile)
	return filepath.Join(parts...)
}

// run holds the state of one build: counters and the entries already
// handled, so repeated directories are checked once.
type run struct {
	b       *Builder
	stats   Stats
	dirs    map[string]bool
	planned map[string]string
}

func (b *Builder) newRun(mode Mode) *run {
	return &run{
		b:       b,
		stats:   Stats{Mode: mode, Root: b.treeRoot, DryRun: b.dryRun},
		dirs:    make(map[string]bool),
		planned: make(map[string]string),
	}
}

// abs resolves rel under the tree root, refusing paths that leave it.
func (r *run) abs(op, rel string) (string, error) {
	path := filepath.Join(r.b.treeRoot, rel)
	if !filepath.IsLocal(rel) {
		return "", &BuildError{Op: op, Path: path, Err: ErrOutsideTree}
	}
	return path, nil
}

// checkSegment refuses a directory name that would not add a level of
// its own below the tree root.
func (r *run) checkSegment(name string) error {
	if metadata.IsSegment(name) {
		return nil
	}
	return &BuildError{
		Op:   OpMkdir,
		Path: filepath.Join(r.b.treeRoot, metadata.Sanitize(name)),
		Err:  fmt.Errorf("%w: %q", ErrInvalidSegment, name),
	}
}

// Mode identifies a tree layout.
type Mode string

// Tree layouts.
const (
	ModeAlbum    Mode = "artist-album"
	ModeArtist   Mode = "artist"
	ModePlaylist Mode = "playlist"
)

// Stats summarizes one build.
type Stats struct {
	Mode          Mode
	Root          string
	DryRun        bool
	DirsCreated   int
	LinksCreated  int
	LinksExisting int
	LinksReplaced int
	Fallbacks     int // album links written under the disambiguated name
	Unresolved    int // playlist members without metadata
}

// Links returns the number of links handled.
func (s Stats) Links() int {
	return s.LinksCreated + s.LinksExisting + s.LinksReplaced
}

// Changed reports whether the build modified the tree.
func (s Stats) Changed() bool {
	return s.DirsCreated+s.LinksCreated+s.LinksReplaced > 0
}

func (s Stats) String() string {
	mode := string(s.Mode)
	if s.DryRun {
		mode += " (dry run)"
	}
	out := fmt.Sprintf("%s: %d created, %d existing, %d replaced, %d directories",
		mode, s.LinksCreated, s.LinksExisting, s.LinksReplaced, s.DirsCreated)
	if s.Fallbacks > 0 {
		out += fmt.Sprintf(", %d fallback names", s.Fallbacks)
	}
	if s.Unresolved > 0 {
		out += fmt.Sprintf(", %d without metadata", s.Unresolved)
	}
	return out
}
