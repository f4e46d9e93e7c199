package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/llehouerou/musicfs/internal/config"
	"github.com/llehouerou/musicfs/internal/errmsg"
	"github.com/llehouerou/musicfs/internal/logging"
	"github.com/llehouerou/musicfs/internal/metadata"
	"github.com/llehouerou/musicfs/internal/playlists"
	"github.com/llehouerou/musicfs/internal/tree"
	"github.com/llehouerou/musicfs/internal/watch"
)

var errNoTrees = errors.New("no trees configured, set [trees] in the config file")

// failure is a command error worded for users.
type failure struct {
	op      errmsg.Op
	context string
	err     error
}

func (f *failure) Error() string {
	return errmsg.FormatWith(f.op, f.context, f.err)
}

func (f *failure) Unwrap() error {
	return f.err
}

// session holds the settings shared by every command of one invocation.
type session struct {
	cfg      *config.Config
	metadata string
	dryRun   bool
	relink   bool
	out      io.Writer
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return nil, &failure{op: errmsg.OpConfigLoad, context: c.String("config"), err: err}
	}
	applyLogLevel(c.String("log-level"), cfg.LogLevel)

	return &session{
		cfg:      cfg,
		metadata: firstNonEmpty(c.String("metadata"), cfg.Metadata),
		dryRun:   c.Bool("dry-run"),
		relink:   c.Bool("relink") || cfg.Links.Relink,
		out:      c.App.Writer,
	}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return config.LoadFrom(path)
}

// applyLogLevel sets the first valid level among values.
func applyLogLevel(values ...string) {
	for _, v := range values {
		if v == "" {
			continue
		}
		l, ok := logging.ParseLevel(v)
		if !ok {
			logging.Warn("Unknown log level %q", v)
			continue
		}
		logging.SetLevel(l)
		return
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// target is one tree to build.
type target struct {
	mode         tree.Mode
	library      string
	root         string
	playlists    string
	disambiguate bool
}

func (t target) validate() error {
	switch {
	case t.library == "":
		return fmt.Errorf("%s tree: missing library root (LIB argument or \"library\" in config)", t.mode)
	case t.root == "":
		return fmt.Errorf("%s tree: missing tree root (TREE argument or [trees] in config)", t.mode)
	case t.mode == tree.ModePlaylist && t.playlists == "":
		return fmt.Errorf("%s tree: missing playlists (PLAYLISTS argument or \"playlists\" in config)", t.mode)
	}
	return nil
}

func configuredRoot(cfg *config.Config, mode tree.Mode) string {
	switch mode {
	case tree.ModeAlbum:
		return cfg.Trees.Album
	case tree.ModeArtist:
		return cfg.Trees.Artist
	case tree.ModePlaylist:
		return cfg.Trees.Playlist
	}
	return ""
}

// configuredTargets lists the trees of the config file.
func configuredTargets(cfg *config.Config) []target {
	var targets []target
	for _, mode := range []tree.Mode{tree.ModeAlbum, tree.ModeArtist, tree.ModePlaylist} {
		root := configuredRoot(cfg, mode)
		if root == "" {
			continue
		}
		t := target{mode: mode, library: cfg.Library, root: root}
		if mode == tree.ModePlaylist {
			t.playlists = cfg.Playlists
		}
		if mode == tree.ModeAlbum {
			t.disambiguate = cfg.Links.Disambiguate
		}
		targets = append(targets, t)
	}
	return targets
}

// inputs are the documents a set of targets needs. They are fully loaded
// and validated before any tree is touched.
type inputs struct {
	store     *metadata.Store
	playlists map[string][]playlists.Playlist
}

func (s *session) loadInputs(targets []target) (*inputs, error) {
	if s.metadata == "" {
		return nil, errors.New("missing metadata document (--metadata or \"metadata\" in config)")
	}
	for _, t := range targets {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}

	store, err := metadata.LoadFile(s.metadata)
	if err != nil {
		return nil, &failure{op: errmsg.OpMetadataLoad, context: s.metadata, err: err}
	}
	logging.Debug("Loaded %d songs from %s", store.Len(), s.metadata)

	in := &inputs{store: store, playlists: make(map[string][]playlists.Playlist)}
	for _, t := range targets {
		if t.mode != tree.ModePlaylist {
			continue
		}
		if _, ok := in.playlists[t.playlists]; ok {
			continue
		}
		pls, err := playlists.LoadFile(t.playlists)
		if err != nil {
			return nil, &failure{op: errmsg.OpPlaylistsLoad, context: t.playlists, err: err}
		}
		in.playlists[t.playlists] = pls
	}
	return in, nil
}

func (s *session) build(t target, in *inputs) (tree.Stats, error) {
	b := tree.New(t.root, t.library,
		tree.WithPolicy(tree.ParsePolicy(s.relink)),
		tree.WithDisambiguation(t.disambiguate),
		tree.WithDryRun(s.dryRun),
	)

	var stats tree.Stats
	var err error
	var op errmsg.Op
	switch t.mode {
	case tree.ModeAlbum:
		op = errmsg.OpBuildAlbumTree
		stats, err = b.BuildAlbumTree(in.store.Songs())
	case tree.ModeArtist:
		op = errmsg.OpBuildArtistTree
		stats, err = b.BuildArtistTree(in.store.Songs())
	case tree.ModePlaylist:
		op = errmsg.OpBuildPlaylistTree
		stats, err = b.BuildPlaylistTree(in.store, in.playlists[t.playlists])
	default:
		return stats, fmt.Errorf("unknown tree %q", t.mode)
	}
	if err != nil {
		return stats, &failure{op: op, context: t.root, err: err}
	}
	return stats, nil
}

// buildAll loads the documents once and builds every target in order,
// stopping at the first failure.
func (s *session) buildAll(targets []target) ([]tree.Stats, error) {
	in, err := s.loadInputs(targets)
	if err != nil {
		return nil, err
	}

	all := make([]tree.Stats, 0, len(targets))
	for _, t := range targets {
		stats, err := s.build(t, in)
		if err != nil {
			return all, err
		}
		all = append(all, stats)
	}
	return all, nil
}

func (s *session) printSummary(stats []tree.Stats) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintln(s.out, renderSummary(stats))
}

func runTree(c *cli.Context, mode tree.Mode) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	args := c.Args()
	t := target{
		mode:    mode,
		library: firstNonEmpty(args.Get(0), s.cfg.Library),
		root:    firstNonEmpty(args.Get(1), configuredRoot(s.cfg, mode)),
	}
	switch mode {
	case tree.ModePlaylist:
		t.playlists = firstNonEmpty(args.Get(2), s.cfg.Playlists)
	case tree.ModeAlbum:
		t.disambiguate = c.Bool("disambiguate") || s.cfg.Links.Disambiguate
	}

	stats, err := s.buildAll([]target{t})
	s.printSummary(stats)
	return err
}

func runBuildAll(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	if !s.cfg.HasTrees() {
		return errNoTrees
	}
	targets := configuredTargets(s.cfg)

	stats, err := s.buildAll(targets)
	s.printSummary(stats)
	return err
}

func runWatch(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	if !s.cfg.HasTrees() {
		return errNoTrees
	}
	targets := configuredTargets(s.cfg)

	rebuild := func() {
		stats, err := s.buildAll(targets)
		s.printSummary(stats)
		if err != nil {
			logging.Error("%v", err)
		}
	}
	rebuild()

	files := []string{s.metadata}
	for _, t := range targets {
		if t.playlists != "" {
			files = append(files, t.playlists)
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch.Run(ctx, files, s.cfg.GetWatchDebounce(), rebuild); err != nil {
		return &failure{op: errmsg.OpWatch, err: err}
	}
	return nil
}

func runScan(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	lib := firstNonEmpty(c.Args().First(), s.cfg.Library)
	if lib == "" {
		return errors.New("scan: missing library root (LIB argument or \"library\" in config)")
	}

	doc, skips, err := metadata.Scan(lib)
	if err != nil {
		return &failure{op: errmsg.OpLibraryScan, context: lib, err: err}
	}
	for _, skip := range skips {
		logging.Warn("Skipping %s: %s", skip.Filename, skip.Reason)
	}
	logging.Info("Scanned %d files, %d skipped", len(doc), len(skips))

	output := c.String("output")
	if output == "" {
		return doc.WriteJSON(s.out)
	}

	f, err := os.Create(output)
	if err != nil {
		return &failure{op: errmsg.OpMetadataSave, context: output, err: err}
	}
	if err := doc.WriteJSON(f); err != nil {
		f.Close()
		return &failure{op: errmsg.OpMetadataSave, context: output, err: err}
	}
	if err := f.Close(); err != nil {
		return &failure{op: errmsg.OpMetadataSave, context: output, err: err}
	}
	return nil
}
