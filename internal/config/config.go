package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "musicfs"

type Config struct {
	Library   string `koanf:"library"`   // flat library root, relative paths are relative to each tree root
	Metadata  string `koanf:"metadata"`  // metadata JSON document
	Playlists string `koanf:"playlists"` // playlist JSON document
	LogLevel  string `koanf:"log_level"` // "debug", "info", "warn" or "error"

	Trees TreesConfig `koanf:"trees"`
	Links LinksConfig `koanf:"links"`
	Watch WatchConfig `koanf:"watch"`
}

// TreesConfig holds the roots of the trees built by "musicfs build".
// An empty root skips that tree.
type TreesConfig struct {
	Album    string `koanf:"album"`
	Artist   string `koanf:"artist"`
	Playlist string `koanf:"playlist"`
}

// LinksConfig controls how existing links are handled.
type LinksConfig struct {
	Relink       bool `koanf:"relink"`       // replace links pointing to another target
	Disambiguate bool `koanf:"disambiguate"` // album tree: use "NN - Title (file)" on name clashes
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMS int `koanf:"debounce_ms"` // quiet period before rebuilding (default: 500)
}

// Load reads the config files found on the search path. Later files
// override earlier ones; missing files are skipped.
func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given config files, skipping missing ones.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Library = expandPath(cfg.Library)
	cfg.Metadata = expandPath(cfg.Metadata)
	cfg.Playlists = expandPath(cfg.Playlists)
	cfg.Trees.Album = expandPath(cfg.Trees.Album)
	cfg.Trees.Artist = expandPath(cfg.Trees.Artist)
	cfg.Trees.Playlist = expandPath(cfg.Trees.Playlist)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/musicfs/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasTrees returns true if at least one tree root is configured.
func (c *Config) HasTrees() bool {
	return c.Trees.Album != "" || c.Trees.Artist != "" || c.Trees.Playlist != ""
}

// GetWatchDebounce returns the watch debounce with defaults applied.
func (c *Config) GetWatchDebounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}
