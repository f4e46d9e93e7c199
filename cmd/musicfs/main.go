// Command musicfs builds browsable symlink trees (artist/album, artist,
// playlists) over a flat music library described by a metadata document.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/llehouerou/musicfs/internal/tree"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	treeArgs := "LIB TREE"

	return &cli.App{
		Name:      "musicfs",
		Usage:     "Filesystem utils for hierarchical music libraries",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metadata",
				Aliases: []string{"m"},
				Usage:   "music metadata JSON `FILE`",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config `FILE` (default: $XDG_CONFIG_HOME/musicfs/config.toml, ./config.toml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "log what would be created without touching the filesystem",
			},
			&cli.BoolFlag{
				Name:  "relink",
				Usage: "replace existing links that point to another file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "artist-album-tree",
				Aliases:   []string{"album-tree"},
				Usage:     "Build artist/album/song fs tree",
				ArgsUsage: treeArgs,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "disambiguate",
						Usage: `name clashing tracks "NN - Title (file).ext" instead of skipping them`,
					},
				},
				Action: func(c *cli.Context) error {
					return runTree(c, tree.ModeAlbum)
				},
			},
			{
				Name:      "artist-tree",
				Usage:     "Build artist/song fs tree",
				ArgsUsage: treeArgs,
				Action: func(c *cli.Context) error {
					return runTree(c, tree.ModeArtist)
				},
			},
			{
				Name:      "playlist-tree",
				Usage:     "Build playlist fs tree",
				ArgsUsage: treeArgs + " PLAYLISTS",
				Action: func(c *cli.Context) error {
					return runTree(c, tree.ModePlaylist)
				},
			},
			{
				Name:  "build",
				Usage: "Build every tree configured in the config file",
				Action: func(c *cli.Context) error {
					return runBuildAll(c)
				},
			},
			{
				Name:  "watch",
				Usage: "Build configured trees, then rebuild whenever the documents change",
				Action: func(c *cli.Context) error {
					return runWatch(c)
				},
			},
			{
				Name:      "scan",
				Usage:     "Generate a metadata document from the tags of the library files",
				ArgsUsage: "LIB",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the document to `FILE` instead of stdout",
					},
				},
				Action: func(c *cli.Context) error {
					return runScan(c)
				},
			},
		},
	}
}
