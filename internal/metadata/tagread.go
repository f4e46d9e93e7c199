package metadata

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// readTags reads the fields of a metadata entry from an audio file.
// dhowden/tag is tried first; files it cannot parse are retried with a
// format specific reader.
func readTags(path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case ExtMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readID3v2(path)
		case ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4:
			return readTaglib(path)
		}
		return Entry{}, err
	}

	artist := m.AlbumArtist()
	if artist == "" {
		artist = m.Artist()
	}
	track, _ := m.Track()

	return Entry{
		Artist: artist,
		Album:  m.Album(),
		Title:  m.Title(),
		Number: track,
		Date:   m.Year(),
	}, nil
}

func readID3v2(path string) (Entry, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Entry{}, err
	}
	defer id3tag.Close()

	artist := id3TextFrame(id3tag, "TPE2") // album artist
	if artist == "" {
		artist = id3tag.Artist()
	}

	year := parseYear(id3TextFrame(id3tag, "TDRC"))
	if year == 0 {
		year = parseYear(id3tag.Year())
	}

	return Entry{
		Artist: artist,
		Album:  id3tag.Album(),
		Title:  id3tag.Title(),
		Number: parseLeadingInt(id3TextFrame(id3tag, "TRCK")),
		Date:   year,
	}, nil
}

func id3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

func readTaglib(path string) (Entry, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return Entry{}, err
	}

	first := func(keys ...string) string {
		for _, key := range keys {
			if values := raw[key]; len(values) > 0 && values[0] != "" {
				return values[0]
			}
		}
		return ""
	}

	return Entry{
		Artist: first(taglib.AlbumArtist, taglib.Artist),
		Album:  first(taglib.Album),
		Title:  first(taglib.Title),
		Number: parseLeadingInt(first(taglib.TrackNumber)),
		Date:   parseYear(first(taglib.Date, "YEAR")),
	}, nil
}

// parseLeadingInt parses "5" and "5/12" as 5.
func parseLeadingInt(s string) int {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseYear returns the year of dates like "1980", "1980-07-25" or
// "1980-07-25T00:00:00".
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0
	}
	n, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return n
}
