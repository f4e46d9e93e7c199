package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Document field names.
const (
	FieldArtist = "artist"
	FieldAlbum  = "album"
	FieldTitle  = "title"
	FieldNumber = "number"
	FieldDate   = "date"
)

// Store maps library filenames to songs. Iteration follows document order.
type Store struct {
	songs []Song
	index map[string]int
}

// NewStore builds a store from already validated songs.
// Later songs with an already seen filename are ignored.
func NewStore(songs []Song) *Store {
	s := &Store{index: make(map[string]int, len(songs))}
	for _, song := range songs {
		if _, ok := s.index[song.Filename]; ok {
			continue
		}
		s.index[song.Filename] = len(s.songs)
		s.songs = append(s.songs, song)
	}
	return s
}

// Lookup returns the song stored for a library filename.
// A nil store knows no song.
func (s *Store) Lookup(filename string) (Song, bool) {
	if s == nil {
		return Song{}, false
	}
	i, ok := s.index[filename]
	if !ok {
		return Song{}, false
	}
	return s.songs[i], true
}

// Songs returns all songs in document order.
func (s *Store) Songs() []Song {
	out := make([]Song, len(s.songs))
	copy(out, s.songs)
	return out
}

// Len returns the number of songs.
func (s *Store) Len() int {
	return len(s.songs)
}

// LoadFile loads a metadata document from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a metadata document:
//
//	{
//		"whatever.ogg": {
//			"number": 3,
//			"title": "Peep Show",
//			"artist": "Miranda Sex Garden",
//			"album": "Fairytales of Slavery",
//			"date": 1994
//		}
//	}
//
// Every entry is validated; the first invalid one fails the load with *Error.
func Load(r io.Reader) (*Store, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &Error{Err: fmt.Errorf("%w: expected an object of entries", ErrMalformed)}
	}

	store := &Store{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &Error{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
		}
		filename, _ := tok.(string)

		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, &Error{Filename: filename, Err: fmt.Errorf("%w: entry is not an object", ErrInvalidField)}
			}
			return nil, &Error{Filename: filename, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
		}

		song, err := parseSong(filename, fields)
		if err != nil {
			return nil, err
		}
		if _, ok := store.index[filename]; ok {
			return nil, &Error{Filename: filename, Err: ErrDuplicate}
		}
		store.index[filename] = len(store.songs)
		store.songs = append(store.songs, song)
	}

	if _, err := dec.Token(); err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return store, nil
}

func parseSong(filename string, fields map[string]json.RawMessage) (Song, error) {
	if err := validateFilename(filename); err != nil {
		return Song{}, &Error{Filename: filename, Err: err}
	}
	if fields == nil {
		return Song{}, &Error{Filename: filename, Err: fmt.Errorf("%w: entry is null", ErrInvalidField)}
	}

	song := Song{Filename: filename}
	var err error
	if song.Artist, err = stringField(fields, FieldArtist); err != nil {
		return Song{}, &Error{Filename: filename, Field: FieldArtist, Err: err}
	}
	if !IsSegment(song.Artist) {
		return Song{}, &Error{
			Filename: filename,
			Field:    FieldArtist,
			Err:      fmt.Errorf("%w: %q is not a usable directory name", ErrInvalidField, song.Artist),
		}
	}
	if song.Album, err = stringField(fields, FieldAlbum); err != nil {
		return Song{}, &Error{Filename: filename, Field: FieldAlbum, Err: err}
	}
	if song.Title, err = stringField(fields, FieldTitle); err != nil {
		return Song{}, &Error{Filename: filename, Field: FieldTitle, Err: err}
	}
	if song.TrackNumber, err = intField(fields, FieldNumber); err != nil {
		return Song{}, &Error{Filename: filename, Field: FieldNumber, Err: err}
	}
	if song.TrackNumber < 1 {
		return Song{}, &Error{
			Filename: filename,
			Field:    FieldNumber,
			Err:      fmt.Errorf("%w: track number %d is not positive", ErrInvalidField, song.TrackNumber),
		}
	}
	if song.Year, err = intField(fields, FieldDate); err != nil {
		return Song{}, &Error{Filename: filename, Field: FieldDate, Err: err}
	}
	return song, nil
}

// validateFilename accepts a single, non-empty path segment.
func validateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: %q is not a single path segment", ErrInvalidFilename, name)
	}
	return nil
}

func rawField(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, ErrMissingField
	}
	return raw, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := rawField(fields, name)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: expected a string, got %s", ErrInvalidField, raw)
	}
	return s, nil
}

// intField accepts a JSON integer, an integral float or a string holding
// a base-10 integer.
func intField(fields map[string]json.RawMessage, name string) (int, error) {
	raw, err := rawField(fields, name)
	if err != nil {
		return 0, err
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidField, s)
		}
		return n, nil
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, fmt.Errorf("%w: expected an integer, got %s", ErrInvalidField, raw)
	}
	if n, err := num.Int64(); err == nil {
		return int(n), nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidField, num)
	}
	return int(f), nil
}
