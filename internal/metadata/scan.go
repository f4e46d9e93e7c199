package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Audio file extensions considered by Scan.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

var audioExtensions = map[string]bool{
	ExtMP3:  true,
	ExtFLAC: true,
	ExtOPUS: true,
	ExtOGG:  true,
	ExtM4A:  true,
	ExtMP4:  true,
}

// IsAudioFile reports whether the filename has a supported audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// Entry is one value of a metadata document.
type Entry struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	Date   int    `json:"date"`
}

// Document is a metadata document keyed by library filename.
type Document map[string]Entry

// WriteJSON writes the document in the format accepted by Load.
// Keys are sorted so repeated scans produce identical output.
func (d Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(d)
}

// ScanSkip records a library file left out of a scanned document.
type ScanSkip struct {
	Filename string
	Reason   string
}

// Scan reads the tags of every audio file at the top level of the
// library root and returns the matching metadata document. Files with
// unreadable or incomplete tags are reported in skips.
func Scan(libraryRoot string) (Document, []ScanSkip, error) {
	entries, err := os.ReadDir(libraryRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("read library: %w", err)
	}

	doc := make(Document)
	var skips []ScanSkip
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || !IsAudioFile(name) {
			continue
		}

		entry, reason := readEntry(filepath.Join(libraryRoot, name))
		if reason != "" {
			skips = append(skips, ScanSkip{Filename: name, Reason: reason})
			continue
		}
		doc[name] = entry
	}
	return doc, skips, nil
}

func readEntry(path string) (Entry, string) {
	entry, err := readTags(path)
	if err != nil {
		return Entry{}, fmt.Sprintf("read tags: %v", err)
	}

	var missing []string
	if entry.Artist == "" {
		missing = append(missing, FieldArtist)
	}
	if entry.Album == "" {
		missing = append(missing, FieldAlbum)
	}
	if entry.Title == "" {
		missing = append(missing, FieldTitle)
	}
	if entry.Number < 1 {
		missing = append(missing, FieldNumber)
	}
	if entry.Date == 0 {
		missing = append(missing, FieldDate)
	}
	if len(missing) > 0 {
		return Entry{}, "missing " + strings.Join(missing, ", ")
	}
	return entry, ""
}
