// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Input documents
	OpConfigLoad    Op = "load configuration"
	OpMetadataLoad  Op = "load metadata"
	OpPlaylistsLoad Op = "load playlists"

	// Tree builds
	OpBuildAlbumTree    Op = "build artist/album tree"
	OpBuildArtistTree   Op = "build artist tree"
	OpBuildPlaylistTree Op = "build playlist tree"

	// Library scan
	OpLibraryScan  Op = "scan library"
	OpMetadataSave Op = "write metadata"

	// Watch mode
	OpWatch Op = "watch documents"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
