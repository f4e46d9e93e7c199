package tree

import (
	"errors"
	"fmt"
)

// Operations reported by BuildError.
const (
	OpMkdir   = "create directory"
	OpSymlink = "create link"
	OpRelink  = "replace link"
)

// ErrNotSymlink is reported when a non-link entry blocks a link path.
var ErrNotSymlink = errors.New("exists and is not a symbolic link")

// ErrNotDirectory is reported when a non-directory entry blocks a directory path.
var ErrNotDirectory = errors.New("exists and is not a directory")

// ErrOutsideTree is reported for a path that would leave the tree root.
var ErrOutsideTree = errors.New("path leaves the tree root")

// ErrInvalidSegment is reported for an artist or playlist name that
// cannot be a directory of its own, such as "" or "..".
var ErrInvalidSegment = errors.New("not a usable directory name")

// BuildError is a fatal filesystem failure during a build. Entries created
// before the failure stay on disk; a re-run after fixing the cause
// completes the tree.
type BuildError struct {
	Op   string
	Path string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
