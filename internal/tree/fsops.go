package tree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Outcome is the result of a create-if-absent operation.
type Outcome int

const (
	// Created means the entry did not exist and was created.
	Created Outcome = iota
	// Existed means a matching or tolerated entry was already there.
	Existed
	// Replaced means a stale link was pointed at the expected target.
	Replaced
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Existed:
		return "exists"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// relinkSuffix names the temporary link renamed over a stale one.
const relinkSuffix = ".musicfs-relink"

// ensureDir creates dir and its missing parents.
func (r *run) ensureDir(dir string) (Outcome, error) {
	if r.dirs[dir] {
		return Existed, nil
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return 0, &BuildError{Op: OpMkdir, Path: dir, Err: ErrNotDirectory}
		}
		r.dirs[dir] = true
		return Existed, nil
	case !errors.Is(err, fs.ErrNotExist):
		return 0, &BuildError{Op: OpMkdir, Path: dir, Err: err}
	}

	if !r.b.dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, &BuildError{Op: OpMkdir, Path: dir, Err: err}
		}
	}
	r.dirs[dir] = true
	r.stats.DirsCreated++
	return Created, nil
}

// currentTarget reports the target of the link at path, if any.
// A non-link entry at path is an error.
func (r *run) currentTarget(path string) (string, bool, error) {
	if target, ok := r.planned[path]; ok {
		return target, true, nil
	}

	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", false, nil
	case err != nil:
		return "", false, &BuildError{Op: OpSymlink, Path: path, Err: err}
	case info.Mode()&fs.ModeSymlink == 0:
		return "", false, &BuildError{Op: OpSymlink, Path: path, Err: ErrNotSymlink}
	}

	target, err := os.Readlink(path)
	if err != nil {
		return "", false, &BuildError{Op: OpSymlink, Path: path, Err: err}
	}
	return target, true, nil
}

// ensureLink creates a symbolic link at path pointing to target. An
// existing link is kept as is, or replaced when it points elsewhere and
// the builder relinks.
func (r *run) ensureLink(path, target string) (Outcome, error) {
	current, exists, err := r.currentTarget(path)
	if err != nil {
		return 0, err
	}

	if exists {
		if current == target || r.b.policy != PolicyRelink {
			r.stats.LinksExisting++
			return Existed, nil
		}
		if err := r.relink(path, target); err != nil {
			return 0, err
		}
		r.planned[path] = target
		r.stats.LinksReplaced++
		return Replaced, nil
	}

	if !r.b.dryRun {
		if err := os.Symlink(target, path); err != nil {
			if errors.Is(err, fs.ErrExist) {
				// Another writer got there first; its link stands.
				r.stats.LinksExisting++
				return Existed, nil
			}
			return 0, &BuildError{Op: OpSymlink, Path: path, Err: err}
		}
	}
	r.planned[path] = target
	r.stats.LinksCreated++
	return Created, nil
}

// relink atomically swaps the link at path for one pointing to target.
func (r *run) relink(path, target string) error {
	if r.b.dryRun {
		return nil
	}

	tmp := path + relinkSuffix
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &BuildError{Op: OpRelink, Path: tmp, Err: err}
	}
	if err := os.Symlink(target, tmp); err != nil {
		return &BuildError{Op: OpRelink, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &BuildError{Op: OpRelink, Path: path, Err: err}
	}
	return nil
}

// linkDepth returns how many directories separate the tree root from the
// directory holding a link at rel.
func linkDepth(rel string) int {
	dir := filepath.Dir(rel)
	if dir == "." {
		return 0
	}
	depth := 0
	for dir != "." && dir != string(filepath.Separator) {
		depth++
		dir = filepath.Dir(dir)
	}
	return depth
}
