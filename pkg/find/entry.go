package find

import (
	"os"
	"path/filepath"
	"syscall"
)

// FileType classifies a directory entry the way the -type primary sees it.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeRegular
	TypeDirectory
	TypeSymlink
	TypeBlockDevice
	TypeCharDevice
	TypeFifo
	TypeSocket
)

// Char returns the single-letter spelling used by -type and %y.
func (t FileType) Char() byte {
	switch t {
	case TypeRegular:
		return 'f'
	case TypeDirectory:
		return 'd'
	case TypeSymlink:
		return 'l'
	case TypeBlockDevice:
		return 'b'
	case TypeCharDevice:
		return 'c'
	case TypeFifo:
		return 'p'
	case TypeSocket:
		return 's'
	default:
		return 'U'
	}
}

// ParseFileType converts a -type argument into a FileType.
func ParseFileType(s string) (FileType, error) {
	switch s {
	case "f":
		return TypeRegular, nil
	case "d":
		return TypeDirectory, nil
	case "l":
		return TypeSymlink, nil
	case "b":
		return TypeBlockDevice, nil
	case "c":
		return TypeCharDevice, nil
	case "p":
		return TypeFifo, nil
	case "s":
		return TypeSocket, nil
	case "D":
		return TypeUnknown, parseErrorf(0, s, "type argument %s not supported", s)
	default:
		return TypeUnknown, parseErrorf(0, s, "unrecognised type argument %s", s)
	}
}

// FileTypeFromMode maps an os.FileMode onto a FileType.
func FileTypeFromMode(m os.FileMode) FileType {
	switch {
	case m.IsRegular():
		return TypeRegular
	case m.IsDir():
		return TypeDirectory
	case m&os.ModeSymlink != 0:
		return TypeSymlink
	case m&os.ModeDevice != 0 && m&os.ModeCharDevice != 0:
		return TypeCharDevice
	case m&os.ModeDevice != 0:
		return TypeBlockDevice
	case m&os.ModeNamedPipe != 0:
		return TypeFifo
	case m&os.ModeSocket != 0:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// Follow is the symlink policy selected by -P, -H or -L.
type Follow int

const (
	// FollowNever never follows symlinks (-P; default).
	FollowNever Follow = iota
	// FollowRoots follows symlinks on root paths only (-H).
	FollowRoots
	// FollowAlways follows all symlinks (-L).
	FollowAlways
)

// At reports whether entries at the given depth have their links followed.
func (f Follow) At(depth int) bool {
	switch f {
	case FollowRoots:
		return depth == 0
	case FollowAlways:
		return true
	default:
		return false
	}
}

// Stat resolves metadata for path under this policy at the given depth.
// Under a following policy a broken link falls back to the link itself,
// matching GNU find's -L behavior for dangling links.
func (f Follow) Stat(path string, depth int) (os.FileInfo, error) {
	if f.At(depth) {
		info, err := os.Stat(path)
		if err == nil {
			return info, nil
		}
		if !IsNotFound(err) && !IsLoop(err) {
			return nil, &WalkError{Path: path, Cause: err}
		}
	}
	info, err := os.Lstat(path)
	if err != nil {
		return nil, &WalkError{Path: path, Cause: err}
	}
	return info, nil
}

// Entry is the visit context handed to the matcher tree: one filesystem
// entry, its position in the walk, and lazily materialized metadata.
type Entry struct {
	path   string
	root   string
	depth  int
	follow bool

	info    os.FileInfo
	infoErr error

	// reported suppresses repeated metadata diagnostics for one entry.
	reported bool
}

// NewEntry probes path under the given follow policy and builds an Entry.
// Probe failures are captured, not returned: the entry carries a poisoned
// metadata record and metadata-dependent tests will fail with a diagnostic.
func NewEntry(path string, depth int, follow Follow, root string) *Entry {
	e := &Entry{
		path:   path,
		root:   root,
		depth:  depth,
		follow: follow.At(depth),
	}
	e.info, e.infoErr = follow.Stat(path, depth)
	return e
}

// Path returns the effective path: the root spelling joined with the
// relative components below it.
func (e *Entry) Path() string { return e.path }

// Name returns the basename of the entry.
func (e *Entry) Name() string { return filepath.Base(e.path) }

// Root returns the starting point that produced this entry.
func (e *Entry) Root() string { return e.root }

// Depth returns 0 for a root, +1 per descent.
func (e *Entry) Depth() int { return e.depth }

// Followed reports whether the cached metadata followed a symlink.
func (e *Entry) Followed() bool { return e.follow }

// Type returns the entry's file type under the effective follow policy.
func (e *Entry) Type() FileType {
	info, err := e.Metadata()
	if err != nil {
		return TypeUnknown
	}
	return FileTypeFromMode(info.Mode())
}

// Metadata returns the cached metadata record, or the probe error that
// poisoned it.
func (e *Entry) Metadata() (os.FileInfo, error) {
	return e.info, e.infoErr
}

// MetadataFollow resolves metadata under an explicit policy, reusing the
// cache when the policy agrees with what was already probed.
func (e *Entry) MetadataFollow(follow Follow) (os.FileInfo, error) {
	wantFollow := follow.At(e.depth)
	if wantFollow == e.follow {
		return e.Metadata()
	}
	if !e.follow && e.infoErr == nil && FileTypeFromMode(e.info.Mode()) != TypeSymlink {
		// Not a symlink: stat and lstat agree.
		return e.Metadata()
	}
	return follow.Stat(e.path, e.depth)
}

// stat returns the raw Stat_t backing the metadata, if any.
func (e *Entry) stat() (*syscall.Stat_t, error) {
	info, err := e.Metadata()
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, &WalkError{Path: e.path, Cause: syscall.ENOTSUP}
	}
	return st, nil
}
