package find

import (
	"os"
	"syscall"
)

// SameFileMatcher matches entries that refer to the same file as the
// reference path, by (device, inode) pair (-samefile).
type SameFileMatcher struct {
	baseMatcher
	dev uint64
	ino uint64
}

// NewSameFileMatcher stats the reference path under the traversal's symlink
// policy. A missing reference is a parse-time error.
func NewSameFileMatcher(path string, follow Follow) (*SameFileMatcher, error) {
	var (
		info os.FileInfo
		err  error
	)
	if follow == FollowNever {
		info, err = os.Lstat(path)
	} else {
		info, err = os.Stat(path)
	}
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, &WalkError{Path: path, Cause: syscall.ENOTSUP}
	}
	return &SameFileMatcher{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}

func (m *SameFileMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting metadata for", err)
		return false
	}
	return uint64(st.Dev) == m.dev && uint64(st.Ino) == m.ino
}
