//go:build linux

package find

import (
	"fmt"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func statAccessed(st *syscall.Stat_t) time.Time {
	return time.Unix(st.Atim.Sec, st.Atim.Nsec)
}

func statModified(st *syscall.Stat_t) time.Time {
	return time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
}

func statChanged(st *syscall.Stat_t) time.Time {
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}

// statBirth retrieves the birth time via statx(2). Filesystems that do not
// record a birth time yield an error.
func statBirth(path string, followLinks bool) (time.Time, error) {
	var stx unix.Statx_t
	flags := unix.AT_SYMLINK_NOFOLLOW
	if followLinks {
		flags = 0
	}
	if err := unix.Statx(unix.AT_FDCWD, path, flags, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, &WalkError{Path: path, Cause: err}
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, &WalkError{Path: path, Cause: fmt.Errorf("birth time not recorded by the filesystem")}
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
}
