package find

import (
	"fmt"
	"io"
	"os"
	"time"
)

var (
	lsRecentFormat = mustStrftime("%b %e %H:%M")
	lsOldFormat    = mustStrftime("%b %e  %Y")
)

// sixMonths is the ls cutoff between "recent" (time shown) and "old"
// (year shown) timestamps.
const sixMonths = 365 * 24 * time.Hour / 2

// Ls writes a GNU-compatible long listing for every matched entry
// (-ls, -fls): inode, 1K blocks, mode, links, user, group, size, time and
// name; symlinks show the target after an arrow.
type Ls struct {
	sink *sinkFile
}

// NewLs builds a listing sink. A nil sink writes to the run's output
// stream.
func NewLs(sink *sinkFile) *Ls { return &Ls{sink: sink} }

func (l *Ls) Matches(entry *Entry, matcherIO *MatcherIO) bool {
	var out io.Writer = matcherIO.Out()
	if l.sink != nil {
		out = l.sink
	}
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, matcherIO, "error getting metadata for", err)
		return false
	}

	mtime := statModified(st)
	var when string
	if matcherIO.Now().Sub(mtime) < sixMonths && mtime.Sub(matcherIO.Now()) < sixMonths {
		when = lsRecentFormat.FormatString(mtime)
	} else {
		when = lsOldFormat.FormatString(mtime)
	}

	name := entry.Path()
	if entry.Type() == TypeSymlink {
		if target, err := os.Readlink(entry.Path()); err == nil {
			name += " -> " + target
		}
	}

	fmt.Fprintf(out, "%6d %4d %s %3d %-8s %-8s %8d %s %s\n",
		st.Ino,
		(st.Blocks+1)/2,
		modeString(uint32(st.Mode), entry.Type()),
		st.Nlink,
		lookupUserName(st.Uid),
		lookupGroupName(st.Gid),
		st.Size,
		when,
		name,
	)
	return true
}

func (l *Ls) HasSideEffects() bool { return true }

func (l *Ls) FinishedDir(_ string, _ *MatcherIO) {}

func (l *Ls) Finished(_ *MatcherIO) {
	if l.sink != nil {
		l.sink.close()
	}
}
