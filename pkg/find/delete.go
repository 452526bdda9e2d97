package find

import "os"

// DeleteMatcher removes matched entries: unlink for non-directories, rmdir
// for directories (-delete). Parsing -delete forces -depth so directories
// are visited after their contents.
type DeleteMatcher struct {
	baseMatcher
}

// NewDeleteMatcher builds a -delete matcher.
func NewDeleteMatcher() *DeleteMatcher { return &DeleteMatcher{} }

func (m *DeleteMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	// Deleting "." is refused; treat it as success like GNU find so the
	// rest of the expression still runs.
	if entry.Path() == "." {
		return true
	}
	if err := os.Remove(entry.Path()); err != nil {
		reportEntryError(entry, io, "cannot delete", err)
		return false
	}
	return true
}

func (m *DeleteMatcher) HasSideEffects() bool { return true }
