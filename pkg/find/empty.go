package find

import "os"

// EmptyMatcher matches empty regular files and empty directories (-empty).
type EmptyMatcher struct {
	baseMatcher
}

// NewEmptyMatcher builds an -empty matcher.
func NewEmptyMatcher() *EmptyMatcher { return &EmptyMatcher{} }

func (m *EmptyMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	switch entry.Type() {
	case TypeRegular:
		info, err := entry.Metadata()
		if err != nil {
			reportEntryError(entry, io, "error getting metadata for", err)
			return false
		}
		return info.Size() == 0
	case TypeDirectory:
		entries, err := os.ReadDir(entry.Path())
		if err != nil {
			reportEntryError(entry, io, "error reading directory", err)
			return false
		}
		return len(entries) == 0
	default:
		return false
	}
}
