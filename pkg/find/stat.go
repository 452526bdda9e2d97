package find

// InodeMatcher checks the entry's inode number (-inum).
type InodeMatcher struct {
	baseMatcher
	inum ComparableValue
}

// NewInodeMatcher builds an -inum matcher.
func NewInodeMatcher(inum ComparableValue) *InodeMatcher {
	return &InodeMatcher{inum: inum}
}

func (m *InodeMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting inode of", err)
		return false
	}
	return m.inum.Matches(uint64(st.Ino))
}

// LinksMatcher checks the entry's hard-link count (-links).
type LinksMatcher struct {
	baseMatcher
	links ComparableValue
}

// NewLinksMatcher builds a -links matcher.
func NewLinksMatcher(links ComparableValue) *LinksMatcher {
	return &LinksMatcher{links: links}
}

func (m *LinksMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting link count of", err)
		return false
	}
	return m.links.Matches(uint64(st.Nlink))
}
