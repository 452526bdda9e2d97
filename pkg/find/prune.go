package find

// PruneMatcher returns true and instructs the traversal driver not to
// descend into the current directory (-prune). Under -depth the children
// have already been visited, so pruning is a no-op there.
type PruneMatcher struct {
	baseMatcher
}

// NewPruneMatcher builds a -prune matcher.
func NewPruneMatcher() *PruneMatcher { return &PruneMatcher{} }

func (m *PruneMatcher) Matches(_ *Entry, io *MatcherIO) bool {
	io.MarkCurrentDirSkipped()
	return true
}
