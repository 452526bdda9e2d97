package find

// QuitMatcher returns true and raises the traversal-terminate signal
// (-quit). Pending -exec + buffers and -fprint* handles are still flushed.
type QuitMatcher struct {
	baseMatcher
}

// NewQuitMatcher builds a -quit matcher.
func NewQuitMatcher() *QuitMatcher { return &QuitMatcher{} }

func (m *QuitMatcher) Matches(_ *Entry, io *MatcherIO) bool {
	io.Quit()
	return true
}

// HasSideEffects is true so that a bare `find . -quit` does not get the
// implicit -print appended.
func (m *QuitMatcher) HasSideEffects() bool { return true }
