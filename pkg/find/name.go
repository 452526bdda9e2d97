package find

import "os"

// NameMatcher matches the basename of the entry against a shell glob
// (-name / -iname).
type NameMatcher struct {
	baseMatcher
	pattern *Pattern
}

// NewNameMatcher builds a basename glob matcher.
func NewNameMatcher(pattern string, caseless bool) *NameMatcher {
	return &NameMatcher{pattern: NewPattern(pattern, caseless)}
}

func (m *NameMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	return m.pattern.Matches(entry.Name())
}

// PathMatcher matches the full effective path against a shell glob
// (-path / -ipath / -wholename / -iwholename).
type PathMatcher struct {
	baseMatcher
	pattern *Pattern
}

// NewPathMatcher builds a whole-path glob matcher.
func NewPathMatcher(pattern string, caseless bool) *PathMatcher {
	return &PathMatcher{pattern: NewPattern(pattern, caseless)}
}

func (m *PathMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	return m.pattern.Matches(entry.Path())
}

// LinkNameMatcher matches the target of a symbolic link against a shell
// glob (-lname / -ilname). Entries that are not symlinks never match.
type LinkNameMatcher struct {
	baseMatcher
	pattern *Pattern
}

// NewLinkNameMatcher builds a symlink-target glob matcher.
func NewLinkNameMatcher(pattern string, caseless bool) *LinkNameMatcher {
	return &LinkNameMatcher{pattern: NewPattern(pattern, caseless)}
}

func (m *LinkNameMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	// Under -L only broken links keep the symlink type.
	if entry.Followed() && entry.Type() != TypeSymlink {
		return false
	}
	info, err := os.Lstat(entry.Path())
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := os.Readlink(entry.Path())
	if err != nil {
		return false
	}
	return m.pattern.Matches(target)
}
