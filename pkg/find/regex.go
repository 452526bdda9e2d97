package find

import "regexp"

// RegexMatcher matches the full effective path against a regular expression
// in the dialect selected by -regextype. The match is implicitly anchored
// to the start and end of the path.
type RegexMatcher struct {
	baseMatcher
	re *regexp.Regexp
}

// NewRegexMatcher compiles pattern in the given dialect.
func NewRegexMatcher(t RegexType, pattern string, caseless bool) (*RegexMatcher, error) {
	re, err := CompileRegex(t, pattern, caseless)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{re: re}, nil
}

func (m *RegexMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	return m.re.MatchString(entry.Path())
}
