package find

import (
	"regexp"
	"strings"
)

// Pattern is an fnmatch()-style glob matcher: shell wildcards `*`, `?` and
// bracket expressions, anchored at the full string. It is implemented by
// translating the glob into a regular expression.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern parses an fnmatch()-style glob. caseless folds case while
// matching (-iname and friends).
func NewPattern(pattern string, caseless bool) *Pattern {
	expr := globToRegex(pattern)
	if caseless {
		expr = "(?i)" + expr
	}
	// As long as globToRegex is correct this cannot fail.
	return &Pattern{re: regexp.MustCompile(`^(?:` + expr + `)$`)}
}

// Matches tests the pattern against a string.
func (p *Pattern) Matches(s string) bool {
	return p.re.MatchString(s)
}

// pushLiteral appends ch to the regex, escaping regex metacharacters.
func pushLiteral(regex *strings.Builder, ch rune) {
	if strings.ContainsRune(`.[]\*^$()|+?{}`, ch) {
		regex.WriteByte('\\')
	}
	regex.WriteRune(ch)
}

// extractBracketExpr extracts a bracket expression from the glob text that
// follows an opening '['. A glob bracket expression uses '!' where a regex
// uses '^' for a non-matching list. To check validity the candidate segment
// is compiled as a regex; if that fails the '[' is treated literally.
func extractBracketExpr(pattern string) (string, string, bool) {
	var expr strings.Builder
	expr.WriteByte('[')

	rest := pattern
	next, size := firstRune(rest)

	if next == '!' {
		expr.WriteByte('^')
		rest = rest[size:]
		next, size = firstRune(rest)
	}

	// A ']' occurring first in the list represents itself.
	if next == ']' {
		expr.WriteByte(']')
		rest = rest[size:]
		next, size = firstRune(rest)
	}

	for size > 0 {
		expr.WriteRune(next)
		rest = rest[size:]

		switch next {
		case '[':
			// Collating symbols [.x.], equivalence classes [=x=] and
			// character classes [:name:] nest inside bracket expressions.
			delim, delimSize := firstRune(rest)
			if delimSize > 0 {
				expr.WriteRune(delim)
				rest = rest[delimSize:]
				if delim == '.' || delim == '=' || delim == ':' {
					end := strings.IndexAny(rest, string(delim)+"]")
					if end < 0 || end+2 > len(rest) {
						return "", "", false
					}
					expr.WriteString(rest[:end+2])
					rest = rest[end+2:]
				}
			}
		case ']':
			candidate := expr.String()
			if _, err := regexp.Compile(candidate); err != nil {
				return "", "", false
			}
			return candidate, rest, true
		}

		next, size = firstRune(rest)
	}

	return "", "", false
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i == 0 {
			return r, len(string(r))
		}
	}
	return 0, 0
}

// globToRegex converts a POSIX glob into an (unanchored) regular expression.
func globToRegex(pattern string) string {
	var regex strings.Builder

	rest := pattern
	for len(rest) > 0 {
		ch, size := firstRune(rest)
		rest = rest[size:]

		switch ch {
		case '?':
			regex.WriteByte('.')
		case '*':
			regex.WriteString(".*")
		case '\\':
			if len(rest) == 0 {
				// fnmatch() never matches a pattern that ends in an
				// unescaped backslash.
				return `$.`
			}
			lit, litSize := firstRune(rest)
			rest = rest[litSize:]
			pushLiteral(&regex, lit)
		case '[':
			if expr, after, ok := extractBracketExpr(rest); ok {
				regex.WriteString(expr)
				rest = after
			} else {
				pushLiteral(&regex, ch)
			}
		default:
			pushLiteral(&regex, ch)
		}
	}

	return regex.String()
}
