package find

import (
	"fmt"
	"regexp"
	"strings"
)

// RegexType selects the regular-expression dialect used by -regex and
// -iregex. The dialects are translated onto the stdlib regexp engine.
type RegexType int

const (
	// RegexPosixBasic is the POSIX BRE dialect (default).
	RegexPosixBasic RegexType = iota
	// RegexPosixExtended is the POSIX ERE dialect.
	RegexPosixExtended
	// RegexEd is the ed(1) dialect, an alias of posix-basic.
	RegexEd
	// RegexSed is the sed(1) dialect: BRE plus the GNU \+ \? \| operators.
	RegexSed
	// RegexGrep is the grep(1) dialect: BRE plus the GNU \+ \? \| operators.
	RegexGrep
	// RegexEmacs is the Emacs dialect: ERE-like operators with \( \) \|
	// groups and no interval expressions.
	RegexEmacs
	// RegexFindutilsDefault is an Emacs-like superset; it is an alias of
	// the Emacs dialect.
	RegexFindutilsDefault
)

// regexTypeNames lists the accepted -regextype arguments in display order.
var regexTypeNames = []string{
	"posix-basic", "posix-extended", "ed", "emacs", "grep", "sed", "findutils-default",
}

// ParseRegexType converts a -regextype argument into a RegexType.
func ParseRegexType(s string) (RegexType, error) {
	switch s {
	case "posix-basic":
		return RegexPosixBasic, nil
	case "posix-extended":
		return RegexPosixExtended, nil
	case "ed":
		return RegexEd, nil
	case "sed":
		return RegexSed, nil
	case "grep":
		return RegexGrep, nil
	case "emacs":
		return RegexEmacs, nil
	case "findutils-default":
		return RegexFindutilsDefault, nil
	default:
		return RegexPosixBasic, fmt.Errorf("invalid regex type %q (must be one of %s)",
			s, strings.Join(regexTypeNames, ", "))
	}
}

func (t RegexType) String() string {
	switch t {
	case RegexPosixExtended:
		return "posix-extended"
	case RegexEd:
		return "ed"
	case RegexSed:
		return "sed"
	case RegexGrep:
		return "grep"
	case RegexEmacs:
		return "emacs"
	case RegexFindutilsDefault:
		return "findutils-default"
	default:
		return "posix-basic"
	}
}

// CompileRegex compiles pattern in the given dialect, anchored implicitly to
// the start and end of the matched string.
func CompileRegex(t RegexType, pattern string, caseless bool) (*regexp.Regexp, error) {
	var (
		expr string
		err  error
	)
	switch t {
	case RegexPosixExtended:
		expr = pattern
	case RegexEmacs, RegexFindutilsDefault:
		expr, err = translateEmacs(pattern)
	default:
		expr, err = translateBasic(pattern)
	}
	if err != nil {
		return nil, err
	}
	if caseless {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(`\A(?:` + expr + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

// copyBracketExpr copies a regex bracket expression, starting after the
// opening '[', onto out. Returns the remaining input.
func copyBracketExpr(out *strings.Builder, rest string) (string, error) {
	out.WriteByte('[')
	if strings.HasPrefix(rest, "^") {
		out.WriteByte('^')
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "]") {
		out.WriteByte(']')
		rest = rest[1:]
	}
	for len(rest) > 0 {
		ch, size := firstRune(rest)
		out.WriteRune(ch)
		rest = rest[size:]
		switch ch {
		case '[':
			delim, delimSize := firstRune(rest)
			if delimSize > 0 && (delim == '.' || delim == '=' || delim == ':') {
				out.WriteRune(delim)
				rest = rest[delimSize:]
				end := strings.IndexAny(rest, string(delim)+"]")
				if end < 0 || end+2 > len(rest) {
					return "", fmt.Errorf("unterminated [%c...%c] inside bracket expression", delim, delim)
				}
				out.WriteString(rest[:end+2])
				rest = rest[end+2:]
			}
		case ']':
			return rest, nil
		}
	}
	return "", fmt.Errorf("unterminated bracket expression")
}

// translateBasic rewrites a POSIX basic regular expression (with the GNU
// \+ \? \| extensions) into stdlib regexp syntax. Backreferences are the
// one BRE feature the engine cannot express; they are rejected.
func translateBasic(pattern string) (string, error) {
	var out strings.Builder
	rest := pattern
	for len(rest) > 0 {
		ch, size := firstRune(rest)
		rest = rest[size:]
		switch ch {
		case '\\':
			if len(rest) == 0 {
				return "", fmt.Errorf("trailing backslash in regex")
			}
			esc, escSize := firstRune(rest)
			rest = rest[escSize:]
			switch esc {
			case '(', ')', '{', '}', '|', '+', '?':
				out.WriteRune(esc)
			case '1', '2', '3', '4', '5', '6', '7', '8', '9':
				return "", fmt.Errorf("backreference \\%c is not supported", esc)
			default:
				out.WriteByte('\\')
				out.WriteRune(esc)
			}
		case '(', ')', '{', '}', '|', '+', '?':
			out.WriteByte('\\')
			out.WriteRune(ch)
		case '[':
			var err error
			rest, err = copyBracketExpr(&out, rest)
			if err != nil {
				return "", err
			}
		default:
			out.WriteRune(ch)
		}
	}
	return out.String(), nil
}

// translateEmacs rewrites an Emacs-dialect regular expression into stdlib
// regexp syntax: \( \) \| are the group and alternation operators, + ? *
// are postfix operators, braces and parentheses are literal.
func translateEmacs(pattern string) (string, error) {
	var out strings.Builder
	rest := pattern
	for len(rest) > 0 {
		ch, size := firstRune(rest)
		rest = rest[size:]
		switch ch {
		case '\\':
			if len(rest) == 0 {
				return "", fmt.Errorf("trailing backslash in regex")
			}
			esc, escSize := firstRune(rest)
			rest = rest[escSize:]
			switch esc {
			case '(', ')', '|':
				out.WriteRune(esc)
			case '{', '}':
				out.WriteByte('\\')
				out.WriteRune(esc)
			case '1', '2', '3', '4', '5', '6', '7', '8', '9':
				return "", fmt.Errorf("backreference \\%c is not supported", esc)
			default:
				out.WriteByte('\\')
				out.WriteRune(esc)
			}
		case '(', ')', '{', '}', '|':
			out.WriteByte('\\')
			out.WriteRune(ch)
		case '[':
			var err error
			rest, err = copyBracketExpr(&out, rest)
			if err != nil {
				return "", err
			}
		default:
			out.WriteRune(ch)
		}
	}
	return out.String(), nil
}
