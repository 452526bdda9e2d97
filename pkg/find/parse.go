package find

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Parsed is the result of turning the command line into useful forms.
type Parsed struct {
	Matcher Matcher
	Paths   []string
	Config  *Config
}

// ParseArgs parses everything after the program name: the -H/-L/-P and -D
// flags, the starting points, and the expression.
func ParseArgs(args []string, prompt PromptFunc) (*Parsed, error) {
	config := DefaultConfig()
	config.PosixlyCorrect = os.Getenv("POSIXLY_CORRECT") != ""

	i := 0
flags:
	for i < len(args) {
		switch args[i] {
		case "-O0", "-O1", "-O2", "-O3":
			// GNU optimization levels; accepted and ignored.
		case "-H":
			config.Follow = FollowRoots
		case "-L":
			config.Follow = FollowAlways
		case "-P":
			config.Follow = FollowNever
		case "-D":
			// The debug topic itself is handled by the command shell; the
			// parser only needs to step over the operand.
			if i >= len(args)-1 {
				return nil, parseErrorf(i, args[i], "missing argument to -D")
			}
			i++
		case "--":
			i++
			break flags
		default:
			break flags
		}
		i++
	}

	var paths []string
	pathsStart := i
	for i < len(args) &&
		(args[i] == "-" || !strings.HasPrefix(args[i], "-")) &&
		args[i] != "!" && args[i] != "(" && args[i] != ")" && args[i] != "," {
		paths = append(paths, args[i])
		i++
	}
	if i == pathsStart {
		paths = append(paths, ".")
	}

	matcher, err := BuildTopLevelMatcher(args[i:], config, prompt)
	if err != nil {
		return nil, err
	}

	if config.Files0Argument != "" {
		if len(paths) != 1 || paths[0] != "." {
			return nil, fmt.Errorf("extra operand '%s'\nfile operands cannot be combined with -files0-from", paths[0])
		}
		paths = config.NewPaths
	}

	return &Parsed{Matcher: matcher, Paths: paths, Config: config}, nil
}

// BuildTopLevelMatcher parses the expression arguments into a matcher
// tree. If the tree has no side-effecting action, -print is appended.
func BuildTopLevelMatcher(args []string, config *Config, prompt PromptFunc) (Matcher, error) {
	_, matcher, err := buildMatcherTree(args, config, parserState{prompt: prompt}, 0, false)
	if err != nil {
		return nil, err
	}
	if !matcher.HasSideEffects() {
		return &AndMatcher{subs: []Matcher{matcher, NewPrinter(DelimiterNewline, nil)}}, nil
	}
	return matcher, nil
}

// parserState carries the cross-token parsing context.
type parserState struct {
	regexType RegexType
	prompt    PromptFunc
}

// moreExpressions reports whether an operator at index has a right-hand
// operand.
func moreExpressions(args []string, index int) bool {
	return index < len(args)-1 && args[index+1] != ")"
}

func parseNumber(position int, option, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, parseErrorf(position, value, "expected a positive decimal integer argument to %s, but got `%s'", option, value)
	}
	return n, nil
}

// buildMatcherTree is the main translate-args-into-a-matcher function. It
// calls itself recursively when it encounters an opening parenthesis.
// Returns the index of the last argument consumed and the matcher built.
func buildMatcherTree(args []string, config *Config, state parserState, argIndex int, expectingParen bool) (int, Matcher, error) {
	var top listBuilder
	invertNext := false

	// getopts-style parsing can't work here: order matters, arguments may
	// start with + as well as -, and multi-character primaries use a
	// single dash.
	i := argIndex
	for i < len(args) {
		var submatcher Matcher
		arg := args[i]

		// needsArg fetches the operand of a fixed-arity primary.
		needsArg := func() (string, error) {
			if i >= len(args)-1 {
				return "", parseErrorf(i, arg, "missing argument to %s", arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "-print":
			submatcher = NewPrinter(DelimiterNewline, nil)
		case "-print0":
			submatcher = NewPrinter(DelimiterNull, nil)
		case "-printf":
			format, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewPrintf(format, nil)
			if err != nil {
				return 0, nil, &ParseError{Token: format, Position: i, Reason: "invalid -printf format", Cause: err}
			}
			submatcher = m
		case "-fprint", "-fprint0":
			path, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			sink, err := newSinkFile(path)
			if err != nil {
				return 0, nil, err
			}
			delim := DelimiterNewline
			if arg == "-fprint0" {
				delim = DelimiterNull
			}
			submatcher = NewPrinter(delim, sink)
		case "-fprintf":
			path, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			format, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			sink, err := newSinkFile(path)
			if err != nil {
				return 0, nil, err
			}
			m, err := NewPrintf(format, sink)
			if err != nil {
				return 0, nil, &ParseError{Token: format, Position: i, Reason: "invalid -fprintf format", Cause: err}
			}
			submatcher = m
		case "-ls":
			submatcher = NewLs(nil)
		case "-fls":
			path, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			sink, err := newSinkFile(path)
			if err != nil {
				return 0, nil, err
			}
			submatcher = NewLs(sink)
		case "-true":
			submatcher = TrueMatcher{}
		case "-false":
			submatcher = FalseMatcher{}
		case "-name", "-iname":
			pattern, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			submatcher = NewNameMatcher(pattern, arg == "-iname")
		case "-lname", "-ilname":
			pattern, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			submatcher = NewLinkNameMatcher(pattern, arg == "-ilname")
		case "-path", "-ipath", "-wholename", "-iwholename":
			pattern, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			submatcher = NewPathMatcher(pattern, strings.HasPrefix(arg, "-i"))
		case "-regextype":
			name, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			rt, err := ParseRegexType(name)
			if err != nil {
				return 0, nil, &ParseError{Token: name, Position: i, Reason: "bad -regextype", Cause: err}
			}
			state.regexType = rt
			submatcher = TrueMatcher{}
		case "-regex", "-iregex":
			pattern, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewRegexMatcher(state.regexType, pattern, arg == "-iregex")
			if err != nil {
				return 0, nil, &ParseError{Token: pattern, Position: i, Reason: "bad regex", Cause: err}
			}
			submatcher = m
		case "-type":
			s, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewTypeMatcher(s)
			if err != nil {
				return 0, nil, err
			}
			submatcher = m
		case "-xtype":
			s, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewXtypeMatcher(s)
			if err != nil {
				return 0, nil, err
			}
			submatcher = m
		case "-fstype":
			s, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			submatcher = NewFstypeMatcher(s)
		case "-delete":
			// -delete implicitly requires -depth.
			config.DepthFirst = true
			submatcher = NewDeleteMatcher()
		case "-mtime", "-atime", "-ctime":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			days, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewFileTimeMatcher(timeTypeFromSelector(arg[1]), days, config.TodayStart)
		case "-amin", "-cmin", "-mmin":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			minutes, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewFileAgeRangeMatcher(timeTypeFromSelector(arg[1]), minutes, config.TodayStart)
		case "-used":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			days, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewUsedMatcher(days)
		case "-size":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			size, suffix, err := parseComparableSuffix(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			m, err := NewSizeMatcher(size, suffix)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = m
		case "-empty":
			submatcher = NewEmptyMatcher()
		case "-exec", "-execdir", "-ok", "-okdir":
			end := i + 1
			for end < len(args) && args[end] != ";" && !(end > i+1 && args[end-1] == "{}" && args[end] == "+") {
				end++
			}
			if end >= len(args) || end < i+2 {
				return 0, nil, parseErrorf(i, arg, "missing argument to %s", arg)
			}
			executable := args[i+1]
			execArgs := args[i+2 : end]
			terminator := args[end]
			interactive := arg == "-ok" || arg == "-okdir"
			inParent := arg == "-execdir" || arg == "-okdir"
			i = end
			switch terminator {
			case ";":
				var p PromptFunc
				if interactive {
					p = state.prompt
					if p == nil {
						p = TTYPrompt()
					}
				}
				m, err := NewSingleExecMatcher(executable, execArgs, inParent, p)
				if err != nil {
					return 0, nil, err
				}
				submatcher = m
			case "+":
				if interactive {
					return 0, nil, parseErrorf(i, arg, "missing argument to %s", arg)
				}
				braces := 0
				for _, a := range execArgs {
					if a == "{}" {
						braces++
					}
				}
				if braces != 1 {
					return 0, nil, &ParseError{Reason: "only one instance of {} is supported with " + arg + " ... +"}
				}
				m, err := NewMultiExecMatcher(executable, execArgs[:len(execArgs)-1], inParent)
				if err != nil {
					return 0, nil, err
				}
				submatcher = m
			}
		case "-inum":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			inum, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewInodeMatcher(inum)
		case "-links":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			links, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewLinksMatcher(links)
		case "-samefile":
			path, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewSameFileMatcher(path, config.Follow)
			if err != nil {
				return 0, nil, &ParseError{Token: path, Position: i, Reason: path, Cause: err}
			}
			submatcher = m
		case "-user":
			name, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			if name == "" {
				return 0, nil, parseErrorf(i, arg, "the argument to -user should not be empty")
			}
			m := NewUserMatcherFromName(name)
			if m == nil {
				return 0, nil, parseErrorf(i, name, "%s is not the name of a known user", name)
			}
			submatcher = m
		case "-nouser":
			submatcher = &NoUserMatcher{}
		case "-uid":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			uid, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewUserMatcherFromComparable(uid)
		case "-group":
			name, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			if name == "" {
				return 0, nil, parseErrorf(i, arg, "argument to -group is empty, but should be a group name")
			}
			m := NewGroupMatcherFromName(name)
			if m == nil {
				return 0, nil, parseErrorf(i, name, "%s is not the name of an existing group", name)
			}
			submatcher = m
		case "-nogroup":
			submatcher = &NoGroupMatcher{}
		case "-gid":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			gid, err := parseComparable(arg, value)
			if err != nil {
				return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad argument", Cause: err}
			}
			submatcher = NewGroupMatcherFromComparable(gid)
		case "-readable":
			submatcher = NewAccessMatcher(AccessReadable)
		case "-writable":
			submatcher = NewAccessMatcher(AccessWritable)
		case "-executable":
			submatcher = NewAccessMatcher(AccessExecutable)
		case "-perm":
			pattern, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			m, err := NewPermMatcher(pattern)
			if err != nil {
				return 0, nil, &ParseError{Token: pattern, Position: i, Reason: "bad -perm argument", Cause: err}
			}
			submatcher = m
		case "-prune":
			submatcher = NewPruneMatcher()
		case "-quit":
			submatcher = NewQuitMatcher()
		case "-not", "!":
			if !moreExpressions(args, i) {
				return 0, nil, parseErrorf(i, arg, "expected an expression after %s", arg)
			}
			invertNext = !invertNext
		case "-and", "-a":
			if !moreExpressions(args, i) {
				return 0, nil, parseErrorf(i, arg, "expected an expression after %s", arg)
			}
			if err := top.checkAnd(); err != nil {
				return 0, nil, err
			}
		case "-or", "-o":
			if !moreExpressions(args, i) {
				return 0, nil, parseErrorf(i, arg, "expected an expression after %s", arg)
			}
			if err := top.newOrCondition(arg); err != nil {
				return 0, nil, err
			}
		case ",":
			if !moreExpressions(args, i) {
				return 0, nil, parseErrorf(i, arg, "expected an expression after %s", arg)
			}
			if err := top.newListCondition(); err != nil {
				return 0, nil, err
			}
		case "(":
			newIndex, sub, err := buildMatcherTree(args, config, state, i+1, true)
			if err != nil {
				return 0, nil, err
			}
			i = newIndex
			submatcher = sub
		case ")":
			if !expectingParen {
				return 0, nil, &ParseError{Reason: "invalid expression: expected expression before closing parentheses ')'"}
			}
			if args[i-1] == "(" {
				return 0, nil, &ParseError{Reason: "invalid expression; empty parentheses are not allowed"}
			}
			return i, top.build(), nil
		case "-follow":
			config.Follow = FollowAlways
			config.NoLeafDirs = true
			submatcher = TrueMatcher{}
		case "-daystart":
			config.TodayStart = true
			submatcher = TrueMatcher{}
		case "-noleaf":
			config.NoLeafDirs = true
			submatcher = TrueMatcher{}
		case "-d", "-depth":
			config.DepthFirst = true
			submatcher = TrueMatcher{}
		case "-mount", "-xdev":
			config.SameFileSystem = true
			submatcher = TrueMatcher{}
		case "-sorted":
			config.Sorted = true
			submatcher = TrueMatcher{}
		case "-ignore_readdir_race":
			config.IgnoreReaddirRace = true
			submatcher = TrueMatcher{}
		case "-noignore_readdir_race":
			config.IgnoreReaddirRace = false
			submatcher = TrueMatcher{}
		case "-maxdepth":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			n, err := parseNumber(i, arg, value)
			if err != nil {
				return 0, nil, err
			}
			config.MaxDepth = n
			submatcher = TrueMatcher{}
		case "-mindepth":
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			n, err := parseNumber(i, arg, value)
			if err != nil {
				return 0, nil, err
			}
			config.MinDepth = n
			submatcher = TrueMatcher{}
		case "-files0-from":
			path, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			config.Files0Argument = path
			submatcher = TrueMatcher{}
		case "-help", "--help":
			config.HelpRequested = true
		case "-version", "--version":
			config.VersionRequested = true
		default:
			x, y, ok := parseNewerArgs(arg)
			if !ok {
				return 0, nil, parseErrorf(i, arg, "unrecognized flag: '%s'", arg)
			}
			value, err := needsArg()
			if err != nil {
				return 0, nil, err
			}
			entryTime := timeTypeFromSelector(x)
			if y == 't' {
				reference, err := parseDateString(value, time.Now())
				if err != nil {
					return 0, nil, &ParseError{Token: value, Position: i, Reason: "bad timestamp", Cause: err}
				}
				submatcher = NewNewerTimeMatcher(entryTime, reference)
			} else {
				m, err := NewNewerMatcher(entryTime, timeTypeFromSelector(y), value, config.Follow)
				if err != nil {
					return 0, nil, &ParseError{Token: value, Position: i, Reason: value, Cause: err}
				}
				submatcher = m
			}
		}

		i++
		if config.HelpRequested || config.VersionRequested {
			// Ignore everything, even invalid expressions, after
			// -help/-version.
			expectingParen = false
			break
		}
		if submatcher != nil {
			if invertNext {
				top.add(NewNotMatcher(submatcher))
				invertNext = false
			} else {
				top.add(submatcher)
			}
		}
	}

	if expectingParen {
		return 0, nil, &ParseError{Reason: "invalid expression; I was expecting to find a ')' somewhere but did not see one"}
	}
	if config.Files0Argument != "" {
		if err := readFiles0(config); err != nil {
			return 0, nil, err
		}
	}
	return i, top.build(), nil
}

// readFiles0 loads NUL-separated starting points from the -files0-from
// operand ("-" reads stdin).
func readFiles0(config *Config) error {
	var (
		data []byte
		err  error
	)
	if config.Files0Argument == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(config.Files0Argument)
		if err != nil {
			return fmt.Errorf("cannot open '%s' for reading: %w", config.Files0Argument, err)
		}
	}
	if err != nil {
		return err
	}
	segments := bytes.Split(data, []byte{0})
	if len(segments) > 0 && len(segments[len(segments)-1]) == 0 {
		segments = segments[:len(segments)-1]
	}
	for _, segment := range segments {
		if len(segment) == 0 {
			fmt.Fprintln(os.Stderr, "find: invalid zero-length file name")
			continue
		}
		config.NewPaths = append(config.NewPaths, string(segment))
	}
	return nil
}
