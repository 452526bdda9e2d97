package find

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// argHeadroom is the space left for the child to grow its own environment,
// per POSIX.
const argHeadroom = 2048

// systemArgMax estimates ARG_MAX: the fallback is the conservative 128 KiB
// GNU tools assume, raised to a quarter of the stack limit where the kernel
// derives it that way.
func systemArgMax() int {
	const fallback = 128 * 1024
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rl); err == nil &&
		rl.Cur != unix.RLIM_INFINITY && int64(rl.Cur/4) > int64(fallback) {
		return int(rl.Cur / 4)
	}
	return fallback
}

// environBytes counts what the inherited environment consumes of ARG_MAX.
func environBytes() int {
	total := 0
	for _, kv := range os.Environ() {
		total += len(kv) + 2
	}
	return total
}

// execArgLimit is the byte budget one -exec … + invocation may spend on
// accumulated paths.
func execArgLimit(fixed []string) int {
	limit := systemArgMax() - environBytes() - argHeadroom
	for _, arg := range fixed {
		limit -= len(arg) + 1
	}
	if limit < 4096 {
		limit = 4096
	}
	return limit
}

// checkPathEntriesAbsolute rejects -execdir/-okdir when $PATH contains a
// relative or empty element, which would resolve against the directory the
// child runs in.
func checkPathEntriesAbsolute() error {
	path, ok := os.LookupEnv("PATH")
	if !ok {
		return nil
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" || !filepath.IsAbs(dir) {
			return fmt.Errorf(
				"the PATH environment variable contains non-absolute or empty paths; segment that caused the error: '%s'", dir)
		}
	}
	return nil
}

// PromptFunc asks the user to confirm an action and reports whether the
// answer was affirmative. The default implementation writes the prompt to
// stderr and reads a line from the controlling tty.
type PromptFunc func(prompt string) bool

// TTYPrompt builds the interactive prompt used by -ok and -okdir.
func TTYPrompt() PromptFunc {
	return func(prompt string) bool {
		fmt.Fprint(os.Stderr, prompt)
		tty, err := os.Open("/dev/tty")
		if err != nil {
			tty = os.Stdin
		} else {
			defer tty.Close()
		}
		line, err := bufio.NewReader(tty).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		line = strings.TrimSpace(line)
		return strings.HasPrefix(strings.ToLower(line), "y")
	}
}

// execArg is one token of an -exec command line: either a literal, or a
// template whose {} occurrences are substituted with the entry path.
type execArg struct {
	parts []string // nil for a literal
	text  string
}

func newExecArg(token string) execArg {
	if !strings.Contains(token, "{}") {
		return execArg{text: token}
	}
	return execArg{parts: strings.Split(token, "{}")}
}

func (a execArg) expand(path string) string {
	if a.parts == nil {
		return a.text
	}
	return strings.Join(a.parts, path)
}

// SingleExecMatcher spawns one child per matched entry (-exec … ; and
// -execdir … ;, plus the prompting -ok/-okdir forms). The predicate is
// true iff the child exited 0.
type SingleExecMatcher struct {
	baseMatcher
	executable string
	args       []execArg
	inParent   bool
	prompt     PromptFunc
}

// NewSingleExecMatcher builds an -exec/-execdir … ; matcher. prompt is nil
// for the non-interactive forms.
func NewSingleExecMatcher(executable string, args []string, inParent bool, prompt PromptFunc) (*SingleExecMatcher, error) {
	if inParent {
		if err := checkPathEntriesAbsolute(); err != nil {
			return nil, err
		}
	}
	execArgs := make([]execArg, len(args))
	for i, arg := range args {
		execArgs[i] = newExecArg(arg)
	}
	return &SingleExecMatcher{
		executable: executable,
		args:       execArgs,
		inParent:   inParent,
		prompt:     prompt,
	}, nil
}

// childPath is the path handed to the child: the full effective path, or
// ./basename for the dir variants.
func (m *SingleExecMatcher) childPath(entry *Entry) string {
	if !m.inParent {
		return entry.Path()
	}
	return "./" + entry.Name()
}

// childDir is the working directory for the dir variants; empty means no
// chdir.
func (m *SingleExecMatcher) childDir(entry *Entry) string {
	if !m.inParent {
		return ""
	}
	parent := filepath.Dir(entry.Path())
	if parent == entry.Path() {
		// Root paths like "/" have no parent; run from the root itself.
		return entry.Path()
	}
	return parent
}

func (m *SingleExecMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	path := m.childPath(entry)
	argv := make([]string, 0, len(m.args))
	for _, arg := range m.args {
		argv = append(argv, arg.expand(path))
	}

	if m.prompt != nil {
		display := append([]string{m.executable}, argv...)
		if !m.prompt(fmt.Sprintf("< %s > ? ", strings.Join(display, " "))) {
			return false
		}
	}

	cmd := exec.Command(m.executable, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = m.childDir(entry)
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false
		}
		fmt.Fprintf(io.ErrOut(), "find: failed to run %s: %v\n", m.executable, err)
		io.SetExitCode(1)
		return false
	}
	return true
}

func (m *SingleExecMatcher) HasSideEffects() bool { return true }

// MultiExecMatcher accumulates paths and spawns the command with as many
// of them as fit below the system argument limit (-exec … + and
// -execdir … +). The predicate value is true for every entry; a failing
// invocation sets the process exit code.
type MultiExecMatcher struct {
	executable string
	args       []string
	inParent   bool

	limit   int
	pending []string
	bytes   int
	dir     string
}

// NewMultiExecMatcher builds an -exec/-execdir … + matcher. args are the
// fixed tokens before the trailing {}.
func NewMultiExecMatcher(executable string, args []string, inParent bool) (*MultiExecMatcher, error) {
	if inParent {
		if err := checkPathEntriesAbsolute(); err != nil {
			return nil, err
		}
	}
	fixed := append([]string{executable}, args...)
	return &MultiExecMatcher{
		executable: executable,
		args:       args,
		inParent:   inParent,
		limit:      execArgLimit(fixed),
	}, nil
}

func (m *MultiExecMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	path := entry.Path()
	dir := ""
	if m.inParent {
		path = "./" + entry.Name()
		dir = filepath.Dir(entry.Path())
		if dir != m.dir {
			// Batches never span directories in the dir variant.
			m.flush(io)
			m.dir = dir
		}
	}
	if m.bytes+len(path)+1 > m.limit {
		m.flush(io)
	}
	m.pending = append(m.pending, path)
	m.bytes += len(path) + 1
	return true
}

// flush runs the accumulated batch, preserving append order.
func (m *MultiExecMatcher) flush(io *MatcherIO) {
	if len(m.pending) == 0 {
		return
	}
	argv := append(append([]string{}, m.args...), m.pending...)
	m.pending = nil
	m.bytes = 0

	cmd := exec.Command(m.executable, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if m.inParent {
		cmd.Dir = m.dir
	}
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(io.ErrOut(), "find: failed to run %s: %v\n", m.executable, err)
		}
		io.SetExitCode(1)
	}
}

func (m *MultiExecMatcher) HasSideEffects() bool { return true }

func (m *MultiExecMatcher) FinishedDir(_ string, io *MatcherIO) {
	if m.inParent {
		m.flush(io)
	}
}

func (m *MultiExecMatcher) Finished(io *MatcherIO) {
	m.flush(io)
}
