package xargs

import (
	"os"

	"golang.org/x/sys/unix"
)

// argHeadroom is the space POSIX requires us to leave so child processes
// can grow their own environment.
const argHeadroom = 2048

// systemArgMax estimates ARG_MAX: the conservative 128 KiB GNU tools
// assume, raised to a quarter of the stack limit where the kernel derives
// it that way.
func systemArgMax() int {
	const fallback = 128 * 1024
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rl); err == nil &&
		rl.Cur != unix.RLIM_INFINITY && int64(rl.Cur/4) > int64(fallback) {
		return int(rl.Cur / 4)
	}
	return fallback
}

// ErrExhausted reports that an argument did not fit into the command being
// built. The argument is carried so the caller can retry it against a
// fresh command.
type ErrExhausted struct {
	Arg        Argument
	OutOfChars bool
}

func (e *ErrExhausted) Error() string {
	if e.OutOfChars {
		return "command line would exceed the size limit"
	}
	return "command is full"
}

// Limiter constrains the size of a single command line. CanAccept must be
// consulted on every limiter in the chain before any limiter's Accept is
// called, so that a veto later in the chain leaves earlier limiters
// untouched.
type Limiter interface {
	CanAccept(arg Argument) (ok bool, outOfChars bool)
	Accept(arg Argument)
	Clone() Limiter
}

// LimiterChain is an ordered set of limiters consulted together.
type LimiterChain []Limiter

// TryArg accepts the argument into every limiter, or returns ErrExhausted
// leaving all limiters unchanged.
func (c LimiterChain) TryArg(arg Argument) error {
	for _, l := range c {
		if ok, outOfChars := l.CanAccept(arg); !ok {
			return &ErrExhausted{Arg: arg, OutOfChars: outOfChars}
		}
	}
	for _, l := range c {
		l.Accept(arg)
	}
	return nil
}

// Clone deep-copies the chain for a fresh command.
func (c LimiterChain) Clone() LimiterChain {
	clone := make(LimiterChain, len(c))
	for i, l := range c {
		clone[i] = l.Clone()
	}
	return clone
}

// argBytes is the space one argument consumes on the command line: its
// bytes plus the terminating NUL.
func argBytes(arg Argument) int { return len(arg.Text) + 1 }

// maxCharsLimiter bounds the summed byte length of the command line
// (-s, and always the system ARG_MAX budget).
type maxCharsLimiter struct {
	current  int
	maxChars int
}

// NewMaxCharsLimiter bounds the command line to an explicit byte count.
func NewMaxCharsLimiter(maxChars int) Limiter {
	return &maxCharsLimiter{maxChars: maxChars}
}

// NewSystemCharsLimiter bounds the command line to what the system will
// accept: ARG_MAX minus the environment minus headroom.
func NewSystemCharsLimiter() Limiter {
	envSize := 0
	for _, kv := range os.Environ() {
		envSize += len(kv) + 2
	}
	limit := systemArgMax() - argHeadroom - envSize
	if limit < 4096 {
		limit = 4096
	}
	return &maxCharsLimiter{maxChars: limit}
}

func (l *maxCharsLimiter) CanAccept(arg Argument) (bool, bool) {
	if l.current+argBytes(arg) <= l.maxChars {
		return true, false
	}
	return false, true
}

func (l *maxCharsLimiter) Accept(arg Argument) { l.current += argBytes(arg) }

func (l *maxCharsLimiter) Clone() Limiter {
	clone := *l
	return &clone
}

// maxArgsLimiter bounds the number of appended (non-initial) arguments
// (-n).
type maxArgsLimiter struct {
	current int
	maxArgs int
}

// NewMaxArgsLimiter bounds appended arguments per command.
func NewMaxArgsLimiter(maxArgs int) Limiter {
	return &maxArgsLimiter{maxArgs: maxArgs}
}

func (l *maxArgsLimiter) CanAccept(arg Argument) (bool, bool) {
	if arg.Kind == ArgInitial {
		return true, false
	}
	return l.current < l.maxArgs, false
}

func (l *maxArgsLimiter) Accept(arg Argument) {
	if arg.Kind != ArgInitial {
		l.current++
	}
}

func (l *maxArgsLimiter) Clone() Limiter {
	clone := *l
	return &clone
}

// maxLinesLimiter bounds the number of hard-terminated arguments per
// command (-L): with a custom delimiter the "line" is whatever that
// delimiter ends.
type maxLinesLimiter struct {
	currentLine int
	maxLines    int
}

// NewMaxLinesLimiter bounds input lines per command.
func NewMaxLinesLimiter(maxLines int) Limiter {
	return &maxLinesLimiter{currentLine: 1, maxLines: maxLines}
}

func (l *maxLinesLimiter) CanAccept(_ Argument) (bool, bool) {
	return l.currentLine <= l.maxLines, false
}

func (l *maxLinesLimiter) Accept(arg Argument) {
	if arg.Kind == ArgHardTerminated {
		l.currentLine++
	}
}

func (l *maxLinesLimiter) Clone() Limiter {
	clone := *l
	return &clone
}
