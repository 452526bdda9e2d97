package find

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// joinPath appends a child name to the effective path of its directory,
// preserving the root spelling (filepath.Join would clean "./" away).
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

// devIno identifies a file for loop detection.
type devIno struct {
	dev uint64
	ino uint64
}

// Walker drives the traversal: it produces one visit per non-directory and
// up to two visits per directory (pre-order, and post-order under -depth),
// evaluating the matcher tree against each.
type Walker struct {
	config  *Config
	matcher Matcher
	deps    Dependencies
	log     zerolog.Logger

	aborted  atomic.Bool
	quit     bool
	exitCode int

	// descent is the (device, inode) stack of the current path, used to
	// detect symlink loops when following.
	descent []devIno
}

// NewWalker builds a traversal driver for a parsed command line.
func NewWalker(config *Config, matcher Matcher, deps Dependencies, log zerolog.Logger) *Walker {
	return &Walker{config: config, matcher: matcher, deps: deps, log: log}
}

// Interrupt sets the sticky abort flag checked between entries. Pending
// sinks are still flushed before WalkRoots returns.
func (w *Walker) Interrupt() { w.aborted.Store(true) }

// WalkRoots iterates the starting points in argv order and returns the
// process exit status: 0 if every entry was processed without error.
func (w *Walker) WalkRoots(paths []string) int {
	for _, path := range paths {
		if w.quit || w.aborted.Load() {
			break
		}
		entry := NewEntry(path, 0, w.config.Follow, path)
		if _, err := entry.Metadata(); err != nil {
			fmt.Fprintf(w.deps.Err(), "find: %v\n", err)
			w.exitCode = 1
			continue
		}
		st, err := entry.stat()
		rootDev := uint64(0)
		if err == nil {
			rootDev = uint64(st.Dev)
		}
		w.walk(entry, rootDev)
	}

	// -exec + buffers and -fprint* handles flush even after -quit or an
	// interrupt.
	io := NewMatcherIO(w.deps)
	w.matcher.Finished(io)
	if io.ExitCode() != 0 {
		w.exitCode = io.ExitCode()
	}
	return w.exitCode
}

// evaluate runs the matcher tree against one entry and folds the
// evaluation state back into the walker. Returns whether -prune fired.
func (w *Walker) evaluate(entry *Entry) bool {
	io := NewMatcherIO(w.deps)
	w.matcher.Matches(entry, io)
	if io.ExitCode() != 0 {
		w.exitCode = io.ExitCode()
	}
	if io.ShouldQuit() {
		w.quit = true
	}
	return io.ShouldSkipCurrentDir()
}

func (w *Walker) finishedDir(dir string) {
	io := NewMatcherIO(w.deps)
	w.matcher.FinishedDir(dir, io)
	if io.ExitCode() != 0 {
		w.exitCode = io.ExitCode()
	}
}

// walk visits entry and, for directories, descends depth-first.
func (w *Walker) walk(entry *Entry, rootDev uint64) {
	if w.quit || w.aborted.Load() {
		return
	}

	isDir := entry.Type() == TypeDirectory
	evaluate := entry.Depth() >= w.config.MinDepth

	if !isDir {
		if evaluate {
			w.evaluate(entry)
		}
		return
	}

	descend := w.config.MaxDepth < 0 || entry.Depth() < w.config.MaxDepth

	// Pre-order evaluation; -prune stops the descent. Under -depth only
	// the post-order visit evaluates the expression and -prune is a no-op.
	if !w.config.DepthFirst && evaluate {
		pruned := w.evaluate(entry)
		if pruned || w.quit {
			descend = false
		}
	}

	if descend {
		w.descendInto(entry, rootDev)
	}

	if w.config.DepthFirst && evaluate && !w.quit && !w.aborted.Load() {
		w.evaluate(entry)
	}
}

// descendInto enumerates the children of a directory entry, honoring the
// mount boundary, the loop-detection stack, and readdir-race suppression.
func (w *Walker) descendInto(entry *Entry, rootDev uint64) {
	st, err := entry.stat()
	if err != nil {
		return
	}
	if w.config.SameFileSystem && uint64(st.Dev) != rootDev {
		return
	}

	id := devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}
	for _, ancestor := range w.descent {
		if ancestor == id {
			fmt.Fprintf(w.deps.Err(), "find: filesystem loop detected; '%s' is part of the same cycle as an ancestor\n", entry.Path())
			w.log.Warn().Str("path", entry.Path()).Msg("skipping symlink cycle")
			return
		}
	}
	w.descent = append(w.descent, id)
	defer func() { w.descent = w.descent[:len(w.descent)-1] }()

	children, err := os.ReadDir(entry.Path())
	if err != nil {
		if !(w.config.IgnoreReaddirRace && IsNotFound(err)) {
			fmt.Fprintf(w.deps.Err(), "find: %v\n", &WalkError{Path: entry.Path(), Cause: err})
			w.exitCode = 1
		}
		return
	}
	if w.config.Sorted {
		sort.Slice(children, func(i, j int) bool { return children[i].Name() < children[j].Name() })
	}

	for _, child := range children {
		if w.quit || w.aborted.Load() {
			break
		}
		childPath := joinPath(entry.Path(), child.Name())
		childEntry := NewEntry(childPath, entry.Depth()+1, w.config.Follow, entry.Root())
		if _, err := childEntry.Metadata(); err != nil {
			if w.config.IgnoreReaddirRace && IsNotFound(err) {
				continue
			}
			if IsNotFound(err) {
				w.log.Debug().Str("path", childPath).Msg("entry vanished during walk")
			}
			// Report once; the poisoned entry still flows through the
			// expression so path-based tests and -print keep working.
			fmt.Fprintf(w.deps.Err(), "find: %v\n", err)
			w.exitCode = 1
			childEntry.reported = true
		}
		w.walk(childEntry, rootDev)
	}

	w.finishedDir(entry.Path())
}
