package find

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// sinkFile is a named output file shared by the -fprint family: opened once
// (truncating), buffered, flushed and closed when the walk finishes.
type sinkFile struct {
	file *os.File
	w    *bufio.Writer
}

// newSinkFile creates (or truncates) the named file. An open failure is
// fatal at parse time.
func newSinkFile(path string) (*sinkFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open '%s' for writing: %w", path, err)
	}
	return &sinkFile{file: f, w: bufio.NewWriter(f)}, nil
}

func (s *sinkFile) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *sinkFile) close() {
	if s.file == nil {
		return
	}
	s.w.Flush()
	s.file.Close()
	s.file = nil
}

// PrintDelimiter separates printed paths: newline for -print, NUL for
// -print0.
type PrintDelimiter byte

const (
	// DelimiterNewline terminates each path with '\n'.
	DelimiterNewline PrintDelimiter = '\n'
	// DelimiterNull terminates each path with '\0'.
	DelimiterNull PrintDelimiter = 0
)

// Printer writes the effective path of every matched entry
// (-print, -print0, -fprint, -fprint0).
type Printer struct {
	delimiter PrintDelimiter
	sink      *sinkFile
}

// NewPrinter builds a printer. A nil sink writes to the run's output
// stream; otherwise output goes to the named file.
func NewPrinter(delimiter PrintDelimiter, sink *sinkFile) *Printer {
	return &Printer{delimiter: delimiter, sink: sink}
}

func (p *Printer) Matches(entry *Entry, matcherIO *MatcherIO) bool {
	var out io.Writer = matcherIO.Out()
	if p.sink != nil {
		out = p.sink
	}
	fmt.Fprintf(out, "%s%c", entry.Path(), byte(p.delimiter))
	return true
}

func (p *Printer) HasSideEffects() bool { return true }

func (p *Printer) FinishedDir(_ string, _ *MatcherIO) {}

func (p *Printer) Finished(_ *MatcherIO) {
	if p.sink != nil {
		p.sink.close()
	}
}
