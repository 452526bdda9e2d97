package find

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const standardBlockSize = 512

// timeFormatKind discriminates how a %A/%T/%C directive renders its
// timestamp.
type timeFormatKind int

const (
	// timeFormatCtime follows ctime(3) ("Mon Sep  4 12:00:00.0000000000 2023").
	timeFormatCtime timeFormatKind = iota
	// timeFormatEpoch is seconds since the epoch with a nanosecond part (%T@).
	timeFormatEpoch
	// timeFormatSeconds is %TS: seconds with a fractional part.
	timeFormatSeconds
	// timeFormatStrftime renders via a strftime pattern (%Tk).
	timeFormatStrftime
)

type timeFormat struct {
	kind    timeFormatKind
	pattern *strftime.Strftime
}

// newTimeFormat interprets the character following %A, %T or %C.
func newTimeFormat(k byte) (timeFormat, error) {
	switch k {
	case '@':
		return timeFormat{kind: timeFormatEpoch}, nil
	case 'S':
		return timeFormat{kind: timeFormatSeconds}, nil
	case '+':
		p, err := strftime.New("%Y-%m-%d+%H:%M:%S")
		if err != nil {
			return timeFormat{}, err
		}
		return timeFormat{kind: timeFormatStrftime, pattern: p}, nil
	default:
		p, err := strftime.New("%" + string(k))
		if err != nil {
			return timeFormat{}, fmt.Errorf("invalid time specifier %%%c: %w", k, err)
		}
		return timeFormat{kind: timeFormatStrftime, pattern: p}, nil
	}
}

func ctimeFormat() timeFormat { return timeFormat{kind: timeFormatCtime} }

var ctimeBase = mustStrftime("%a %b %e %H:%M:%S")

func mustStrftime(pattern string) *strftime.Strftime {
	p, err := strftime.New(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

func (f timeFormat) apply(t time.Time) string {
	switch f.kind {
	case timeFormatEpoch:
		return fmt.Sprintf("%d.%09d0", t.Unix(), t.Nanosecond())
	case timeFormatSeconds:
		return fmt.Sprintf("%02d.%09d0", t.Second(), t.Nanosecond())
	case timeFormatCtime:
		return fmt.Sprintf("%s.%09d0 %d", ctimeBase.FormatString(t), t.Nanosecond(), t.Year())
	default:
		return f.pattern.FormatString(t)
	}
}

// directiveKind enumerates the %X directives of -printf.
type directiveKind int

const (
	dirAccessTime directiveKind = iota
	dirBlocks
	dirBlocks1K
	dirChangeTime
	dirDepth
	dirDevice
	dirBasename
	dirFilesystem
	dirGroupName
	dirGroupID
	dirDirname
	dirStartingPoint
	dirInode
	dirSymlinkTarget
	dirPermOctal
	dirPermSymbolic
	dirHardlinks
	dirPath
	dirPathBelowRoot
	dirSize
	dirSparseness
	dirModTime
	dirUserName
	dirUserID
	dirType
	dirTypeFollow
)

// formatComponent is one piece of a compiled format string: a literal run,
// an output flush (\c), or a %X directive with its justification.
type formatComponent struct {
	literal     string
	flush       bool
	isDirective bool
	kind        directiveKind
	timeFmt     timeFormat
	width       int
	precision   int
	leftJustify bool
}

// formatParser compiles a -printf format string.
type formatParser struct {
	rest string
}

func (p *formatParser) empty() bool { return len(p.rest) == 0 }

func (p *formatParser) next() (byte, error) {
	if p.empty() {
		return 0, fmt.Errorf("unexpected end of format string")
	}
	c := p.rest[0]
	p.rest = p.rest[1:]
	return c, nil
}

// parseEscape handles the \c escapes of §printf.
func (p *formatParser) parseEscape() (formatComponent, error) {
	c, err := p.next()
	if err != nil {
		return formatComponent{}, err
	}
	switch c {
	case 'a':
		return formatComponent{literal: "\x07"}, nil
	case 'b':
		return formatComponent{literal: "\x08"}, nil
	case 'c':
		return formatComponent{flush: true}, nil
	case 'f':
		return formatComponent{literal: "\x0C"}, nil
	case 'n':
		return formatComponent{literal: "\n"}, nil
	case 'r':
		return formatComponent{literal: "\r"}, nil
	case 't':
		return formatComponent{literal: "\t"}, nil
	case 'v':
		return formatComponent{literal: "\x0B"}, nil
	case '0':
		return formatComponent{literal: "\x00"}, nil
	case '\\':
		return formatComponent{literal: "\\"}, nil
	default:
		if c >= '1' && c <= '7' {
			// \NNN octal escape, up to three digits.
			val := int(c - '0')
			for i := 0; i < 2 && !p.empty() && p.rest[0] >= '0' && p.rest[0] <= '7'; i++ {
				d, _ := p.next()
				val = val*8 + int(d-'0')
			}
			return formatComponent{literal: string(rune(val & 0xFF))}, nil
		}
		// Unknown escapes print the backslash and the character.
		return formatComponent{literal: "\\" + string(c)}, nil
	}
}

// parseDirective handles a % directive with optional width and precision.
func (p *formatParser) parseDirective() (formatComponent, error) {
	comp := formatComponent{isDirective: true, precision: -1}

	// Justification flags and field width.
	for !p.empty() && (p.rest[0] == '-' || p.rest[0] == ' ') {
		if p.rest[0] == '-' {
			comp.leftJustify = true
		}
		p.rest = p.rest[1:]
	}
	for !p.empty() && p.rest[0] >= '0' && p.rest[0] <= '9' {
		d, _ := p.next()
		comp.width = comp.width*10 + int(d-'0')
	}
	if !p.empty() && p.rest[0] == '.' {
		p.rest = p.rest[1:]
		comp.precision = 0
		for !p.empty() && p.rest[0] >= '0' && p.rest[0] <= '9' {
			d, _ := p.next()
			comp.precision = comp.precision*10 + int(d-'0')
		}
	}

	c, err := p.next()
	if err != nil {
		return formatComponent{}, err
	}
	switch c {
	case '%':
		return formatComponent{literal: "%"}, nil
	case 'a':
		comp.kind, comp.timeFmt = dirAccessTime, ctimeFormat()
	case 'A':
		k, err := p.next()
		if err != nil {
			return formatComponent{}, err
		}
		comp.kind = dirAccessTime
		if comp.timeFmt, err = newTimeFormat(k); err != nil {
			return formatComponent{}, err
		}
	case 'b':
		comp.kind = dirBlocks
	case 'c':
		comp.kind, comp.timeFmt = dirChangeTime, ctimeFormat()
	case 'C':
		k, err := p.next()
		if err != nil {
			return formatComponent{}, err
		}
		comp.kind = dirChangeTime
		if comp.timeFmt, err = newTimeFormat(k); err != nil {
			return formatComponent{}, err
		}
	case 'd':
		comp.kind = dirDepth
	case 'D':
		comp.kind = dirDevice
	case 'f':
		comp.kind = dirBasename
	case 'F':
		comp.kind = dirFilesystem
	case 'g':
		comp.kind = dirGroupName
	case 'G':
		comp.kind = dirGroupID
	case 'h':
		comp.kind = dirDirname
	case 'H':
		comp.kind = dirStartingPoint
	case 'i':
		comp.kind = dirInode
	case 'k':
		comp.kind = dirBlocks1K
	case 'l':
		comp.kind = dirSymlinkTarget
	case 'm':
		comp.kind = dirPermOctal
	case 'M':
		comp.kind = dirPermSymbolic
	case 'n':
		comp.kind = dirHardlinks
	case 'p':
		comp.kind = dirPath
	case 'P':
		comp.kind = dirPathBelowRoot
	case 's':
		comp.kind = dirSize
	case 'S':
		comp.kind = dirSparseness
	case 't':
		comp.kind, comp.timeFmt = dirModTime, ctimeFormat()
	case 'T':
		k, err := p.next()
		if err != nil {
			return formatComponent{}, err
		}
		comp.kind = dirModTime
		if comp.timeFmt, err = newTimeFormat(k); err != nil {
			return formatComponent{}, err
		}
	case 'u':
		comp.kind = dirUserName
	case 'U':
		comp.kind = dirUserID
	case 'y':
		comp.kind = dirType
	case 'Y':
		comp.kind = dirTypeFollow
	default:
		// Unknown directives emit the literal %X.
		return formatComponent{literal: "%" + string(c)}, nil
	}
	return comp, nil
}

// compileFormat turns a -printf format string into components.
func compileFormat(format string) ([]formatComponent, error) {
	p := &formatParser{rest: format}
	var components []formatComponent
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			components = append(components, formatComponent{literal: literal.String()})
			literal.Reset()
		}
	}

	for !p.empty() {
		c, _ := p.next()
		switch c {
		case '\\':
			comp, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			if comp.flush {
				flushLiteral()
				components = append(components, comp)
			} else {
				literal.WriteString(comp.literal)
			}
		case '%':
			comp, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			if comp.isDirective {
				flushLiteral()
				components = append(components, comp)
			} else {
				literal.WriteString(comp.literal)
			}
		default:
			literal.WriteByte(c)
		}
	}
	flushLiteral()
	return components, nil
}

// modeString renders permissions the way ls does: a type character then
// three rwx triples with setuid/setgid/sticky folded in.
func modeString(mode uint32, fileType FileType) string {
	buf := []byte("----------")
	switch fileType {
	case TypeDirectory:
		buf[0] = 'd'
	case TypeSymlink:
		buf[0] = 'l'
	case TypeBlockDevice:
		buf[0] = 'b'
	case TypeCharDevice:
		buf[0] = 'c'
	case TypeFifo:
		buf[0] = 'p'
	case TypeSocket:
		buf[0] = 's'
	}
	rwx := "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			buf[i+1] = rwx[i]
		}
	}
	if mode&0o4000 != 0 {
		if buf[3] == 'x' {
			buf[3] = 's'
		} else {
			buf[3] = 'S'
		}
	}
	if mode&0o2000 != 0 {
		if buf[6] == 'x' {
			buf[6] = 's'
		} else {
			buf[6] = 'S'
		}
	}
	if mode&0o1000 != 0 {
		if buf[9] == 'x' {
			buf[9] = 't'
		} else {
			buf[9] = 'T'
		}
	}
	return string(buf)
}

func lookupUserName(uid uint32) string {
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil && u.Username != "" {
		return u.Username
	}
	return strconv.FormatUint(uint64(uid), 10)
}

func lookupGroupName(gid uint32) string {
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10)); err == nil && g.Name != "" {
		return g.Name
	}
	return strconv.FormatUint(uint64(gid), 10)
}

// Printf renders a compiled format for every matched entry
// (-printf, -fprintf). No trailing newline is added.
type Printf struct {
	components []formatComponent
	sink       *sinkFile
	mounts     *mountTable
}

// NewPrintf compiles the format string. A nil sink writes to the run's
// output stream.
func NewPrintf(format string, sink *sinkFile) (*Printf, error) {
	components, err := compileFormat(format)
	if err != nil {
		return nil, err
	}
	return &Printf{components: components, sink: sink, mounts: &mountTable{}}, nil
}

func (p *Printf) Matches(entry *Entry, matcherIO *MatcherIO) bool {
	var out io.Writer = matcherIO.Out()
	if p.sink != nil {
		out = p.sink
	}
	for _, comp := range p.components {
		if comp.flush {
			// \c: stop formatting this entry and flush a buffered sink.
			if p.sink != nil {
				p.sink.w.Flush()
			}
			break
		}
		if !comp.isDirective {
			io.WriteString(out, comp.literal)
			continue
		}
		value, err := p.render(comp, entry)
		if err != nil {
			reportEntryError(entry, matcherIO, "error formatting", err)
			continue
		}
		if comp.precision >= 0 && len(value) > comp.precision {
			value = value[:comp.precision]
		}
		if comp.leftJustify {
			fmt.Fprintf(out, "%-*s", comp.width, value)
		} else {
			fmt.Fprintf(out, "%*s", comp.width, value)
		}
	}
	return true
}

func (p *Printf) render(comp formatComponent, entry *Entry) (string, error) {
	switch comp.kind {
	case dirDepth:
		return strconv.Itoa(entry.Depth()), nil
	case dirBasename:
		return entry.Name(), nil
	case dirDirname:
		return filepath.Dir(entry.Path()), nil
	case dirStartingPoint:
		return entry.Root(), nil
	case dirPath:
		return entry.Path(), nil
	case dirPathBelowRoot:
		below := strings.TrimPrefix(entry.Path(), entry.Root())
		return strings.TrimPrefix(below, "/"), nil
	case dirSymlinkTarget:
		if target, err := os.Readlink(entry.Path()); err == nil {
			return target, nil
		}
		return "", nil
	case dirFilesystem:
		return p.mounts.typeOf(entry.Path()), nil
	case dirType:
		return string(entry.Type().Char()), nil
	case dirTypeFollow:
		return p.renderFollowType(entry), nil
	}

	st, err := entry.stat()
	if err != nil {
		return "", err
	}
	switch comp.kind {
	case dirAccessTime:
		return comp.timeFmt.apply(statAccessed(st)), nil
	case dirChangeTime:
		return comp.timeFmt.apply(statChanged(st)), nil
	case dirModTime:
		return comp.timeFmt.apply(statModified(st)), nil
	case dirBlocks:
		return strconv.FormatInt(st.Blocks, 10), nil
	case dirBlocks1K:
		return strconv.FormatInt((st.Blocks+1)/2, 10), nil
	case dirDevice:
		return strconv.FormatUint(uint64(st.Dev), 10), nil
	case dirGroupName:
		return lookupGroupName(st.Gid), nil
	case dirGroupID:
		return strconv.FormatUint(uint64(st.Gid), 10), nil
	case dirUserName:
		return lookupUserName(st.Uid), nil
	case dirUserID:
		return strconv.FormatUint(uint64(st.Uid), 10), nil
	case dirInode:
		return strconv.FormatUint(uint64(st.Ino), 10), nil
	case dirHardlinks:
		return strconv.FormatUint(uint64(st.Nlink), 10), nil
	case dirPermOctal:
		return strconv.FormatUint(uint64(st.Mode)&0o7777, 8), nil
	case dirPermSymbolic:
		return modeString(uint32(st.Mode), entry.Type()), nil
	case dirSize:
		return strconv.FormatInt(st.Size, 10), nil
	case dirSparseness:
		if st.Size == 0 {
			return "1.0", nil
		}
		return strconv.FormatFloat(float64(st.Blocks*standardBlockSize)/float64(st.Size), 'g', -1, 64), nil
	}
	return "", nil
}

// renderFollowType is %Y: the type of the link target, with N for a
// dangling link and L for a link loop.
func (p *Printf) renderFollowType(entry *Entry) string {
	if entry.Type() != TypeSymlink || entry.Followed() {
		return string(entry.Type().Char())
	}
	info, err := os.Stat(entry.Path())
	if err != nil {
		switch {
		case IsNotFound(err):
			return "N"
		case IsLoop(err):
			return "L"
		default:
			return "?"
		}
	}
	return string(FileTypeFromMode(info.Mode()).Char())
}

func (p *Printf) HasSideEffects() bool { return true }

func (p *Printf) FinishedDir(_ string, _ *MatcherIO) {}

func (p *Printf) Finished(_ *MatcherIO) {
	if p.sink != nil {
		p.sink.close()
	}
}
