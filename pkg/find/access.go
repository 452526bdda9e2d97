package find

import "golang.org/x/sys/unix"

// AccessKind selects which permission -readable, -writable and -executable
// check for.
type AccessKind int

const (
	// AccessReadable checks read permission (-readable).
	AccessReadable AccessKind = iota
	// AccessWritable checks write permission (-writable).
	AccessWritable
	// AccessExecutable checks execute permission (-executable).
	AccessExecutable
)

// AccessMatcher checks permission with access(2), i.e. against the real
// rather than the effective uid.
type AccessMatcher struct {
	baseMatcher
	kind AccessKind
}

// NewAccessMatcher builds an access check of the given kind.
func NewAccessMatcher(kind AccessKind) *AccessMatcher {
	return &AccessMatcher{kind: kind}
}

func (m *AccessMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	var mode uint32
	switch m.kind {
	case AccessReadable:
		mode = unix.R_OK
	case AccessWritable:
		mode = unix.W_OK
	case AccessExecutable:
		mode = unix.X_OK
	}
	return unix.Access(entry.Path(), mode) == nil
}
