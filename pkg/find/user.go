package find

import (
	"os/user"
	"strconv"
)

// UserMatcher checks the owner of the entry (-user / -uid).
type UserMatcher struct {
	baseMatcher
	uid ComparableValue
}

// NewUserMatcherFromName resolves a user name (or numeric uid fallback)
// into a matcher. Returns nil when the name is unknown.
func NewUserMatcherFromName(name string) *UserMatcher {
	if u, err := user.Lookup(name); err == nil {
		if uid, err := strconv.ParseUint(u.Uid, 10, 32); err == nil {
			return &UserMatcher{uid: EqualTo(uid)}
		}
	}
	if uid, err := strconv.ParseUint(name, 10, 32); err == nil {
		return &UserMatcher{uid: EqualTo(uid)}
	}
	return nil
}

// NewUserMatcherFromComparable builds a -uid matcher.
func NewUserMatcherFromComparable(uid ComparableValue) *UserMatcher {
	return &UserMatcher{uid: uid}
}

func (m *UserMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting owner of", err)
		return false
	}
	return m.uid.Matches(uint64(st.Uid))
}

// NoUserMatcher matches entries whose owning uid has no passwd entry
// (-nouser).
type NoUserMatcher struct {
	baseMatcher
}

func (m *NoUserMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting owner of", err)
		return false
	}
	_, err = user.LookupId(strconv.FormatUint(uint64(st.Uid), 10))
	return err != nil
}

// GroupMatcher checks the owning group of the entry (-group / -gid).
type GroupMatcher struct {
	baseMatcher
	gid ComparableValue
}

// NewGroupMatcherFromName resolves a group name (or numeric gid fallback)
// into a matcher. Returns nil when the name is unknown.
func NewGroupMatcherFromName(name string) *GroupMatcher {
	if g, err := user.LookupGroup(name); err == nil {
		if gid, err := strconv.ParseUint(g.Gid, 10, 32); err == nil {
			return &GroupMatcher{gid: EqualTo(gid)}
		}
	}
	if gid, err := strconv.ParseUint(name, 10, 32); err == nil {
		return &GroupMatcher{gid: EqualTo(gid)}
	}
	return nil
}

// NewGroupMatcherFromComparable builds a -gid matcher.
func NewGroupMatcherFromComparable(gid ComparableValue) *GroupMatcher {
	return &GroupMatcher{gid: gid}
}

func (m *GroupMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting group of", err)
		return false
	}
	return m.gid.Matches(uint64(st.Gid))
}

// NoGroupMatcher matches entries whose owning gid has no group entry
// (-nogroup).
type NoGroupMatcher struct {
	baseMatcher
}

func (m *NoGroupMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting group of", err)
		return false
	}
	_, err = user.LookupGroupId(strconv.FormatUint(uint64(st.Gid), 10))
	return err != nil
}
