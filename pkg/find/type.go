package find

// TypeMatcher checks the type of the entry under the traversal's symlink
// policy (-type).
type TypeMatcher struct {
	baseMatcher
	fileType FileType
}

// NewTypeMatcher parses the -type argument.
func NewTypeMatcher(typeString string) (*TypeMatcher, error) {
	t, err := ParseFileType(typeString)
	if err != nil {
		return nil, err
	}
	return &TypeMatcher{fileType: t}, nil
}

func (m *TypeMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	return entry.Type() == m.fileType
}

// XtypeMatcher is like TypeMatcher but toggles whether symlinks are
// followed: under -P it checks the target's type, under -L the link's own
// type (-xtype).
type XtypeMatcher struct {
	baseMatcher
	fileType FileType
}

// NewXtypeMatcher parses the -xtype argument.
func NewXtypeMatcher(typeString string) (*XtypeMatcher, error) {
	t, err := ParseFileType(typeString)
	if err != nil {
		return nil, err
	}
	return &XtypeMatcher{fileType: t}, nil
}

func (m *XtypeMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	follow := FollowAlways
	if entry.Followed() {
		follow = FollowNever
	}
	info, err := entry.MetadataFollow(follow)
	if err != nil {
		// Since GNU find 4.10, a symlink loop matches -xtype l.
		return m.fileType == TypeSymlink && IsLoop(err)
	}
	return FileTypeFromMode(info.Mode()) == m.fileType
}
