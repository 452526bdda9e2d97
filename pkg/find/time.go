package find

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"syscall"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// FileTimeType selects which of the three stat timestamps a time test
// examines.
type FileTimeType int

const (
	// TimeAccessed is the last-access time (-atime, -amin, -anewer).
	TimeAccessed FileTimeType = iota
	// TimeChanged is the status-change time (-ctime, -cmin, -cnewer).
	TimeChanged
	// TimeModified is the last-modification time (-mtime, -mmin, -newer).
	TimeModified
	// TimeBirth is the creation time, where the platform records one.
	TimeBirth
)

func (t FileTimeType) String() string {
	switch t {
	case TimeAccessed:
		return "accessed"
	case TimeChanged:
		return "changed"
	case TimeBirth:
		return "birth"
	default:
		return "modified"
	}
}

// fileTime extracts the requested timestamp for an entry.
func (t FileTimeType) fileTime(entry *Entry) (time.Time, error) {
	if t == TimeBirth {
		return statBirth(entry.Path(), entry.Followed())
	}
	st, err := entry.stat()
	if err != nil {
		return time.Time{}, err
	}
	return t.fromStat(st), nil
}

func (t FileTimeType) fromStat(st *syscall.Stat_t) time.Time {
	switch t {
	case TimeAccessed:
		return statAccessed(st)
	case TimeChanged:
		return statChanged(st)
	default:
		return statModified(st)
	}
}

// startTime returns the reference point ages are measured from: the start
// of the run, or the start of today under -daystart.
func startTime(io *MatcherIO, todayStart bool) time.Time {
	now := io.Now()
	if !todayStart {
		return now
	}
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

// FileTimeMatcher checks whether a timestamp is {less than | exactly |
// more than} N 24-hour periods old (-atime, -ctime, -mtime).
type FileTimeMatcher struct {
	baseMatcher
	timeType   FileTimeType
	days       ComparableValue
	todayStart bool
}

// NewFileTimeMatcher builds a day-granularity time matcher.
func NewFileTimeMatcher(timeType FileTimeType, days ComparableValue, todayStart bool) *FileTimeMatcher {
	return &FileTimeMatcher{timeType: timeType, days: days, todayStart: todayStart}
}

func (m *FileTimeMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	fileTime, err := m.timeType.fileTime(entry)
	if err != nil {
		reportEntryError(entry, io, fmt.Sprintf("error getting %s time for", m.timeType), err)
		return false
	}
	ageSeconds := int64(startTime(io, m.todayStart).Sub(fileTime) / time.Second)
	// Integer division truncates toward zero, so a file dated 1 second in
	// the future must count as -1 days old, not 0. Under -daystart the
	// day boundary makes 0 the right answer.
	offset := int64(0)
	if ageSeconds < 0 && !m.todayStart {
		offset = -1
	}
	return m.days.MatchesSigned(ageSeconds/secondsPerDay + offset)
}

// FileAgeRangeMatcher checks a timestamp's age in 60-second minutes
// (-amin, -cmin, -mmin).
type FileAgeRangeMatcher struct {
	baseMatcher
	timeType   FileTimeType
	minutes    ComparableValue
	todayStart bool
}

// NewFileAgeRangeMatcher builds a minute-granularity time matcher.
func NewFileAgeRangeMatcher(timeType FileTimeType, minutes ComparableValue, todayStart bool) *FileAgeRangeMatcher {
	return &FileAgeRangeMatcher{timeType: timeType, minutes: minutes, todayStart: todayStart}
}

func (m *FileAgeRangeMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	fileTime, err := m.timeType.fileTime(entry)
	if err != nil {
		reportEntryError(entry, io, fmt.Sprintf("error getting %s time for", m.timeType), err)
		return false
	}
	ageSeconds := int64(startTime(io, m.todayStart).Sub(fileTime) / time.Second)
	offset := int64(0)
	if ageSeconds < 0 {
		offset = -1
	}
	return m.minutes.MatchesSigned(ageSeconds/60 + offset)
}

// NewerMatcher matches entries whose timestamp is strictly newer than the
// reference file's (-newer, -anewer, -cnewer, and the file-reference forms
// of -newerXY).
type NewerMatcher struct {
	baseMatcher
	entryTime FileTimeType
	reference time.Time
}

// NewNewerMatcher stats the reference path (under the traversal's symlink
// policy) and compares its refTime timestamp against each entry's
// entryTime timestamp. A missing reference is a parse-time error.
func NewNewerMatcher(entryTime, refTime FileTimeType, path string, follow Follow) (*NewerMatcher, error) {
	var (
		info os.FileInfo
		err  error
	)
	if follow == FollowNever {
		info, err = os.Lstat(path)
	} else {
		info, err = os.Stat(path)
	}
	if err != nil {
		return nil, err
	}
	var reference time.Time
	if refTime == TimeBirth {
		reference, err = statBirth(path, follow != FollowNever)
		if err != nil {
			return nil, err
		}
	} else {
		st, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			return nil, &WalkError{Path: path, Cause: syscall.ENOTSUP}
		}
		reference = refTime.fromStat(st)
	}
	return &NewerMatcher{entryTime: entryTime, reference: reference}, nil
}

func (m *NewerMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	fileTime, err := m.entryTime.fileTime(entry)
	if err != nil {
		reportEntryError(entry, io, fmt.Sprintf("error getting %s time for", m.entryTime), err)
		return false
	}
	return fileTime.After(m.reference)
}

// NewerTimeMatcher matches entries whose timestamp is newer than a literal
// point in time (-newerXt).
type NewerTimeMatcher struct {
	baseMatcher
	entryTime FileTimeType
	reference time.Time
}

// NewNewerTimeMatcher builds a timestamp-reference -newerXt matcher.
func NewNewerTimeMatcher(entryTime FileTimeType, reference time.Time) *NewerTimeMatcher {
	return &NewerTimeMatcher{entryTime: entryTime, reference: reference}
}

func (m *NewerTimeMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	fileTime, err := m.entryTime.fileTime(entry)
	if err != nil {
		reportEntryError(entry, io, fmt.Sprintf("error getting %s time for", m.entryTime), err)
		return false
	}
	return fileTime.After(m.reference)
}

// UsedMatcher matches entries last accessed N days after their status was
// last changed (-used).
type UsedMatcher struct {
	baseMatcher
	days ComparableValue
}

// NewUsedMatcher builds a -used matcher.
func NewUsedMatcher(days ComparableValue) *UsedMatcher {
	return &UsedMatcher{days: days}
}

func (m *UsedMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	st, err := entry.stat()
	if err != nil {
		reportEntryError(entry, io, "error getting times for", err)
		return false
	}
	gap := int64(statAccessed(st).Sub(statChanged(st)) / time.Second)
	offset := int64(0)
	if gap < 0 {
		offset = -1
	}
	return m.days.MatchesSigned(gap/secondsPerDay + offset)
}

var newerXYRe = regexp.MustCompile(`^-newer([aBcm])([aBcmt])$`)

// parseNewerArgs recognizes -newer, -anewer, -cnewer and the -newerXY
// family, returning the X and Y selector characters.
func parseNewerArgs(arg string) (byte, byte, bool) {
	switch arg {
	case "-newer":
		return 'm', 'm', true
	case "-anewer":
		return 'a', 'm', true
	case "-cnewer":
		return 'c', 'm', true
	}
	groups := newerXYRe.FindStringSubmatch(arg)
	if groups == nil {
		return 0, 0, false
	}
	return groups[1][0], groups[2][0], true
}

func timeTypeFromSelector(c byte) FileTimeType {
	switch c {
	case 'a':
		return TimeAccessed
	case 'B':
		return TimeBirth
	case 'c':
		return TimeChanged
	default:
		return TimeModified
	}
}

var dateStringRe = regexp.MustCompile(`^(\w{3} \d{2})?(?:, (\d{4}))?(?: (\d{2}:\d{2}:\d{2}))?$`)

// parseDateString interprets a -newerXt reference of the form
// "mon dd[, yyyy][ HH:MM:SS]"; omitted fields default to today's date and
// midnight.
func parseDateString(s string, now time.Time) (time.Time, error) {
	groups := dateStringRe.FindStringSubmatch(s)
	if groups == nil {
		return time.Time{}, fmt.Errorf("cannot interpret '%s' as a date or time", s)
	}
	monthDay := groups[1]
	if monthDay == "" {
		monthDay = now.UTC().Format("Jan 02")
	} else {
		// Month abbreviations are matched case-insensitively.
		monthDay = strings.ToUpper(monthDay[:1]) + strings.ToLower(monthDay[1:])
	}
	year := groups[2]
	if year == "" {
		year = fmt.Sprintf("%04d", now.UTC().Year())
	}
	clock := groups[3]
	if clock == "" {
		clock = "00:00:00"
	}
	parsed, err := time.Parse("Jan 02, 2006 15:04:05", fmt.Sprintf("%s, %s %s", monthDay, year, clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot interpret '%s' as a date or time", s)
	}
	return parsed, nil
}
