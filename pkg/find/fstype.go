package find

import (
	"bufio"
	"os"
	"strings"
	"sync"
)

// mountTable maps mount points to filesystem type names. It is loaded once
// per run from /proc/mounts; systems without a readable mount table yield
// an empty table and -fstype matches nothing.
type mountTable struct {
	once   sync.Once
	points map[string]string
}

func (t *mountTable) load() {
	t.points = make(map[string]string)
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 3 {
			t.points[fields[1]] = fields[2]
		}
	}
}

// typeOf returns the filesystem type of the longest mount point that is a
// prefix of path.
func (t *mountTable) typeOf(path string) string {
	t.once.Do(t.load)
	best := ""
	fstype := ""
	for point, name := range t.points {
		if len(point) < len(best) {
			continue
		}
		if point == "/" || path == point || strings.HasPrefix(path, strings.TrimSuffix(point, "/")+"/") {
			best = point
			fstype = name
		}
	}
	return fstype
}

// FstypeMatcher matches entries on filesystems of the named type (-fstype).
type FstypeMatcher struct {
	baseMatcher
	table  *mountTable
	fstype string
}

// NewFstypeMatcher builds an -fstype matcher.
func NewFstypeMatcher(fstype string) *FstypeMatcher {
	return &FstypeMatcher{table: &mountTable{}, fstype: fstype}
}

func (m *FstypeMatcher) Matches(entry *Entry, _ *MatcherIO) bool {
	abs := entry.Path()
	if !strings.HasPrefix(abs, "/") {
		wd, err := os.Getwd()
		if err != nil {
			return false
		}
		abs = wd + "/" + abs
	}
	return m.table.typeOf(abs) == m.fstype
}
