package find

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePermPattern(t *testing.T) {
	tests := []struct {
		input      string
		comparison permComparison
		bits       uint32
		wantErr    bool
	}{
		{"644", permExact, 0o644, false},
		{"-644", permAtLeast, 0o644, false},
		{"/222", permAnyOf, 0o222, false},
		{"0", permExact, 0, false},
		{"u+rw", permExact, 0o600, false},
		{"-u+rw,g+w", permAtLeast, 0o620, false},
		{"/u+rw,g+w,o=w", permAnyOf, 0o622, false},
		{"a+r", permExact, 0o444, false},
		{"u+s", permExact, 0o4000, false},
		{"+t", permExact, 0, true},
		{"+644", permExact, 0, true},
		{"u+q", permExact, 0, true},
		{"99999", permExact, 0, true},
		{"", permExact, 0, true},
	}

	for _, tt := range tests {
		comparison, bits, err := parsePermPattern(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePermPattern(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if comparison != tt.comparison || bits != tt.bits {
			t.Errorf("parsePermPattern(%q) = %v %o, want %v %o", tt.input, comparison, bits, tt.comparison, tt.bits)
		}
	}
}

func TestPermMatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatal(err)
	}
	entry := NewEntry(path, 1, FollowNever, dir)

	tests := []struct {
		pattern string
		want    bool
	}{
		{"640", true},
		{"600", false},
		{"-600", true},
		{"-640", true},
		{"-644", false},
		{"/600", true},
		{"/044", true},
		{"/001", false},
	}
	for _, tt := range tests {
		m, err := NewPermMatcher(tt.pattern)
		if err != nil {
			t.Fatalf("NewPermMatcher(%q) failed: %v", tt.pattern, err)
		}
		if got := m.Matches(entry, testIO()); got != tt.want {
			t.Errorf("-perm %s against 640 = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}
