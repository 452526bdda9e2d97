package find

import (
	"testing"
	"time"
)

// countingMatcher records evaluations so short-circuiting is observable.
type countingMatcher struct {
	baseMatcher
	result bool
	calls  int
}

func (m *countingMatcher) Matches(_ *Entry, _ *MatcherIO) bool {
	m.calls++
	return m.result
}

func testIO() *MatcherIO {
	return NewMatcherIO(&fakeDeps{now: time.Now()})
}

func testEntry(t *testing.T) *Entry {
	t.Helper()
	return NewEntry(t.TempDir(), 0, FollowNever, ".")
}

func TestAndShortCircuits(t *testing.T) {
	entry := testEntry(t)
	fail := &countingMatcher{result: false}
	after := &countingMatcher{result: true}
	and := &AndMatcher{subs: []Matcher{fail, after}}

	if and.Matches(entry, testIO()) {
		t.Error("And with a false operand must be false")
	}
	if after.calls != 0 {
		t.Error("And must not evaluate past the first false")
	}
}

func TestOrShortCircuits(t *testing.T) {
	entry := testEntry(t)
	ok := &countingMatcher{result: true}
	after := &countingMatcher{result: false}
	or := &OrMatcher{subs: []Matcher{ok, after}}

	if !or.Matches(entry, testIO()) {
		t.Error("Or with a true operand must be true")
	}
	if after.calls != 0 {
		t.Error("Or must not evaluate past the first true")
	}
}

func TestListEvaluatesAllAndYieldsLast(t *testing.T) {
	entry := testEntry(t)
	first := &countingMatcher{result: true}
	second := &countingMatcher{result: false}
	list := &ListMatcher{subs: []Matcher{first, second}}

	if list.Matches(entry, testIO()) {
		t.Error("comma yields the right-hand side's value")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Error("comma must evaluate both sides")
	}

	list = &ListMatcher{subs: []Matcher{second, first}}
	if !list.Matches(entry, testIO()) {
		t.Error("comma yields the right-hand side's value")
	}
}

func TestNotInverts(t *testing.T) {
	entry := testEntry(t)
	if !NewNotMatcher(FalseMatcher{}).Matches(entry, testIO()) {
		t.Error("!false should be true")
	}
	if NewNotMatcher(TrueMatcher{}).Matches(entry, testIO()) {
		t.Error("!true should be false")
	}
}

func TestComparableValue(t *testing.T) {
	tests := []struct {
		c     ComparableValue
		value uint64
		want  bool
	}{
		{EqualTo(5), 5, true},
		{EqualTo(5), 6, false},
		{MoreThan(5), 6, true},
		{MoreThan(5), 5, false},
		{LessThan(5), 4, true},
		{LessThan(5), 5, false},
	}
	for _, tt := range tests {
		if got := tt.c.Matches(tt.value); got != tt.want {
			t.Errorf("%+v.Matches(%d) = %v, want %v", tt.c, tt.value, got, tt.want)
		}
	}

	// Negative values compare below every limit.
	if EqualTo(0).MatchesSigned(-1) {
		t.Error("-1 should not equal 0")
	}
	if !LessThan(1).MatchesSigned(-5) {
		t.Error("negative values are less than any limit")
	}
}

func TestParseComparable(t *testing.T) {
	tests := []struct {
		input string
		value uint64
		match uint64
		want  bool
	}{
		{"5", 5, 5, true},
		{"+5", 5, 6, true},
		{"+5", 5, 5, false},
		{"-5", 5, 4, true},
	}
	for _, tt := range tests {
		c, err := parseComparable("-test", tt.input)
		if err != nil {
			t.Fatalf("parseComparable(%q) failed: %v", tt.input, err)
		}
		if got := c.Matches(tt.match); got != tt.want {
			t.Errorf("parseComparable(%q).Matches(%d) = %v, want %v", tt.input, tt.match, got, tt.want)
		}
	}
	if _, err := parseComparable("-test", "5x"); err == nil {
		t.Error("trailing garbage should be rejected")
	}
}
